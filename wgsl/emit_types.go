package wgsl

import (
	"fmt"

	"github.com/shaderlab/sir/ir"
)

func (w *emitter) typeToWGSL(inner ir.TypeInner) string {
	switch t := inner.(type) {
	case ir.ScalarType:
		return scalarToWGSL(t)
	case ir.VectorType:
		return fmt.Sprintf("vec%d<%s>", t.Size, scalarToWGSL(t.Scalar))
	case ir.MatrixType:
		return fmt.Sprintf("mat%dx%d<%s>", t.Columns, t.Rows, scalarToWGSL(t.Scalar))
	case ir.ArrayType:
		base := w.getTypeName(t.Base)
		if t.Size.Constant != nil {
			return fmt.Sprintf("array<%s, %d>", base, *t.Size.Constant)
		}
		return fmt.Sprintf("array<%s>", base)
	case ir.StructType:
		return "struct_unknown"
	case ir.PointerType:
		space, _ := addressSpaceToWGSL(t.Space)
		if space == "" {
			space = "function"
		}
		return fmt.Sprintf("ptr<%s, %s>", space, w.getTypeName(t.Base))
	case ir.SamplerType:
		if t.Comparison {
			return "sampler_comparison"
		}
		return "sampler"
	case ir.ImageType:
		return imageToWGSL(t)
	case ir.AtomicType:
		return fmt.Sprintf("atomic<%s>", scalarToWGSL(t.Scalar))
	default:
		return "f32"
	}
}

func scalarToWGSL(t ir.ScalarType) string {
	switch t.Kind {
	case ir.ScalarBool:
		return "bool"
	case ir.ScalarSint:
		return "i32"
	case ir.ScalarUint:
		return "u32"
	case ir.ScalarFloat:
		if t.Width == 2 {
			return "f16"
		}
		return "f32"
	default:
		return "f32"
	}
}

func imageToWGSL(t ir.ImageType) string {
	if t.Class == ir.ImageClassStorage {
		return fmt.Sprintf("texture_storage_%s", imageDimSuffix(t))
	}

	var prefix string
	switch t.Class {
	case ir.ImageClassDepth:
		prefix = "texture_depth_"
	default:
		prefix = "texture_"
	}

	if t.Multisampled {
		return prefix + "multisampled_2d"
	}
	return prefix + imageDimSuffix(t)
}

func imageDimSuffix(t ir.ImageType) string {
	switch t.Dim {
	case ir.Dim1D:
		return "1d"
	case ir.Dim2D:
		if t.Arrayed {
			return "2d_array"
		}
		return "2d"
	case ir.Dim3D:
		return "3d"
	case ir.DimCube:
		if t.Arrayed {
			return "cube_array"
		}
		return "cube"
	default:
		return "2d"
	}
}
