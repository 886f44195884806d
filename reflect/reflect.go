package reflect

import (
	"encoding/json"
	"fmt"

	"github.com/shaderlab/sir/ir"
)

// NumericKind classifies the scalar element type of a reflected vertex
// input or fragment output.
type NumericKind uint8

const (
	NumericF32 NumericKind = iota
	NumericI32
	NumericU32
	NumericF16
	NumericBool
)

func (k NumericKind) String() string {
	switch k {
	case NumericF32:
		return "f32"
	case NumericI32:
		return "i32"
	case NumericU32:
		return "u32"
	case NumericF16:
		return "f16"
	case NumericBool:
		return "bool"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the kind as its String() name rather than the
// underlying uint8, so reflection dumps read as "f32" rather than "0".
func (k NumericKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func numericKindOf(scalar ir.ScalarType) NumericKind {
	switch scalar.Kind {
	case ir.ScalarSint:
		return NumericI32
	case ir.ScalarUint:
		return NumericU32
	case ir.ScalarBool:
		return NumericBool
	case ir.ScalarFloat:
		if scalar.Width == 2 {
			return NumericF16
		}
		return NumericF32
	default:
		return NumericF32
	}
}

// VertexInput describes one `@location(N)` vertex shader input, either a
// direct function parameter or a field of a struct parameter.
type VertexInput struct {
	Location   uint32
	Name       string
	Components int // 1 for scalar, 2-4 for vecN
	Kind       NumericKind
	ByteSize   uint32
}

// FragmentOutput describes one `@location(N)` fragment shader output.
type FragmentOutput struct {
	Location   uint32
	Name       string
	Components int
	Kind       NumericKind
	ByteSize   uint32
}

// VertexInputs reflects the `@location`-bearing parameters of a vertex entry
// point, in source order, whether they come directly as function parameters
// or as fields of a struct parameter.
//
// Returns ir.ErrInvalidInput if ep is not a vertex entry point.
func VertexInputs(module *ir.Module, ep ir.EntryPoint) ([]VertexInput, error) {
	if ep.Stage != ir.StageVertex {
		return nil, ir.NewError(ir.ErrInvalidInput, "entry point %q is not a vertex stage", ep.Name)
	}
	fn := &module.Functions[ep.Function]

	var out []VertexInput
	for _, arg := range fn.Arguments {
		if err := collectLocationBearing(module, arg.Type, arg.Name, arg.Binding, func(loc uint32, name string, comps int, kind NumericKind, size uint32) {
			out = append(out, VertexInput{Location: loc, Name: name, Components: comps, Kind: kind, ByteSize: size})
		}); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// FragmentOutputs reflects the `@location`-bearing fields of a fragment
// entry point's return type, in declaration order.
//
// Returns ir.ErrInvalidInput if ep is not a fragment entry point.
func FragmentOutputs(module *ir.Module, ep ir.EntryPoint) ([]FragmentOutput, error) {
	if ep.Stage != ir.StageFragment {
		return nil, ir.NewError(ir.ErrInvalidInput, "entry point %q is not a fragment stage", ep.Name)
	}
	fn := &module.Functions[ep.Function]
	if fn.Result == nil {
		return nil, nil
	}

	var out []FragmentOutput
	err := collectLocationBearing(module, fn.Result.Type, "", fn.Result.Binding, func(loc uint32, name string, comps int, kind NumericKind, size uint32) {
		out = append(out, FragmentOutput{Location: loc, Name: name, Components: comps, Kind: kind, ByteSize: size})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// collectLocationBearing walks either a single bound value (binding != nil)
// or, if typ is a struct, each member's own binding, invoking emit for every
// LocationBinding found. Builtins are skipped: they are not part of the
// vertex-input/fragment-output location surface.
func collectLocationBearing(module *ir.Module, typ ir.TypeHandle, name string, binding *ir.Binding, emit func(loc uint32, name string, comps int, kind NumericKind, size uint32)) error {
	if binding != nil {
		if loc, ok := (*binding).(ir.LocationBinding); ok {
			comps, kind, size := scalarShapeOf(module, typ)
			emit(loc.Location, name, comps, kind, size)
		}
		return nil
	}

	t := module.Types[typ]
	st, ok := t.Inner.(ir.StructType)
	if !ok {
		return nil
	}
	for _, member := range st.Members {
		if member.Binding == nil {
			continue
		}
		if loc, ok := (*member.Binding).(ir.LocationBinding); ok {
			comps, kind, size := scalarShapeOf(module, member.Type)
			emit(loc.Location, member.Name, comps, kind, size)
		}
	}
	return nil
}

// scalarShapeOf returns the component count, numeric kind, and byte size of
// a scalar or vector type.
func scalarShapeOf(module *ir.Module, typ ir.TypeHandle) (components int, kind NumericKind, byteSize uint32) {
	t := module.Types[typ]
	switch inner := t.Inner.(type) {
	case ir.ScalarType:
		return 1, numericKindOf(inner), uint32(inner.Width)
	case ir.VectorType:
		n := int(inner.Size)
		return n, numericKindOf(inner.Scalar), uint32(inner.Scalar.Width) * uint32(n)
	default:
		return 0, NumericF32, 0
	}
}

// MinBindingSize computes the minimum byte size a uniform or storage buffer
// binding of the given type must have, by recursively summing scalars,
// vectors, matrices, fixed-size arrays, and struct members under std140/
// std430-style alignment (matching the layout the lowerer itself applies to
// struct spans). Runtime arrays and unresolvable types report ok=false,
// since they have no static size.
func MinBindingSize(module *ir.Module, typ ir.TypeHandle) (size uint64, ok bool) {
	t := module.Types[typ]
	switch inner := t.Inner.(type) {
	case ir.ScalarType:
		return uint64(inner.Width), true
	case ir.VectorType:
		return uint64(inner.Scalar.Width) * uint64(inner.Size), true
	case ir.MatrixType:
		colSize, colOK := vecAlignedSize(inner.Rows)
		if !colOK {
			return 0, false
		}
		return colSize * uint64(inner.Columns), true
	case ir.ArrayType:
		if inner.Size.Constant == nil {
			return 0, false
		}
		elemSize, elemOK := MinBindingSize(module, inner.Base)
		if !elemOK {
			return 0, false
		}
		stride := uint64(inner.Stride)
		if stride == 0 {
			stride = roundUp16(elemSize)
		}
		return stride * uint64(*inner.Size.Constant), true
	case ir.StructType:
		if len(inner.Members) == 0 {
			return 0, true
		}
		last := inner.Members[len(inner.Members)-1]
		lastSize, lastOK := MinBindingSize(module, last.Type)
		if !lastOK {
			return 0, false
		}
		return uint64(last.Offset) + lastSize, true
	default:
		return 0, false
	}
}

func vecAlignedSize(size ir.VectorSize) (uint64, bool) {
	switch size {
	case ir.Vec2:
		return 8, true
	case ir.Vec3, ir.Vec4:
		return 16, true
	default:
		return 0, false
	}
}

func roundUp16(size uint64) uint64 {
	return (size + 15) &^ 15
}

// ResourceSet computes the set of binding-bearing global variables an entry
// point transitively references, by walking the call graph rooted at the
// entry point's function. Globals without a ResourceBinding (builtins,
// private/function-scope locals materialized as globals) are excluded.
func ResourceSet(module *ir.Module, ep ir.EntryPoint) ([]ir.GlobalVariableHandle, error) {
	if int(ep.Function) >= len(module.Functions) {
		return nil, ir.NewError(ir.ErrInvalidInput, "entry point %q references unknown function %d", ep.Name, ep.Function)
	}

	visitedFns := map[ir.FunctionHandle]bool{}
	usedGlobals := map[ir.GlobalVariableHandle]bool{}

	var walk func(fn ir.FunctionHandle) error
	walk = func(fn ir.FunctionHandle) error {
		if visitedFns[fn] {
			return nil
		}
		if int(fn) >= len(module.Functions) {
			return fmt.Errorf("unknown function handle %d", fn)
		}
		visitedFns[fn] = true
		f := &module.Functions[fn]

		for _, expr := range f.Expressions {
			if g, ok := expr.Kind.(ir.ExprGlobalVariable); ok {
				usedGlobals[g.Variable] = true
			}
		}

		var walkBlock func(block ir.Block) error
		walkBlock = func(block ir.Block) error {
			for _, stmt := range block {
				switch s := stmt.Kind.(type) {
				case ir.StmtCall:
					if err := walk(s.Function); err != nil {
						return err
					}
				case ir.StmtIf:
					if err := walkBlock(s.Accept); err != nil {
						return err
					}
					if err := walkBlock(s.Reject); err != nil {
						return err
					}
				case ir.StmtSwitch:
					for _, c := range s.Cases {
						if err := walkBlock(c.Body); err != nil {
							return err
						}
					}
				case ir.StmtLoop:
					if err := walkBlock(s.Body); err != nil {
						return err
					}
					if err := walkBlock(s.Continuing); err != nil {
						return err
					}
				case ir.StmtBlock:
					if err := walkBlock(s.Block); err != nil {
						return err
					}
				}
			}
			return nil
		}
		return walkBlock(f.Body)
	}

	if err := walk(ep.Function); err != nil {
		return nil, ir.WrapError(ir.ErrInternal, err)
	}

	var result []ir.GlobalVariableHandle
	for handle := range usedGlobals {
		if int(handle) >= len(module.GlobalVariables) {
			continue
		}
		if module.GlobalVariables[handle].Binding != nil {
			result = append(result, handle)
		}
	}
	return result, nil
}
