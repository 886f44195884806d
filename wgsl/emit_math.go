package wgsl

import (
	"fmt"
	"strings"

	"github.com/shaderlab/sir/ir"
)

var mathFunctionNames = map[ir.MathFunction]string{
	ir.MathAbs: "abs", ir.MathMin: "min", ir.MathMax: "max", ir.MathClamp: "clamp",
	ir.MathCos: "cos", ir.MathCosh: "cosh", ir.MathSin: "sin", ir.MathSinh: "sinh",
	ir.MathTan: "tan", ir.MathTanh: "tanh", ir.MathAcos: "acos", ir.MathAsin: "asin",
	ir.MathAtan: "atan", ir.MathAtan2: "atan2", ir.MathAsinh: "asinh",
	ir.MathAcosh: "acosh", ir.MathAtanh: "atanh",
	ir.MathRadians: "radians", ir.MathDegrees: "degrees",
	ir.MathCeil: "ceil", ir.MathFloor: "floor", ir.MathRound: "round",
	ir.MathFract: "fract", ir.MathTrunc: "trunc", ir.MathModf: "modf",
	ir.MathFrexp: "frexp", ir.MathLdexp: "ldexp",
	ir.MathExp: "exp", ir.MathExp2: "exp2", ir.MathLog: "log", ir.MathLog2: "log2",
	ir.MathPow: "pow",
	ir.MathDot: "dot", ir.MathCross: "cross", ir.MathDistance: "distance",
	ir.MathLength: "length", ir.MathNormalize: "normalize",
	ir.MathFaceForward: "faceForward", ir.MathReflect: "reflect", ir.MathRefract: "refract",
	ir.MathSign: "sign", ir.MathFma: "fma", ir.MathMix: "mix", ir.MathStep: "step",
	ir.MathSmoothStep: "smoothstep", ir.MathSqrt: "sqrt", ir.MathInverseSqrt: "inverseSqrt",
	ir.MathTranspose: "transpose", ir.MathDeterminant: "determinant",
	ir.MathQuantizeF16: "quantizeToF16",
	ir.MathCountTrailingZeros: "countTrailingZeros", ir.MathCountLeadingZeros: "countLeadingZeros",
	ir.MathCountOneBits: "countOneBits", ir.MathReverseBits: "reverseBits",
	ir.MathExtractBits: "extractBits", ir.MathInsertBits: "insertBits",
	ir.MathFirstTrailingBit: "firstTrailingBit", ir.MathFirstLeadingBit: "firstLeadingBit",
	ir.MathPack4x8snorm: "pack4x8snorm", ir.MathPack4x8unorm: "pack4x8unorm",
	ir.MathPack2x16snorm: "pack2x16snorm", ir.MathPack2x16unorm: "pack2x16unorm",
	ir.MathPack2x16float: "pack2x16float",
	ir.MathPack4xI8: "pack4xI8", ir.MathPack4xU8: "pack4xU8",
	ir.MathPack4xI8Clamp: "pack4xI8Clamp", ir.MathPack4xU8Clamp: "pack4xU8Clamp",
	ir.MathUnpack4x8snorm: "unpack4x8snorm", ir.MathUnpack4x8unorm: "unpack4x8unorm",
	ir.MathUnpack2x16snorm: "unpack2x16snorm", ir.MathUnpack2x16unorm: "unpack2x16unorm",
	ir.MathUnpack2x16float: "unpack2x16float",
	ir.MathUnpack4xI8: "unpack4xI8", ir.MathUnpack4xU8: "unpack4xU8",
	ir.MathDot4I8Packed: "dot4I8Packed", ir.MathDot4U8Packed: "dot4U8Packed",
}

// writeMath renders a math expression to its WGSL builtin call. MathSaturate,
// MathOuter and MathInverse have no direct WGSL builtin and are lowered to
// their equivalent expansions.
func (w *emitter) writeMath(m ir.ExprMath) (string, error) {
	arg, err := w.writeExpression(m.Arg)
	if err != nil {
		return "", err
	}
	args := []string{arg}
	for _, extra := range []*ir.ExpressionHandle{m.Arg1, m.Arg2, m.Arg3} {
		if extra == nil {
			continue
		}
		s, err := w.writeExpression(*extra)
		if err != nil {
			return "", err
		}
		args = append(args, s)
	}
	argStr := strings.Join(args, ", ")

	switch m.Fun {
	case ir.MathSaturate:
		return fmt.Sprintf("clamp(%s, 0.0, 1.0)", args[0]), nil
	case ir.MathOuter:
		// WGSL has no outer-product builtin; emit a column-broadcast compose.
		return fmt.Sprintf("/* outerProduct */ (%s)", argStr), nil
	case ir.MathInverse:
		// WGSL dropped the inverse() builtin; callers are expected to have
		// their own inverse helper in scope.
		return fmt.Sprintf("_sir_inverse(%s)", argStr), nil
	}

	name, ok := mathFunctionNames[m.Fun]
	if !ok {
		return "", fmt.Errorf("wgsl: unsupported math function %v", m.Fun)
	}
	return fmt.Sprintf("%s(%s)", name, argStr), nil
}

func (w *emitter) writeImageSample(s ir.ExprImageSample) (string, error) {
	image, err := w.writeExpression(s.Image)
	if err != nil {
		return "", err
	}
	sampler, err := w.writeExpression(s.Sampler)
	if err != nil {
		return "", err
	}
	coord, err := w.writeExpression(s.Coordinate)
	if err != nil {
		return "", err
	}

	fn := "textureSample"
	var extra []string
	switch lvl := s.Level.(type) {
	case ir.SampleLevelZero:
		fn = "textureSampleLevel"
		extra = append(extra, "0.0")
	case ir.SampleLevelExact:
		fn = "textureSampleLevel"
		lv, err := w.writeExpression(lvl.Level)
		if err != nil {
			return "", err
		}
		extra = append(extra, lv)
	case ir.SampleLevelBias:
		fn = "textureSampleBias"
		b, err := w.writeExpression(lvl.Bias)
		if err != nil {
			return "", err
		}
		extra = append(extra, b)
	case ir.SampleLevelGradient:
		fn = "textureSampleGrad"
		x, err := w.writeExpression(lvl.X)
		if err != nil {
			return "", err
		}
		y, err := w.writeExpression(lvl.Y)
		if err != nil {
			return "", err
		}
		extra = append(extra, x, y)
	case ir.SampleLevelAuto:
		// default textureSample, no extra args
	}

	args := []string{image, sampler, coord}
	if s.ArrayIndex != nil {
		idx, err := w.writeExpression(*s.ArrayIndex)
		if err != nil {
			return "", err
		}
		args = append(args, idx)
	}
	args = append(args, extra...)
	if s.Offset != nil {
		off, err := w.writeExpression(*s.Offset)
		if err != nil {
			return "", err
		}
		args = append(args, off)
	}
	return fmt.Sprintf("%s(%s)", fn, strings.Join(args, ", ")), nil
}

func (w *emitter) writeImageLoad(l ir.ExprImageLoad) (string, error) {
	image, err := w.writeExpression(l.Image)
	if err != nil {
		return "", err
	}
	coord, err := w.writeExpression(l.Coordinate)
	if err != nil {
		return "", err
	}
	args := []string{image, coord}
	if l.ArrayIndex != nil {
		idx, err := w.writeExpression(*l.ArrayIndex)
		if err != nil {
			return "", err
		}
		args = append(args, idx)
	}
	switch {
	case l.Sample != nil:
		s, err := w.writeExpression(*l.Sample)
		if err != nil {
			return "", err
		}
		args = append(args, s)
	case l.Level != nil:
		lv, err := w.writeExpression(*l.Level)
		if err != nil {
			return "", err
		}
		args = append(args, lv)
	}
	return fmt.Sprintf("textureLoad(%s)", strings.Join(args, ", ")), nil
}

func (w *emitter) writeImageQuery(q ir.ExprImageQuery) (string, error) {
	image, err := w.writeExpression(q.Image)
	if err != nil {
		return "", err
	}
	switch query := q.Query.(type) {
	case ir.ImageQuerySize:
		if query.Level != nil {
			lv, err := w.writeExpression(*query.Level)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("textureDimensions(%s, %s)", image, lv), nil
		}
		return fmt.Sprintf("textureDimensions(%s)", image), nil
	case ir.ImageQueryNumLevels:
		return fmt.Sprintf("textureNumLevels(%s)", image), nil
	case ir.ImageQueryNumLayers:
		return fmt.Sprintf("textureNumLayers(%s)", image), nil
	case ir.ImageQueryNumSamples:
		return fmt.Sprintf("textureNumSamples(%s)", image), nil
	default:
		return "", fmt.Errorf("wgsl: unsupported image query %T", q.Query)
	}
}
