package ir

import "fmt"

// ResolveExpressionType computes the TypeResolution of one expression within
// fn: either a Handle into module.Types, or an inline Value for a type that
// has no arena entry of its own (e.g. the scalar/vector shapes produced by
// swizzles and comparisons).
//
//nolint:gocyclo,cyclop,funlen // one dispatch arm per ExpressionKind variant
func ResolveExpressionType(module *Module, fn *Function, handle ExpressionHandle) (TypeResolution, error) {
	if int(handle) >= len(fn.Expressions) {
		return TypeResolution{}, fmt.Errorf("expression handle %d out of range (max %d)", handle, len(fn.Expressions))
	}

	switch kind := fn.Expressions[handle].Kind.(type) {
	case Literal:
		return resolveLiteralType(kind)
	case ExprConstant:
		return constantExprType(module, kind)
	case ExprZeroValue:
		return TypeResolution{Handle: &kind.Type}, nil
	case ExprCompose:
		return TypeResolution{Handle: &kind.Type}, nil
	case ExprAccess:
		return accessExprType(module, fn, kind)
	case ExprAccessIndex:
		return accessIndexExprType(module, fn, kind)
	case ExprSplat:
		return splatExprType(module, fn, kind)
	case ExprSwizzle:
		return swizzleExprType(module, fn, kind)
	case ExprFunctionArgument:
		if int(kind.Index) >= len(fn.Arguments) {
			return TypeResolution{}, fmt.Errorf("function argument index %d out of range", kind.Index)
		}
		return TypeResolution{Handle: &fn.Arguments[kind.Index].Type}, nil
	case ExprGlobalVariable:
		if int(kind.Variable) >= len(module.GlobalVariables) {
			return TypeResolution{}, fmt.Errorf("global variable %d out of range", kind.Variable)
		}
		return TypeResolution{Handle: &module.GlobalVariables[kind.Variable].Type}, nil
	case ExprLocalVariable:
		if int(kind.Variable) >= len(fn.LocalVars) {
			return TypeResolution{}, fmt.Errorf("local variable %d out of range", kind.Variable)
		}
		return TypeResolution{Handle: &fn.LocalVars[kind.Variable].Type}, nil
	case ExprLoad:
		return loadExprType(module, fn, kind)
	case ExprImageSample:
		return imageSampleExprType(module, fn, kind)
	case ExprImageLoad:
		return imageLoadExprType(module, fn, kind)
	case ExprImageQuery:
		return imageQueryExprType(kind)
	case ExprUnary:
		return unaryExprType(module, fn, kind)
	case ExprBinary:
		return binaryExprType(module, fn, kind)
	case ExprSelect:
		return selectExprType(module, fn, kind)
	case ExprDerivative:
		return derivativeExprType(module, fn, kind)
	case ExprRelational:
		return relationalExprType(module, fn, kind)
	case ExprMath:
		return mathExprType(module, fn, kind)
	case ExprAs:
		return asExprType(module, fn, kind)
	case ExprCallResult:
		if int(kind.Function) >= len(module.Functions) {
			return TypeResolution{}, fmt.Errorf("function %d out of range", kind.Function)
		}
		result := module.Functions[kind.Function].Result
		if result == nil {
			return TypeResolution{}, fmt.Errorf("function has no return type")
		}
		return TypeResolution{Handle: &result.Type}, nil
	case ExprArrayLength:
		return TypeResolution{Value: ScalarType{Kind: ScalarUint, Width: 4}}, nil
	default:
		return TypeResolution{}, fmt.Errorf("unsupported expression kind: %T", kind)
	}
}

// resolveLiteralType maps a parsed literal to its scalar type. Abstract
// literals have not yet been given a concrete type by constant evaluation,
// so they default the way WGSL specifies: abstract-int to i32, abstract-float
// to f32.
func resolveLiteralType(lit Literal) (TypeResolution, error) {
	scalar := func(kind ScalarKind, width uint8) (TypeResolution, error) {
		return TypeResolution{Value: ScalarType{Kind: kind, Width: width}}, nil
	}
	switch lit.Value.(type) {
	case LiteralF64:
		return scalar(ScalarFloat, 8)
	case LiteralF32, LiteralAbstractFloat:
		return scalar(ScalarFloat, 4)
	case LiteralU32:
		return scalar(ScalarUint, 4)
	case LiteralI32, LiteralAbstractInt:
		return scalar(ScalarSint, 4)
	case LiteralU64:
		return scalar(ScalarUint, 8)
	case LiteralI64:
		return scalar(ScalarSint, 8)
	case LiteralBool:
		return scalar(ScalarBool, 1)
	default:
		return TypeResolution{}, fmt.Errorf("unknown literal type: %T", lit.Value)
	}
}

func constantExprType(module *Module, expr ExprConstant) (TypeResolution, error) {
	if int(expr.Constant) >= len(module.Constants) {
		return TypeResolution{}, fmt.Errorf("constant %d out of range", expr.Constant)
	}
	return TypeResolution{Handle: &module.Constants[expr.Constant].Type}, nil
}

// innerOf unwraps a TypeResolution into the TypeInner it denotes, following
// the Handle into module.Types when present. Most of the resolve* helpers
// below need the underlying shape rather than the resolution wrapper itself.
func innerOf(module *Module, res TypeResolution) (TypeInner, error) {
	if res.Handle == nil {
		return res.Value, nil
	}
	if int(*res.Handle) >= len(module.Types) {
		return nil, fmt.Errorf("type handle %d out of range", *res.Handle)
	}
	return module.Types[*res.Handle].Inner, nil
}

// resolvedInner is innerOf without bounds checking, for call sites that
// already know the handle resolved successfully (it came from a
// TypeResolution this package produced earlier in the same call chain).
func resolvedInner(module *Module, res TypeResolution) TypeInner {
	if res.Handle != nil {
		return module.Types[*res.Handle].Inner
	}
	return res.Value
}

func accessExprType(module *Module, fn *Function, expr ExprAccess) (TypeResolution, error) {
	baseType, err := ResolveExpressionType(module, fn, expr.Base)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("access base: %w", err)
	}
	inner, err := innerOf(module, baseType)
	if err != nil {
		return TypeResolution{}, err
	}

	switch t := inner.(type) {
	case ArrayType:
		return TypeResolution{Handle: &t.Base}, nil
	case VectorType:
		return TypeResolution{Value: t.Scalar}, nil
	case MatrixType:
		return TypeResolution{Value: VectorType{Size: t.Rows, Scalar: t.Scalar}}, nil
	case PointerType:
		if int(t.Base) >= len(module.Types) {
			return TypeResolution{}, fmt.Errorf("pointer base type %d out of range", t.Base)
		}
		return accessExprType(module, fn, ExprAccess{Base: expr.Base, Index: expr.Index})
	default:
		return TypeResolution{}, fmt.Errorf("cannot index into type %T", t)
	}
}

func accessIndexExprType(module *Module, fn *Function, expr ExprAccessIndex) (TypeResolution, error) {
	baseType, err := ResolveExpressionType(module, fn, expr.Base)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("access index base: %w", err)
	}
	inner, err := innerOf(module, baseType)
	if err != nil {
		return TypeResolution{}, err
	}

	switch t := inner.(type) {
	case ArrayType:
		return TypeResolution{Handle: &t.Base}, nil
	case VectorType:
		return TypeResolution{Value: t.Scalar}, nil
	case MatrixType:
		return TypeResolution{Value: VectorType{Size: t.Rows, Scalar: t.Scalar}}, nil
	case StructType:
		if int(expr.Index) >= len(t.Members) {
			return TypeResolution{}, fmt.Errorf("struct member index %d out of range", expr.Index)
		}
		return TypeResolution{Handle: &t.Members[expr.Index].Type}, nil
	case PointerType:
		if int(t.Base) >= len(module.Types) {
			return TypeResolution{}, fmt.Errorf("pointer base type %d out of range", t.Base)
		}
		return accessIndexExprType(module, fn, ExprAccessIndex{Base: expr.Base, Index: expr.Index})
	default:
		return TypeResolution{}, fmt.Errorf("cannot index into type %T", t)
	}
}

func splatExprType(module *Module, fn *Function, expr ExprSplat) (TypeResolution, error) {
	valueType, err := ResolveExpressionType(module, fn, expr.Value)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("splat value: %w", err)
	}
	inner, err := innerOf(module, valueType)
	if err != nil {
		return TypeResolution{}, err
	}
	scalar, ok := inner.(ScalarType)
	if !ok {
		return TypeResolution{}, fmt.Errorf("splat value must be scalar, got %T", inner)
	}
	return TypeResolution{Value: VectorType{Size: expr.Size, Scalar: scalar}}, nil
}

func swizzleExprType(module *Module, fn *Function, expr ExprSwizzle) (TypeResolution, error) {
	vectorType, err := ResolveExpressionType(module, fn, expr.Vector)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("swizzle vector: %w", err)
	}
	inner, err := innerOf(module, vectorType)
	if err != nil {
		return TypeResolution{}, err
	}
	vec, ok := inner.(VectorType)
	if !ok {
		return TypeResolution{}, fmt.Errorf("swizzle base must be vector, got %T", inner)
	}
	return TypeResolution{Value: VectorType{Size: expr.Size, Scalar: vec.Scalar}}, nil
}

func loadExprType(module *Module, fn *Function, expr ExprLoad) (TypeResolution, error) {
	pointerType, err := ResolveExpressionType(module, fn, expr.Pointer)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("load pointer: %w", err)
	}
	inner, err := innerOf(module, pointerType)
	if err != nil {
		return TypeResolution{}, err
	}
	ptr, ok := inner.(PointerType)
	if !ok {
		return TypeResolution{}, fmt.Errorf("load requires pointer type, got %T", inner)
	}
	return TypeResolution{Handle: &ptr.Base}, nil
}

func imageSampleExprType(module *Module, fn *Function, expr ExprImageSample) (TypeResolution, error) {
	imageType, err := ResolveExpressionType(module, fn, expr.Image)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("image sample image: %w", err)
	}
	inner, err := innerOf(module, imageType)
	if err != nil {
		return TypeResolution{}, err
	}
	img, ok := inner.(ImageType)
	if !ok {
		return TypeResolution{}, fmt.Errorf("image sample requires image type, got %T", inner)
	}
	if img.Class == ImageClassDepth {
		return TypeResolution{Value: ScalarType{Kind: ScalarFloat, Width: 4}}, nil
	}
	return TypeResolution{Value: VectorType{Size: Vec4, Scalar: ScalarType{Kind: ScalarFloat, Width: 4}}}, nil
}

func imageLoadExprType(module *Module, fn *Function, expr ExprImageLoad) (TypeResolution, error) {
	imageType, err := ResolveExpressionType(module, fn, expr.Image)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("image load image: %w", err)
	}
	inner, err := innerOf(module, imageType)
	if err != nil {
		return TypeResolution{}, err
	}
	if _, ok := inner.(ImageType); !ok {
		return TypeResolution{}, fmt.Errorf("image load requires image type, got %T", inner)
	}
	return TypeResolution{Value: VectorType{Size: Vec4, Scalar: ScalarType{Kind: ScalarFloat, Width: 4}}}, nil
}

// imageQueryExprType resolves the dimension/count queries; ImageQuerySize
// collapses to vec3<u32> regardless of the image's actual dimensionality,
// since TypeResolution carries no separate scalar-vs-vector distinction for
// callers that already know which components they read.
func imageQueryExprType(expr ExprImageQuery) (TypeResolution, error) {
	switch expr.Query.(type) {
	case ImageQuerySize:
		return TypeResolution{Value: VectorType{Size: Vec3, Scalar: ScalarType{Kind: ScalarUint, Width: 4}}}, nil
	case ImageQueryNumLevels, ImageQueryNumLayers, ImageQueryNumSamples:
		return TypeResolution{Value: ScalarType{Kind: ScalarUint, Width: 4}}, nil
	default:
		return TypeResolution{}, fmt.Errorf("unknown image query type: %T", expr.Query)
	}
}

func unaryExprType(module *Module, fn *Function, expr ExprUnary) (TypeResolution, error) {
	operandType, err := ResolveExpressionType(module, fn, expr.Expr)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("unary operand: %w", err)
	}
	return operandType, nil
}

var comparisonOps = map[BinaryOperator]bool{
	BinaryEqual: true, BinaryNotEqual: true,
	BinaryLess: true, BinaryLessEqual: true,
	BinaryGreater: true, BinaryGreaterEqual: true,
}

func binaryExprType(module *Module, fn *Function, expr ExprBinary) (TypeResolution, error) {
	leftType, err := ResolveExpressionType(module, fn, expr.Left)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("binary left: %w", err)
	}

	switch {
	case comparisonOps[expr.Op]:
		inner, err := innerOf(module, leftType)
		if err != nil {
			return TypeResolution{}, err
		}
		if vec, ok := inner.(VectorType); ok {
			return TypeResolution{Value: VectorType{Size: vec.Size, Scalar: ScalarType{Kind: ScalarBool, Width: 1}}}, nil
		}
		return TypeResolution{Value: ScalarType{Kind: ScalarBool, Width: 1}}, nil

	case expr.Op == BinaryLogicalAnd || expr.Op == BinaryLogicalOr:
		return TypeResolution{Value: ScalarType{Kind: ScalarBool, Width: 1}}, nil

	case expr.Op == BinaryMultiply:
		rightType, err := ResolveExpressionType(module, fn, expr.Right)
		if err != nil {
			return TypeResolution{}, fmt.Errorf("binary right: %w", err)
		}
		return mulResultType(module, leftType, rightType), nil

	default:
		// Arithmetic and bitwise operators broadcast a scalar left operand
		// to match a vector right operand; every other combination takes
		// its type from the left operand.
		if rightType, err := ResolveExpressionType(module, fn, expr.Right); err == nil {
			_, leftIsScalar := resolvedInner(module, leftType).(ScalarType)
			_, rightIsVec := resolvedInner(module, rightType).(VectorType)
			if leftIsScalar && rightIsVec {
				return rightType, nil
			}
		}
		return leftType, nil
	}
}

// mulResultType implements WGSL's multiplication-result rules:
// scalar*vector and scalar*matrix broadcast to the non-scalar operand;
// matrix*vector and vector*matrix contract to a vector sized by the
// matrix's other dimension; matrix*matrix and same-kind pairs take the
// left operand's type.
func mulResultType(module *Module, left, right TypeResolution) TypeResolution {
	leftInner := resolvedInner(module, left)
	rightInner := resolvedInner(module, right)

	_, leftIsScalar := leftInner.(ScalarType)
	_, rightIsScalar := rightInner.(ScalarType)
	leftMat, leftIsMat := leftInner.(MatrixType)
	rightMat, rightIsMat := rightInner.(MatrixType)
	_, rightIsVec := rightInner.(VectorType)
	_, leftIsVec := leftInner.(VectorType)

	switch {
	case leftIsScalar && (rightIsVec || rightIsMat):
		return right
	case rightIsScalar && (leftIsVec || leftIsMat):
		return left
	case leftIsMat && rightIsVec:
		return TypeResolution{Value: VectorType{Size: leftMat.Rows, Scalar: leftMat.Scalar}}
	case leftIsVec && rightIsMat:
		return TypeResolution{Value: VectorType{Size: rightMat.Columns, Scalar: rightMat.Scalar}}
	default:
		return left
	}
}

func selectExprType(module *Module, fn *Function, expr ExprSelect) (TypeResolution, error) {
	acceptType, err := ResolveExpressionType(module, fn, expr.Accept)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("select accept: %w", err)
	}
	return acceptType, nil
}

func derivativeExprType(module *Module, fn *Function, expr ExprDerivative) (TypeResolution, error) {
	exprType, err := ResolveExpressionType(module, fn, expr.Expr)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("derivative expr: %w", err)
	}
	return exprType, nil
}

func relationalExprType(module *Module, fn *Function, expr ExprRelational) (TypeResolution, error) {
	argType, err := ResolveExpressionType(module, fn, expr.Argument)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("relational argument: %w", err)
	}
	inner, err := innerOf(module, argType)
	if err != nil {
		return TypeResolution{}, err
	}

	if vec, ok := inner.(VectorType); ok {
		switch expr.Fun {
		case RelationalAll, RelationalAny:
			return TypeResolution{Value: ScalarType{Kind: ScalarBool, Width: 1}}, nil
		case RelationalIsNan, RelationalIsInf:
			return TypeResolution{Value: VectorType{Size: vec.Size, Scalar: ScalarType{Kind: ScalarBool, Width: 1}}}, nil
		}
	}
	return TypeResolution{Value: ScalarType{Kind: ScalarBool, Width: 1}}, nil
}

func mathExprType(module *Module, fn *Function, expr ExprMath) (TypeResolution, error) {
	argType, err := ResolveExpressionType(module, fn, expr.Arg)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("math argument: %w", err)
	}

	switch expr.Fun {
	case MathDot, MathDot4I8Packed, MathDot4U8Packed:
		inner, err := innerOf(module, argType)
		if err != nil {
			return TypeResolution{}, err
		}
		if vec, ok := inner.(VectorType); ok {
			return TypeResolution{Value: vec.Scalar}, nil
		}
		return argType, nil

	case MathLength, MathDistance:
		return TypeResolution{Value: ScalarType{Kind: ScalarFloat, Width: 4}}, nil

	case MathOuter:
		// TODO: outer product should resolve to the matrix type built from
		// the two vector operands; until then it keeps the argument type.
		return argType, nil

	default:
		return argType, nil
	}
}

func asExprType(module *Module, fn *Function, expr ExprAs) (TypeResolution, error) {
	exprType, err := ResolveExpressionType(module, fn, expr.Expr)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("as expr: %w", err)
	}
	inner, err := innerOf(module, exprType)
	if err != nil {
		return TypeResolution{}, err
	}

	if expr.Convert == nil {
		// A bare reinterpret-bitcast keeps the source's type structure.
		return exprType, nil
	}
	targetScalar := ScalarType{Kind: expr.Kind, Width: *expr.Convert}
	if vec, ok := inner.(VectorType); ok {
		return TypeResolution{Value: VectorType{Size: vec.Size, Scalar: targetScalar}}, nil
	}
	return TypeResolution{Value: targetScalar}, nil
}
