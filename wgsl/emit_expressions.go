package wgsl

import (
	"fmt"
	"strings"

	"github.com/shaderlab/sir/ir"
)

func (w *emitter) writeExpression(handle ir.ExpressionHandle) (string, error) {
	if w.currentFunction == nil {
		return "", fmt.Errorf("wgsl: no current function context")
	}
	if int(handle) >= len(w.currentFunction.Expressions) {
		return "", fmt.Errorf("wgsl: invalid expression handle %d", handle)
	}
	return w.writeExpressionKind(w.currentFunction.Expressions[handle].Kind)
}

//nolint:gocyclo,cyclop // one case per expression kind, same shape as the GLSL/HLSL/MSL backends
func (w *emitter) writeExpressionKind(kind ir.ExpressionKind) (string, error) {
	switch k := kind.(type) {
	case ir.Literal:
		return w.writeLiteral(k)
	case ir.ExprConstant:
		return w.names[emitNameKey{kind: emitKeyConstant, handle1: uint32(k.Constant)}], nil
	case ir.ExprZeroValue:
		return fmt.Sprintf("%s()", w.getTypeName(k.Type)), nil
	case ir.ExprCompose:
		return w.writeCompose(k)
	case ir.ExprAccess:
		return w.writeAccess(k)
	case ir.ExprAccessIndex:
		return w.writeAccessIndex(k)
	case ir.ExprSplat:
		return w.writeSplat(k)
	case ir.ExprSwizzle:
		return w.writeSwizzle(k)
	case ir.ExprFunctionArgument:
		return w.writeFunctionArgumentExpr(k)
	case ir.ExprGlobalVariable:
		return w.names[emitNameKey{kind: emitKeyGlobalVariable, handle1: uint32(k.Variable)}], nil
	case ir.ExprLocalVariable:
		return w.writeLocalVariableExpr(k)
	case ir.ExprLoad:
		return w.writeExpression(k.Pointer)
	case ir.ExprUnary:
		return w.writeUnary(k)
	case ir.ExprBinary:
		return w.writeBinary(k)
	case ir.ExprSelect:
		return w.writeSelect(k)
	case ir.ExprRelational:
		return w.writeRelational(k)
	case ir.ExprMath:
		return w.writeMath(k)
	case ir.ExprDerivative:
		return w.writeDerivative(k)
	case ir.ExprImageSample:
		return w.writeImageSample(k)
	case ir.ExprImageLoad:
		return w.writeImageLoad(k)
	case ir.ExprImageQuery:
		return w.writeImageQuery(k)
	case ir.ExprAs:
		return w.writeAs(k)
	case ir.ExprCallResult:
		return w.names[emitNameKey{kind: emitKeyFunction, handle1: uint32(k.Function)}], nil
	case ir.ExprAtomicResult:
		return "atomicLoad_result", nil
	case ir.ExprArrayLength:
		base, err := w.writeExpression(k.Array)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("arrayLength(&%s)", base), nil
	default:
		return "", fmt.Errorf("wgsl: unsupported expression kind %T", kind)
	}
}

func (w *emitter) writeLiteral(lit ir.Literal) (string, error) {
	switch v := lit.Value.(type) {
	case ir.LiteralBool:
		if v {
			return "true", nil
		}
		return "false", nil
	case ir.LiteralI32:
		return fmt.Sprintf("%di", int32(v)), nil
	case ir.LiteralU32:
		return fmt.Sprintf("%du", uint32(v)), nil
	case ir.LiteralI64:
		return fmt.Sprintf("%dli", int64(v)), nil
	case ir.LiteralU64:
		return fmt.Sprintf("%dlu", uint64(v)), nil
	case ir.LiteralF32:
		return formatFloat32WGSL(float32(v), "f"), nil
	case ir.LiteralF64:
		return formatFloat64WGSL(float64(v), "lf"), nil
	case ir.LiteralAbstractInt:
		return fmt.Sprintf("%d", int64(v)), nil
	case ir.LiteralAbstractFloat:
		return formatFloat64WGSL(float64(v), ""), nil
	default:
		return "0", nil
	}
}

func (w *emitter) writeCompose(c ir.ExprCompose) (string, error) {
	typeName := w.getTypeName(c.Type)
	components := make([]string, 0, len(c.Components))
	for _, comp := range c.Components {
		s, err := w.writeExpression(comp)
		if err != nil {
			return "", err
		}
		components = append(components, s)
	}
	return fmt.Sprintf("%s(%s)", typeName, strings.Join(components, ", ")), nil
}

func (w *emitter) writeAccess(a ir.ExprAccess) (string, error) {
	base, err := w.writeExpression(a.Base)
	if err != nil {
		return "", err
	}
	index, err := w.writeExpression(a.Index)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s[%s]", base, index), nil
}

func (w *emitter) writeAccessIndex(a ir.ExprAccessIndex) (string, error) {
	base, err := w.writeExpression(a.Base)
	if err != nil {
		return "", err
	}

	if int(a.Base) < len(w.currentFunction.Expressions) {
		if typeHandle := w.getExpressionTypeHandle(w.currentFunction.Expressions[a.Base].Kind); typeHandle != nil {
			if int(*typeHandle) < len(w.module.Types) {
				if st, ok := w.module.Types[*typeHandle].Inner.(ir.StructType); ok && int(a.Index) < len(st.Members) {
					if name := st.Members[a.Index].Name; name != "" {
						return fmt.Sprintf("%s.%s", base, escapeKeyword(name)), nil
					}
				}
			}
		}
	}
	return fmt.Sprintf("%s[%d]", base, a.Index), nil
}

func (w *emitter) getExpressionTypeHandle(kind ir.ExpressionKind) *ir.TypeHandle {
	switch k := kind.(type) {
	case ir.ExprGlobalVariable:
		t := w.module.GlobalVariables[k.Variable].Type
		return &t
	case ir.ExprLocalVariable:
		t := w.currentFunction.LocalVars[k.Variable].Type
		return &t
	case ir.ExprCompose:
		return &k.Type
	default:
		return nil
	}
}

func (w *emitter) writeSplat(s ir.ExprSplat) (string, error) {
	value, err := w.writeExpression(s.Value)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("vec%d(%s)", s.Size, value), nil
}

func (w *emitter) writeSwizzle(s ir.ExprSwizzle) (string, error) {
	vector, err := w.writeExpression(s.Vector)
	if err != nil {
		return "", err
	}
	const components = "xyzw"
	var swizzle strings.Builder
	for i := ir.VectorSize(0); i < s.Size; i++ {
		if int(s.Pattern[i]) < len(components) {
			swizzle.WriteByte(components[s.Pattern[i]])
		}
	}
	return fmt.Sprintf("%s.%s", vector, swizzle.String()), nil
}

func (w *emitter) writeFunctionArgumentExpr(a ir.ExprFunctionArgument) (string, error) {
	return w.names[emitNameKey{kind: emitKeyFunctionArgument, handle1: uint32(w.currentFuncHandle), handle2: a.Index}], nil
}

func (w *emitter) writeLocalVariableExpr(l ir.ExprLocalVariable) (string, error) {
	if name, ok := w.localNames[l.Variable]; ok {
		return name, nil
	}
	return fmt.Sprintf("local_%d", l.Variable), nil
}

func (w *emitter) writeUnary(u ir.ExprUnary) (string, error) {
	operand, err := w.writeExpression(u.Expr)
	if err != nil {
		return "", err
	}
	switch u.Op {
	case ir.UnaryNegate:
		return fmt.Sprintf("-(%s)", operand), nil
	case ir.UnaryLogicalNot:
		return fmt.Sprintf("!(%s)", operand), nil
	case ir.UnaryBitwiseNot:
		return fmt.Sprintf("~(%s)", operand), nil
	default:
		return "", fmt.Errorf("wgsl: unsupported unary operator %v", u.Op)
	}
}

//nolint:gocyclo,cyclop // one case per binary operator
func (w *emitter) writeBinary(b ir.ExprBinary) (string, error) {
	left, err := w.writeExpression(b.Left)
	if err != nil {
		return "", err
	}
	right, err := w.writeExpression(b.Right)
	if err != nil {
		return "", err
	}

	ops := map[ir.BinaryOperator]string{
		ir.BinaryAdd: "+", ir.BinarySubtract: "-", ir.BinaryMultiply: "*",
		ir.BinaryDivide: "/", ir.BinaryModulo: "%",
		ir.BinaryEqual: "==", ir.BinaryNotEqual: "!=",
		ir.BinaryLess: "<", ir.BinaryLessEqual: "<=",
		ir.BinaryGreater: ">", ir.BinaryGreaterEqual: ">=",
		ir.BinaryAnd: "&", ir.BinaryExclusiveOr: "^", ir.BinaryInclusiveOr: "|",
		ir.BinaryLogicalAnd: "&&", ir.BinaryLogicalOr: "||",
		ir.BinaryShiftLeft: "<<", ir.BinaryShiftRight: ">>",
	}
	op, ok := ops[b.Op]
	if !ok {
		return "", fmt.Errorf("wgsl: unsupported binary operator %v", b.Op)
	}
	return fmt.Sprintf("(%s %s %s)", left, op, right), nil
}

// writeSelect lowers the ternary select to WGSL's select(f, t, cond) builtin,
// which takes the false-case value first.
func (w *emitter) writeSelect(s ir.ExprSelect) (string, error) {
	condition, err := w.writeExpression(s.Condition)
	if err != nil {
		return "", err
	}
	accept, err := w.writeExpression(s.Accept)
	if err != nil {
		return "", err
	}
	reject, err := w.writeExpression(s.Reject)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("select(%s, %s, %s)", reject, accept, condition), nil
}

func (w *emitter) writeRelational(r ir.ExprRelational) (string, error) {
	arg, err := w.writeExpression(r.Argument)
	if err != nil {
		return "", err
	}
	switch r.Fun {
	case ir.RelationalAll:
		return fmt.Sprintf("all(%s)", arg), nil
	case ir.RelationalAny:
		return fmt.Sprintf("any(%s)", arg), nil
	case ir.RelationalIsNan:
		return fmt.Sprintf("(%s != %s)", arg, arg), nil
	case ir.RelationalIsInf:
		// WGSL has no isInf builtin; approximate via magnitude comparison.
		return fmt.Sprintf("(abs(%s) > 3.402823e+38)", arg), nil
	default:
		return "", fmt.Errorf("wgsl: unsupported relational function %v", r.Fun)
	}
}

func (w *emitter) writeAs(a ir.ExprAs) (string, error) {
	expr, err := w.writeExpression(a.Expr)
	if err != nil {
		return "", err
	}
	target := scalarToWGSL(ir.ScalarType{Kind: a.Kind, Width: 4})
	if a.Convert == nil {
		return fmt.Sprintf("bitcast<%s>(%s)", target, expr), nil
	}
	return fmt.Sprintf("%s(%s)", target, expr), nil
}

func (w *emitter) writeDerivative(d ir.ExprDerivative) (string, error) {
	expr, err := w.writeExpression(d.Expr)
	if err != nil {
		return "", err
	}
	var base string
	switch d.Axis {
	case ir.DerivativeX:
		base = "dpdx"
	case ir.DerivativeY:
		base = "dpdy"
	case ir.DerivativeWidth:
		base = "fwidth"
	default:
		return "", fmt.Errorf("wgsl: unsupported derivative axis %v", d.Axis)
	}
	switch d.Control {
	case ir.DerivativeCoarse:
		base += "Coarse"
	case ir.DerivativeFine:
		base += "Fine"
	}
	return fmt.Sprintf("%s(%s)", base, expr), nil
}
