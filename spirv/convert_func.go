package spirv

import (
	"go.uber.org/zap"

	"github.com/shaderlab/sir/ir"
)

// functionBuilder accumulates one function's worth of converted
// expressions and local variables while convertBlock/convertRegion walk
// its basic blocks.
type functionBuilder struct {
	c *converter

	blocks     []rawBlock
	labelIndex map[uint32]int

	valueExprs  map[uint32]ir.ExpressionHandle
	localVarIDs map[uint32]uint32 // SPIR-V id -> index into locals

	expressions     []ir.Expression
	expressionTypes []ir.TypeResolution
	locals          []ir.LocalVariable
}

func (c *converter) convertFunction(fn rawFunction) (ir.Function, error) {
	var result *ir.FunctionResult
	if resultInst, ok := c.raw.Types[fn.ResultType]; !ok || resultInst.Opcode != OpTypeVoid {
		typeHandle, err := c.convertType(fn.ResultType, 0)
		if err != nil {
			return ir.Function{}, err
		}
		result = &ir.FunctionResult{Type: typeHandle}
	}

	fb := &functionBuilder{
		c:           c,
		valueExprs:  map[uint32]ir.ExpressionHandle{},
		localVarIDs: map[uint32]uint32{},
		blocks:      fn.Blocks,
		labelIndex:  map[uint32]int{},
	}
	for i, b := range fn.Blocks {
		fb.labelIndex[b.Label] = i
	}

	args := make([]ir.FunctionArgument, 0, len(fn.Params))
	for i, p := range fn.Params {
		typeHandle, err := c.convertType(p.ResultType, 0)
		if err != nil {
			return ir.Function{}, err
		}
		args = append(args, ir.FunctionArgument{Name: c.raw.Names[p.Result], Type: typeHandle})
		fb.valueExprs[p.Result] = fb.emit(ir.ExprFunctionArgument{Index: uint32(i)})
	}

	body, _, err := fb.convertRegion(0, noStopLabel)
	if err != nil {
		return ir.Function{}, err
	}

	return ir.Function{
		Name:            c.raw.Names[fn.Result],
		Arguments:       args,
		Result:          result,
		LocalVars:       fb.locals,
		Expressions:     fb.expressions,
		ExpressionTypes: fb.expressionTypes,
		Body:            body,
	}, nil
}

// noStopLabel is used as the stop label for a region that should run to
// the end of the function's block list; zero is never a valid label
// because SPIR-V ids start at 1.
const noStopLabel = 0

// convertRegion converts consecutive blocks starting at startIdx into a
// flat ir.Block, recursing into convertBlock for each one, until either
// stopLabel is encountered (the merge point of some enclosing construct)
// or the block list is exhausted.
func (fb *functionBuilder) convertRegion(startIdx int, stopLabel uint32) (ir.Block, int, error) {
	var stmts ir.Block
	idx := startIdx
	for idx < len(fb.blocks) {
		block := fb.blocks[idx]
		if stopLabel != noStopLabel && block.Label == stopLabel {
			return stmts, idx, nil
		}
		idx++
		blockStmts, nextIdx, terminal, err := fb.convertBlock(block, stopLabel)
		if err != nil {
			return nil, 0, err
		}
		stmts = append(stmts, blockStmts...)
		if terminal {
			return stmts, nextIdx, nil
		}
		idx = nextIdx
	}
	return stmts, idx, nil
}

// convertBlock converts a single basic block's instructions, recursing
// into nested convertRegion calls for any structured selection or loop it
// heads. enclosingStop is the stop label of the surrounding region, used
// to recognize a loop's break-if tail (a conditional branch with no
// selection merge where one arm targets the enclosing merge directly).
func (fb *functionBuilder) convertBlock(block rawBlock, enclosingStop uint32) (stmts ir.Block, nextIdx int, terminal bool, err error) {
	if len(block.Instructions) == 0 {
		return nil, 0, true, nil
	}
	terminator := block.Instructions[len(block.Instructions)-1]
	body := block.Instructions[:len(block.Instructions)-1]

	var mergeInst *rawInstruction
	if n := len(body); n > 0 && (body[n-1].Opcode == OpSelectionMerge || body[n-1].Opcode == OpLoopMerge) {
		m := body[n-1]
		mergeInst = &m
		body = body[:n-1]
	}

	pendingStart := ir.ExpressionHandle(len(fb.expressions))
	flush := func() {
		if uint32(pendingStart) < uint32(len(fb.expressions)) {
			stmts = append(stmts, ir.Statement{Kind: ir.StmtEmit{
				Range: ir.Range{Start: pendingStart, End: ir.ExpressionHandle(len(fb.expressions))},
			}})
			pendingStart = ir.ExpressionHandle(len(fb.expressions))
		}
	}

	for _, inst := range body {
		stmt, isStmt, convErr := fb.convertInstruction(inst)
		if convErr != nil {
			fb.c.logSkip("instruction inside a block body", zap.Uint16("opcode", uint16(inst.Opcode)), zap.Error(convErr))
			continue
		}
		if isStmt {
			flush()
			stmts = append(stmts, stmt)
		}
	}

	switch terminator.Opcode {
	case OpReturn:
		flush()
		stmts = append(stmts, ir.Statement{Kind: ir.StmtReturn{}})
		return stmts, 0, true, nil

	case OpReturnValue:
		v := fb.getExprForID(terminator.Operands[0])
		flush()
		stmts = append(stmts, ir.Statement{Kind: ir.StmtReturn{Value: &v}})
		return stmts, 0, true, nil

	case OpKill:
		flush()
		stmts = append(stmts, ir.Statement{Kind: ir.StmtKill{}})
		return stmts, 0, true, nil

	case OpUnreachable:
		flush()
		return stmts, 0, true, nil

	case OpBranch:
		target := terminator.Operands[0]
		flush()
		if mergeInst != nil && mergeInst.Opcode == OpLoopMerge {
			mergeLabel := mergeInst.Operands[0]
			continueLabel := mergeInst.Operands[1]
			bodyIdx, ok1 := fb.labelIndex[target]
			contIdx, ok2 := fb.labelIndex[continueLabel]
			if !ok1 || !ok2 {
				return stmts, 0, true, nil
			}
			loopBody, _, lerr := fb.convertRegion(bodyIdx, continueLabel)
			if lerr != nil {
				return nil, 0, false, lerr
			}
			continuing, _, cerr := fb.convertRegion(contIdx, block.Label)
			if cerr != nil {
				return nil, 0, false, cerr
			}
			stmts = append(stmts, ir.Statement{Kind: ir.StmtLoop{Body: loopBody, Continuing: continuing}})
			mergeIdx, ok := fb.labelIndex[mergeLabel]
			if !ok {
				return stmts, 0, true, nil
			}
			return stmts, mergeIdx, false, nil
		}
		nextIdx, ok := fb.labelIndex[target]
		if !ok {
			return stmts, 0, true, nil
		}
		return stmts, nextIdx, false, nil

	case OpBranchConditional:
		cond := fb.getExprForID(terminator.Operands[0])
		trueTarget := terminator.Operands[1]
		falseTarget := terminator.Operands[2]
		flush()

		if mergeInst != nil && mergeInst.Opcode == OpSelectionMerge {
			mergeLabel := mergeInst.Operands[0]
			acceptIdx, ok := fb.labelIndex[trueTarget]
			if !ok {
				return stmts, 0, true, nil
			}
			accept, _, aerr := fb.convertRegion(acceptIdx, mergeLabel)
			if aerr != nil {
				return nil, 0, false, aerr
			}
			var reject ir.Block
			if falseTarget != mergeLabel {
				if rejectIdx, ok := fb.labelIndex[falseTarget]; ok {
					reject, _, aerr = fb.convertRegion(rejectIdx, mergeLabel)
					if aerr != nil {
						return nil, 0, false, aerr
					}
				}
			}
			stmts = append(stmts, ir.Statement{Kind: ir.StmtIf{Condition: cond, Accept: accept, Reject: reject}})
			mergeIdx, ok := fb.labelIndex[mergeLabel]
			if !ok {
				return stmts, 0, true, nil
			}
			return stmts, mergeIdx, false, nil
		}

		// No selection merge: the canonical shape for a loop's break-if
		// tail, where one arm branches straight to the enclosing region's
		// merge block.
		if trueTarget == enclosingStop {
			stmts = append(stmts, ir.Statement{Kind: ir.StmtIf{
				Condition: cond,
				Accept:    ir.Block{{Kind: ir.StmtBreak{}}},
			}})
			nextIdx, ok := fb.labelIndex[falseTarget]
			if !ok {
				return stmts, 0, true, nil
			}
			return stmts, nextIdx, false, nil
		}
		if falseTarget == enclosingStop {
			notCond := fb.emit(ir.ExprUnary{Op: ir.UnaryLogicalNot, Expr: cond})
			stmts = append(stmts, ir.Statement{Kind: ir.StmtIf{
				Condition: notCond,
				Accept:    ir.Block{{Kind: ir.StmtBreak{}}},
			}})
			nextIdx, ok := fb.labelIndex[trueTarget]
			if !ok {
				return stmts, 0, true, nil
			}
			return stmts, nextIdx, false, nil
		}
		// Irreducible shape: not produced by this package's own backend.
		// Documented limitation of the control-flow recovery.
		return stmts, 0, true, nil

	case OpSwitch:
		flush()
		if mergeInst == nil {
			return stmts, 0, true, nil
		}
		mergeLabel := mergeInst.Operands[0]
		selector := fb.getExprForID(terminator.Operands[0])
		defaultLabel := terminator.Operands[1]
		var cases []ir.SwitchCase
		pairs := terminator.Operands[2:]
		for i := 0; i+1 < len(pairs); i += 2 {
			literal := pairs[i]
			target := pairs[i+1]
			idx, ok := fb.labelIndex[target]
			if !ok {
				continue
			}
			caseBody, _, berr := fb.convertRegion(idx, mergeLabel)
			if berr != nil {
				return nil, 0, false, berr
			}
			cases = append(cases, ir.SwitchCase{Value: ir.SwitchValueU32(literal), Body: caseBody})
		}
		if idx, ok := fb.labelIndex[defaultLabel]; ok {
			defBody, _, derr := fb.convertRegion(idx, mergeLabel)
			if derr != nil {
				return nil, 0, false, derr
			}
			cases = append(cases, ir.SwitchCase{Value: ir.SwitchValueDefault{}, Body: defBody})
		}
		stmts = append(stmts, ir.Statement{Kind: ir.StmtSwitch{Selector: selector, Cases: cases}})
		mergeIdx, ok := fb.labelIndex[mergeLabel]
		if !ok {
			return stmts, 0, true, nil
		}
		return stmts, mergeIdx, false, nil

	default:
		flush()
		return stmts, 0, true, nil
	}
}

func (fb *functionBuilder) emit(kind ir.ExpressionKind) ir.ExpressionHandle {
	h := ir.ExpressionHandle(len(fb.expressions))
	fb.expressions = append(fb.expressions, ir.Expression{Kind: kind})
	fb.expressionTypes = append(fb.expressionTypes, ir.TypeResolution{})
	return h
}

func (fb *functionBuilder) registerExpr(id uint32, kind ir.ExpressionKind) ir.ExpressionHandle {
	h := fb.emit(kind)
	fb.valueExprs[id] = h
	return h
}

// getExprForID resolves a SPIR-V value id to an expression handle in the
// function under construction, lazily materializing references to
// function-local variables, global variables, and module constants the
// first time they're used.
func (fb *functionBuilder) getExprForID(id uint32) ir.ExpressionHandle {
	if h, ok := fb.valueExprs[id]; ok {
		return h
	}
	if idx, ok := fb.localVarIDs[id]; ok {
		return fb.registerExpr(id, ir.ExprLocalVariable{Variable: idx})
	}
	if gh, ok := fb.c.globalCache[id]; ok {
		return fb.registerExpr(id, ir.ExprGlobalVariable{Variable: gh})
	}
	if ch, ok := fb.c.constCache[id]; ok {
		return fb.registerExpr(id, ir.ExprConstant{Constant: ch})
	}
	// Operand of an instruction this deserializer chose not to decode:
	// synthesize a placeholder so the rest of the graph stays well-formed.
	return fb.registerExpr(id, ir.ExprZeroValue{Type: 0})
}

// convertInstruction converts one non-terminator, non-merge instruction.
// It returns either a statement (isStmt true) or registers a value
// expression in fb.valueExprs and returns isStmt false. Opcodes outside
// the subset this deserializer understands return an error, which the
// caller treats as "skip this instruction" per the tolerance policy.
func (fb *functionBuilder) convertInstruction(inst rawInstruction) (ir.Statement, bool, error) {
	switch inst.Opcode {
	case OpVariable:
		pointeeTypeID, ok := fb.c.pointeeOfPointer[inst.ResultType]
		if !ok {
			return ir.Statement{}, false, ir.NewError(ir.ErrInvalidStructure, "local variable %d has non-pointer type", inst.Result)
		}
		typeHandle, err := fb.c.convertType(pointeeTypeID, 0)
		if err != nil {
			return ir.Statement{}, false, err
		}
		idx := uint32(len(fb.locals))
		fb.locals = append(fb.locals, ir.LocalVariable{Name: fb.c.raw.Names[inst.Result], Type: typeHandle})
		fb.localVarIDs[inst.Result] = idx
		return ir.Statement{}, false, nil

	case OpStore:
		ptr := fb.getExprForID(inst.Operands[0])
		val := fb.getExprForID(inst.Operands[1])
		return ir.Statement{Kind: ir.StmtStore{Pointer: ptr, Value: val}}, true, nil

	case OpLoad:
		ptr := fb.getExprForID(inst.Operands[0])
		fb.registerExpr(inst.Result, ir.ExprLoad{Pointer: ptr})
		return ir.Statement{}, false, nil

	case OpAccessChain:
		cur := fb.getExprForID(inst.Operands[0])
		for _, indexID := range inst.Operands[1:] {
			idxExpr := fb.getExprForID(indexID)
			cur = fb.emit(ir.ExprAccess{Base: cur, Index: idxExpr})
		}
		fb.valueExprs[inst.Result] = cur
		return ir.Statement{}, false, nil

	case OpCompositeExtract:
		cur := fb.getExprForID(inst.Operands[0])
		for _, index := range inst.Operands[1:] {
			cur = fb.emit(ir.ExprAccessIndex{Base: cur, Index: index})
		}
		fb.valueExprs[inst.Result] = cur
		return ir.Statement{}, false, nil

	case OpCompositeConstruct:
		typeHandle, err := fb.c.convertType(inst.ResultType, 0)
		if err != nil {
			return ir.Statement{}, false, err
		}
		components := make([]ir.ExpressionHandle, 0, len(inst.Operands))
		for _, id := range inst.Operands {
			components = append(components, fb.getExprForID(id))
		}
		fb.registerExpr(inst.Result, ir.ExprCompose{Type: typeHandle, Components: components})
		return ir.Statement{}, false, nil

	case OpVectorShuffle:
		vector := fb.getExprForID(inst.Operands[0])
		var pattern [4]ir.SwizzleComponent
		size := ir.VectorSize(0)
		for i, c := range inst.Operands[2:] {
			if i >= 4 {
				break
			}
			pattern[i] = ir.SwizzleComponent(c)
			size++
		}
		if size < 2 {
			size = 2
		}
		fb.registerExpr(inst.Result, ir.ExprSwizzle{Size: size, Vector: vector, Pattern: pattern})
		return ir.Statement{}, false, nil

	case OpSelect:
		cond := fb.getExprForID(inst.Operands[0])
		accept := fb.getExprForID(inst.Operands[1])
		reject := fb.getExprForID(inst.Operands[2])
		fb.registerExpr(inst.Result, ir.ExprSelect{Condition: cond, Accept: accept, Reject: reject})
		return ir.Statement{}, false, nil

	case OpFNegate, OpSNegate, OpLogicalNot, OpNot:
		op := ir.UnaryNegate
		switch inst.Opcode {
		case OpLogicalNot:
			op = ir.UnaryLogicalNot
		case OpNot:
			op = ir.UnaryBitwiseNot
		}
		expr := fb.getExprForID(inst.Operands[0])
		fb.registerExpr(inst.Result, ir.ExprUnary{Op: op, Expr: expr})
		return ir.Statement{}, false, nil

	case OpDPdx, OpDPdxFine, OpDPdxCoarse, OpDPdy, OpDPdyFine, OpDPdyCoarse, OpFwidth, OpFwidthFine, OpFwidthCoarse:
		axis, control := derivativeShape(inst.Opcode)
		expr := fb.getExprForID(inst.Operands[0])
		fb.registerExpr(inst.Result, ir.ExprDerivative{Axis: axis, Control: control, Expr: expr})
		return ir.Statement{}, false, nil

	case OpConvertFToU, OpConvertFToS, OpConvertSToF, OpConvertUToF, OpBitcast:
		typeHandle, err := fb.c.convertType(inst.ResultType, 0)
		if err != nil {
			return ir.Statement{}, false, err
		}
		scalar, ok := fb.c.module.Types[typeHandle].Inner.(ir.ScalarType)
		if !ok {
			return ir.Statement{}, false, ir.NewError(ir.ErrUnsupportedFeature, "conversion to non-scalar type")
		}
		expr := fb.getExprForID(inst.Operands[0])
		width := scalar.Width
		fb.registerExpr(inst.Result, ir.ExprAs{Expr: expr, Kind: scalar.Kind, Convert: &width})
		return ir.Statement{}, false, nil

	default:
		if op, ok := binaryOpFromOpcode(inst.Opcode); ok {
			left := fb.getExprForID(inst.Operands[0])
			right := fb.getExprForID(inst.Operands[1])
			fb.registerExpr(inst.Result, ir.ExprBinary{Op: op, Left: left, Right: right})
			return ir.Statement{}, false, nil
		}
		return ir.Statement{}, false, ir.NewError(ir.ErrUnsupportedFeature, "unsupported opcode %d", inst.Opcode)
	}
}

func derivativeShape(opcode OpCode) (ir.DerivativeAxis, ir.DerivativeControl) {
	switch opcode {
	case OpDPdx:
		return ir.DerivativeX, ir.DerivativeNone
	case OpDPdxFine:
		return ir.DerivativeX, ir.DerivativeFine
	case OpDPdxCoarse:
		return ir.DerivativeX, ir.DerivativeCoarse
	case OpDPdy:
		return ir.DerivativeY, ir.DerivativeNone
	case OpDPdyFine:
		return ir.DerivativeY, ir.DerivativeFine
	case OpDPdyCoarse:
		return ir.DerivativeY, ir.DerivativeCoarse
	case OpFwidthFine:
		return ir.DerivativeWidth, ir.DerivativeFine
	case OpFwidthCoarse:
		return ir.DerivativeWidth, ir.DerivativeCoarse
	default:
		return ir.DerivativeWidth, ir.DerivativeNone
	}
}

func binaryOpFromOpcode(opcode OpCode) (ir.BinaryOperator, bool) {
	switch opcode {
	case OpFAdd, OpIAdd:
		return ir.BinaryAdd, true
	case OpFSub, OpISub:
		return ir.BinarySubtract, true
	case OpFMul, OpIMul:
		return ir.BinaryMultiply, true
	case OpFDiv, OpSDiv, OpUDiv:
		return ir.BinaryDivide, true
	case OpFMod, OpSMod, OpUMod:
		return ir.BinaryModulo, true
	case OpFOrdEqual, OpIEqual, OpLogicalEqual:
		return ir.BinaryEqual, true
	case OpFOrdNotEqual, OpINotEqual, OpLogicalNotEqual:
		return ir.BinaryNotEqual, true
	case OpFOrdLessThan, OpSLessThan, OpULessThan:
		return ir.BinaryLess, true
	case OpFOrdLessThanEqual, OpSLessThanEqual, OpULessThanEqual:
		return ir.BinaryLessEqual, true
	case OpFOrdGreaterThan, OpSGreaterThan, OpUGreaterThan:
		return ir.BinaryGreater, true
	case OpFOrdGreaterThanEqual, OpSGreaterThanEqual, OpUGreaterThanEqual:
		return ir.BinaryGreaterEqual, true
	case OpBitwiseAnd:
		return ir.BinaryAnd, true
	case OpBitwiseXor:
		return ir.BinaryExclusiveOr, true
	case OpBitwiseOr:
		return ir.BinaryInclusiveOr, true
	case OpLogicalAnd:
		return ir.BinaryLogicalAnd, true
	case OpLogicalOr:
		return ir.BinaryLogicalOr, true
	case OpShiftLeftLogical:
		return ir.BinaryShiftLeft, true
	case OpShiftRightLogical, OpShiftRightArithmetic:
		return ir.BinaryShiftRight, true
	default:
		return 0, false
	}
}
