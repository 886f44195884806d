package spirv

import (
	"encoding/binary"
	"fmt"
)

// rawInstruction is a decoded but not yet semantically interpreted SPIR-V
// instruction: the opcode plus every operand word, with the result type and
// result ID (if any) split out for convenience.
type rawInstruction struct {
	Opcode     OpCode
	ResultType uint32 // 0 if this opcode has no result type
	Result     uint32 // 0 if this opcode has no result id
	Operands   []uint32
}

type rawDecoration struct {
	Kind   Decoration
	Params []uint32
}

type rawEntryPoint struct {
	Model      ExecutionModel
	Function   uint32
	Name       string
	Interfaces []uint32
}

type rawExecutionMode struct {
	Target uint32
	Mode   ExecutionMode
	Params []uint32
}

// rawFunction collects every instruction belonging to one OpFunction..
// OpFunctionEnd range, split into label-delimited blocks.
type rawFunction struct {
	Result     uint32
	ResultType uint32
	Control    FunctionControl
	FuncType   uint32
	Params     []rawInstruction // OpFunctionParameter instructions, in order
	Blocks     []rawBlock
}

type rawBlock struct {
	Label        uint32
	Instructions []rawInstruction
}

// module is the result of Phase A: a raw, per-id indexed parse of a SPIR-V
// binary with no semantic interpretation applied yet. convertModule (Phase
// B, in convert.go) turns this into an *ir.Module.
type module struct {
	Version     Version
	Generator   uint32
	Bound       uint32
	Schema      uint32
	Capabilities []Capability
	ExtInstSets []uint32 // result ids produced by OpExtInstImport

	Addressing AddressingModel
	Memory     MemoryModel

	EntryPoints     []rawEntryPoint
	ExecutionModes  []rawExecutionMode
	Names           map[uint32]string
	MemberNames     map[uint32]map[uint32]string
	Decorations     map[uint32][]rawDecoration
	MemberDecorations map[uint32]map[uint32][]rawDecoration

	// Types and constants, keyed by result id, in declaration order so
	// that forward references (which SPIR-V disallows, but we tolerate)
	// never need to be guessed at.
	TypeOrder []uint32
	Types     map[uint32]rawInstruction
	ConstOrder []uint32
	Constants map[uint32]rawInstruction

	GlobalOrder []uint32
	Globals     map[uint32]rawInstruction

	Functions []rawFunction
}

// parseModule runs Phase A: it walks the SPIR-V word stream once and
// buckets every instruction into the side tables above, performing no
// semantic translation. It rejects a stream that fails the structural
// sanity checks (bad magic, truncated word count, id out of the declared
// bound) but otherwise tolerates and skips opcodes it does not recognize,
// per the deserializer's best-effort parsing policy.
func parseModule(data []byte) (*module, error) {
	if len(data)%4 != 0 || len(data) < 20 {
		return nil, fmt.Errorf("spirv: truncated binary (%d bytes)", len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}

	if words[0] != MagicNumber {
		return nil, fmt.Errorf("spirv: bad magic number %#x", words[0])
	}
	versionWord := words[1]
	version := Version{
		Major: uint8((versionWord >> 16) & 0xff),
		Minor: uint8((versionWord >> 8) & 0xff),
	}
	generator := words[2]
	bound := words[3]
	schema := words[4]

	m := &module{
		Version:           version,
		Generator:         generator,
		Bound:             bound,
		Schema:            schema,
		Names:             map[uint32]string{},
		MemberNames:       map[uint32]map[uint32]string{},
		Decorations:       map[uint32][]rawDecoration{},
		MemberDecorations: map[uint32]map[uint32][]rawDecoration{},
		Types:             map[uint32]rawInstruction{},
		Constants:         map[uint32]rawInstruction{},
		Globals:           map[uint32]rawInstruction{},
	}

	idx := 5
	var curFn *rawFunction
	var curBlock *rawBlock

	flushBlock := func() {
		if curFn != nil && curBlock != nil {
			curFn.Blocks = append(curFn.Blocks, *curBlock)
			curBlock = nil
		}
	}
	flushFn := func() {
		flushBlock()
		if curFn != nil {
			m.Functions = append(m.Functions, *curFn)
			curFn = nil
		}
	}

	for idx < len(words) {
		head := words[idx]
		wordCount := int(head >> 16)
		opcode := OpCode(head & 0xffff)
		if wordCount == 0 || idx+wordCount > len(words) {
			return nil, fmt.Errorf("spirv: malformed instruction at word %d (opcode %d, count %d)", idx, opcode, wordCount)
		}
		operands := words[idx+1 : idx+wordCount]
		idx += wordCount

		inst := decodeInstruction(opcode, operands)

		switch opcode {
		case OpCapability:
			m.Capabilities = append(m.Capabilities, Capability(operands[0]))
		case OpExtInstImport:
			m.ExtInstSets = append(m.ExtInstSets, inst.Result)
		case OpMemoryModel:
			m.Addressing = AddressingModel(operands[0])
			m.Memory = MemoryModel(operands[1])
		case OpEntryPoint:
			ep, err := decodeEntryPoint(operands)
			if err != nil {
				return nil, err
			}
			m.EntryPoints = append(m.EntryPoints, ep)
		case OpExecutionMode:
			m.ExecutionModes = append(m.ExecutionModes, rawExecutionMode{
				Target: operands[0],
				Mode:   ExecutionMode(operands[1]),
				Params: append([]uint32{}, operands[2:]...),
			})
		case OpName:
			name, _ := decodeString(operands[1:])
			m.Names[operands[0]] = name
		case OpMemberName:
			name, _ := decodeString(operands[2:])
			if m.MemberNames[operands[0]] == nil {
				m.MemberNames[operands[0]] = map[uint32]string{}
			}
			m.MemberNames[operands[0]][operands[1]] = name
		case OpDecorate:
			m.Decorations[operands[0]] = append(m.Decorations[operands[0]], rawDecoration{
				Kind:   Decoration(operands[1]),
				Params: append([]uint32{}, operands[2:]...),
			})
		case OpMemberDecorate:
			if m.MemberDecorations[operands[0]] == nil {
				m.MemberDecorations[operands[0]] = map[uint32][]rawDecoration{}
			}
			m.MemberDecorations[operands[0]][operands[1]] = append(m.MemberDecorations[operands[0]][operands[1]], rawDecoration{
				Kind:   Decoration(operands[2]),
				Params: append([]uint32{}, operands[3:]...),
			})

		case OpTypeVoid, OpTypeBool, OpTypeInt, OpTypeFloat, OpTypeVector, OpTypeMatrix,
			OpTypeArray, OpTypeRuntimeArray, OpTypeStruct, OpTypePointer, OpTypeFunction:
			m.TypeOrder = append(m.TypeOrder, inst.Result)
			m.Types[inst.Result] = inst

		case OpConstant, OpConstantComposite, OpConstantNull, OpConstantTrue, OpConstantFalse:
			m.ConstOrder = append(m.ConstOrder, inst.Result)
			m.Constants[inst.Result] = inst

		case OpVariable:
			if curFn == nil {
				m.GlobalOrder = append(m.GlobalOrder, inst.Result)
				m.Globals[inst.Result] = inst
			} else {
				// Function-local variable: first instruction of the entry
				// block, carried as a normal block instruction.
				if curBlock != nil {
					curBlock.Instructions = append(curBlock.Instructions, inst)
				}
			}

		case OpFunction:
			flushFn()
			curFn = &rawFunction{
				Result:     inst.Result,
				ResultType: inst.ResultType,
				Control:    FunctionControl(inst.Operands[0]),
				FuncType:   inst.Operands[1],
			}
		case OpFunctionParameter:
			if curFn != nil {
				curFn.Params = append(curFn.Params, inst)
			}
		case OpFunctionEnd:
			flushFn()
		case OpLabel:
			flushBlock()
			curBlock = &rawBlock{Label: inst.Result}
		default:
			if curFn != nil {
				if curBlock == nil {
					curBlock = &rawBlock{}
				}
				curBlock.Instructions = append(curBlock.Instructions, inst)
			}
			// Outside a function and not a recognized module-level
			// instruction (OpSource, OpString, OpExtension, ...): skipped.
		}
	}
	flushFn()

	return m, nil
}

// decodeInstruction splits the generic "has result type and/or id" operand
// convention used by most value-producing opcodes. Opcodes that never
// produce a value (control flow, decorations, stores) are left with
// ResultType/Result as zero and their full operand list intact; callers
// that need specific operand layouts re-slice raw operands themselves.
func decodeInstruction(opcode OpCode, operands []uint32) rawInstruction {
	inst := rawInstruction{Opcode: opcode}
	if hasResult, hasType := resultShape(opcode); hasResult {
		if hasType && len(operands) >= 2 {
			inst.ResultType = operands[0]
			inst.Result = operands[1]
			inst.Operands = append([]uint32{}, operands[2:]...)
			return inst
		}
		if !hasType && len(operands) >= 1 {
			inst.Result = operands[0]
			inst.Operands = append([]uint32{}, operands[1:]...)
			return inst
		}
	}
	inst.Operands = append([]uint32{}, operands...)
	return inst
}

// resultShape reports whether opcode produces a result id, and if so
// whether that result also carries a leading result-type id operand. This
// mirrors the layout declared by the SPIR-V machine-readable grammar for
// the subset of opcodes this deserializer understands.
func resultShape(opcode OpCode) (hasResult, hasType bool) {
	switch opcode {
	case OpExtInstImport, OpLabel, OpFunctionEnd:
		return true, false
	case OpTypeVoid, OpTypeBool:
		return true, false
	case OpTypeInt, OpTypeFloat, OpTypeVector, OpTypeMatrix, OpTypeArray,
		OpTypeRuntimeArray, OpTypeStruct, OpTypePointer, OpTypeFunction:
		return true, false
	case OpConstant, OpConstantComposite, OpConstantNull, OpConstantTrue, OpConstantFalse,
		OpVariable, OpFunction, OpFunctionParameter,
		OpLoad, OpAccessChain, OpVectorExtractDynamic, OpVectorShuffle,
		OpCompositeConstruct, OpCompositeExtract,
		OpFNegate, OpSNegate, OpLogicalNot, OpNot,
		OpFAdd, OpFSub, OpFMul, OpFDiv, OpFMod,
		OpIAdd, OpISub, OpIMul, OpSDiv, OpUDiv, OpSMod, OpUMod,
		OpFOrdEqual, OpFOrdNotEqual, OpFOrdLessThan, OpFOrdGreaterThan,
		OpFOrdLessThanEqual, OpFOrdGreaterThanEqual,
		OpIEqual, OpINotEqual, OpSLessThan, OpSLessThanEqual,
		OpSGreaterThan, OpSGreaterThanEqual, OpULessThan, OpULessThanEqual,
		OpUGreaterThan, OpUGreaterThanEqual,
		OpLogicalEqual, OpLogicalNotEqual, OpLogicalOr, OpLogicalAnd, OpSelect,
		OpShiftRightLogical, OpShiftRightArithmetic, OpShiftLeftLogical,
		OpBitwiseOr, OpBitwiseXor, OpBitwiseAnd,
		OpDPdx, OpDPdy, OpFwidth, OpDPdxFine, OpDPdyFine, OpFwidthFine,
		OpDPdxCoarse, OpDPdyCoarse, OpFwidthCoarse,
		OpConvertFToU, OpConvertFToS, OpConvertSToF, OpConvertUToF, OpBitcast,
		OpExtInst,
		OpAtomicLoad, OpAtomicExchange, OpAtomicCompareExch,
		OpAtomicIIncrement, OpAtomicIDecrement, OpAtomicIAdd, OpAtomicISub,
		OpAtomicSMin, OpAtomicUMin, OpAtomicSMax, OpAtomicUMax,
		OpAtomicAnd, OpAtomicOr, OpAtomicXor:
		return true, true
	default:
		return false, false
	}
}

// decodeEntryPoint parses OpEntryPoint's operands: execution model, function
// id, a null-terminated name string of variable word length, then the
// trailing interface id list.
func decodeEntryPoint(operands []uint32) (rawEntryPoint, error) {
	if len(operands) < 2 {
		return rawEntryPoint{}, fmt.Errorf("spirv: truncated OpEntryPoint")
	}
	model := ExecutionModel(operands[0])
	fn := operands[1]
	name, consumed := decodeString(operands[2:])
	rest := operands[2+consumed:]
	return rawEntryPoint{
		Model:      model,
		Function:   fn,
		Name:       name,
		Interfaces: append([]uint32{}, rest...),
	}, nil
}

// decodeString decodes a null-terminated UTF-8 string packed little-endian
// across words, returning the string and how many words it consumed.
func decodeString(words []uint32) (string, int) {
	var buf []byte
	for i, w := range words {
		b := [4]byte{byte(w), byte(w >> 8), byte(w >> 16), byte(w >> 24)}
		terminated := false
		for _, c := range b {
			if c == 0 {
				terminated = true
				break
			}
			buf = append(buf, c)
		}
		if terminated {
			return string(buf), i + 1
		}
	}
	return string(buf), len(words)
}
