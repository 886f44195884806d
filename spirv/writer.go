package spirv

import (
	"encoding/binary"
	"math"
)

// Instruction is one assembled SPIR-V instruction: an opcode plus its
// operand words, not yet prefixed with the word-count/opcode header word
// that Encode adds.
type Instruction struct {
	Opcode OpCode
	Words  []uint32
}

// Encode renders the instruction to its final word sequence, including the
// leading (word-count<<16)|opcode header SPIR-V requires on every instruction.
func (i Instruction) Encode() []uint32 {
	out := make([]uint32, 0, len(i.Words)+1)
	out = append(out, (uint32(len(i.Words)+1)<<16)|uint32(i.Opcode))
	return append(out, i.Words...)
}

// InstructionBuilder accumulates operand words before they are sealed into
// an Instruction by Build.
type InstructionBuilder struct {
	words []uint32
}

// NewInstructionBuilder returns an empty builder.
func NewInstructionBuilder() *InstructionBuilder {
	return &InstructionBuilder{words: make([]uint32, 0, 8)}
}

// AddWord appends one raw operand word.
func (b *InstructionBuilder) AddWord(word uint32) {
	b.words = append(b.words, word)
}

// AddString appends a SPIR-V literal string: UTF-8 bytes, NUL-terminated,
// then zero-padded out to a whole number of words.
func (b *InstructionBuilder) AddString(s string) {
	raw := []byte(s)
	if len(raw) == 0 || raw[len(raw)-1] != 0 {
		raw = append(raw, 0)
	}
	for len(raw)%4 != 0 {
		raw = append(raw, 0)
	}
	for i := 0; i < len(raw); i += 4 {
		b.words = append(b.words, uint32(raw[i])|uint32(raw[i+1])<<8|uint32(raw[i+2])<<16|uint32(raw[i+3])<<24)
	}
}

// Build seals the accumulated words into an Instruction under opcode.
func (b *InstructionBuilder) Build(opcode OpCode) Instruction {
	return Instruction{Opcode: opcode, Words: b.words}
}

// ModuleBuilder assembles a SPIR-V module one instruction at a time,
// keeping every section in the order the SPIR-V binary layout requires, and
// hands out fresh result IDs as components are built.
type ModuleBuilder struct {
	version   Version
	generator uint32
	bound     uint32
	schema    uint32

	capabilities   []Instruction
	extensions     []Instruction
	extInstImports []Instruction
	memoryModel    *Instruction
	entryPoints    []Instruction
	executionModes []Instruction
	debugStrings   []Instruction
	debugNames     []Instruction
	annotations    []Instruction
	types          []Instruction
	globalVars     []Instruction
	functions      []Instruction

	nextID uint32
}

// NewModuleBuilder returns a builder for a module targeting version, with ID
// 1 reserved as the first allocatable result ID (0 is never a valid SPIR-V
// ID).
func NewModuleBuilder(version Version) *ModuleBuilder {
	return &ModuleBuilder{
		version:   version,
		generator: GeneratorID,
		nextID:    1,
	}
}

// AllocID hands out the next unused result ID.
func (b *ModuleBuilder) AllocID() uint32 {
	id := b.nextID
	b.nextID++
	return id
}

// emit builds one instruction from words and appends it to section. Every
// Add* method below is a thin wrapper over this, differing only in which
// section receives the instruction and what the words mean.
func emit(section *[]Instruction, opcode OpCode, words ...uint32) {
	ib := NewInstructionBuilder()
	for _, w := range words {
		ib.AddWord(w)
	}
	*section = append(*section, ib.Build(opcode))
}

// emitNamed is emit for the handful of opcodes that carry a trailing literal
// string operand (OpString, OpName, OpExtension, ...).
func emitNamed(section *[]Instruction, opcode OpCode, s string, words ...uint32) {
	ib := NewInstructionBuilder()
	for _, w := range words {
		ib.AddWord(w)
	}
	ib.AddString(s)
	*section = append(*section, ib.Build(opcode))
}

func (b *ModuleBuilder) AddCapability(capability Capability) {
	emit(&b.capabilities, OpCapability, uint32(capability))
}

func (b *ModuleBuilder) AddExtension(name string) {
	emitNamed(&b.extensions, OpExtension, name)
}

func (b *ModuleBuilder) AddExtInstImport(name string) uint32 {
	id := b.AllocID()
	emitNamed(&b.extInstImports, OpExtInstImport, name, id)
	return id
}

func (b *ModuleBuilder) SetMemoryModel(addressing AddressingModel, memory MemoryModel) {
	ib := NewInstructionBuilder()
	ib.AddWord(uint32(addressing))
	ib.AddWord(uint32(memory))
	inst := ib.Build(OpMemoryModel)
	b.memoryModel = &inst
}

// AddEntryPoint emits OpEntryPoint. Its name operand sits between funcID and
// the interface list, so it can't go through emitNamed (which always
// appends the string last).
func (b *ModuleBuilder) AddEntryPoint(execModel ExecutionModel, funcID uint32, name string, interfaces []uint32) {
	ib := NewInstructionBuilder()
	ib.AddWord(uint32(execModel))
	ib.AddWord(funcID)
	ib.AddString(name)
	for _, iface := range interfaces {
		ib.AddWord(iface)
	}
	b.entryPoints = append(b.entryPoints, ib.Build(OpEntryPoint))
}

func (b *ModuleBuilder) AddExecutionMode(entryPoint uint32, mode ExecutionMode, params ...uint32) {
	emit(&b.executionModes, OpExecutionMode, append([]uint32{entryPoint, uint32(mode)}, params...)...)
}

// AddString records a debug OpString and returns its result ID.
func (b *ModuleBuilder) AddString(text string) uint32 {
	id := b.AllocID()
	emitNamed(&b.debugStrings, OpString, text, id)
	return id
}

func (b *ModuleBuilder) AddName(id uint32, name string) {
	emitNamed(&b.debugNames, OpName, name, id)
}

func (b *ModuleBuilder) AddMemberName(structID, member uint32, name string) {
	emitNamed(&b.debugNames, OpMemberName, name, structID, member)
}

func (b *ModuleBuilder) AddDecorate(id uint32, decoration Decoration, params ...uint32) {
	emit(&b.annotations, OpDecorate, append([]uint32{id, uint32(decoration)}, params...)...)
}

func (b *ModuleBuilder) AddMemberDecorate(structID, member uint32, decoration Decoration, params ...uint32) {
	emit(&b.annotations, OpMemberDecorate, append([]uint32{structID, member, uint32(decoration)}, params...)...)
}

func (b *ModuleBuilder) AddTypeVoid() uint32 {
	id := b.AllocID()
	emit(&b.types, OpTypeVoid, id)
	return id
}

func (b *ModuleBuilder) AddTypeBool() uint32 {
	id := b.AllocID()
	emit(&b.types, OpTypeBool, id)
	return id
}

func (b *ModuleBuilder) AddTypeFloat(width uint32) uint32 {
	id := b.AllocID()
	emit(&b.types, OpTypeFloat, id, width)
	return id
}

func (b *ModuleBuilder) AddTypeInt(width uint32, signed bool) uint32 {
	id := b.AllocID()
	signedness := uint32(0)
	if signed {
		signedness = 1
	}
	emit(&b.types, OpTypeInt, id, width, signedness)
	return id
}

func (b *ModuleBuilder) AddTypeVector(componentType uint32, count uint32) uint32 {
	id := b.AllocID()
	emit(&b.types, OpTypeVector, id, componentType, count)
	return id
}

func (b *ModuleBuilder) AddTypeMatrix(columnType uint32, columnCount uint32) uint32 {
	id := b.AllocID()
	emit(&b.types, OpTypeMatrix, id, columnType, columnCount)
	return id
}

func (b *ModuleBuilder) AddTypeArray(elementType uint32, length uint32) uint32 {
	id := b.AllocID()
	emit(&b.types, OpTypeArray, id, elementType, length)
	return id
}

func (b *ModuleBuilder) AddTypePointer(storageClass StorageClass, baseType uint32) uint32 {
	id := b.AllocID()
	emit(&b.types, OpTypePointer, id, uint32(storageClass), baseType)
	return id
}

func (b *ModuleBuilder) AddTypeFunction(returnType uint32, paramTypes ...uint32) uint32 {
	id := b.AllocID()
	emit(&b.types, OpTypeFunction, append([]uint32{id, returnType}, paramTypes...)...)
	return id
}

func (b *ModuleBuilder) AddTypeStruct(memberTypes ...uint32) uint32 {
	id := b.AllocID()
	emit(&b.types, OpTypeStruct, append([]uint32{id}, memberTypes...)...)
	return id
}

func (b *ModuleBuilder) AddConstant(typeID uint32, values ...uint32) uint32 {
	id := b.AllocID()
	emit(&b.types, OpConstant, append([]uint32{typeID, id}, values...)...)
	return id
}

func (b *ModuleBuilder) AddConstantFloat32(typeID uint32, value float32) uint32 {
	return b.AddConstant(typeID, math.Float32bits(value))
}

func (b *ModuleBuilder) AddConstantFloat64(typeID uint32, value float64) uint32 {
	bits := math.Float64bits(value)
	return b.AddConstant(typeID, uint32(bits&0xFFFFFFFF), uint32(bits>>32))
}

func (b *ModuleBuilder) AddConstantComposite(typeID uint32, constituents ...uint32) uint32 {
	id := b.AllocID()
	emit(&b.types, OpConstantComposite, append([]uint32{typeID, id}, constituents...)...)
	return id
}

func (b *ModuleBuilder) AddVariable(pointerType uint32, storageClass StorageClass) uint32 {
	id := b.AllocID()
	emit(&b.globalVars, OpVariable, pointerType, id, uint32(storageClass))
	return id
}

func (b *ModuleBuilder) AddVariableWithInit(pointerType uint32, storageClass StorageClass, initID uint32) uint32 {
	id := b.AllocID()
	emit(&b.globalVars, OpVariable, pointerType, id, uint32(storageClass), initID)
	return id
}

func (b *ModuleBuilder) AddFunction(funcType uint32, returnType uint32, control FunctionControl) uint32 {
	id := b.AllocID()
	emit(&b.functions, OpFunction, returnType, id, uint32(control), funcType)
	return id
}

func (b *ModuleBuilder) AddFunctionParameter(typeID uint32) uint32 {
	id := b.AllocID()
	emit(&b.functions, OpFunctionParameter, typeID, id)
	return id
}

func (b *ModuleBuilder) AddLabel() uint32 {
	id := b.AllocID()
	emit(&b.functions, OpLabel, id)
	return id
}

func (b *ModuleBuilder) AddReturn() {
	emit(&b.functions, OpReturn)
}

func (b *ModuleBuilder) AddReturnValue(valueID uint32) {
	emit(&b.functions, OpReturnValue, valueID)
}

func (b *ModuleBuilder) AddFunctionEnd() {
	emit(&b.functions, OpFunctionEnd)
}

func (b *ModuleBuilder) AddBinaryOp(opcode OpCode, resultType uint32, left uint32, right uint32) uint32 {
	resultID := b.AllocID()
	emit(&b.functions, opcode, resultType, resultID, left, right)
	return resultID
}

func (b *ModuleBuilder) AddUnaryOp(opcode OpCode, resultType uint32, operand uint32) uint32 {
	resultID := b.AllocID()
	emit(&b.functions, opcode, resultType, resultID, operand)
	return resultID
}

func (b *ModuleBuilder) AddLoad(resultType uint32, pointer uint32) uint32 {
	resultID := b.AllocID()
	emit(&b.functions, OpLoad, resultType, resultID, pointer)
	return resultID
}

func (b *ModuleBuilder) AddStore(pointer uint32, value uint32) {
	emit(&b.functions, OpStore, pointer, value)
}

func (b *ModuleBuilder) AddAccessChain(resultType uint32, base uint32, indices ...uint32) uint32 {
	resultID := b.AllocID()
	emit(&b.functions, OpAccessChain, append([]uint32{resultType, resultID, base}, indices...)...)
	return resultID
}

func (b *ModuleBuilder) AddCompositeConstruct(resultType uint32, constituents ...uint32) uint32 {
	resultID := b.AllocID()
	emit(&b.functions, OpCompositeConstruct, append([]uint32{resultType, resultID}, constituents...)...)
	return resultID
}

// AddVectorShuffle emits OpVectorShuffle, the instruction a vector swizzle
// lowers to: components indexes into the concatenation of vec1's and vec2's
// elements.
func (b *ModuleBuilder) AddVectorShuffle(resultType uint32, vec1 uint32, vec2 uint32, components []uint32) uint32 {
	resultID := b.AllocID()
	emit(&b.functions, OpVectorShuffle, append([]uint32{resultType, resultID, vec1, vec2}, components...)...)
	return resultID
}

func (b *ModuleBuilder) AddSelect(resultType uint32, condition uint32, accept uint32, reject uint32) uint32 {
	resultID := b.AllocID()
	emit(&b.functions, OpSelect, resultType, resultID, condition, accept, reject)
	return resultID
}

func (b *ModuleBuilder) AddSelectionMerge(mergeLabel uint32, control SelectionControl) {
	emit(&b.functions, OpSelectionMerge, mergeLabel, uint32(control))
}

func (b *ModuleBuilder) AddLoopMerge(mergeLabel uint32, continueLabel uint32, control LoopControl) {
	emit(&b.functions, OpLoopMerge, mergeLabel, continueLabel, uint32(control))
}

func (b *ModuleBuilder) AddBranchConditional(condition uint32, trueLabel uint32, falseLabel uint32) {
	emit(&b.functions, OpBranchConditional, condition, trueLabel, falseLabel)
}

// AddKill emits OpKill, the fragment-shader discard instruction.
func (b *ModuleBuilder) AddKill() {
	emit(&b.functions, OpKill)
}

func (b *ModuleBuilder) AddExtInst(resultType uint32, extSet uint32, instruction uint32, operands ...uint32) uint32 {
	resultID := b.AllocID()
	emit(&b.functions, OpExtInst, append([]uint32{resultType, resultID, extSet, instruction}, operands...)...)
	return resultID
}

// sections lists every instruction section in the binary layout SPIR-V
// mandates: capabilities, extensions, ext-inst imports, memory model, entry
// points, execution modes, debug info, annotations, types/constants/global
// variables, then function bodies.
func (b *ModuleBuilder) sections() [][]Instruction {
	memoryModel := []Instruction(nil)
	if b.memoryModel != nil {
		memoryModel = []Instruction{*b.memoryModel}
	}
	return [][]Instruction{
		b.capabilities, b.extensions, b.extInstImports, memoryModel,
		b.entryPoints, b.executionModes, b.debugStrings, b.debugNames,
		b.annotations, b.types, b.globalVars, b.functions,
	}
}

// Build assembles the accumulated sections into a SPIR-V binary module.
func (b *ModuleBuilder) Build() []byte {
	b.bound = b.nextID

	const headerWords = 5
	totalWords := headerWords
	for _, section := range b.sections() {
		for _, inst := range section {
			totalWords += len(inst.Encode())
		}
	}

	buffer := make([]byte, totalWords*4)
	offset := 0
	for _, word := range []uint32{MagicNumber, versionToWord(b.version), b.generator, b.bound, b.schema} {
		binary.LittleEndian.PutUint32(buffer[offset:], word)
		offset += 4
	}
	for _, section := range b.sections() {
		for _, inst := range section {
			for _, word := range inst.Encode() {
				binary.LittleEndian.PutUint32(buffer[offset:], word)
				offset += 4
			}
		}
	}
	return buffer
}

// versionToWord packs a Version into SPIR-V's single-word major/minor
// header encoding.
func versionToWord(v Version) uint32 {
	return (uint32(v.Major) << 16) | (uint32(v.Minor) << 8)
}
