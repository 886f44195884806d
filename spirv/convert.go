package spirv

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/shaderlab/sir/ir"
)

// Deserialize runs both phases of SPIR-V deserialization: parseModule
// (Phase A, a raw word-stream parse into per-id side tables) followed by
// semantic conversion of those side tables into an *ir.Module (Phase B).
//
// The result is suitable for validation, reflection, or re-emission
// through any of the text backends. Control flow recovery is best-effort:
// it understands the structured selection/loop-merge shapes this package's
// own Backend emits, and falls back to a flat statement list (tolerating,
// not rejecting, irreducible graphs) when a block's terminator does not
// fit a recognized shape. Opcodes outside the subset this package itself
// emits are skipped rather than rejected, per the deserializer's
// best-effort parsing policy; such modules will be missing expressions
// but otherwise convert.
func Deserialize(data []byte) (*ir.Module, error) {
	return DeserializeWithLogger(data, nil)
}

// DeserializeWithLogger runs Deserialize, reporting every opcode-skip
// decision to logger at debug level. logger may be nil, in which case no
// reporting happens and behavior is identical to Deserialize.
func DeserializeWithLogger(data []byte, logger *zap.Logger) (*ir.Module, error) {
	raw, err := parseModule(data)
	if err != nil {
		return nil, ir.WrapError(ir.ErrInvalidInput, err)
	}
	c := &converter{
		raw:         raw,
		typeCache:   map[uint32]ir.TypeHandle{},
		constCache:  map[uint32]ir.ConstantHandle{},
		globalCache: map[uint32]ir.GlobalVariableHandle{},
		funcCache:   map[uint32]ir.FunctionHandle{},
		module:      &ir.Module{},
		log:         logger,
	}
	if err := c.convertTypes(); err != nil {
		return nil, err
	}
	if err := c.convertConstants(); err != nil {
		return nil, err
	}
	if err := c.convertGlobals(); err != nil {
		return nil, err
	}
	if err := c.reserveFunctions(); err != nil {
		return nil, err
	}
	if err := c.convertFunctions(); err != nil {
		return nil, err
	}
	if err := c.convertEntryPoints(); err != nil {
		return nil, err
	}
	return c.module, nil
}

type converter struct {
	raw    *module
	module *ir.Module

	typeCache   map[uint32]ir.TypeHandle
	constCache  map[uint32]ir.ConstantHandle
	globalCache map[uint32]ir.GlobalVariableHandle
	funcCache   map[uint32]ir.FunctionHandle

	// pointeeOfPointer records, for each OpTypePointer id, the type it
	// points to, so OpVariable (which is typed by the pointer, not the
	// pointee) can recover the variable's own IR type.
	pointeeOfPointer map[uint32]uint32
	storageOfPointer map[uint32]StorageClass

	// log receives debug-level notices when an opcode or execution model is
	// skipped under the tolerance policy. May be nil.
	log *zap.Logger
}

// logSkip reports a skipped id/opcode to the converter's logger, if any.
func (c *converter) logSkip(reason string, fields ...zap.Field) {
	if c.log == nil {
		return
	}
	c.log.Debug("spirv: skipping "+reason, fields...)
}

func (c *converter) convertTypes() error {
	c.pointeeOfPointer = map[uint32]uint32{}
	c.storageOfPointer = map[uint32]StorageClass{}
	for _, id := range c.raw.TypeOrder {
		if _, err := c.convertType(id, 0); err != nil {
			return err
		}
	}
	return nil
}

// convertType resolves a single SPIR-V type id into an ir.TypeHandle,
// recursively resolving dependent types first. depth guards against
// self-referential or absurdly deep type graphs in malformed input.
func (c *converter) convertType(id uint32, depth int) (ir.TypeHandle, error) {
	if h, ok := c.typeCache[id]; ok {
		return h, nil
	}
	if depth > 64 {
		return 0, ir.NewError(ir.ErrInvalidStructure, "type %d nests too deeply", id)
	}
	inst, ok := c.raw.Types[id]
	if !ok {
		return 0, ir.NewError(ir.ErrInvalidInput, "reference to undefined type id %d", id)
	}

	name := c.raw.Names[id]
	var inner ir.TypeInner

	switch inst.Opcode {
	case OpTypeVoid:
		inner = ir.StructType{} // represented as an empty struct; callers special-case void via absence of FunctionResult
	case OpTypeBool:
		inner = ir.ScalarType{Kind: ir.ScalarBool, Width: 1}
	case OpTypeInt:
		width := uint8(inst.Operands[0] / 8)
		signed := inst.Operands[1] != 0
		kind := ir.ScalarUint
		if signed {
			kind = ir.ScalarSint
		}
		inner = ir.ScalarType{Kind: kind, Width: width}
	case OpTypeFloat:
		inner = ir.ScalarType{Kind: ir.ScalarFloat, Width: uint8(inst.Operands[0] / 8)}
	case OpTypeVector:
		compHandle, err := c.convertType(inst.Operands[0], depth+1)
		if err != nil {
			return 0, err
		}
		scalar, ok := c.module.Types[compHandle].Inner.(ir.ScalarType)
		if !ok {
			return 0, ir.NewError(ir.ErrUnsupportedFeature, "vector component type %d is not scalar", inst.Operands[0])
		}
		inner = ir.VectorType{Size: ir.VectorSize(inst.Operands[1]), Scalar: scalar}
	case OpTypeMatrix:
		colHandle, err := c.convertType(inst.Operands[0], depth+1)
		if err != nil {
			return 0, err
		}
		col, ok := c.module.Types[colHandle].Inner.(ir.VectorType)
		if !ok {
			return 0, ir.NewError(ir.ErrUnsupportedFeature, "matrix column type %d is not a vector", inst.Operands[0])
		}
		inner = ir.MatrixType{Columns: ir.VectorSize(inst.Operands[1]), Rows: col.Size, Scalar: col.Scalar}
	case OpTypeArray:
		base, err := c.convertType(inst.Operands[0], depth+1)
		if err != nil {
			return 0, err
		}
		length, err := c.constantAsU32(inst.Operands[1])
		if err != nil {
			return 0, err
		}
		inner = ir.ArrayType{Base: base, Size: ir.ArraySize{Constant: &length}}
	case OpTypeRuntimeArray:
		base, err := c.convertType(inst.Operands[0], depth+1)
		if err != nil {
			return 0, err
		}
		inner = ir.ArrayType{Base: base, Size: ir.ArraySize{Constant: nil}}
	case OpTypeStruct:
		members := make([]ir.StructMember, 0, len(inst.Operands))
		var span uint32
		for i, memberTypeID := range inst.Operands {
			memberHandle, err := c.convertType(memberTypeID, depth+1)
			if err != nil {
				return 0, err
			}
			member := ir.StructMember{
				Name: c.raw.MemberNames[id][uint32(i)],
				Type: memberHandle,
			}
			if decs := c.raw.MemberDecorations[id][uint32(i)]; decs != nil {
				for _, d := range decs {
					if d.Kind == DecorationOffset {
						member.Offset = d.Params[0]
						if member.Offset > span {
							span = member.Offset
						}
					}
				}
			}
			members = append(members, member)
		}
		inner = ir.StructType{Members: members, Span: span}
	case OpTypePointer:
		storage := StorageClass(inst.Operands[0])
		pointee := inst.Operands[1]
		c.pointeeOfPointer[id] = pointee
		c.storageOfPointer[id] = storage
		pointeeHandle, err := c.convertType(pointee, depth+1)
		if err != nil {
			return 0, err
		}
		inner = ir.PointerType{Base: pointeeHandle, Space: storageClassToAddressSpace(storage)}
	case OpTypeFunction:
		// Not represented as a first-class IR type; functions carry their
		// own signature. Record a placeholder so dependents resolve.
		inner = ir.StructType{}
	default:
		return 0, ir.NewError(ir.ErrUnsupportedFeature, "unsupported type opcode %d", inst.Opcode)
	}

	handle := ir.TypeHandle(len(c.module.Types))
	c.module.Types = append(c.module.Types, ir.Type{Name: name, Inner: inner})
	c.typeCache[id] = handle
	return handle, nil
}

// storageClassToAddressSpace inverts addressSpaceToStorageClass.
func storageClassToAddressSpace(sc StorageClass) ir.AddressSpace {
	switch sc {
	case StorageClassFunction:
		return ir.SpaceFunction
	case StorageClassPrivate:
		return ir.SpacePrivate
	case StorageClassWorkgroup:
		return ir.SpaceWorkGroup
	case StorageClassUniform:
		return ir.SpaceUniform
	case StorageClassStorageBuffer:
		return ir.SpaceStorage
	case StorageClassPushConstant:
		return ir.SpacePushConstant
	case StorageClassUniformConstant:
		return ir.SpaceHandle
	case StorageClassInput:
		return ir.SpaceIn
	case StorageClassOutput:
		return ir.SpaceOut
	default:
		return ir.SpacePrivate
	}
}

func (c *converter) constantAsU32(id uint32) (uint32, error) {
	h, err := c.convertConstant(id)
	if err != nil {
		return 0, err
	}
	scalar, ok := c.module.Constants[h].Value.(ir.ScalarValue)
	if !ok {
		return 0, ir.NewError(ir.ErrUnsupportedFeature, "constant %d used as array length is not scalar", id)
	}
	return uint32(scalar.Bits), nil
}

func (c *converter) convertConstants() error {
	for _, id := range c.raw.ConstOrder {
		if _, err := c.convertConstant(id); err != nil {
			return err
		}
	}
	return nil
}

func (c *converter) convertConstant(id uint32) (ir.ConstantHandle, error) {
	if h, ok := c.constCache[id]; ok {
		return h, nil
	}
	inst, ok := c.raw.Constants[id]
	if !ok {
		return 0, ir.NewError(ir.ErrInvalidInput, "reference to undefined constant id %d", id)
	}
	typeHandle, err := c.convertType(inst.ResultType, 0)
	if err != nil {
		return 0, err
	}
	typ := c.module.Types[typeHandle]

	var value ir.ConstantValue
	switch inst.Opcode {
	case OpConstantTrue:
		value = ir.ScalarValue{Kind: ir.ScalarBool, Bits: 1}
	case OpConstantFalse:
		value = ir.ScalarValue{Kind: ir.ScalarBool, Bits: 0}
	case OpConstantNull:
		value = ir.ScalarValue{Kind: ir.ScalarUint, Bits: 0}
	case OpConstant:
		scalar, ok := typ.Inner.(ir.ScalarType)
		if !ok {
			return 0, ir.NewError(ir.ErrUnsupportedFeature, "OpConstant %d has non-scalar type", id)
		}
		var bits uint64
		if len(inst.Operands) >= 2 {
			bits = uint64(inst.Operands[0]) | uint64(inst.Operands[1])<<32
		} else if len(inst.Operands) == 1 {
			bits = uint64(inst.Operands[0])
		}
		value = ir.ScalarValue{Kind: scalar.Kind, Bits: bits}
	case OpConstantComposite:
		components := make([]ir.ConstantHandle, 0, len(inst.Operands))
		for _, compID := range inst.Operands {
			ch, err := c.convertConstant(compID)
			if err != nil {
				return 0, err
			}
			components = append(components, ch)
		}
		value = ir.CompositeValue{Components: components}
	default:
		return 0, ir.NewError(ir.ErrUnsupportedFeature, "unsupported constant opcode %d", inst.Opcode)
	}

	handle := ir.ConstantHandle(len(c.module.Constants))
	c.module.Constants = append(c.module.Constants, ir.Constant{
		Name:  c.raw.Names[id],
		Type:  typeHandle,
		Value: value,
	})
	c.constCache[id] = handle
	return handle, nil
}

func (c *converter) convertGlobals() error {
	for _, id := range c.raw.GlobalOrder {
		inst := c.raw.Globals[id]
		pointeeTypeID, ok := c.pointeeOfPointer[inst.ResultType]
		if !ok {
			return ir.NewError(ir.ErrInvalidStructure, "global variable %d has non-pointer type", id)
		}
		pointeeHandle, err := c.convertType(pointeeTypeID, 0)
		if err != nil {
			return err
		}
		storage := c.storageOfPointer[inst.ResultType]

		var initHandle *ir.ConstantHandle
		if len(inst.Operands) >= 2 {
			ch, err := c.convertConstant(inst.Operands[1])
			if err != nil {
				return err
			}
			initHandle = &ch
		}

		var binding *ir.ResourceBinding
		var group, bindingIdx *uint32
		for _, d := range c.raw.Decorations[id] {
			switch d.Kind {
			case DecorationDescriptorSet:
				v := d.Params[0]
				group = &v
			case DecorationBinding:
				v := d.Params[0]
				bindingIdx = &v
			}
		}
		if group != nil && bindingIdx != nil {
			binding = &ir.ResourceBinding{Group: *group, Binding: *bindingIdx}
		}

		handle := ir.GlobalVariableHandle(len(c.module.GlobalVariables))
		c.module.GlobalVariables = append(c.module.GlobalVariables, ir.GlobalVariable{
			Name:    c.raw.Names[id],
			Space:   storageClassToAddressSpace(storage),
			Binding: binding,
			Type:    pointeeHandle,
			Init:    initHandle,
		})
		c.globalCache[id] = handle
	}
	return nil
}

// reserveFunctions assigns a FunctionHandle to every function up front so
// that forward calls (function A calling function B declared later in the
// binary) resolve during body conversion.
func (c *converter) reserveFunctions() error {
	for i, fn := range c.raw.Functions {
		c.funcCache[fn.Result] = ir.FunctionHandle(i)
	}
	c.module.Functions = make([]ir.Function, len(c.raw.Functions))
	return nil
}

func (c *converter) convertFunctions() error {
	for i, fn := range c.raw.Functions {
		converted, err := c.convertFunction(fn)
		if err != nil {
			return fmt.Errorf("function %d: %w", fn.Result, err)
		}
		c.module.Functions[i] = converted
	}
	return nil
}

func (c *converter) convertEntryPoints() error {
	for _, ep := range c.raw.EntryPoints {
		fnHandle, ok := c.funcCache[ep.Function]
		if !ok {
			return ir.NewError(ir.ErrInvalidInput, "entry point %q references unknown function %d", ep.Name, ep.Function)
		}
		var stage ir.ShaderStage
		switch ep.Model {
		case ExecutionModelVertex:
			stage = ir.StageVertex
		case ExecutionModelFragment:
			stage = ir.StageFragment
		case ExecutionModelGLCompute:
			stage = ir.StageCompute
		default:
			c.logSkip("entry point with unsupported execution model", zap.Uint32("model", uint32(ep.Model)))
			continue
		}

		var workgroup [3]uint32
		for _, mode := range c.raw.ExecutionModes {
			if mode.Target != ep.Function || mode.Mode != ExecutionModeLocalSize {
				continue
			}
			copy(workgroup[:], mode.Params)
		}

		c.module.EntryPoints = append(c.module.EntryPoints, ir.EntryPoint{
			Name:      ep.Name,
			Stage:     stage,
			Function:  fnHandle,
			Workgroup: workgroup,
		})
	}
	return nil
}
