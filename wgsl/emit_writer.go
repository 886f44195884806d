package wgsl

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shaderlab/sir/ir"
)

type emitNameKeyKind uint8

const (
	emitKeyType emitNameKeyKind = iota
	emitKeyStructMember
	emitKeyConstant
	emitKeyGlobalVariable
	emitKeyFunction
	emitKeyFunctionArgument
)

type emitNameKey struct {
	kind    emitNameKeyKind
	handle1 uint32
	handle2 uint32
}

// emitter walks an *ir.Module and produces WGSL source text.
type emitter struct {
	module  *ir.Module
	options *Options

	out    strings.Builder
	indent int

	names     map[emitNameKey]string
	used      map[string]struct{}
	typeNames map[ir.TypeHandle]string

	currentFunction   *ir.Function
	currentFuncHandle ir.FunctionHandle
	localNames        map[uint32]string

	inEntryPoint     bool
	entryPointResult *ir.FunctionResult

	entryPointNames map[string]string
}

func newEmitter(module *ir.Module, options *Options) *emitter {
	return &emitter{
		module:          module,
		options:         options,
		names:           make(map[emitNameKey]string),
		used:            make(map[string]struct{}),
		typeNames:       make(map[ir.TypeHandle]string),
		entryPointNames: make(map[string]string),
	}
}

func (w *emitter) String() string {
	return w.out.String()
}

func (w *emitter) uniqueName(base string) string {
	name := escapeKeyword(base)
	if _, used := w.used[name]; !used {
		w.used[name] = struct{}{}
		return name
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d", name, i)
		if _, used := w.used[candidate]; !used {
			w.used[candidate] = struct{}{}
			return candidate
		}
	}
}

// escapeKeyword appends an underscore to identifiers that collide with a
// reserved WGSL word, reusing the lexer's own keyword table.
func escapeKeyword(name string) string {
	if name == "" {
		return "_"
	}
	if _, reserved := keywords[name]; reserved {
		return name + "_"
	}
	return name
}

func (w *emitter) writeModule() error {
	if err := w.registerNames(); err != nil {
		return err
	}
	if err := w.writeTypes(); err != nil {
		return err
	}
	if err := w.writeConstants(); err != nil {
		return err
	}
	if err := w.writeGlobalVariables(); err != nil {
		return err
	}
	if err := w.writeFunctions(); err != nil {
		return err
	}
	return w.writeEntryPoints()
}

func (w *emitter) registerNames() error {
	for handle, typ := range w.module.Types {
		baseName := typ.Name
		if baseName == "" {
			baseName = fmt.Sprintf("Type%d", handle)
		}
		name := w.uniqueName(baseName)
		w.names[emitNameKey{kind: emitKeyType, handle1: uint32(handle)}] = name //nolint:gosec // G115: handle is a valid slice index
		w.typeNames[ir.TypeHandle(handle)] = name                              //nolint:gosec // G115: handle is a valid slice index

		if st, ok := typ.Inner.(ir.StructType); ok {
			for memberIdx, member := range st.Members {
				memberName := member.Name
				if memberName == "" {
					memberName = fmt.Sprintf("member_%d", memberIdx)
				}
				w.names[emitNameKey{kind: emitKeyStructMember, handle1: uint32(handle), handle2: uint32(memberIdx)}] = escapeKeyword(memberName) //nolint:gosec // G115: handle is a valid slice index
			}
		}
	}

	for handle, constant := range w.module.Constants {
		baseName := constant.Name
		if baseName == "" {
			baseName = fmt.Sprintf("const_%d", handle)
		}
		w.names[emitNameKey{kind: emitKeyConstant, handle1: uint32(handle)}] = w.uniqueName(baseName) //nolint:gosec // G115: handle is a valid slice index
	}

	for handle, global := range w.module.GlobalVariables {
		baseName := global.Name
		if baseName == "" {
			baseName = fmt.Sprintf("global_%d", handle)
		}
		w.names[emitNameKey{kind: emitKeyGlobalVariable, handle1: uint32(handle)}] = w.uniqueName(baseName) //nolint:gosec // G115: handle is a valid slice index
	}

	for handle := range w.module.Functions {
		fn := &w.module.Functions[handle]
		baseName := fn.Name
		if baseName == "" {
			baseName = fmt.Sprintf("function_%d", handle)
		}
		w.names[emitNameKey{kind: emitKeyFunction, handle1: uint32(handle)}] = w.uniqueName(baseName) //nolint:gosec // G115: handle is a valid slice index

		for argIdx, arg := range fn.Arguments {
			argName := arg.Name
			if argName == "" {
				argName = fmt.Sprintf("arg_%d", argIdx)
			}
			w.names[emitNameKey{kind: emitKeyFunctionArgument, handle1: uint32(handle), handle2: uint32(argIdx)}] = escapeKeyword(argName) //nolint:gosec // G115: handle is a valid slice index
		}
	}

	for _, ep := range w.module.EntryPoints {
		w.entryPointNames[ep.Name] = ep.Name
	}

	return nil
}

func (w *emitter) writeTypes() error {
	for handle, typ := range w.module.Types {
		st, ok := typ.Inner.(ir.StructType)
		if !ok {
			continue
		}
		typeName := w.typeNames[ir.TypeHandle(handle)] //nolint:gosec // G115: handle is a valid slice index
		w.writeLine("struct %s {", typeName)
		w.pushIndent()
		for memberIdx, member := range st.Members {
			memberName := w.names[emitNameKey{kind: emitKeyStructMember, handle1: uint32(handle), handle2: uint32(memberIdx)}] //nolint:gosec // G115: handle is a valid slice index
			attr := w.bindingAttribute(member.Binding)
			w.writeLine("%s%s: %s,", attr, memberName, w.getTypeName(member.Type))
		}
		w.popIndent()
		w.writeLine("}")
		w.writeLine("")
	}
	return nil
}

func (w *emitter) writeConstants() error {
	for handle, constant := range w.module.Constants {
		name := w.names[emitNameKey{kind: emitKeyConstant, handle1: uint32(handle)}] //nolint:gosec // G115: handle is a valid slice index
		value := w.writeConstantValue(constant)
		w.writeLine("const %s: %s = %s;", name, w.getTypeName(constant.Type), value)
	}
	if len(w.module.Constants) > 0 {
		w.writeLine("")
	}
	return nil
}

func (w *emitter) writeConstantValue(constant ir.Constant) string {
	switch v := constant.Value.(type) {
	case ir.ScalarValue:
		return w.writeScalarValue(v, constant.Type)
	case ir.CompositeValue:
		return w.writeCompositeValue(v, constant.Type)
	default:
		return "0"
	}
}

func (w *emitter) writeScalarValue(v ir.ScalarValue, typeHandle ir.TypeHandle) string {
	switch v.Kind {
	case ir.ScalarBool:
		if v.Bits != 0 {
			return "true"
		}
		return "false"
	case ir.ScalarSint:
		return fmt.Sprintf("%d", int32(v.Bits))
	case ir.ScalarUint:
		return fmt.Sprintf("%du", uint32(v.Bits))
	case ir.ScalarFloat:
		width := uint8(4)
		if int(typeHandle) < len(w.module.Types) {
			if scalar, ok := w.module.Types[typeHandle].Inner.(ir.ScalarType); ok {
				width = scalar.Width
			}
		}
		if width == 8 {
			return formatFloat64WGSL(math.Float64frombits(v.Bits), "lf")
		}
		return formatFloat32WGSL(math.Float32frombits(uint32(v.Bits)), "f")
	default:
		return "0"
	}
}

func (w *emitter) writeCompositeValue(v ir.CompositeValue, typeHandle ir.TypeHandle) string {
	typeName := w.getTypeName(typeHandle)
	components := make([]string, 0, len(v.Components))
	for _, compHandle := range v.Components {
		if int(compHandle) < len(w.module.Constants) {
			components = append(components, w.writeConstantValue(w.module.Constants[compHandle]))
		} else {
			components = append(components, "0")
		}
	}
	return fmt.Sprintf("%s(%s)", typeName, strings.Join(components, ", "))
}

func (w *emitter) writeGlobalVariables() error {
	for handle, global := range w.module.GlobalVariables {
		name := w.names[emitNameKey{kind: emitKeyGlobalVariable, handle1: uint32(handle)}] //nolint:gosec // G115: handle is a valid slice index
		typeName := w.getTypeName(global.Type)
		addressSpace, accessMode := addressSpaceToWGSL(global.Space)

		var attrs []string
		if global.Binding != nil {
			attrs = append(attrs, fmt.Sprintf("@group(%d)", global.Binding.Group), fmt.Sprintf("@binding(%d)", global.Binding.Binding))
		}
		prefix := ""
		if len(attrs) > 0 {
			prefix = strings.Join(attrs, " ") + " "
		}

		switch {
		case addressSpace == "":
			w.writeLine("%svar<private> %s: %s;", prefix, name, typeName)
		case accessMode != "":
			w.writeLine("%svar<%s, %s> %s: %s;", prefix, addressSpace, accessMode, name, typeName)
		default:
			w.writeLine("%svar<%s> %s: %s;", prefix, addressSpace, name, typeName)
		}
	}
	if len(w.module.GlobalVariables) > 0 {
		w.writeLine("")
	}
	return nil
}

// addressSpaceToWGSL returns the WGSL storage-class keyword and, for storage
// buffers, an access mode. Function and pointer-only spaces have no
// top-level variable declaration form and are reported as private.
func addressSpaceToWGSL(space ir.AddressSpace) (addressSpace, accessMode string) {
	switch space {
	case ir.SpacePrivate:
		return "private", ""
	case ir.SpaceWorkGroup:
		return "workgroup", ""
	case ir.SpaceUniform:
		return "uniform", ""
	case ir.SpaceStorage:
		return "storage", "read_write"
	case ir.SpacePushConstant:
		return "push_constant", ""
	case ir.SpaceHandle:
		return "", ""
	case ir.SpaceIn, ir.SpaceOut:
		// No direct WGSL global-variable form; these are recovered from
		// SPIR-V and have no entry-point parameter to attach to here.
		return "private", ""
	default:
		return "private", ""
	}
}

func (w *emitter) bindingAttribute(binding *ir.Binding) string {
	if binding == nil {
		return ""
	}
	switch b := (*binding).(type) {
	case ir.BuiltinBinding:
		return fmt.Sprintf("@builtin(%s) ", builtinToWGSL(b.Builtin))
	case ir.LocationBinding:
		attr := fmt.Sprintf("@location(%d)", b.Location)
		if b.Interpolation != nil {
			attr += " " + interpolationToWGSL(*b.Interpolation)
		}
		return attr + " "
	default:
		return ""
	}
}

func interpolationToWGSL(interp ir.Interpolation) string {
	var kind string
	switch interp.Kind {
	case ir.InterpolationFlat:
		kind = "flat"
	case ir.InterpolationLinear:
		kind = "linear"
	case ir.InterpolationPerspective:
		kind = "perspective"
	default:
		kind = "perspective"
	}
	switch interp.Sampling {
	case 0:
		return fmt.Sprintf("@interpolate(%s)", kind)
	default:
		return fmt.Sprintf("@interpolate(%s, %s)", kind, interpolationSamplingToWGSL(interp.Sampling))
	}
}

func interpolationSamplingToWGSL(sampling ir.InterpolationSampling) string {
	switch sampling {
	case ir.SamplingCenter:
		return "center"
	case ir.SamplingCentroid:
		return "centroid"
	case ir.SamplingSample:
		return "sample"
	default:
		return "center"
	}
}

func builtinToWGSL(b ir.BuiltinValue) string {
	switch b {
	case ir.BuiltinPosition:
		return "position"
	case ir.BuiltinVertexIndex:
		return "vertex_index"
	case ir.BuiltinInstanceIndex:
		return "instance_index"
	case ir.BuiltinFrontFacing:
		return "front_facing"
	case ir.BuiltinFragDepth:
		return "frag_depth"
	case ir.BuiltinSampleIndex:
		return "sample_index"
	case ir.BuiltinSampleMask:
		return "sample_mask"
	case ir.BuiltinLocalInvocationID:
		return "local_invocation_id"
	case ir.BuiltinLocalInvocationIndex:
		return "local_invocation_index"
	case ir.BuiltinGlobalInvocationID:
		return "global_invocation_id"
	case ir.BuiltinWorkGroupID:
		return "workgroup_id"
	case ir.BuiltinNumWorkGroups:
		return "num_workgroups"
	default:
		return "position"
	}
}

func (w *emitter) writeFunctions() error {
	epFunctions := make(map[ir.FunctionHandle]bool, len(w.module.EntryPoints))
	for _, ep := range w.module.EntryPoints {
		epFunctions[ep.Function] = true
	}

	for handle := range w.module.Functions {
		if epFunctions[ir.FunctionHandle(handle)] { //nolint:gosec // G115: handle is a valid slice index
			continue
		}
		fn := &w.module.Functions[handle]
		if err := w.writeFunction(ir.FunctionHandle(handle), fn, nil); err != nil { //nolint:gosec // G115: handle is a valid slice index
			return err
		}
	}
	return nil
}

func (w *emitter) writeFunction(handle ir.FunctionHandle, fn *ir.Function, ep *ir.EntryPoint) error {
	w.currentFunction = fn
	w.currentFuncHandle = handle
	w.localNames = make(map[uint32]string)
	w.inEntryPoint = ep != nil
	w.entryPointResult = fn.Result

	if ep != nil {
		switch ep.Stage {
		case ir.StageVertex:
			w.writeLine("@vertex")
		case ir.StageFragment:
			w.writeLine("@fragment")
		case ir.StageCompute:
			x, y, z := ep.Workgroup[0], ep.Workgroup[1], ep.Workgroup[2]
			if x == 0 {
				x = 1
			}
			if y == 0 {
				y = 1
			}
			if z == 0 {
				z = 1
			}
			w.writeLine("@compute @workgroup_size(%d, %d, %d)", x, y, z)
		}
	}

	name := w.names[emitNameKey{kind: emitKeyFunction, handle1: uint32(handle)}]

	args := make([]string, 0, len(fn.Arguments))
	for argIdx, arg := range fn.Arguments {
		argName := w.names[emitNameKey{kind: emitKeyFunctionArgument, handle1: uint32(handle), handle2: uint32(argIdx)}] //nolint:gosec // G115: argIdx is bounded by slice length
		attr := ""
		if ep != nil {
			attr = w.bindingAttribute(arg.Binding)
		}
		args = append(args, fmt.Sprintf("%s%s: %s", attr, argName, w.getTypeName(arg.Type)))
	}

	returnClause := ""
	if fn.Result != nil {
		attr := ""
		if ep != nil {
			attr = w.bindingAttribute(fn.Result.Binding)
		}
		returnClause = fmt.Sprintf(" -> %s%s", attr, w.getTypeName(fn.Result.Type))
	}

	w.writeLine("fn %s(%s)%s {", name, strings.Join(args, ", "), returnClause)
	w.pushIndent()

	if err := w.writeLocalVars(fn); err != nil {
		return err
	}
	if err := w.writeBlock(ir.Block(fn.Body)); err != nil {
		return err
	}

	w.popIndent()
	w.writeLine("}")
	w.writeLine("")

	w.currentFunction = nil
	w.inEntryPoint = false
	w.entryPointResult = nil
	return nil
}

func (w *emitter) writeEntryPoints() error {
	for _, ep := range w.module.EntryPoints {
		if w.options.EntryPoint != "" && ep.Name != w.options.EntryPoint {
			continue
		}
		fn := &w.module.Functions[ep.Function]
		epCopy := ep
		if err := w.writeFunction(ep.Function, fn, &epCopy); err != nil {
			return err
		}
	}
	return nil
}

func (w *emitter) writeLocalVars(fn *ir.Function) error {
	for localIdx, local := range fn.LocalVars {
		localName := w.uniqueName(local.Name)
		w.localNames[uint32(localIdx)] = localName //nolint:gosec // G115: localIdx is a valid slice index
		typeName := w.getTypeName(local.Type)

		if local.Init != nil {
			initStr, err := w.writeExpression(*local.Init)
			if err != nil {
				return err
			}
			w.writeLine("var %s: %s = %s;", localName, typeName, initStr)
		} else {
			w.writeLine("var %s: %s;", localName, typeName)
		}
	}
	return nil
}

func (w *emitter) getTypeName(handle ir.TypeHandle) string {
	if int(handle) >= len(w.module.Types) {
		return "f32"
	}
	typ := w.module.Types[handle]
	if _, ok := typ.Inner.(ir.StructType); ok {
		if name, ok := w.typeNames[handle]; ok {
			return name
		}
	}
	return w.typeToWGSL(typ.Inner)
}

func (w *emitter) writeIndent() {
	w.out.WriteString(strings.Repeat("    ", w.indent))
}

func (w *emitter) pushIndent() {
	w.indent++
}

func (w *emitter) popIndent() {
	if w.indent > 0 {
		w.indent--
	}
}

func (w *emitter) writeLine(format string, args ...any) {
	w.writeIndent()
	if len(args) == 0 {
		w.out.WriteString(format)
	} else {
		fmt.Fprintf(&w.out, format, args...)
	}
	w.out.WriteByte('\n')
}

func formatFloat32WGSL(f float32, suffix string) string {
	s := strconv.FormatFloat(float64(f), 'g', -1, 32)
	if !strings.ContainsAny(s, ".eE") {
		s += "."
	}
	return s + suffix
}

func formatFloat64WGSL(f float64, suffix string) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += "."
	}
	return s + suffix
}
