// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package hlsl implements HLSL entry point I/O handling with proper
// input/output structs and semantics for vertex, fragment, and compute shaders.
//
//nolint:nestif
package hlsl

import (
	"fmt"

	"github.com/shaderlab/sir/ir"
)

// HLSL semantic constants.
const (
	semanticSVPosition = "SV_Position"
	hlslVoidType       = "void"
)

// =============================================================================
// Entry Point Input/Output Structs
// =============================================================================

// structArgEntry tracks entry point arguments that are structs with member bindings.
// When a WGSL entry point takes a struct argument like `input: VertexInput` where the
// struct members have @location or @builtin bindings, the HLSL backend must flatten
// those members into the input struct and reconstruct the original struct in the body.
type structArgEntry struct {
	argIdx        int
	structType    ir.StructType
	argTypeHandle ir.TypeHandle
}

// writeEntryPointInputStruct writes the input struct for an entry point.
// HLSL entry points typically use input structs with semantics for vertex/fragment stages.
// It returns the struct name, whether an input struct was written, and a list of struct
// arguments whose members were flattened into the input struct.
//
//nolint:gocognit // Entry point input handling requires checking multiple argument forms
func (w *Writer) writeEntryPointInputStruct(epIdx int, ep *ir.EntryPoint, fn *ir.Function) (string, bool, []structArgEntry) {
	structArgs := w.findStructArgs(fn)
	if !w.hasBoundInputs(fn, structArgs) {
		return "", false, nil
	}

	structName := fmt.Sprintf("%s_Input", w.names[nameKey{kind: nameKeyEntryPoint, handle1: uint32(epIdx)}])
	w.writeLine("struct %s {", structName)
	w.pushIndent()

	for i, arg := range fn.Arguments {
		switch {
		case arg.Binding != nil:
			name := w.names[nameKey{kind: nameKeyFunctionArgument, handle1: uint32(ep.Function), handle2: uint32(i)}]
			w.writeInputField(ep, *arg.Binding, i, name, arg.Type)
		default:
			if sa := findStructArg(structArgs, i); sa != nil {
				for memberIdx, member := range sa.structType.Members {
					if member.Binding == nil {
						continue
					}
					w.writeInputField(ep, *member.Binding, memberIdx, Escape(member.Name), member.Type)
				}
			}
		}
	}

	w.popIndent()
	w.writeLine("};")
	w.writeLine("")

	return structName, true, structArgs
}

// findStructArgs collects the function arguments that are structs with at
// least one bound member, which the input struct flattens into individual
// fields rather than passing through as a nested struct.
func (w *Writer) findStructArgs(fn *ir.Function) []structArgEntry {
	var structArgs []structArgEntry
	for i, arg := range fn.Arguments {
		if int(arg.Type) >= len(w.module.Types) {
			continue
		}
		st, ok := w.module.Types[arg.Type].Inner.(ir.StructType)
		if !ok {
			continue
		}
		for _, member := range st.Members {
			if member.Binding != nil {
				structArgs = append(structArgs, structArgEntry{argIdx: i, structType: st, argTypeHandle: arg.Type})
				break
			}
		}
	}
	return structArgs
}

// hasBoundInputs reports whether the entry point needs an input struct at
// all: any argument with a direct binding, or any flattened struct
// argument, makes one necessary.
func (w *Writer) hasBoundInputs(fn *ir.Function, structArgs []structArgEntry) bool {
	if len(structArgs) > 0 {
		return true
	}
	for _, arg := range fn.Arguments {
		if arg.Binding != nil {
			return true
		}
	}
	return false
}

// writeInputField writes one `type name : SEMANTIC;` line of the input
// struct, applying the fragment-stage interpolation modifier binding calls
// for (linear, nointerpolation, ...) when one applies.
func (w *Writer) writeInputField(ep *ir.EntryPoint, binding ir.Binding, position int, name string, typ ir.TypeHandle) {
	fieldType, arraySuffix := w.getTypeNameWithArraySuffix(typ)
	semantic := w.getSemanticFromBinding(binding, position)

	interpMod := ""
	if ep.Stage == ir.StageFragment {
		if m := w.getInterpolationModifier(binding); m != "" {
			interpMod = m + " "
		}
	}

	w.writeLine("%s%s %s%s : %s;", interpMod, fieldType, name, arraySuffix, semantic)
}

// writeEntryPointOutputStruct writes the output struct for an entry point.
// Returns the struct name and whether an output struct was written.
func (w *Writer) writeEntryPointOutputStruct(epIdx int, ep *ir.EntryPoint, fn *ir.Function) (string, bool) {
	if fn.Result == nil {
		return "", false
	}

	resultType := fn.Result.Type
	if int(resultType) >= len(w.module.Types) {
		return "", false
	}

	typeInfo := &w.module.Types[resultType]
	st, ok := typeInfo.Inner.(ir.StructType)
	if !ok {
		// Simple return type - will be handled in signature
		return "", false
	}

	structName := fmt.Sprintf("%s_Output", w.names[nameKey{kind: nameKeyEntryPoint, handle1: uint32(epIdx)}])

	w.writeLine("struct %s {", structName)
	w.pushIndent()

	for memberIdx, member := range st.Members {
		memberName := w.names[nameKey{kind: nameKeyStructMember, handle1: uint32(resultType), handle2: uint32(memberIdx)}]
		memberType, arraySuffix := w.getTypeNameWithArraySuffix(member.Type)
		semantic := outputMemberSemantic(ep.Stage, memberIdx)
		w.writeLine("%s %s%s : %s;", memberType, memberName, arraySuffix, semantic)
	}

	w.popIndent()
	w.writeLine("};")
	w.writeLine("")

	return structName, true
}

// outputMemberSemantic picks the semantic for the memberIdx'th field of a
// struct-typed entry point result. Vertex position goes to SV_Position,
// fragment outputs enumerate SV_TargetN, and everything else (vertex
// varyings, unknown stages) falls back to TEXCOORDN.
func outputMemberSemantic(stage ir.ShaderStage, memberIdx int) string {
	switch stage {
	case ir.StageVertex:
		if memberIdx == 0 {
			return "SV_Position"
		}
		return fmt.Sprintf("TEXCOORD%d", memberIdx-1)
	case ir.StageFragment:
		return fmt.Sprintf("SV_Target%d", memberIdx)
	default:
		return fmt.Sprintf("TEXCOORD%d", memberIdx)
	}
}

// =============================================================================
// Entry Point Signature Generation
// =============================================================================

// writeEntryPointWithIO writes an entry point with proper input/output handling.
// This is the enhanced version that generates HLSL-style entry points with semantics.
func (w *Writer) writeEntryPointWithIO(epIdx int, ep *ir.EntryPoint) error {
	if int(ep.Function) >= len(w.module.Functions) {
		return fmt.Errorf("invalid entry point function handle: %d", ep.Function)
	}

	fn := &w.module.Functions[ep.Function]
	w.currentFunction = fn
	w.currentFuncHandle = ep.Function
	w.localNames = make(map[uint32]string)
	w.namedExpressions = make(map[ir.ExpressionHandle]string)

	defer func() {
		w.currentFunction = nil
		w.localNames = nil
	}()

	// Write input/output structs if needed
	inputStructName, hasInputStruct, structArgs := w.writeEntryPointInputStruct(epIdx, ep, fn)
	outputStructName, hasOutputStruct := w.writeEntryPointOutputStruct(epIdx, ep, fn)

	epName := w.names[nameKey{kind: nameKeyEntryPoint, handle1: uint32(epIdx)}]

	// Write compute shader attributes
	if ep.Stage == ir.StageCompute {
		w.writeComputeAttributes(ep)
	}

	// Determine return type
	returnType := "void"
	if hasOutputStruct {
		returnType = outputStructName
	} else if fn.Result != nil {
		returnType = w.getTypeName(fn.Result.Type)
		// Add semantic for simple return types
		if fn.Result.Binding != nil {
			returnType = w.getTypeName(fn.Result.Type)
		}
	}

	// Write function signature
	w.writeEntryPointSignature(returnType, epName, ep, fn, inputStructName, hasInputStruct)

	w.writeReturnSemantic(ep, fn, hasOutputStruct)

	w.writeLine(" {")
	w.pushIndent()

	// Extract inputs from struct if needed
	if hasInputStruct {
		w.writeInputExtraction(ep, fn, structArgs)
	}

	outputLocalMapped, err := w.writeEntryPointLocalVars(fn, hasOutputStruct, outputStructName, hasInputStruct)
	if err != nil {
		w.popIndent()
		return err
	}

	// Create output struct if not already mapped from a local variable
	if hasOutputStruct && !outputLocalMapped {
		w.writeLine("%s _output;", outputStructName)
		w.writeLine("")
	}

	// Write function body statements
	if err := w.writeBlock(fn.Body); err != nil {
		w.popIndent()
		return err
	}

	// Return output struct if needed (fallback for control flow paths without explicit return)
	if hasOutputStruct {
		w.writeLine("return _output;")
	}

	w.popIndent()
	w.writeLine("}")
	w.writeLine("")

	return nil
}

// writeComputeAttributes writes [numthreads(x,y,z)] attribute for compute shaders.
func (w *Writer) writeComputeAttributes(ep *ir.EntryPoint) {
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
	w.writeLine("[numthreads(%d, %d, %d)]", x, y, z)
}

// writeReturnSemantic adds HLSL return semantic for simple (non-struct) return types.
// Fragment shader @location(N) maps to SV_TargetN (not TEXCOORD).
func (w *Writer) writeReturnSemantic(ep *ir.EntryPoint, fn *ir.Function, hasOutputStruct bool) {
	if hasOutputStruct || fn.Result == nil || fn.Result.Binding == nil {
		return
	}
	var semantic string
	if ep.Stage == ir.StageFragment {
		if loc, ok := (*fn.Result.Binding).(ir.LocationBinding); ok {
			semantic = fmt.Sprintf("SV_Target%d", loc.Location)
		} else {
			semantic = w.getSemanticFromBinding(*fn.Result.Binding, 0)
		}
	} else {
		semantic = w.getSemanticFromBinding(*fn.Result.Binding, 0)
	}
	fmt.Fprintf(&w.out, " : %s", semantic)
}

// writeEntryPointLocalVars writes local variable declarations for an entry point.
// When a local variable has the same type as the entry point result, it IS the
// output variable — declared as _output with the output struct type so that HLSL
// semantics (SV_Position, TEXCOORD) are attached correctly.
// Returns whether an output local was mapped to _output.
func (w *Writer) writeEntryPointLocalVars(fn *ir.Function, hasOutputStruct bool, outputStructName string, hasInputStruct bool) (bool, error) {
	outputLocalMapped := false
	for localIdx, local := range fn.LocalVars {
		localName := w.namer.call(local.Name)
		localType, arraySuffix := w.getTypeNameWithArraySuffix(local.Type)

		if hasOutputStruct && !outputLocalMapped && fn.Result != nil && local.Type == fn.Result.Type {
			localName = "_output"
			localType = outputStructName
			outputLocalMapped = true
		}

		w.localNames[uint32(localIdx)] = localName

		if local.Init != nil {
			w.writeIndent()
			fmt.Fprintf(&w.out, "%s %s%s = ", localType, localName, arraySuffix)
			if err := w.writeExpression(*local.Init); err != nil {
				return false, fmt.Errorf("entry point local var init: %w", err)
			}
			w.out.WriteString(";\n")
		} else {
			w.writeLine("%s %s%s;", localType, localName, arraySuffix)
		}
	}

	if len(fn.LocalVars) > 0 || hasInputStruct {
		w.writeLine("")
	}
	return outputLocalMapped, nil
}

// writeEntryPointSignature writes the function signature for an entry point.
func (w *Writer) writeEntryPointSignature(returnType, epName string, ep *ir.EntryPoint, fn *ir.Function, inputStructName string, hasInputStruct bool) {
	w.writeIndent()
	fmt.Fprintf(&w.out, "%s %s(", returnType, epName)

	firstParam := true

	// Stage input struct
	if hasInputStruct {
		fmt.Fprintf(&w.out, "%s _input", inputStructName)
		firstParam = false
	}

	// Built-in inputs not in struct (compute shader specifics)
	if ep.Stage == ir.StageCompute {
		for i, arg := range fn.Arguments {
			if arg.Binding == nil {
				continue
			}
			if builtin, ok := (*arg.Binding).(ir.BuiltinBinding); ok {
				semantic := BuiltInToSemantic(builtin.Builtin)
				if !firstParam {
					w.out.WriteString(", ")
				}
				argName := w.names[nameKey{kind: nameKeyFunctionArgument, handle1: uint32(ep.Function), handle2: uint32(i)}]
				argType := w.getTypeName(arg.Type)
				fmt.Fprintf(&w.out, "%s %s : %s", argType, argName, semantic)
				firstParam = false
			}
		}
	}

	w.out.WriteString(")")
}

// writeInputExtraction writes code to extract input values from the input struct.
// For vertex/fragment stages, ALL bindings (location and builtin) go through
// the input struct. For compute shaders, builtins are passed as direct parameters
// and only location bindings are extracted from the struct.
// Struct arguments with member bindings are reconstructed from the flattened input.
func (w *Writer) writeInputExtraction(ep *ir.EntryPoint, fn *ir.Function, structArgs []structArgEntry) {
	for i, arg := range fn.Arguments {
		// Check if this is a struct arg that was flattened
		if sa := findStructArg(structArgs, i); sa != nil {
			argName := w.names[nameKey{kind: nameKeyFunctionArgument, handle1: uint32(ep.Function), handle2: uint32(i)}]
			structTypeName := w.getTypeName(sa.argTypeHandle)

			// Declare the struct variable
			w.writeLine("%s %s;", structTypeName, argName)

			// Assign each member from the flattened input struct
			for _, member := range sa.structType.Members {
				if member.Binding == nil {
					continue
				}
				memberName := Escape(member.Name)
				w.writeLine("%s.%s = _input.%s;", argName, memberName, memberName)
			}
			continue
		}

		if arg.Binding == nil {
			continue
		}
		// In compute shaders, builtins are direct parameters (not in input struct)
		if ep.Stage == ir.StageCompute {
			if _, ok := (*arg.Binding).(ir.BuiltinBinding); ok {
				continue
			}
		}
		argName := w.names[nameKey{kind: nameKeyFunctionArgument, handle1: uint32(ep.Function), handle2: uint32(i)}]
		w.writeLine("%s %s = _input.%s;", w.getTypeName(arg.Type), argName, argName)
	}
}

// findStructArg returns the structArgEntry for the given argument index, or nil if not found.
func findStructArg(structArgs []structArgEntry, argIdx int) *structArgEntry {
	for idx := range structArgs {
		if structArgs[idx].argIdx == argIdx {
			return &structArgs[idx]
		}
	}
	return nil
}

// =============================================================================
// Extended Helper Functions
// =============================================================================
//
// HLSL has no single built-in that matches WGSL's wraparound/NaN-safe
// integer semantics, so the backend keeps a library of small polyfills it
// can emit once per module and call by name wherever the corresponding
// WGSL operation shows up. Each emitter below writes a standalone function
// (or a matched int/uint overload pair) plus a trailing blank line.

// fnBody writes one `ret name(params) { ...lines } ` block. Lines are
// written verbatim, so any interpolation a line needs must already be
// baked in by the caller.
func (w *Writer) fnBody(ret, name, params string, lines ...string) {
	w.writeLine("%s %s(%s) {", ret, name, params)
	w.pushIndent()
	for _, line := range lines {
		w.writeLine("%s", line)
	}
	w.popIndent()
	w.writeLine("}")
	w.writeLine("")
}

// writeModHelper emits truncated-division modulo for int and uint, matching
// WGSL's `%` semantics (HLSL's own `%` differs for negative operands).
//
//nolint:unused // prepared for integration when the mod lowering path wires it in
func (w *Writer) writeModHelper() {
	w.writeLine("// Safe modulo helper (truncated division semantics)")
	w.fnBody("int", SirModFunction, "int a, int b", "return a - b * (a / b);")
	w.fnBody("uint", SirModFunction, "uint a, uint b", "return a - b * (a / b);")
}

// writeDivHelper emits division that returns 0 instead of trapping when the
// divisor is zero, matching WGSL's defined (rather than undefined) behavior.
//
//nolint:unused // prepared for integration when the div lowering path wires it in
func (w *Writer) writeDivHelper() {
	w.writeLine("// Safe division helper (handles zero divisor)")
	w.fnBody("int", SirDivFunction, "int a, int b", "return b != 0 ? a / b : 0;")
	w.fnBody("uint", SirDivFunction, "uint a, uint b", "return b != 0u ? a / b : 0u;")
}

// writeAbsHelper emits abs() for int32 that saturates INT_MIN instead of
// overflowing, since -INT_MIN isn't representable.
//
//nolint:unused // prepared for integration when the abs lowering path wires it in
func (w *Writer) writeAbsHelper() {
	w.writeLine("// Safe abs helper (handles INT_MIN)")
	w.fnBody("int", SirAbsFunction, "int v", "return v >= 0 ? v : (v == -2147483648 ? 2147483647 : -v);")
}

// writeNegHelper emits negation for int32 with the same INT_MIN saturation
// as writeAbsHelper.
//
//nolint:unused // prepared for integration when the neg lowering path wires it in
func (w *Writer) writeNegHelper() {
	w.writeLine("// Safe negation helper (handles INT_MIN)")
	w.fnBody("int", SirNegFunction, "int v", "return v == -2147483648 ? 2147483647 : -v;")
}

// writeModfHelper wraps HLSL's out-param modf in a struct-returning function
// so it matches WGSL's modf(x) -> {fract, whole} result shape.
//
//nolint:unused // prepared for integration when the modf lowering path wires it in
func (w *Writer) writeModfHelper() {
	w.writeLine("// modf wrapper returning struct like WGSL")
	w.writeLine("struct _sir_modf_result_f32 {")
	w.pushIndent()
	w.writeLine("float fract;")
	w.writeLine("float whole;")
	w.popIndent()
	w.writeLine("};")
	w.writeLine("")
	w.fnBody("_sir_modf_result_f32", SirModfFunction, "float x",
		"_sir_modf_result_f32 result;",
		"result.fract = modf(x, result.whole);",
		"return result;")
}

// writeFrexpHelper wraps HLSL's out-param frexp the same way writeModfHelper
// wraps modf.
//
//nolint:unused // prepared for integration when the frexp lowering path wires it in
func (w *Writer) writeFrexpHelper() {
	w.writeLine("// frexp wrapper returning struct like WGSL")
	w.writeLine("struct _sir_frexp_result_f32 {")
	w.pushIndent()
	w.writeLine("float fract;")
	w.writeLine("int exp;")
	w.popIndent()
	w.writeLine("};")
	w.writeLine("")
	w.fnBody("_sir_frexp_result_f32", SirFrexpFunction, "float x",
		"_sir_frexp_result_f32 result;",
		"result.fract = frexp(x, result.exp);",
		"return result;")
}

// writeExtractBitsHelper emits extractBits for shader models below 6.0,
// which lack the native intrinsic; the signed overload sign-extends through
// the unsigned one.
//
//nolint:unused // prepared for integration when targeting shader model < 6.0
func (w *Writer) writeExtractBitsHelper() {
	w.writeLine("// extractBits helper for older shader models")
	w.fnBody("uint", SirExtractBitsFunction, "uint e, uint offset, uint count",
		"uint mask = count == 32u ? 0xffffffffu : ((1u << count) - 1u);",
		"return (e >> offset) & mask;")
	w.fnBody("int", SirExtractBitsFunction, "int e, uint offset, uint count",
		fmt.Sprintf("uint bits = %s(uint(e), offset, count);", SirExtractBitsFunction),
		"uint signBit = (bits >> (count - 1u)) & 1u;",
		"if (signBit != 0u && count < 32u) {",
		"    uint signExtend = ~((1u << count) - 1u);",
		"    bits |= signExtend;",
		"}",
		"return int(bits);")
}

// writeInsertBitsHelper emits insertBits for shader models below 6.0, with
// the signed overload routing through the unsigned one.
//
//nolint:unused // prepared for integration when targeting shader model < 6.0
func (w *Writer) writeInsertBitsHelper() {
	w.writeLine("// insertBits helper for older shader models")
	w.fnBody("uint", SirInsertBitsFunction, "uint e, uint newbits, uint offset, uint count",
		"uint mask = count == 32u ? 0xffffffffu : ((1u << count) - 1u);",
		"return (e & ~(mask << offset)) | ((newbits & mask) << offset);")
	w.fnBody("int", SirInsertBitsFunction, "int e, int newbits, uint offset, uint count",
		fmt.Sprintf("return int(%s(uint(e), uint(newbits), offset, count));", SirInsertBitsFunction))
}

// writeF2I32Helper emits a float-to-i32 conversion that clamps to the valid
// range instead of producing an implementation-defined result for
// out-of-range or NaN inputs.
//
//nolint:unused // prepared for integration when the f2i32 lowering path wires it in
func (w *Writer) writeF2I32Helper() {
	w.writeLine("// Float to i32 conversion with clamping (handles NaN, inf)")
	w.fnBody("int", SirF2I32Function, "float v", "return int(clamp(v, -2147483648.0, 2147483647.0));")
}

// writeF2U32Helper is writeF2I32Helper's unsigned counterpart.
//
//nolint:unused // prepared for integration when the f2u32 lowering path wires it in
func (w *Writer) writeF2U32Helper() {
	w.writeLine("// Float to u32 conversion with clamping (handles NaN, inf)")
	w.fnBody("uint", SirF2U32Function, "float v", "return uint(clamp(v, 0.0, 4294967295.0));")
}

// =============================================================================
// Function Argument Helpers
// =============================================================================

// isEntryPointFunction checks if a function is an entry point.
func (w *Writer) isEntryPointFunction(handle ir.FunctionHandle) bool {
	for _, ep := range w.module.EntryPoints {
		if ep.Function == handle {
			return true
		}
	}
	return false
}

// getArgumentSemantic returns the HLSL semantic for a function argument binding.
//
//nolint:unused // Helper prepared for integration when needed
func (w *Writer) getArgumentSemantic(arg ir.FunctionArgument, argIdx int) string {
	if arg.Binding == nil {
		return ""
	}
	return w.getSemanticFromBinding(*arg.Binding, argIdx)
}

// writeArgumentWithSemantic writes a function argument with its semantic.
//
//nolint:unused // Helper prepared for integration when needed
func (w *Writer) writeArgumentWithSemantic(arg ir.FunctionArgument, argIdx int, argName string) string {
	argType := w.getTypeName(arg.Type)
	semantic := w.getArgumentSemantic(arg, argIdx)

	if semantic != "" {
		return fmt.Sprintf("%s %s : %s", argType, argName, semantic)
	}
	return fmt.Sprintf("%s %s", argType, argName)
}

// =============================================================================
// Result/Output Helpers
// =============================================================================

// getResultSemantic returns the HLSL semantic for a function result binding.
//
//nolint:unused // Helper prepared for integration when needed
func (w *Writer) getResultSemantic(result *ir.FunctionResult) string {
	if result == nil || result.Binding == nil {
		return ""
	}
	return w.getSemanticFromBinding(*result.Binding, 0)
}

// writeResultType writes the return type with semantic if applicable.
//
//nolint:unused // Helper prepared for integration when needed
func (w *Writer) writeResultType(result *ir.FunctionResult) string {
	if result == nil {
		return "void"
	}

	typeName := w.getTypeName(result.Type)
	semantic := w.getResultSemantic(result)

	if semantic != "" {
		// HLSL doesn't support return semantics in the type declaration,
		// they're specified via output structs or SV_Target for fragments
		return typeName
	}
	return typeName
}
