package ir

import (
	"fmt"
)

// ValidationError describes one problem found while checking a Module.
// Function, Expression, and Statement narrow where the problem was found;
// Statement is -1 when the error is not attributed to a specific statement.
type ValidationError struct {
	Message    string
	Function   string
	Expression *ExpressionHandle
	Statement  int
}

// Error implements the error interface, rendering as much location context
// as was recorded alongside Message.
func (e ValidationError) Error() string {
	if e.Function == "" {
		return e.Message
	}
	if e.Expression != nil {
		return fmt.Sprintf("in function %s, expression %d: %s", e.Function, *e.Expression, e.Message)
	}
	if e.Statement >= 0 {
		return fmt.Sprintf("in function %s, statement %d: %s", e.Function, e.Statement, e.Message)
	}
	return fmt.Sprintf("in function %s: %s", e.Function, e.Message)
}

// Validator walks a Module and accumulates ValidationErrors. It never
// returns early on the first problem: every independently-checkable part
// of the module is visited so a caller sees every defect in one pass.
type Validator struct {
	module *Module
	errors []ValidationError
	scope  functionScope
}

// functionScope is the validation state that only makes sense while
// walking one function's body: which function it is, how deep in nested
// loops the walk currently sits, and whether it is inside a `continuing`
// block (which forbids break/continue/return/kill).
type functionScope struct {
	fn           *Function
	fnName       string
	loopDepth    int
	inContinuing bool
}

// Validate checks module and reports every error found. A nil slice with a
// nil error means the module is valid; a non-nil error means module itself
// could not be validated at all (currently only when module is nil).
func Validate(module *Module) ([]ValidationError, error) {
	if module == nil {
		return nil, fmt.Errorf("module is nil")
	}

	v := &Validator{module: module, errors: make([]ValidationError, 0)}
	v.validateModule()

	if len(v.errors) > 0 {
		return v.errors, nil
	}
	return nil, nil
}

func (v *Validator) validateModule() {
	v.validateTypes()
	v.validateConstants()
	v.validateGlobalVariables()
	v.validateFunctions()
	v.validateEntryPoints()
}

// --- types -----------------------------------------------------------

func (v *Validator) validateTypes() {
	for i, typ := range v.module.Types {
		v.validateType(TypeHandle(i), &typ)
	}
}

func (v *Validator) validateType(handle TypeHandle, typ *Type) {
	if typ.Inner == nil {
		v.addError(fmt.Sprintf("type %d has nil inner type", handle))
		return
	}

	switch inner := typ.Inner.(type) {
	case ScalarType:
		v.validateScalarWidth(handle, "scalar", inner.Width)

	case VectorType:
		v.validateDimension(handle, "vector size", inner.Size)
		v.validateScalarWidth(handle, "vector scalar", inner.Scalar.Width)

	case MatrixType:
		v.validateDimension(handle, "matrix columns", inner.Columns)
		v.validateDimension(handle, "matrix rows", inner.Rows)
		if inner.Scalar.Kind != ScalarFloat {
			v.addError(fmt.Sprintf("type %d: matrix scalar must be float, got %v", handle, inner.Scalar.Kind))
		}

	case ArrayType:
		if !v.isValidTypeHandle(inner.Base) {
			v.addError(fmt.Sprintf("type %d: array base type %d does not exist", handle, inner.Base))
		}
		if inner.Base == handle {
			v.addError(fmt.Sprintf("type %d: array has circular reference to itself", handle))
		}

	case StructType:
		v.validateStructMembers(handle, inner.Members)

	case PointerType:
		if !v.isValidTypeHandle(inner.Base) {
			v.addError(fmt.Sprintf("type %d: pointer base type %d does not exist", handle, inner.Base))
		}

	case SamplerType:
		// every SamplerType value is well-formed

	case ImageType:
		// Dimension and Class are closed enums; nothing further to check
	}
}

// validateDimension reports vec/matrix extents outside {2,3,4}, the only
// sizes WGSL's vector and matrix types support.
func (v *Validator) validateDimension(handle TypeHandle, what string, size VectorSize) {
	if size != Vec2 && size != Vec3 && size != Vec4 {
		v.addError(fmt.Sprintf("type %d: %s must be 2, 3, or 4, got %d", handle, what, size))
	}
}

// validateScalarWidth reports a byte width outside the four IEEE/integer
// widths this compiler represents (1, 2, 4, 8 bytes).
func (v *Validator) validateScalarWidth(handle TypeHandle, what string, width uint8) {
	if width != 1 && width != 2 && width != 4 && width != 8 {
		v.addError(fmt.Sprintf("type %d: %s width must be 1, 2, 4, or 8 bytes, got %d", handle, what, width))
	}
}

func (v *Validator) validateStructMembers(handle TypeHandle, members []StructMember) {
	seen := make(map[string]bool, len(members))
	for i, member := range members {
		if member.Name == "" {
			v.addError(fmt.Sprintf("type %d: struct member %d has empty name", handle, i))
		}
		if seen[member.Name] {
			v.addError(fmt.Sprintf("type %d: duplicate struct member name %q", handle, member.Name))
		}
		seen[member.Name] = true

		if !v.isValidTypeHandle(member.Type) {
			v.addError(fmt.Sprintf("type %d: struct member %q type %d does not exist", handle, member.Name, member.Type))
		}
		if member.Type == handle {
			v.addError(fmt.Sprintf("type %d: struct member %q has circular reference", handle, member.Name))
		}
	}
}

// --- constants and globals --------------------------------------------

func (v *Validator) validateConstants() {
	for i, c := range v.module.Constants {
		if !v.isValidTypeHandle(c.Type) {
			v.addError(fmt.Sprintf("constant %d (%s): type %d does not exist", i, c.Name, c.Type))
		}
	}
}

func (v *Validator) validateGlobalVariables() {
	bindings := make(map[string]bool)
	names := make(map[string]bool)

	for i, gv := range v.module.GlobalVariables {
		if gv.Name != "" {
			if names[gv.Name] {
				v.addError(fmt.Sprintf("duplicate global variable name %q", gv.Name))
			}
			names[gv.Name] = true
		}

		if !v.isValidTypeHandle(gv.Type) {
			v.addError(fmt.Sprintf("global variable %d (%s): type %d does not exist", i, gv.Name, gv.Type))
		}

		if gv.Binding != nil {
			key := fmt.Sprintf("%d:%d", gv.Binding.Group, gv.Binding.Binding)
			if bindings[key] {
				v.addError(fmt.Sprintf("global variable %q: duplicate binding @group(%d) @binding(%d)",
					gv.Name, gv.Binding.Group, gv.Binding.Binding))
			}
			bindings[key] = true
		}

		if gv.Init != nil && !v.isValidConstantHandle(*gv.Init) {
			v.addError(fmt.Sprintf("global variable %q: init constant %d does not exist", gv.Name, *gv.Init))
		}
	}
}

// --- functions ---------------------------------------------------------

func (v *Validator) validateFunctions() {
	names := make(map[string]bool)

	for i := range v.module.Functions {
		fn := &v.module.Functions[i]
		if fn.Name != "" {
			if names[fn.Name] {
				v.addError(fmt.Sprintf("duplicate function name %q", fn.Name))
			}
			names[fn.Name] = true
		}

		v.scope = functionScope{fn: fn, fnName: fn.Name}
		v.validateFunction(fn)
	}
}

func (v *Validator) validateFunction(fn *Function) {
	for i, arg := range fn.Arguments {
		if !v.isValidTypeHandle(arg.Type) {
			v.addErrorInFunction(fmt.Sprintf("argument %d (%s): type %d does not exist", i, arg.Name, arg.Type))
		}
	}

	if fn.Result != nil && !v.isValidTypeHandle(fn.Result.Type) {
		v.addErrorInFunction(fmt.Sprintf("result type %d does not exist", fn.Result.Type))
	}

	for i, lv := range fn.LocalVars {
		if !v.isValidTypeHandle(lv.Type) {
			v.addErrorInFunction(fmt.Sprintf("local variable %d (%s): type %d does not exist", i, lv.Name, lv.Type))
		}
		if lv.Init != nil && !v.isValidExpressionHandle(*lv.Init) {
			v.addErrorInFunction(fmt.Sprintf("local variable %q: init expression %d does not exist", lv.Name, *lv.Init))
		}
	}

	for i, expr := range fn.Expressions {
		v.validateExpression(ExpressionHandle(i), &expr)
	}

	v.validateBlock(fn.Body)
}

// --- expressions -------------------------------------------------------
//
// Most expression kinds carry one or more ExpressionHandle/FunctionHandle/
// ConstantHandle/GlobalVariableHandle references into the owning function
// or module; exprRef/functionRef/constantRef/globalVarRef record an error
// against the enclosing expression when a reference doesn't resolve,
// without every case re-deriving the same "<noun> expression %d does not
// exist" message by hand.

func (v *Validator) validateExpression(handle ExpressionHandle, expr *Expression) {
	if expr.Kind == nil {
		v.addErrorInExpression(handle, "expression has nil kind")
		return
	}

	switch kind := expr.Kind.(type) {
	case Literal:
		// every literal is well-formed by construction

	case ExprConstant:
		v.constantRef(handle, kind.Constant)

	case ExprZeroValue:
		v.typeRefInExpr(handle, kind.Type)

	case ExprCompose:
		v.typeRefInExpr(handle, kind.Type)
		for i, comp := range kind.Components {
			if !v.isValidExpressionHandle(comp) {
				v.addErrorInExpression(handle, fmt.Sprintf("component %d: expression %d does not exist", i, comp))
			}
		}

	case ExprAccess:
		v.exprRef(handle, "base", kind.Base)
		v.exprRef(handle, "index", kind.Index)

	case ExprAccessIndex:
		v.exprRef(handle, "base", kind.Base)

	case ExprSplat:
		v.exprDimension(handle, "splat size", kind.Size)
		v.exprRef(handle, "value", kind.Value)

	case ExprSwizzle:
		v.validateExprSwizzle(handle, kind)

	case ExprFunctionArgument:
		if fn := v.scope.fn; fn != nil && int(kind.Index) >= len(fn.Arguments) {
			v.addErrorInExpression(handle, fmt.Sprintf("argument index %d out of range (function has %d args)",
				kind.Index, len(fn.Arguments)))
		}

	case ExprGlobalVariable:
		v.globalVarRef(handle, kind.Variable)

	case ExprLocalVariable:
		if fn := v.scope.fn; fn != nil && int(kind.Variable) >= len(fn.LocalVars) {
			v.addErrorInExpression(handle, fmt.Sprintf("local variable index %d out of range (function has %d vars)",
				kind.Variable, len(fn.LocalVars)))
		}

	case ExprLoad:
		v.exprRef(handle, "pointer", kind.Pointer)

	case ExprImageSample:
		v.validateExprImageSample(handle, kind)

	case ExprImageLoad:
		v.validateExprImageLoad(handle, kind)

	case ExprImageQuery:
		v.exprRef(handle, "image", kind.Image)

	case ExprUnary:
		v.exprRef(handle, "operand", kind.Expr)

	case ExprBinary:
		v.exprRef(handle, "left", kind.Left)
		v.exprRef(handle, "right", kind.Right)

	case ExprSelect:
		v.exprRef(handle, "condition", kind.Condition)
		v.exprRef(handle, "accept", kind.Accept)
		v.exprRef(handle, "reject", kind.Reject)

	case ExprDerivative:
		v.exprRef(handle, "", kind.Expr)

	case ExprRelational:
		v.exprRef(handle, "argument", kind.Argument)

	case ExprMath:
		v.exprRef(handle, "arg", kind.Arg)
		v.optExprRef(handle, "arg1", kind.Arg1)
		v.optExprRef(handle, "arg2", kind.Arg2)
		v.optExprRef(handle, "arg3", kind.Arg3)

	case ExprAs:
		v.exprRef(handle, "", kind.Expr)

	case ExprCallResult:
		v.functionRef(handle, kind.Function)

	case ExprArrayLength:
		v.exprRef(handle, "array", kind.Array)
	}
}

func (v *Validator) validateExprSwizzle(handle ExpressionHandle, kind ExprSwizzle) {
	v.exprDimension(handle, "swizzle size", kind.Size)
	v.exprRef(handle, "vector", kind.Vector)
	for i := 0; i < int(kind.Size); i++ {
		if kind.Pattern[i] > SwizzleW {
			v.addErrorInExpression(handle, fmt.Sprintf("pattern[%d] invalid component %d", i, kind.Pattern[i]))
		}
	}
}

func (v *Validator) validateExprImageSample(handle ExpressionHandle, kind ExprImageSample) {
	v.exprRef(handle, "image", kind.Image)
	v.exprRef(handle, "sampler", kind.Sampler)
	v.exprRef(handle, "coordinate", kind.Coordinate)
	v.optExprRef(handle, "array index", kind.ArrayIndex)
	v.optExprRef(handle, "offset", kind.Offset)
	v.optExprRef(handle, "depth ref", kind.DepthRef)
}

func (v *Validator) validateExprImageLoad(handle ExpressionHandle, kind ExprImageLoad) {
	v.exprRef(handle, "image", kind.Image)
	v.exprRef(handle, "coordinate", kind.Coordinate)
	v.optExprRef(handle, "array index", kind.ArrayIndex)
	v.optExprRef(handle, "sample", kind.Sample)
	v.optExprRef(handle, "level", kind.Level)
}

// --- statements ----------------------------------------------------------

func (v *Validator) validateBlock(block Block) {
	for i, stmt := range block {
		v.validateStatement(i, &stmt)
	}
}

func (v *Validator) validateStatement(index int, stmt *Statement) {
	if stmt.Kind == nil {
		v.addErrorInStatement(index, "statement has nil kind")
		return
	}

	switch kind := stmt.Kind.(type) {
	case StmtEmit:
		v.validateStmtEmit(index, kind)

	case StmtBlock:
		v.validateBlock(kind.Block)

	case StmtIf:
		v.exprRefStmt(index, "condition", kind.Condition)
		v.validateBlock(kind.Accept)
		v.validateBlock(kind.Reject)

	case StmtSwitch:
		v.validateStmtSwitch(index, kind)

	case StmtLoop:
		v.validateStmtLoop(index, kind)

	case StmtBreak:
		if v.scope.loopDepth == 0 {
			v.addErrorInStatement(index, "break outside of loop")
		}
		if v.scope.inContinuing {
			v.addErrorInStatement(index, "break in continuing block")
		}

	case StmtContinue:
		if v.scope.loopDepth == 0 {
			v.addErrorInStatement(index, "continue outside of loop")
		}
		if v.scope.inContinuing {
			v.addErrorInStatement(index, "continue in continuing block")
		}

	case StmtReturn:
		if v.scope.inContinuing {
			v.addErrorInStatement(index, "return in continuing block")
		}
		v.optExprRefStmt(index, "return value", kind.Value)

	case StmtKill:
		if v.scope.inContinuing {
			v.addErrorInStatement(index, "kill in continuing block")
		}

	case StmtBarrier:
		// every BarrierFlags combination is well-formed

	case StmtStore:
		v.exprRefStmt(index, "pointer", kind.Pointer)
		v.exprRefStmt(index, "value", kind.Value)

	case StmtImageStore:
		v.exprRefStmt(index, "image", kind.Image)
		v.exprRefStmt(index, "coordinate", kind.Coordinate)
		v.optExprRefStmt(index, "array index", kind.ArrayIndex)
		v.exprRefStmt(index, "value", kind.Value)

	case StmtAtomic:
		v.exprRefStmt(index, "pointer", kind.Pointer)
		v.exprRefStmt(index, "value", kind.Value)
		v.optExprRefStmt(index, "result", kind.Result)

	case StmtWorkGroupUniformLoad:
		v.exprRefStmt(index, "pointer", kind.Pointer)
		v.exprRefStmt(index, "result", kind.Result)

	case StmtCall:
		v.validateStmtCall(index, kind)

	case StmtRayQuery:
		v.exprRefStmt(index, "query", kind.Query)
	}
}

func (v *Validator) validateStmtEmit(index int, kind StmtEmit) {
	fn := v.scope.fn
	if fn == nil {
		return
	}
	exprCount := ExpressionHandle(len(fn.Expressions))
	if kind.Range.Start >= exprCount {
		v.addErrorInStatement(index, fmt.Sprintf("emit range start %d out of range", kind.Range.Start))
	}
	if kind.Range.End > exprCount {
		v.addErrorInStatement(index, fmt.Sprintf("emit range end %d out of range", kind.Range.End))
	}
	if kind.Range.Start >= kind.Range.End {
		v.addErrorInStatement(index, fmt.Sprintf("emit range start %d >= end %d", kind.Range.Start, kind.Range.End))
	}
}

func (v *Validator) validateStmtSwitch(index int, kind StmtSwitch) {
	v.exprRefStmt(index, "selector", kind.Selector)

	hasDefault := false
	for _, c := range kind.Cases {
		if _, ok := c.Value.(SwitchValueDefault); ok {
			if hasDefault {
				v.addErrorInStatement(index, "switch has multiple default cases")
			}
			hasDefault = true
		}
		v.validateBlock(c.Body)
	}
	if !hasDefault {
		v.addErrorInStatement(index, "switch missing default case")
	}
}

func (v *Validator) validateStmtLoop(index int, kind StmtLoop) {
	v.scope.loopDepth++
	v.validateBlock(kind.Body)
	v.scope.loopDepth--

	wasContinuing := v.scope.inContinuing
	v.scope.inContinuing = true
	v.validateBlock(kind.Continuing)
	v.scope.inContinuing = wasContinuing

	v.optExprRefStmt(index, "break-if", kind.BreakIf)
}

func (v *Validator) validateStmtCall(index int, kind StmtCall) {
	v.functionRefStmt(index, kind.Function)
	for i, arg := range kind.Arguments {
		if !v.isValidExpressionHandle(arg) {
			v.addErrorInStatement(index, fmt.Sprintf("argument %d expression %d does not exist", i, arg))
		}
	}
	v.optExprRefStmt(index, "result", kind.Result)
}

// --- entry points --------------------------------------------------------

func (v *Validator) validateEntryPoints() {
	names := make(map[string]bool)

	for i, ep := range v.module.EntryPoints {
		if ep.Name == "" {
			v.addError(fmt.Sprintf("entry point %d has empty name", i))
		}
		if names[ep.Name] {
			v.addError(fmt.Sprintf("duplicate entry point name %q", ep.Name))
		}
		names[ep.Name] = true

		if !v.isValidFunctionHandle(ep.Function) {
			v.addError(fmt.Sprintf("entry point %q: function %d does not exist", ep.Name, ep.Function))
			continue
		}

		v.validateEntryPointStage(&v.module.Functions[ep.Function], ep)
	}
}

// validateEntryPointStage checks the requirements specific to each shader
// stage: a vertex shader's result position binding and a compute shader's
// non-zero workgroup size. Fragment shaders carry no stage-specific
// requirement here.
func (v *Validator) validateEntryPointStage(fn *Function, ep EntryPoint) {
	switch ep.Stage {
	case StageVertex:
		if fn.Result == nil {
			v.addError(fmt.Sprintf("entry point %q (@vertex): must have a return value", ep.Name))
		} else if !v.hasPositionBuiltin(fn.Result) {
			v.addError(fmt.Sprintf("entry point %q (@vertex): must return @builtin(position)", ep.Name))
		}

	case StageFragment:
		// a fragment shader may be void, so there is nothing to require here

	case StageCompute:
		if ep.Workgroup[0] == 0 || ep.Workgroup[1] == 0 || ep.Workgroup[2] == 0 {
			v.addError(fmt.Sprintf("entry point %q (@compute): workgroup size must be non-zero", ep.Name))
		}
	}
}

// hasPositionBuiltin reports whether a function's result carries
// @builtin(position), either directly on the result type or on a member of
// the struct type the result returns.
func (v *Validator) hasPositionBuiltin(result *FunctionResult) bool {
	if result.Binding != nil && isPositionBuiltin(*result.Binding) {
		return true
	}
	return v.structHasPositionBuiltin(result.Type)
}

func isPositionBuiltin(binding Binding) bool {
	b, ok := binding.(BuiltinBinding)
	return ok && b.Builtin == BuiltinPosition
}

func (v *Validator) structHasPositionBuiltin(typeHandle TypeHandle) bool {
	if int(typeHandle) >= len(v.module.Types) {
		return false
	}
	structType, ok := v.module.Types[typeHandle].Inner.(StructType)
	if !ok {
		return false
	}
	for _, member := range structType.Members {
		if member.Binding != nil && isPositionBuiltin(*member.Binding) {
			return true
		}
	}
	return false
}

// --- handle existence checks ---------------------------------------------

func (v *Validator) isValidTypeHandle(handle TypeHandle) bool {
	return int(handle) < len(v.module.Types)
}

func (v *Validator) isValidConstantHandle(handle ConstantHandle) bool {
	return int(handle) < len(v.module.Constants)
}

func (v *Validator) isValidGlobalVariableHandle(handle GlobalVariableHandle) bool {
	return int(handle) < len(v.module.GlobalVariables)
}

func (v *Validator) isValidFunctionHandle(handle FunctionHandle) bool {
	return int(handle) < len(v.module.Functions)
}

func (v *Validator) isValidExpressionHandle(handle ExpressionHandle) bool {
	return v.scope.fn != nil && int(handle) < len(v.scope.fn.Expressions)
}

// exprRef records an error against the expression at handle when ref does
// not resolve within the current function. field names the role ref plays
// ("pointer", "base", ...); an empty field produces the bare "expression %d
// does not exist" form used by single-operand expression kinds.
func (v *Validator) exprRef(handle ExpressionHandle, field string, ref ExpressionHandle) {
	if v.isValidExpressionHandle(ref) {
		return
	}
	if field == "" {
		v.addErrorInExpression(handle, fmt.Sprintf("expression %d does not exist", ref))
	} else {
		v.addErrorInExpression(handle, fmt.Sprintf("%s expression %d does not exist", field, ref))
	}
}

// optExprRef is exprRef for a *ExpressionHandle that may be nil, the common
// shape for an expression kind's optional operands.
func (v *Validator) optExprRef(handle ExpressionHandle, field string, ref *ExpressionHandle) {
	if ref != nil {
		v.exprRef(handle, field, *ref)
	}
}

// exprDimension records an error against handle when size is not one of
// WGSL's supported vector extents (2, 3, or 4). what names what is being
// measured, e.g. "splat size" or "swizzle size".
func (v *Validator) exprDimension(handle ExpressionHandle, what string, size VectorSize) {
	if size != Vec2 && size != Vec3 && size != Vec4 {
		v.addErrorInExpression(handle, fmt.Sprintf("%s must be 2, 3, or 4, got %d", what, size))
	}
}

func (v *Validator) constantRef(handle ExpressionHandle, ref ConstantHandle) {
	if !v.isValidConstantHandle(ref) {
		v.addErrorInExpression(handle, fmt.Sprintf("constant %d does not exist", ref))
	}
}

func (v *Validator) globalVarRef(handle ExpressionHandle, ref GlobalVariableHandle) {
	if !v.isValidGlobalVariableHandle(ref) {
		v.addErrorInExpression(handle, fmt.Sprintf("global variable %d does not exist", ref))
	}
}

func (v *Validator) functionRef(handle ExpressionHandle, ref FunctionHandle) {
	if !v.isValidFunctionHandle(ref) {
		v.addErrorInExpression(handle, fmt.Sprintf("function %d does not exist", ref))
	}
}

func (v *Validator) typeRefInExpr(handle ExpressionHandle, ref TypeHandle) {
	if !v.isValidTypeHandle(ref) {
		v.addErrorInExpression(handle, fmt.Sprintf("type %d does not exist", ref))
	}
}

// exprRefStmt, optExprRefStmt, and functionRefStmt are the statement-context
// counterparts of exprRef/optExprRef/functionRef, recording against a
// statement index rather than an expression handle.
func (v *Validator) exprRefStmt(index int, field string, ref ExpressionHandle) {
	if v.isValidExpressionHandle(ref) {
		return
	}
	if field == "" {
		v.addErrorInStatement(index, fmt.Sprintf("expression %d does not exist", ref))
	} else {
		v.addErrorInStatement(index, fmt.Sprintf("%s expression %d does not exist", field, ref))
	}
}

func (v *Validator) optExprRefStmt(index int, field string, ref *ExpressionHandle) {
	if ref != nil {
		v.exprRefStmt(index, field, *ref)
	}
}

func (v *Validator) functionRefStmt(index int, ref FunctionHandle) {
	if !v.isValidFunctionHandle(ref) {
		v.addErrorInStatement(index, fmt.Sprintf("function %d does not exist", ref))
	}
}

// --- error recording -------------------------------------------------

func (v *Validator) addError(msg string) {
	v.errors = append(v.errors, ValidationError{Message: msg, Statement: -1})
}

func (v *Validator) addErrorInFunction(msg string) {
	v.errors = append(v.errors, ValidationError{Message: msg, Function: v.scope.fnName, Statement: -1})
}

func (v *Validator) addErrorInExpression(handle ExpressionHandle, msg string) {
	v.errors = append(v.errors, ValidationError{
		Message:    msg,
		Function:   v.scope.fnName,
		Expression: &handle,
		Statement:  -1,
	})
}

func (v *Validator) addErrorInStatement(index int, msg string) {
	v.errors = append(v.errors, ValidationError{Message: msg, Function: v.scope.fnName, Statement: index})
}
