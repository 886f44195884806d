package ir

// Expression is one value-producing node in a function body. Expressions
// are SSA: once appended to a Function they never change, and a later
// reference to one by ExpressionHandle always observes the same value —
// there is no notion of reassigning an expression slot.
type Expression struct {
	Kind ExpressionKind
}

// ExpressionKind is implemented by every concrete expression payload.
// Lowering and emission code recovers the concrete kind with a type switch
// over Expression.Kind.
type ExpressionKind interface {
	expressionKind()
}

// --- literals and constants --------------------------------------------

// Literal is an inline constant value embedded directly in an expression,
// as opposed to a named module-scope constant (see ExprConstant).
type Literal struct {
	Value LiteralValue
}

func (Literal) expressionKind() {}

// LiteralValue is implemented by each concrete representation a Literal
// can hold.
type LiteralValue interface {
	literalValue()
}

// LiteralF64 holds a 64-bit float. NaN and infinity are not valid values.
type LiteralF64 float64

func (LiteralF64) literalValue() {}

// LiteralF32 holds a 32-bit float. NaN and infinity are not valid values.
type LiteralF32 float32

func (LiteralF32) literalValue() {}

// LiteralU32 holds an unsigned 32-bit integer.
type LiteralU32 uint32

func (LiteralU32) literalValue() {}

// LiteralI32 holds a signed 32-bit integer.
type LiteralI32 int32

func (LiteralI32) literalValue() {}

// LiteralU64 holds an unsigned 64-bit integer.
type LiteralU64 uint64

func (LiteralU64) literalValue() {}

// LiteralI64 holds a signed 64-bit integer.
type LiteralI64 int64

func (LiteralI64) literalValue() {}

// LiteralBool holds a boolean.
type LiteralBool bool

func (LiteralBool) literalValue() {}

// LiteralAbstractInt holds an integer literal not yet pinned to a concrete
// width, carried until the resolver settles its final type from context.
type LiteralAbstractInt int64

func (LiteralAbstractInt) literalValue() {}

// LiteralAbstractFloat holds a float literal not yet pinned to a concrete
// width, carried until the resolver settles its final type from context.
type LiteralAbstractFloat float64

func (LiteralAbstractFloat) literalValue() {}

// ExprConstant references a named module-scope constant by handle.
type ExprConstant struct {
	Constant ConstantHandle
}

func (ExprConstant) expressionKind() {}

// ExprZeroValue produces the zero value of Type (all-zero scalar/vector/
// matrix, or a struct/array whose members are recursively zeroed).
type ExprZeroValue struct {
	Type TypeHandle
}

func (ExprZeroValue) expressionKind() {}

// --- composition and access --------------------------------------------

// ExprCompose builds a composite value (vector, matrix, array, or struct)
// of Type from Components, one per constituent in declaration order.
type ExprCompose struct {
	Type       TypeHandle
	Components []ExpressionHandle
}

func (ExprCompose) expressionKind() {}

// ExprAccess indexes into Base (array, vector, or matrix) with a runtime
// Index, which must resolve to a signed or unsigned integer type.
type ExprAccess struct {
	Base  ExpressionHandle
	Index ExpressionHandle
}

func (ExprAccess) expressionKind() {}

// ExprAccessIndex indexes into Base with a compile-time constant Index.
// Unlike ExprAccess this also works against struct fields, since a field
// position must always be known statically.
type ExprAccessIndex struct {
	Base  ExpressionHandle
	Index uint32
}

func (ExprAccessIndex) expressionKind() {}

// ExprSplat broadcasts a scalar Value into every component of a Size-wide
// vector.
type ExprSplat struct {
	Size  VectorSize
	Value ExpressionHandle
}

func (ExprSplat) expressionKind() {}

// ExprSwizzle builds a new Size-wide vector from Vector by selecting
// Pattern[0:Size] as component indices, with repeats allowed.
type ExprSwizzle struct {
	Size    VectorSize
	Vector  ExpressionHandle
	Pattern [4]SwizzleComponent
}

func (ExprSwizzle) expressionKind() {}

// SwizzleComponent names one lane of a vector for use in ExprSwizzle or an
// ExprImageSample gather.
type SwizzleComponent uint8

const (
	SwizzleX SwizzleComponent = 0
	SwizzleY SwizzleComponent = 1
	SwizzleZ SwizzleComponent = 2
	SwizzleW SwizzleComponent = 3
)

// --- variable and parameter references ---------------------------------

// ExprFunctionArgument references the current function's Index-th
// parameter.
type ExprFunctionArgument struct {
	Index uint32
}

func (ExprFunctionArgument) expressionKind() {}

// ExprGlobalVariable references a module-scope global. For AddressSpace
// Handle (opaque resources: textures, samplers) this produces the
// resource's value directly; for every other address space it produces a
// pointer that must be loaded through ExprLoad to read the value.
type ExprGlobalVariable struct {
	Variable GlobalVariableHandle
}

func (ExprGlobalVariable) expressionKind() {}

// ExprLocalVariable references a function-local variable by its position
// in Function.LocalVars, producing a pointer to it.
type ExprLocalVariable struct {
	Variable uint32
}

func (ExprLocalVariable) expressionKind() {}

// ExprLoad reads the value a pointer expression currently points to.
type ExprLoad struct {
	Pointer ExpressionHandle
}

func (ExprLoad) expressionKind() {}

// --- image operations ----------------------------------------------------

// ExprImageSample samples Image at Coordinate using Sampler. Gather, when
// set, turns this into a gather4 instead of a filtered sample, returning
// the named component from the four texels nearest Coordinate.
type ExprImageSample struct {
	Image       ExpressionHandle
	Sampler     ExpressionHandle
	Gather      *SwizzleComponent
	Coordinate  ExpressionHandle
	ArrayIndex  *ExpressionHandle
	Offset      *ExpressionHandle
	Level       SampleLevel
	DepthRef    *ExpressionHandle
	ClampToEdge bool
}

func (ExprImageSample) expressionKind() {}

// SampleLevel selects how an ExprImageSample picks its mip level.
type SampleLevel interface {
	sampleLevel()
}

// SampleLevelAuto lets the implementation choose the level from screen-
// space derivatives (only valid in fragment stages).
type SampleLevelAuto struct{}

func (SampleLevelAuto) sampleLevel() {}

// SampleLevelZero forces mip level 0.
type SampleLevelZero struct{}

func (SampleLevelZero) sampleLevel() {}

// SampleLevelExact forces an explicit, possibly fractional mip level.
type SampleLevelExact struct {
	Level ExpressionHandle
}

func (SampleLevelExact) sampleLevel() {}

// SampleLevelBias biases the automatically chosen mip level.
type SampleLevelBias struct {
	Bias ExpressionHandle
}

func (SampleLevelBias) sampleLevel() {}

// SampleLevelGradient supplies explicit screen-space derivatives in place
// of the implicit ones SampleLevelAuto would compute.
type SampleLevelGradient struct {
	X ExpressionHandle
	Y ExpressionHandle
}

func (SampleLevelGradient) sampleLevel() {}

// ExprImageLoad reads one texel from Image directly, bypassing filtering
// and any sampler object.
type ExprImageLoad struct {
	Image      ExpressionHandle
	Coordinate ExpressionHandle
	ArrayIndex *ExpressionHandle
	Sample     *ExpressionHandle
	Level      *ExpressionHandle
}

func (ExprImageLoad) expressionKind() {}

// ExprImageQuery asks Image a question that does not require sampling:
// its size, mip count, layer count, or sample count.
type ExprImageQuery struct {
	Image ExpressionHandle
	Query ImageQuery
}

func (ExprImageQuery) expressionKind() {}

// ImageQuery selects which property an ExprImageQuery reads.
type ImageQuery interface {
	imageQuery()
}

// ImageQuerySize asks for the image's texel dimensions at Level (base
// level if nil).
type ImageQuerySize struct {
	Level *ExpressionHandle
}

func (ImageQuerySize) imageQuery() {}

// ImageQueryNumLevels asks for the image's mip level count.
type ImageQueryNumLevels struct{}

func (ImageQueryNumLevels) imageQuery() {}

// ImageQueryNumLayers asks for the image's array layer count.
type ImageQueryNumLayers struct{}

func (ImageQueryNumLayers) imageQuery() {}

// ImageQueryNumSamples asks for the image's multisample count.
type ImageQueryNumSamples struct{}

func (ImageQueryNumSamples) imageQuery() {}

// --- operators -----------------------------------------------------------

// ExprUnary applies Op to Expr.
type ExprUnary struct {
	Op   UnaryOperator
	Expr ExpressionHandle
}

func (ExprUnary) expressionKind() {}

// UnaryOperator enumerates the prefix operators a backend must be able to
// emit.
type UnaryOperator uint8

const (
	UnaryNegate     UnaryOperator = iota // -x
	UnaryLogicalNot                      // !x
	UnaryBitwiseNot                      // ~x
)

// ExprBinary applies Op to Left and Right, in that order.
type ExprBinary struct {
	Op    BinaryOperator
	Left  ExpressionHandle
	Right ExpressionHandle
}

func (ExprBinary) expressionKind() {}

// BinaryOperator enumerates the infix operators a backend must be able to
// emit, grouped by category below.
type BinaryOperator uint8

const (
	BinaryAdd BinaryOperator = iota
	BinarySubtract
	BinaryMultiply
	BinaryDivide
	BinaryModulo

	BinaryEqual
	BinaryNotEqual
	BinaryLess
	BinaryLessEqual
	BinaryGreater
	BinaryGreaterEqual

	BinaryAnd
	BinaryExclusiveOr
	BinaryInclusiveOr

	BinaryLogicalAnd
	BinaryLogicalOr

	BinaryShiftLeft
	BinaryShiftRight // arithmetic for signed operands, logical for unsigned
)

// ExprSelect is a ternary: Accept if Condition holds, otherwise Reject.
// Both branches are evaluated; this is not short-circuiting control flow.
type ExprSelect struct {
	Condition ExpressionHandle
	Accept    ExpressionHandle
	Reject    ExpressionHandle
}

func (ExprSelect) expressionKind() {}

// ExprDerivative computes a screen-space partial derivative of Expr. Only
// valid in fragment stages.
type ExprDerivative struct {
	Axis    DerivativeAxis
	Control DerivativeControl
	Expr    ExpressionHandle
}

func (ExprDerivative) expressionKind() {}

// DerivativeAxis selects which screen axis an ExprDerivative differentiates
// along.
type DerivativeAxis uint8

const (
	DerivativeX     DerivativeAxis = iota
	DerivativeY
	DerivativeWidth // sum of the absolute X and Y derivatives (fwidth)
)

// DerivativeControl hints the desired precision/cost tradeoff for an
// ExprDerivative.
type DerivativeControl uint8

const (
	DerivativeCoarse DerivativeControl = iota
	DerivativeFine
	DerivativeNone
)

// ExprRelational applies a component-reducing or classification test to
// Argument.
type ExprRelational struct {
	Fun      RelationalFunction
	Argument ExpressionHandle
}

func (ExprRelational) expressionKind() {}

// RelationalFunction enumerates the functions ExprRelational can apply.
type RelationalFunction uint8

const (
	RelationalAll   RelationalFunction = iota // true iff every component is true
	RelationalAny                             // true iff any component is true
	RelationalIsNan
	RelationalIsInf
)

// ExprMath applies a built-in math function to Arg and, for functions that
// need them, Arg1/Arg2/Arg3. Which of the optional arguments are required
// depends on Fun; see the constants below.
type ExprMath struct {
	Fun  MathFunction
	Arg  ExpressionHandle
	Arg1 *ExpressionHandle
	Arg2 *ExpressionHandle
	Arg3 *ExpressionHandle
}

func (ExprMath) expressionKind() {}

// MathFunction enumerates the built-in math functions a backend must be
// able to lower or emit natively, grouped by category below.
type MathFunction uint8

const (
	MathAbs MathFunction = iota
	MathMin
	MathMax
	MathClamp
	MathSaturate

	MathCos
	MathCosh
	MathSin
	MathSinh
	MathTan
	MathTanh
	MathAcos
	MathAsin
	MathAtan
	MathAtan2
	MathAsinh
	MathAcosh
	MathAtanh

	MathRadians
	MathDegrees

	MathCeil
	MathFloor
	MathRound
	MathFract
	MathTrunc
	MathModf
	MathFrexp
	MathLdexp

	MathExp
	MathExp2
	MathLog
	MathLog2
	MathPow

	MathDot
	MathDot4I8Packed
	MathDot4U8Packed
	MathOuter
	MathCross
	MathDistance
	MathLength
	MathNormalize
	MathFaceForward
	MathReflect
	MathRefract

	MathSign
	MathFma
	MathMix
	MathStep
	MathSmoothStep
	MathSqrt
	MathInverseSqrt
	MathInverse
	MathTranspose
	MathDeterminant
	MathQuantizeF16

	MathCountTrailingZeros
	MathCountLeadingZeros
	MathCountOneBits
	MathReverseBits
	MathExtractBits
	MathInsertBits
	MathFirstTrailingBit
	MathFirstLeadingBit

	MathPack4x8snorm
	MathPack4x8unorm
	MathPack2x16snorm
	MathPack2x16unorm
	MathPack2x16float
	MathPack4xI8
	MathPack4xU8
	MathPack4xI8Clamp
	MathPack4xU8Clamp

	MathUnpack4x8snorm
	MathUnpack4x8unorm
	MathUnpack2x16snorm
	MathUnpack2x16unorm
	MathUnpack2x16float
	MathUnpack4xI8
	MathUnpack4xU8
)

// ExprAs converts or reinterprets Expr. When Convert is set, the value is
// numerically converted to that byte width of Kind; when nil, the bits are
// reinterpreted as Kind without changing them (bitcast).
type ExprAs struct {
	Expr    ExpressionHandle
	Kind    ScalarKind
	Convert *uint8
}

func (ExprAs) expressionKind() {}

// --- results produced by statements --------------------------------------

// ExprCallResult names the value StmtCall wrote into its Result slot.
type ExprCallResult struct {
	Function FunctionHandle
}

func (ExprCallResult) expressionKind() {}

// ExprArrayLength reads the runtime element count of a dynamically sized
// array. Array must resolve to a pointer to such an array.
type ExprArrayLength struct {
	Array ExpressionHandle
}

func (ExprArrayLength) expressionKind() {}

// ExprAtomicResult names the pre-operation value StmtAtomic wrote into its
// Result slot.
type ExprAtomicResult struct{}

func (ExprAtomicResult) expressionKind() {}
