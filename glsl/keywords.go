// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

// The reserved-word lists below are GLSL 4.60 / GLSL ES 3.20 vocabulary:
// fixed spec text, not design choices, so they are grouped by category
// rather than collapsed into one table. reservedWords is built once from
// these groups and consulted by isKeyword.
var (
	reservedScalarTypes = []string{
		"void", "bool", "int", "uint", "float", "double",
	}

	reservedVectorTypes = []string{
		"vec2", "vec3", "vec4",
		"ivec2", "ivec3", "ivec4",
		"uvec2", "uvec3", "uvec4",
		"bvec2", "bvec3", "bvec4",
		"dvec2", "dvec3", "dvec4",
	}

	reservedMatrixTypes = []string{
		"mat2", "mat3", "mat4",
		"mat2x2", "mat2x3", "mat2x4",
		"mat3x2", "mat3x3", "mat3x4",
		"mat4x2", "mat4x3", "mat4x4",
		"dmat2", "dmat3", "dmat4",
		"dmat2x2", "dmat2x3", "dmat2x4",
		"dmat3x2", "dmat3x3", "dmat3x4",
		"dmat4x2", "dmat4x3", "dmat4x4",
	}

	reservedSamplerTypes = []string{
		"sampler", "sampler1D", "sampler2D", "sampler3D",
		"samplerCube", "sampler2DRect",
		"sampler1DShadow", "sampler2DShadow", "samplerCubeShadow", "sampler2DRectShadow",
		"sampler1DArray", "sampler2DArray",
		"sampler1DArrayShadow", "sampler2DArrayShadow",
		"samplerCubeArray", "samplerCubeArrayShadow",
		"samplerBuffer", "sampler2DMS", "sampler2DMSArray",
		"sampler3DRect",
		"isampler1D", "isampler2D", "isampler3D",
		"isamplerCube", "isampler2DRect",
		"isampler1DArray", "isampler2DArray",
		"isamplerCubeArray", "isamplerBuffer", "isampler2DMS", "isampler2DMSArray",
		"usampler1D", "usampler2D", "usampler3D",
		"usamplerCube", "usampler2DRect",
		"usampler1DArray", "usampler2DArray",
		"usamplerCubeArray", "usamplerBuffer", "usampler2DMS", "usampler2DMSArray",
	}

	reservedImageTypes = []string{
		"image1D", "image2D", "image3D",
		"imageCube", "image2DRect",
		"image1DArray", "image2DArray",
		"imageCubeArray", "imageBuffer", "image2DMS", "image2DMSArray",
		"iimage1D", "iimage2D", "iimage3D",
		"iimageCube", "iimage2DRect",
		"iimage1DArray", "iimage2DArray",
		"iimageCubeArray", "iimageBuffer", "iimage2DMS", "iimage2DMSArray",
		"uimage1D", "uimage2D", "uimage3D",
		"uimageCube", "uimage2DRect",
		"uimage1DArray", "uimage2DArray",
		"uimageCubeArray", "uimageBuffer", "uimage2DMS", "uimage2DMSArray",
		"atomic_uint",
	}

	reservedControlAndStorage = []string{
		"attribute", "const", "uniform", "varying",
		"buffer", "shared", "coherent", "volatile", "restrict", "readonly", "writeonly",
		"layout", "centroid", "flat", "smooth", "noperspective",
		"patch", "sample",
		"break", "continue", "do", "for", "while", "switch", "case", "default",
		"if", "else",
		"subroutine",
		"in", "out", "inout",
		"true", "false",
		"invariant", "precise",
		"discard", "return",
		"struct",
		"lowp", "mediump", "highp", "precision",
	}

	reservedFutureUse = []string{
		"common", "partition", "active",
		"asm", "class", "union", "enum", "typedef", "template", "this",
		"resource", "goto",
		"inline", "noinline", "public", "static", "extern", "external", "interface",
		"long", "short", "half", "fixed", "unsigned", "superp",
		"input", "output",
		"hvec2", "hvec3", "hvec4", "fvec2", "fvec3", "fvec4",
		"filter", "sizeof", "cast",
		"namespace", "using",
	}

	reservedBuiltinVariables = []string{
		"gl_VertexID", "gl_InstanceID",
		"gl_Position", "gl_PointSize", "gl_ClipDistance", "gl_CullDistance",
		"gl_PerVertex",
		"gl_FragCoord", "gl_FrontFacing", "gl_PointCoord",
		"gl_SampleID", "gl_SamplePosition", "gl_SampleMaskIn",
		"gl_FragDepth", "gl_SampleMask",
		"gl_Layer", "gl_ViewportIndex",
		"gl_HelperInvocation",
		"gl_NumWorkGroups", "gl_WorkGroupSize", "gl_WorkGroupID",
		"gl_LocalInvocationID", "gl_GlobalInvocationID", "gl_LocalInvocationIndex",
		"gl_PatchVerticesIn", "gl_PrimitiveID", "gl_InvocationID",
		"gl_TessLevelOuter", "gl_TessLevelInner", "gl_TessCoord",
		"gl_PrimitiveIDIn",
		"gl_MaxVertexAttribs", "gl_MaxVertexUniformVectors",
		"gl_MaxVaryingVectors", "gl_MaxVertexTextureImageUnits",
		"gl_MaxCombinedTextureImageUnits", "gl_MaxTextureImageUnits",
		"gl_MaxFragmentUniformVectors", "gl_MaxDrawBuffers",
		"gl_MaxClipDistances", "gl_MaxCullDistances",
		"gl_MaxComputeWorkGroupCount", "gl_MaxComputeWorkGroupSize",
		"gl_MaxComputeUniformComponents", "gl_MaxComputeTextureImageUnits",
		"gl_MaxComputeImageUniforms", "gl_MaxComputeAtomicCounters",
		"gl_MaxComputeAtomicCounterBuffers",
	}

	reservedBuiltinFunctions = []string{
		"main",
		"radians", "degrees", "sin", "cos", "tan",
		"asin", "acos", "atan", "sinh", "cosh", "tanh",
		"asinh", "acosh", "atanh",
		"pow", "exp", "log", "exp2", "log2", "sqrt", "inversesqrt",
		"abs", "sign", "floor", "trunc", "round", "roundEven", "ceil", "fract",
		"mod", "modf", "min", "max", "clamp", "mix", "step", "smoothstep",
		"isnan", "isinf",
		"floatBitsToInt", "floatBitsToUint", "intBitsToFloat", "uintBitsToFloat",
		"fma", "frexp", "ldexp",
		"packUnorm2x16", "packSnorm2x16", "packUnorm4x8", "packSnorm4x8",
		"unpackUnorm2x16", "unpackSnorm2x16", "unpackUnorm4x8", "unpackSnorm4x8",
		"packHalf2x16", "unpackHalf2x16",
		"packDouble2x32", "unpackDouble2x32",
		"length", "distance", "dot", "cross", "normalize", "faceforward", "reflect", "refract",
		"matrixCompMult", "outerProduct", "transpose", "determinant", "inverse",
		"lessThan", "lessThanEqual", "greaterThan", "greaterThanEqual", "equal", "notEqual",
		"any", "all", "not",
		"uaddCarry", "usubBorrow", "umulExtended", "imulExtended",
		"bitfieldExtract", "bitfieldInsert", "bitfieldReverse", "bitCount", "findLSB", "findMSB",
		"textureSize", "textureQueryLod", "textureQueryLevels", "textureSamples",
		"texture", "textureProj", "textureLod", "textureOffset",
		"texelFetch", "texelFetchOffset",
		"textureProjLod", "textureProjOffset", "textureLodOffset", "textureProjLodOffset",
		"textureGrad", "textureGradOffset", "textureProjGrad", "textureProjGradOffset",
		"textureGather", "textureGatherOffset", "textureGatherOffsets",
		"dFdx", "dFdy", "dFdxFine", "dFdyFine", "dFdxCoarse", "dFdyCoarse",
		"fwidth", "fwidthFine", "fwidthCoarse",
		"interpolateAtCentroid", "interpolateAtSample", "interpolateAtOffset",
		"noise1", "noise2", "noise3", "noise4",
		"EmitStreamVertex", "EndStreamPrimitive", "EmitVertex", "EndPrimitive",
		"barrier", "memoryBarrier", "memoryBarrierAtomicCounter", "memoryBarrierBuffer",
		"memoryBarrierShared", "memoryBarrierImage", "groupMemoryBarrier",
		"imageLoad", "imageStore", "imageAtomicAdd", "imageAtomicMin", "imageAtomicMax",
		"imageAtomicAnd", "imageAtomicOr", "imageAtomicXor", "imageAtomicExchange",
		"imageAtomicCompSwap", "imageSize", "imageSamples",
		"atomicCounterIncrement", "atomicCounterDecrement", "atomicCounter",
		"atomicCounterAdd", "atomicCounterSubtract", "atomicCounterMin", "atomicCounterMax",
		"atomicCounterAnd", "atomicCounterOr", "atomicCounterXor", "atomicCounterExchange",
		"atomicCounterCompSwap",
		"atomicAdd", "atomicMin", "atomicMax", "atomicAnd", "atomicOr", "atomicXor",
		"atomicExchange", "atomicCompSwap",
		"subpassLoad",
	}

	reservedGroups = [][]string{
		reservedScalarTypes,
		reservedVectorTypes,
		reservedMatrixTypes,
		reservedSamplerTypes,
		reservedImageTypes,
		reservedControlAndStorage,
		reservedFutureUse,
		reservedBuiltinVariables,
		reservedBuiltinFunctions,
	}

	reservedWords = buildReservedWordSet(reservedGroups)
)

func buildReservedWordSet(groups [][]string) map[string]struct{} {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	set := make(map[string]struct{}, total)
	for _, g := range groups {
		for _, word := range g {
			set[word] = struct{}{}
		}
	}
	return set
}

// isKeyword reports whether name is a GLSL reserved word.
func isKeyword(name string) bool {
	_, reserved := reservedWords[name]
	return reserved
}

// hasReservedPrefix reports whether name falls under the "gl_" prefix the
// GLSL spec reserves for implementation use, regardless of whether the
// exact name appears in reservedWords.
func hasReservedPrefix(name string) bool {
	return len(name) >= 3 && name[0] == 'g' && name[1] == 'l' && name[2] == '_'
}

// escapeKeyword rewrites name so it can never collide with GLSL's reserved
// vocabulary or its "gl_" prefix, used when translating user identifiers
// from the source shader into emitted GLSL text.
func escapeKeyword(name string) string {
	switch {
	case name == "":
		return "_unnamed"
	case isKeyword(name), hasReservedPrefix(name):
		return "_" + name
	default:
		return name
	}
}
