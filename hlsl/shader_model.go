// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import "fmt"

// ShaderModel identifies a DirectX Shader Model target. Each model fixes
// the feature set and intermediate format (DXBC vs DXIL) a compiled shader
// may rely on.
type ShaderModel uint8

const (
	ShaderModel5_0 ShaderModel = iota
	ShaderModel5_1
	ShaderModel6_0
	ShaderModel6_1
	ShaderModel6_2
	ShaderModel6_3
	ShaderModel6_4
	ShaderModel6_5
	ShaderModel6_6
	ShaderModel6_7
)

// shaderModelInfo captures everything derived from a shader model version
// number: its display form and the feature gates unlocked starting at that
// version. Using one table instead of a chain of switch statements keeps
// the feature gates and the version numbers declared in exactly one place.
type shaderModelInfo struct {
	major, minor  uint8
	dxil          bool
	waveOps       bool
	rayTracing    bool
	float16       bool
	vrs           bool
	meshShaders   bool
	atomics64     bool
}

var shaderModelTable = map[ShaderModel]shaderModelInfo{
	ShaderModel5_0: {major: 5, minor: 0},
	ShaderModel5_1: {major: 5, minor: 1},
	ShaderModel6_0: {major: 6, minor: 0, dxil: true, waveOps: true},
	ShaderModel6_1: {major: 6, minor: 1, dxil: true, waveOps: true},
	ShaderModel6_2: {major: 6, minor: 2, dxil: true, waveOps: true, float16: true},
	ShaderModel6_3: {major: 6, minor: 3, dxil: true, waveOps: true, float16: true, rayTracing: true},
	ShaderModel6_4: {major: 6, minor: 4, dxil: true, waveOps: true, float16: true, rayTracing: true, vrs: true},
	ShaderModel6_5: {major: 6, minor: 5, dxil: true, waveOps: true, float16: true, rayTracing: true, vrs: true, meshShaders: true},
	ShaderModel6_6: {major: 6, minor: 6, dxil: true, waveOps: true, float16: true, rayTracing: true, vrs: true, meshShaders: true, atomics64: true},
	ShaderModel6_7: {major: 6, minor: 7, dxil: true, waveOps: true, float16: true, rayTracing: true, vrs: true, meshShaders: true, atomics64: true},
}

// fallbackShaderModelInfo is returned for a ShaderModel value outside the
// declared range, matching the package's historical default of 5.1.
var fallbackShaderModelInfo = shaderModelInfo{major: 5, minor: 1}

func (sm ShaderModel) info() shaderModelInfo {
	if info, ok := shaderModelTable[sm]; ok {
		return info
	}
	return fallbackShaderModelInfo
}

// String renders the model as e.g. "SM 6.0".
func (sm ShaderModel) String() string {
	info := sm.info()
	return fmt.Sprintf("SM %d.%d", info.major, info.minor)
}

// ProfileSuffix renders the model as the suffix HLSL profile strings use,
// e.g. "6_0" for a profile like "ps_6_0".
func (sm ShaderModel) ProfileSuffix() string {
	info := sm.info()
	return fmt.Sprintf("%d_%d", info.major, info.minor)
}

// Major returns the model's major version number.
func (sm ShaderModel) Major() uint8 {
	return sm.info().major
}

// Minor returns the model's minor version number.
func (sm ShaderModel) Minor() uint8 {
	return sm.info().minor
}

// SupportsDXIL reports whether the model targets DXIL rather than legacy
// DXBC bytecode. True from Shader Model 6.0 onward.
func (sm ShaderModel) SupportsDXIL() bool {
	return sm.info().dxil
}

// SupportsWaveOps reports whether wave intrinsics are available. True from
// Shader Model 6.0 onward.
func (sm ShaderModel) SupportsWaveOps() bool {
	return sm.info().waveOps
}

// SupportsMeshShaders reports whether mesh and amplification shaders are
// available. True from Shader Model 6.5 onward.
func (sm ShaderModel) SupportsMeshShaders() bool {
	return sm.info().meshShaders
}

// SupportsRayTracing reports whether DirectX Raytracing is available. True
// from Shader Model 6.3 onward.
func (sm ShaderModel) SupportsRayTracing() bool {
	return sm.info().rayTracing
}

// Supports64BitAtomics reports whether 64-bit atomic operations are
// available. True from Shader Model 6.6 onward.
func (sm ShaderModel) Supports64BitAtomics() bool {
	return sm.info().atomics64
}

// SupportsFloat16 reports whether native 16-bit floats are available. True
// from Shader Model 6.2 onward.
func (sm ShaderModel) SupportsFloat16() bool {
	return sm.info().float16
}

// SupportsVariableRateShading reports whether variable rate shading is
// available. True from Shader Model 6.4 onward.
func (sm ShaderModel) SupportsVariableRateShading() bool {
	return sm.info().vrs
}
