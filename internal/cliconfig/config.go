// Package cliconfig loads shader compiler defaults for the sirc, spvdis, and
// spvup command-line drivers.
//
// Precedence, lowest to highest: built-in defaults, a project-level
// .sirrc.toml, environment variables, then explicit command-line flags
// (applied by the caller after Load returns). This mirrors the layering
// used by compiler CLIs in the broader corpus this project draws from,
// which read a config file default under an environment override under an
// explicit flag.
package cliconfig

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	env "github.com/xyproto/env/v2"

	"github.com/shaderlab/sir/ir"
	"github.com/shaderlab/sir/spirv"
)

// StructPacking names the default struct member layout rule applied when a
// uniform or storage buffer type does not otherwise pin one down.
type StructPacking string

const (
	PackingStd140 StructPacking = "std140"
	PackingStd430 StructPacking = "std430"
)

// Config holds the options shared by all three binaries. Fields are exported
// so toml.DecodeFile can populate them directly from a .sirrc.toml table.
type Config struct {
	// TargetEnv names the target environment (vulkan1.1, vulkan1.2,
	// vulkan1.3, webgpu). It governs the default SPIR-V version.
	TargetEnv string `toml:"target_env"`

	// StructPacking is the default struct layout rule: "std140" or "std430".
	StructPacking StructPacking `toml:"struct_packing"`

	// ClipSpace names the module's recorded clip-space convention: vulkan,
	// opengl, directx, or metal.
	ClipSpace string `toml:"clip_space"`

	// DebugNames controls whether OpName/OpMemberName (and their text-target
	// equivalents) are emitted.
	DebugNames bool `toml:"debug_names"`

	// LogLevel is the zap level name used by all three CLIs: debug, info,
	// warn, or error.
	LogLevel string `toml:"log_level"`
}

// Default returns the built-in defaults, matching spirv.DefaultOptions and
// ir.ClipSpaceVulkan.
func Default() Config {
	return Config{
		TargetEnv:     "vulkan1.3",
		StructPacking: PackingStd140,
		ClipSpace:     "vulkan",
		DebugNames:    false,
		LogLevel:      "info",
	}
}

// Load reads .sirrc.toml from the current directory (if present), then
// applies SIR_* environment variable overrides, then returns the result.
// A missing config file is not an error; a malformed one is.
func Load() (Config, error) {
	cfg := Default()

	if _, err := os.Stat(".sirrc.toml"); err == nil {
		if _, err := toml.DecodeFile(".sirrc.toml", &cfg); err != nil {
			return cfg, fmt.Errorf("parsing .sirrc.toml: %w", err)
		}
	}

	cfg.TargetEnv = env.StrOr("SIR_TARGET_ENV", cfg.TargetEnv)
	cfg.ClipSpace = env.StrOr("SIR_CLIP_SPACE", cfg.ClipSpace)
	cfg.LogLevel = env.StrOr("SIR_LOG_LEVEL", cfg.LogLevel)
	if packing := env.Str("SIR_STRUCT_PACKING"); packing != "" {
		cfg.StructPacking = StructPacking(packing)
	}
	cfg.DebugNames = env.BoolOr("SIR_DEBUG_NAMES", cfg.DebugNames)

	return cfg, nil
}

// SPIRVVersion maps the configured target environment to the SPIR-V version
// the serializer should emit. Unknown names fall back to the Vulkan 1.3
// default rather than failing, since this only picks a version ceiling.
func (c Config) SPIRVVersion() spirv.Version {
	switch c.TargetEnv {
	case "vulkan1.1":
		return spirv.Version1_3
	case "vulkan1.2":
		return spirv.Version1_5
	case "vulkan1.3":
		return spirv.Version1_6
	case "webgpu":
		return spirv.Version1_3
	default:
		return spirv.Version1_3
	}
}

// IRClipSpace maps the configured clip-space name to ir.ClipSpace, defaulting
// to Vulkan on an unrecognized value.
func (c Config) IRClipSpace() ir.ClipSpace {
	switch c.ClipSpace {
	case "opengl":
		return ir.ClipSpaceOpenGL
	case "directx":
		return ir.ClipSpaceDirectX
	case "metal":
		return ir.ClipSpaceMetal
	default:
		return ir.ClipSpaceVulkan
	}
}
