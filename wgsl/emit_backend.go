package wgsl

import (
	"fmt"

	"github.com/shaderlab/sir/ir"
)

// Options configures WGSL code generation.
type Options struct {
	// EntryPoint restricts output to a single entry point. If empty, every
	// entry point in the module is emitted.
	EntryPoint string

	// WriterFlags control output formatting.
	WriterFlags WriterFlags
}

// WriterFlags control WGSL output formatting.
type WriterFlags uint32

const (
	// WriterFlagNone uses default settings.
	WriterFlagNone WriterFlags = 0

	// WriterFlagDebugInfo adds source comments for debugging.
	WriterFlagDebugInfo WriterFlags = 1 << iota
)

// DefaultOptions returns sensible default options for WGSL generation.
func DefaultOptions() Options {
	return Options{}
}

// TranslationInfo contains metadata about a module-to-WGSL translation.
type TranslationInfo struct {
	// EntryPointNames maps original entry point names to the names used in
	// the generated source (WGSL entry points keep their original name).
	EntryPointNames map[string]string
}

// Compile generates WGSL source code from an IR module.
func Compile(module *ir.Module, options Options) (string, TranslationInfo, error) {
	w := newEmitter(module, &options)
	if err := w.writeModule(); err != nil {
		return "", TranslationInfo{}, fmt.Errorf("wgsl: %w", err)
	}
	info := TranslationInfo{EntryPointNames: w.entryPointNames}
	return w.String(), info, nil
}

// Write is a convenience wrapper around Compile that discards translation info.
func Write(module *ir.Module, options Options) (string, error) {
	src, _, err := Compile(module, options)
	return src, err
}
