package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shaderlab/sir"
	"github.com/shaderlab/sir/glsl"
	"github.com/shaderlab/sir/hlsl"
	"github.com/shaderlab/sir/ir"
	"github.com/shaderlab/sir/msl"
	"github.com/shaderlab/sir/spirv"
	"github.com/shaderlab/sir/wgsl"
)

func newRootCommand() *cobra.Command {
	state := &rootState{}

	var (
		output    string
		target    string
		debugInfo bool
		validate  bool
	)

	root := &cobra.Command{
		Use:           "sirc <input.wgsl>",
		Short:         "Compile WGSL shaders through the SIR to SPIR-V, GLSL, MSL, or HLSL",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return state.init()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(state, args[0], output, target, debugInfo, validate)
		},
	}
	root.PersistentFlags().BoolVarP(&state.verbose, "verbose", "v", false, "enable debug logging")
	root.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	root.Flags().StringVarP(&target, "target", "t", "spirv", "output target: spirv, glsl, msl, hlsl")
	root.Flags().BoolVar(&debugInfo, "debug", false, "include debug info (names, source lines)")
	root.Flags().BoolVar(&validate, "validate", true, "validate IR before code generation")

	root.AddCommand(newReflectCommand(state))
	return root
}

func runCompile(state *rootState, inputPath, output, target string, debugInfo, validate bool) error {
	source, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputPath, err)
	}

	module, err := lowerSource(state, string(source))
	if err != nil {
		return err
	}

	if validate {
		findings, verr := sir.Validate(module)
		if verr != nil {
			return fmt.Errorf("validation: %w", verr)
		}
		if len(findings) > 0 {
			return fmt.Errorf("validation failed: %w", &findings[0])
		}
	}

	data, err := emit(state, module, target, debugInfo)
	if err != nil {
		return err
	}
	if output == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	state.logger.Info("compiled shader",
		zap.String("input", inputPath),
		zap.String("output", output),
		zap.String("target", target),
		zap.Int("bytes", len(data)),
	)
	return nil
}

// lowerSource runs the WGSL parse and lower stages, logging progress at
// debug level.
func lowerSource(state *rootState, source string) (*ir.Module, error) {
	ast, err := sir.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	state.logger.Debug("parsed WGSL",
		zap.Int("functions", len(ast.Functions)),
		zap.Int("structs", len(ast.Structs)),
		zap.Int("globals", len(ast.GlobalVars)),
	)

	module, err := sir.LowerWithSource(ast, source)
	if err != nil {
		return nil, fmt.Errorf("lower: %w", err)
	}
	module.ClipSpace = state.cfg.IRClipSpace()
	state.logger.Debug("lowered to SIR",
		zap.Int("types", len(module.Types)),
		zap.Int("functions", len(module.Functions)),
		zap.Int("entryPoints", len(module.EntryPoints)),
	)
	return module, nil
}

// emit produces the requested target's bytes. Every target but "spirv"
// produces UTF-8 source text; "spirv" produces the binary word stream.
func emit(state *rootState, module *ir.Module, target string, debugInfo bool) ([]byte, error) {
	switch strings.ToLower(target) {
	case "spirv", "spv":
		opts := spirv.Options{
			Version:    state.cfg.SPIRVVersion(),
			Debug:      debugInfo,
			Validation: true,
			Logger:     state.logger,
		}
		return sir.GenerateSPIRV(module, opts)
	case "glsl":
		opts := glsl.DefaultOptions()
		if debugInfo {
			opts.WriterFlags |= glsl.WriterFlagDebugInfo
		}
		code, _, err := glsl.Compile(module, opts)
		return []byte(code), err
	case "msl":
		opts := msl.DefaultOptions()
		code, _, err := msl.Compile(module, opts)
		return []byte(code), err
	case "hlsl":
		opts := hlsl.DefaultOptions()
		code, _, err := hlsl.Compile(module, opts)
		return []byte(code), err
	case "wgsl":
		code, err := wgsl.Write(module, wgsl.DefaultOptions())
		return []byte(code), err
	default:
		return nil, fmt.Errorf("unknown target %q (want spirv, glsl, msl, hlsl, or wgsl)", target)
	}
}

