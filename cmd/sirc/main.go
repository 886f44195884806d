// Command sirc is the SIR shader compiler CLI.
//
// sirc compiles WGSL source through the shader intermediate representation
// (SIR) to any of the supported targets: SPIR-V binary, GLSL, MSL, or HLSL.
// A "reflect" subcommand prints the resolver's vertex-input/fragment-output
// reflection and per-entry-point resource set as JSON.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/shaderlab/sir/internal/cliconfig"
	"github.com/shaderlab/sir/internal/cliutil"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// rootState carries flags and derived objects shared by every subcommand.
type rootState struct {
	verbose bool
	cfg     cliconfig.Config
	logger  *zap.Logger
}

func (s *rootState) init() error {
	cfg, err := cliconfig.Load()
	if err != nil {
		return err
	}
	s.cfg = cfg

	logger, err := cliutil.NewLogger(cfg.LogLevel, s.verbose)
	if err != nil {
		return err
	}
	s.logger = logger
	return nil
}
