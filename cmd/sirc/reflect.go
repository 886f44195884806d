package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaderlab/sir/ir"
	"github.com/shaderlab/sir/reflect"
)

// entryPointReflection is the JSON shape sirc reflect prints for one entry
// point: enough for a downstream renderer to generate descriptor sets and
// pipeline vertex-input state without re-running the resolver itself.
type entryPointReflection struct {
	Name            string                    `json:"name"`
	Stage           string                    `json:"stage"`
	VertexInputs    []reflect.VertexInput     `json:"vertex_inputs,omitempty"`
	FragmentOutputs []reflect.FragmentOutput  `json:"fragment_outputs,omitempty"`
	Resources       []string                  `json:"resources,omitempty"`
}

func newReflectCommand(state *rootState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reflect <input.wgsl>",
		Short: "Print vertex-input, fragment-output, and resource reflection as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReflect(state, args[0])
		},
	}
	return cmd
}

func runReflect(state *rootState, inputPath string) error {
	source, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputPath, err)
	}

	module, err := lowerSource(state, string(source))
	if err != nil {
		return err
	}

	results := make([]entryPointReflection, 0, len(module.EntryPoints))
	for _, ep := range module.EntryPoints {
		entry, err := reflectEntryPoint(module, ep)
		if err != nil {
			return fmt.Errorf("reflecting entry point %q: %w", ep.Name, err)
		}
		results = append(results, entry)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func reflectEntryPoint(module *ir.Module, ep ir.EntryPoint) (entryPointReflection, error) {
	out := entryPointReflection{
		Name:  ep.Name,
		Stage: ep.Stage.String(),
	}

	if ep.Stage == ir.StageVertex {
		inputs, err := reflect.VertexInputs(module, ep)
		if err != nil {
			return out, err
		}
		out.VertexInputs = inputs
	}
	if ep.Stage == ir.StageFragment {
		outputs, err := reflect.FragmentOutputs(module, ep)
		if err != nil {
			return out, err
		}
		out.FragmentOutputs = outputs
	}

	resources, err := reflect.ResourceSet(module, ep)
	if err != nil {
		return out, err
	}
	for _, handle := range resources {
		out.Resources = append(out.Resources, module.GlobalVariables[handle].Name)
	}
	return out, nil
}
