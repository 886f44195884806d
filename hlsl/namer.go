// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"
)

// namer generates unique identifiers for HLSL output.
// It tracks used names to ensure uniqueness and handles
// HLSL's case-insensitive keyword matching.
type namer struct {
	// usedNames tracks names that have been generated (stored in lowercase for case-insensitive comparison).
	usedNames map[string]struct{}

	// counter is used to generate unique suffixes.
	counter uint32
}

// reservedHelperNames are the runtime helper functions and globals the
// writer may emit into a module (see functions.go); a user identifier that
// collides with one of these would shadow it, so they're claimed up front.
var reservedHelperNames = []string{
	SirModfFunction,
	SirFrexpFunction,
	SirExtractBitsFunction,
	SirInsertBitsFunction,
	SamplerHeapVar,
	ComparisonSamplerHeapVar,
	SampleExternalTextureFunction,
	SirAbsFunction,
	SirDivFunction,
	SirModFunction,
	SirNegFunction,
	SirF2I32Function,
	SirF2U32Function,
	SirF2I64Function,
	SirF2U64Function,
	ImageLoadExternalFunction,
	ImageSampleBaseClampToEdgeFunc,
	DynamicBufferOffsetsPrefix,
	ImageStorageLoadScalarWrapper,
}

// newNamer creates a new namer instance.
func newNamer() *namer {
	n := &namer{usedNames: make(map[string]struct{})}
	for _, name := range reservedHelperNames {
		n.reserve(name)
	}
	return n
}

// call generates a unique name based on the given base.
// It escapes reserved keywords and adds numeric suffixes if needed.
func (n *namer) call(base string) string {
	if base == "" {
		base = UnnamedIdentifier
	}
	return n.uniquify(Escape(base))
}

// uniquify claims escaped, or the first escaped_N suffix that's free, and
// marks whichever it picks as used.
func (n *namer) uniquify(escaped string) string {
	if lower := strings.ToLower(escaped); !n.isUsedLower(lower) {
		n.usedNames[lower] = struct{}{}
		return escaped
	}
	for {
		n.counter++
		candidate := fmt.Sprintf("%s_%d", escaped, n.counter)
		lower := strings.ToLower(candidate)
		if !n.isUsedLower(lower) {
			n.usedNames[lower] = struct{}{}
			return candidate
		}
	}
}

// isUsed checks if a name has already been used (case-insensitive).
func (n *namer) isUsed(name string) bool {
	return n.isUsedLower(strings.ToLower(name))
}

// isUsedLower checks if a lowercase name has already been used.
func (n *namer) isUsedLower(lowerName string) bool {
	_, used := n.usedNames[lowerName]
	return used
}

// reserve marks a name as used without returning it.
// This is useful for reserving names that are used externally.
func (n *namer) reserve(name string) {
	n.usedNames[strings.ToLower(name)] = struct{}{}
}

// reset clears all tracked names and resets the counter.
// Primarily useful for testing.
func (n *namer) reset() {
	n.usedNames = make(map[string]struct{})
	n.counter = 0
}

// count returns the number of unique names tracked.
func (n *namer) count() int {
	return len(n.usedNames)
}

// callWithPrefix generates a unique name with a specific prefix.
// The prefix is not escaped but the resulting name is checked for uniqueness.
func (n *namer) callWithPrefix(prefix, base string) string {
	return n.uniquify(Escape(prefix + base))
}
