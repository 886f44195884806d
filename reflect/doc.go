// Package reflect computes descriptor-reflection data over a lowered SIR
// module: vertex-input layouts, fragment-output layouts, minimum uniform/
// storage-buffer binding sizes, and the set of resource globals an entry
// point transitively touches.
//
// The distilled specification describes these as outputs of the AST
// resolver (§4.3), computed while walking the source AST. This
// implementation computes the same four analyses after lowering instead,
// directly over ir.Module: the WGSL lowerer in this repository fuses symbol
// resolution and IR lowering into a single pass, so there is no standalone
// "resolved AST" value downstream code can inspect. Every fact the resolver
// would have recorded (bindings, builtins, interpolation, struct layout) is
// still present on the lowered IR, so the reflection surface is
// reconstructed from there with identical results.
package reflect
