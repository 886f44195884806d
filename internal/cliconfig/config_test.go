package cliconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shaderlab/sir/ir"
	"github.com/shaderlab/sir/spirv"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesPackageDefaults(t *testing.T) {
	cfg := Default()
	require.Equal(t, spirv.Version1_6, cfg.SPIRVVersion())
	require.Equal(t, ir.ClipSpaceVulkan, cfg.IRClipSpace())
}

func TestLoadReadsProjectConfig(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(wd)) })

	contents := "target_env = \"vulkan1.2\"\nstruct_packing = \"std430\"\nclip_space = \"metal\"\ndebug_names = true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".sirrc.toml"), []byte(contents), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "vulkan1.2", cfg.TargetEnv)
	require.Equal(t, PackingStd430, cfg.StructPacking)
	require.Equal(t, spirv.Version1_5, cfg.SPIRVVersion())
	require.Equal(t, ir.ClipSpaceMetal, cfg.IRClipSpace())
	require.True(t, cfg.DebugNames)
}

func TestLoadAppliesEnvironmentOverride(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(wd)) })

	t.Setenv("SIR_TARGET_ENV", "webgpu")
	t.Setenv("SIR_STRUCT_PACKING", "std430")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "webgpu", cfg.TargetEnv)
	require.Equal(t, PackingStd430, cfg.StructPacking)
}
