package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cgbuild.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	chdirForTest(t, t.TempDir())

	cfg, err := Load("", ".")
	require.NoError(t, err)
	assert.Equal(t, "build", cfg.BuildDir)
	assert.Equal(t, "CG_project", cfg.BinaryName)
	assert.Equal(t, []string{"cmake"}, cfg.Generator)
	assert.Equal(t, []string{"make"}, cfg.Builder)
	assert.False(t, cfg.Incremental)
	assert.Equal(t, zerolog.InfoLevel, cfg.Level())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
build_dir = "out"
binary_name = "DroneSimulator"
generator = ["cmake", "-G", "Ninja"]
builder = ["ninja"]
incremental = true
log_level = "debug"
`)

	cfg, err := Load(path, ".")
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.BuildDir)
	assert.Equal(t, "DroneSimulator", cfg.BinaryName)
	assert.Equal(t, []string{"cmake", "-G", "Ninja"}, cfg.Generator)
	assert.Equal(t, []string{"ninja"}, cfg.Builder)
	assert.True(t, cfg.Incremental)
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `build_dir = "out"`)
	t.Setenv("CGBUILD_BUILD_DIR", "from-env")

	cfg, err := Load(path, ".")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.BuildDir)
}

func TestLoad_DefaultFileFromProjectDir(t *testing.T) {
	path := writeConfig(t, `binary_name = "DroneSimulator"`)
	chdirForTest(t, t.TempDir())

	cfg, err := Load("", filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, "DroneSimulator", cfg.BinaryName)

	// the working directory is not consulted
	cfg, err = Load("", ".")
	require.NoError(t, err)
	assert.Equal(t, "CG_project", cfg.BinaryName)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"), ".")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			BuildDir:   "build",
			BinaryName: "CG_project",
			Generator:  []string{"cmake"},
			Builder:    []string{"make"},
			LogLevel:   "info",
		}
	}

	tests := []struct {
		name   string
		modify func(cfg *Config)
		valid  bool
	}{
		{name: "Defaults", modify: func(cfg *Config) {}, valid: true},
		{name: "EmptyBuildDir", modify: func(cfg *Config) { cfg.BuildDir = "" }},
		{name: "EmptyBinary", modify: func(cfg *Config) { cfg.BinaryName = "" }},
		{name: "BinaryWithPath", modify: func(cfg *Config) { cfg.BinaryName = "bin/CG_project" }},
		{name: "NoGenerator", modify: func(cfg *Config) { cfg.Generator = nil }},
		{name: "NoBuilder", modify: func(cfg *Config) { cfg.Builder = []string{""} }},
		{name: "MalformedEnv", modify: func(cfg *Config) { cfg.Env = []string{"=nope"} }},
		{name: "ValidEnv", modify: func(cfg *Config) { cfg.Env = []string{"CC=clang"} }, valid: true},
		{name: "UnknownLogLevel", modify: func(cfg *Config) { cfg.LogLevel = "chatty" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestConfig_Options(t *testing.T) {
	cfg := &Config{
		BuildDir:   "out",
		BinaryName: "sim",
		Generator:  []string{"cmake"},
		Builder:    []string{"ninja"},
		RunArgs:    []string{"--demo"},
		LogLevel:   "info",
	}

	opts := cfg.Options("/src/project")
	assert.Equal(t, "/src/project", opts.ProjectDir)
	assert.Equal(t, "out", opts.BuildDir)
	assert.Equal(t, "sim", opts.BinaryName)
	assert.Equal(t, []string{"ninja"}, opts.Builder)
	assert.Equal(t, []string{"--demo"}, opts.RunArgs)
	assert.NotEmpty(t, opts.GenerateInputs)
}
