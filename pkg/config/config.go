package config

import (
	"path/filepath"
	"strings"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigtoml"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/peppetort/POLIMI-CG-21-22-dronesimulator/pkg/buildrun"
)

// DefaultFile is read from the project directory if it exists.
const DefaultFile = "cgbuild.toml"

// Config describes all configuration options
type Config struct {
	BuildDir       string   `default:"build" env:"BUILD_DIR" toml:"build_dir" yaml:"build_dir" usage:"Build directory, relative to the project directory"`
	BinaryName     string   `default:"CG_project" env:"BINARY_NAME" toml:"binary_name" yaml:"binary_name" usage:"Name of the executable produced by the build"`
	SourceDir      string   `env:"SOURCE_DIR" toml:"source_dir" yaml:"source_dir,omitempty" usage:"Source directory passed to the generator (relative to the build directory)"`
	Generator      []string `default:"cmake" env:"GENERATOR" toml:"generator" yaml:"generator" usage:"Build file generator command"`
	GeneratorArgs  []string `env:"GENERATOR_ARGS" toml:"generator_args" yaml:"generator_args,omitempty" usage:"Additional generator arguments"`
	Builder        []string `default:"make" env:"BUILDER" toml:"builder" yaml:"builder" usage:"Build driver command"`
	RunArgs        []string `env:"RUN_ARGS" toml:"run_args" yaml:"run_args,omitempty" usage:"Arguments passed to the compiled binary"`
	Env            []string `env:"ENV" toml:"env" yaml:"env,omitempty" usage:"Additional KEY=VALUE pairs for every step"`
	Incremental    bool     `default:"false" env:"INCREMENTAL" toml:"incremental" yaml:"incremental" usage:"Skip the generate step if the build files are up to date"`
	GenerateInputs []string `default:"CMakeLists.txt,**/CMakeLists.txt,**/*.cmake" env:"GENERATE_INPUTS" toml:"generate_inputs" yaml:"generate_inputs" usage:"Files checked by incremental mode"`
	LogLevel       string   `default:"info" env:"LOG_LEVEL" toml:"log_level" yaml:"log_level"`
	LogJSON        bool     `default:"false" env:"LOG_JSON" toml:"log_json" yaml:"log_json" usage:"Output JSONND instead of pretty console messages"`
}

var logLevels = map[string]zerolog.Level{
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
	"fatal":   zerolog.FatalLevel,
}

// Loader initializes an empty config object and returns a new Loader for this object.
// If file is empty, DefaultFile inside projectDir is used when present; an explicitly passed file has to exist.
func Loader(file, projectDir string) (*Config, *aconfig.Loader) {
	cfg := Config{}
	acfg := aconfig.Config{
		EnvPrefix:        "CGBUILD",
		SkipFlags:        true,
		AllowUnknownEnvs: true,
		Files:            []string{filepath.Join(projectDir, DefaultFile)},
		FileDecoders: map[string]aconfig.FileDecoder{
			".toml": aconfigtoml.New(),
		},
	}

	if file != "" {
		acfg.Files = []string{file}
		acfg.FailOnFileNotFound = true
	}

	return &cfg, aconfig.LoaderFor(&cfg, acfg)
}

// Load is a shortcut for Loader followed by Load and Validate
func Load(file, projectDir string) (*Config, error) {
	cfg, loader := Loader(file, projectDir)
	if err := loader.Load(); err != nil {
		return nil, eris.Wrap(err, "failed to load configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate verifies that all config fields have valid values
func (cfg *Config) Validate() error {
	if cfg.BuildDir == "" {
		return eris.New(`Invalid value for build_dir: must not be empty`)
	}

	if cfg.BinaryName == "" {
		return eris.New(`Invalid value for binary_name: must not be empty`)
	}

	if strings.ContainsAny(cfg.BinaryName, `/\`) {
		return eris.Errorf(`Invalid value for binary_name: %s (must be a file name, not a path)`, cfg.BinaryName)
	}

	if len(cfg.Generator) == 0 || cfg.Generator[0] == "" {
		return eris.New(`Invalid value for generator: must not be empty`)
	}

	if len(cfg.Builder) == 0 || cfg.Builder[0] == "" {
		return eris.New(`Invalid value for builder: must not be empty`)
	}

	for _, item := range cfg.Env {
		if pos := strings.Index(item, "="); pos < 1 {
			return eris.Errorf(`Invalid value for env: %s (expected KEY=VALUE)`, item)
		}
	}

	if _, ok := logLevels[cfg.LogLevel]; !ok {
		return eris.Errorf(`Invalid value for log_level: %s`, cfg.LogLevel)
	}

	return nil
}

// Level converts the LogLevel field to a zerolog.Level
func (cfg *Config) Level() zerolog.Level {
	return logLevels[cfg.LogLevel]
}

// Options converts the config into options for buildrun.Run
func (cfg *Config) Options(projectDir string) buildrun.Options {
	opts := buildrun.DefaultOptions()
	if projectDir != "" {
		opts.ProjectDir = projectDir
	}

	opts.BuildDir = cfg.BuildDir
	opts.BinaryName = cfg.BinaryName
	opts.SourceDir = cfg.SourceDir
	opts.Generator = cfg.Generator
	opts.GeneratorArgs = cfg.GeneratorArgs
	opts.Builder = cfg.Builder
	opts.RunArgs = cfg.RunArgs
	opts.Env = cfg.Env
	opts.Incremental = cfg.Incremental
	if len(cfg.GenerateInputs) > 0 {
		opts.GenerateInputs = cfg.GenerateInputs
	}

	return opts
}
