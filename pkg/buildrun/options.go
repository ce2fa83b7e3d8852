package buildrun

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Names of the steps in the order Run executes them.
const (
	StepGenerate = "generate"
	StepBuild    = "build"
	StepRun      = "run"
)

// Step is a single external command executed inside Dir.
type Step struct {
	Name string
	Args []string
	Dir  string
	Env  []string
}

// String returns the step's command line quoted for a POSIX shell
func (s Step) String() string {
	parts := make([]string, len(s.Args))
	for idx, arg := range s.Args {
		quoted, err := syntax.Quote(arg, syntax.LangBash)
		if err != nil {
			quoted = fmt.Sprintf("%q", arg)
		}

		parts[idx] = quoted
	}

	return strings.Join(parts, " ")
}

// Options describes a build-and-run invocation.
type Options struct {
	// ProjectDir contains the generator's project file. Defaults to the working directory.
	ProjectDir string
	// BuildDir is resolved relative to ProjectDir unless it's absolute.
	BuildDir   string
	BinaryName string
	// SourceDir is passed to the generator. It's relative to the build directory and defaults to
	// the path of ProjectDir as seen from there.
	SourceDir     string
	Generator     []string
	GeneratorArgs []string
	Builder       []string
	RunArgs       []string
	Env           []string

	DryRun         bool
	Incremental    bool
	GenerateInputs []string

	Reporter Reporter
}

// DefaultOptions returns the settings of the classic "cd build && cmake .. && make && ./CG_project" sequence.
func DefaultOptions() Options {
	return Options{
		ProjectDir:     ".",
		BuildDir:       "build",
		BinaryName:     "CG_project",
		Generator:      []string{"cmake"},
		Builder:        []string{"make"},
		GenerateInputs: []string{"CMakeLists.txt", "**/CMakeLists.txt", "**/*.cmake"},
	}
}

// BuildPath returns the location of the build directory.
func (o Options) BuildPath() string {
	if filepath.IsAbs(o.BuildDir) {
		return filepath.Clean(o.BuildDir)
	}

	return filepath.Join(o.projectDir(), o.BuildDir)
}

func (o Options) projectDir() string {
	if o.ProjectDir == "" {
		return "."
	}

	return o.ProjectDir
}

func (o Options) sourceDir() string {
	if o.SourceDir != "" {
		return o.SourceDir
	}

	projectDir, err := filepath.Abs(o.projectDir())
	if err != nil {
		return ".."
	}

	buildDir, err := filepath.Abs(o.BuildPath())
	if err != nil {
		return ".."
	}

	rel, err := filepath.Rel(buildDir, projectDir)
	if err != nil {
		// different volumes
		return projectDir
	}

	return filepath.ToSlash(rel)
}

// Steps returns the generate, build and run steps in execution order.
func (o Options) Steps() []Step {
	dir := o.BuildPath()
	env := stepEnv(o.Env)

	generate := make([]string, 0, len(o.Generator)+len(o.GeneratorArgs)+1)
	generate = append(generate, o.Generator...)
	generate = append(generate, o.GeneratorArgs...)
	generate = append(generate, o.sourceDir())

	run := make([]string, 0, len(o.RunArgs)+1)
	run = append(run, "./"+o.BinaryName)
	run = append(run, o.RunArgs...)

	return []Step{
		{Name: StepGenerate, Args: generate, Dir: dir, Env: env},
		{Name: StepBuild, Args: append([]string{}, o.Builder...), Dir: dir, Env: env},
		{Name: StepRun, Args: run, Dir: dir, Env: env},
	}
}

// stepEnv merges the process environment with the given KEY=VALUE overrides.
func stepEnv(overrides []string) []string {
	names := make(map[string]bool, len(overrides))
	for _, item := range overrides {
		names[envName(item)] = true
	}

	osEnv := os.Environ()
	result := make([]string, 0, len(osEnv)+len(overrides))
	for _, item := range osEnv {
		// skip overriden entries to avoid conflicts
		if !names[envName(item)] {
			result = append(result, item)
		}
	}

	return append(result, overrides...)
}

func envName(item string) string {
	name := strings.SplitN(item, "=", 2)[0]
	if runtime.GOOS == "windows" {
		name = strings.ToUpper(name)
	}

	return name
}
