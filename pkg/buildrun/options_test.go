package buildrun

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions_Steps(t *testing.T) {
	project := t.TempDir()
	opts := DefaultOptions()
	opts.ProjectDir = project

	steps := opts.Steps()
	require.Len(t, steps, 3)

	buildDir := filepath.Join(project, "build")
	assert.Equal(t, Step{Name: StepGenerate, Args: []string{"cmake", ".."}, Dir: buildDir, Env: steps[0].Env}, steps[0])
	assert.Equal(t, []string{"make"}, steps[1].Args)
	assert.Equal(t, []string{"./CG_project"}, steps[2].Args)

	for _, step := range steps {
		assert.Equal(t, buildDir, step.Dir)
	}
}

func TestOptions_StepsWithArguments(t *testing.T) {
	opts := DefaultOptions()
	opts.ProjectDir = t.TempDir()
	opts.BuildDir = "out/release"
	opts.BinaryName = "sim"
	opts.Generator = []string{"cmake", "-G", "Ninja"}
	opts.GeneratorArgs = []string{"-DCMAKE_BUILD_TYPE=Release"}
	opts.Builder = []string{"ninja", "-j4"}
	opts.RunArgs = []string{"--fullscreen"}

	steps := opts.Steps()
	assert.Equal(t, []string{"cmake", "-G", "Ninja", "-DCMAKE_BUILD_TYPE=Release", "../.."}, steps[0].Args)
	assert.Equal(t, []string{"ninja", "-j4"}, steps[1].Args)
	assert.Equal(t, []string{"./sim", "--fullscreen"}, steps[2].Args)
}

func TestOptions_ExplicitSourceDir(t *testing.T) {
	opts := DefaultOptions()
	opts.SourceDir = "../src"

	assert.Equal(t, []string{"cmake", "../src"}, opts.Steps()[0].Args)
}

func TestOptions_BuildPath(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "elsewhere")

	opts := DefaultOptions()
	opts.ProjectDir = "project"
	assert.Equal(t, filepath.Join("project", "build"), opts.BuildPath())

	opts.BuildDir = abs
	assert.Equal(t, abs, opts.BuildPath())
}

func TestStep_String(t *testing.T) {
	step := Step{Args: []string{"cmake", ".."}}
	assert.Equal(t, "cmake ..", step.String())

	step = Step{Args: []string{"./CG_project", "two words"}}
	assert.Equal(t, "./CG_project 'two words'", step.String())
}

func TestStepEnv_OverridesProcessEnvironment(t *testing.T) {
	t.Setenv("CGBUILD_TEST_VAR", "old")

	env := stepEnv([]string{"CGBUILD_TEST_VAR=new"})
	assert.Contains(t, env, "CGBUILD_TEST_VAR=new")
	assert.NotContains(t, env, "CGBUILD_TEST_VAR=old")
}
