package buildrun

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"
)

func shellReadDir(path string) ([]os.FileInfo, error) {
	if path == "" {
		path = "."
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	result := make([]os.FileInfo, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			// removed while we were listing the directory
			continue
		}

		result = append(result, info)
	}

	return result, nil
}

// resolvePatternLists expands the glob patterns relative to base. Patterns without matches are dropped.
func resolvePatternLists(base string, patterns []string) ([]string, error) {
	result := []string{}
	cfg := expand.Config{
		ReadDir:  shellReadDir,
		GlobStar: true,
	}

	base, err := filepath.Abs(base)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to resolve %s", base)
	}
	prefix := filepath.ToSlash(base) + "/"

	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		var word *syntax.Word
		literal := prefix + pattern
		if filepath.IsAbs(pattern) {
			literal = pattern
			word = &syntax.Word{Parts: []syntax.WordPart{&syntax.Lit{Value: pattern}}}
		} else {
			// the base path is quoted so special characters in it can't turn into globs
			word = &syntax.Word{Parts: []syntax.WordPart{
				&syntax.SglQuoted{Value: prefix},
				&syntax.Lit{Value: pattern},
			}}
		}

		matches, err := expand.Fields(&cfg, word)
		if err != nil {
			return nil, eris.Wrapf(err, "failed to resolve pattern %s", pattern)
		}

		for _, match := range matches {
			// If a pattern didn't match anything, it's returned as a result. Skip those results.
			if match == literal && strings.ContainsAny(pattern, "*?[") {
				continue
			}

			result = append(result, filepath.FromSlash(match))
		}
	}

	return result, nil
}

// newestInput returns the most recent modification time among the files matched by patterns.
// Files that don't exist or live below exclude are ignored.
func newestInput(base, exclude string, patterns []string) (time.Time, error) {
	var newest time.Time

	inputList, err := resolvePatternLists(base, patterns)
	if err != nil {
		return newest, eris.Wrap(err, "failed to resolve inputs")
	}

	if exclude != "" {
		exclude, err = filepath.Abs(exclude)
		if err != nil {
			return newest, eris.Wrapf(err, "failed to resolve %s", exclude)
		}
	}

	for _, item := range inputList {
		if exclude != "" && isBelow(exclude, item) {
			continue
		}

		info, err := os.Stat(item)
		if err != nil {
			if eris.Is(err, os.ErrNotExist) {
				continue
			}

			return newest, eris.Wrapf(err, "failed to check input %s", item)
		}

		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
	}

	return newest, nil
}

// generateIsFresh reports whether the generate step can be skipped: the last successful run used
// the same command and no input changed since.
func generateIsFresh(ctx context.Context, opts Options, step Step) bool {
	logger := log(ctx)

	state, err := readState(step.Dir)
	if err != nil {
		if !eris.Is(err, os.ErrNotExist) {
			logger.Warn().Err(err).Msg("ignoring unreadable generate state")
		}

		return false
	}

	if !equalArgs(state.Generator, step.Args) {
		logger.Debug().
			Str("step", step.Name).
			Msg("generator command changed")
		return false
	}

	newest, err := newestInput(opts.projectDir(), step.Dir, opts.GenerateInputs)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to check generator inputs")
		return false
	}

	if newest.IsZero() {
		return false
	}

	if state.GeneratedAt.After(newest) {
		logger.Info().
			Str("step", step.Name).
			Msgf("nothing to do (build files are %.0f seconds newer)", state.GeneratedAt.Sub(newest).Seconds())
		return true
	}

	return false
}

func isBelow(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}

	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func equalArgs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	for idx := range a {
		if a[idx] != b[idx] {
			return false
		}
	}

	return true
}
