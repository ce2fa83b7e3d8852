package buildrun

import (
	"os"

	"github.com/rotisserie/eris"
)

var mkdir = os.Mkdir

// EnsureBuildDir creates dir unless it already exists. Only the last path element is created;
// a missing parent is reported as a *DirError.
func EnsureBuildDir(dir string) (created bool, err error) {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return false, &DirError{Path: dir, Err: eris.Errorf("%s exists but is not a directory", dir)}
		}

		return false, nil
	}

	if !eris.Is(err, os.ErrNotExist) {
		return false, &DirError{Path: dir, Err: err}
	}

	err = mkdir(dir, 0o777)
	if err != nil {
		// somebody else may have created it in the meantime
		if eris.Is(err, os.ErrExist) {
			if info, sErr := os.Stat(dir); sErr == nil && info.IsDir() {
				return false, nil
			}
		}

		return false, &DirError{Path: dir, Err: err}
	}

	return true, nil
}
