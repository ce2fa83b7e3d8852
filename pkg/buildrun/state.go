package buildrun

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"time"
)

// StateFile is written into the build directory after a successful generate step in
// incremental mode.
const StateFile = ".cgbuild-state"

type generateState struct {
	Generator   []string
	GeneratedAt time.Time
}

func writeState(buildDir string, state generateState) error {
	handle, err := os.Create(filepath.Join(buildDir, StateFile))
	if err != nil {
		return err
	}
	defer handle.Close()

	return gob.NewEncoder(handle).Encode(state)
}

func readState(buildDir string) (generateState, error) {
	var state generateState

	handle, err := os.Open(filepath.Join(buildDir, StateFile))
	if err != nil {
		return state, err
	}
	defer handle.Close()

	err = gob.NewDecoder(handle).Decode(&state)
	return state, err
}
