package main

import (
	"os"

	"github.com/peppetort/POLIMI-CG-21-22-dronesimulator/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
