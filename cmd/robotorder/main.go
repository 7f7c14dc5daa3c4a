package main

import (
	"os"
	"robotorder/cmd/robotorder/commands"
	"robotorder/lib/osutil"

	"github.com/charmbracelet/fang"
)

const version = "0.1.0"

func main() {
	err := fang.Execute(
		osutil.SignalContext(),
		commands.NewRootCmd(),
		fang.WithVersion(version),
	)
	if err != nil {
		os.Exit(1)
	}
}
