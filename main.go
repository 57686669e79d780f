package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/oakwood-commons/jsondiff/cmd"
	"github.com/oakwood-commons/jsondiff/pkg/logger"
)

func main() {
	exitCode := 0
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, cmd.ErrDifferent) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		exitCode = 1
	}

	logger.Sync()
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
