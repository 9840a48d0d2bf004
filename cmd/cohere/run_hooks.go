package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// runCleanups — очистка трассировки и профилировщиков текущей команды, в обратном порядке.
var runCleanups []func()

func beforeRun(cmd *cobra.Command, _ []string) error {
	traceCleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	runCleanups = append(runCleanups, traceCleanup)

	profCleanup, err := setupProfiling(cmd)
	if err != nil {
		finishRun()
		return err
	}
	runCleanups = append(runCleanups, profCleanup)
	return nil
}

// afterRun runs after a successful command. On error cobra skips
// PersistentPostRun, so commands that fail call finishRun themselves.
func afterRun(_ *cobra.Command, _ []string) error {
	finishRun()
	return nil
}

func finishRun() {
	for i := len(runCleanups) - 1; i >= 0; i-- {
		runCleanups[i]()
	}
	runCleanups = nil
}

func finishOnError(err *error) {
	if *err != nil {
		finishRun()
	}
}

func profileFlagsError(name string, err error) error {
	return fmt.Errorf("failed to get %s flag: %w", name, err)
}
