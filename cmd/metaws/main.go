package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/metaws/metaws/internal/cli"
	"github.com/metaws/metaws/pkg/metaws"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(metaws.ExitPanic)
		}
	}()

	if os.Getenv("METAWS_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	if err := cli.Execute(); err != nil {
		os.Exit(metaws.ExitCodeForError(err))
	}
}
