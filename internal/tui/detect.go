package tui

import (
	"os"
	"strconv"

	"golang.org/x/term"
)

// EnvNonInteractive forces non-interactive mode when set to a true value ("1", "true").
const EnvNonInteractive = "METAWS_NON_INTERACTIVE"

// Mode says whether a human can watch a spinner and answer an overwrite prompt.
type Mode int

const (
	// ModeNonInteractive disables the spinner and approves writes without asking.
	ModeNonInteractive Mode = iota
	// ModeInteractive draws the spinner and prompts on stderr, reading answers from stdin.
	ModeInteractive
)

// Terminal describes the process environment mode detection looks at.
type Terminal struct {
	Getenv      func(string) string
	StdinIsTTY  bool
	StderrIsTTY bool
}

// CurrentTerminal inspects the running process.
func CurrentTerminal() Terminal {
	return Terminal{
		Getenv:      os.Getenv,
		StdinIsTTY:  term.IsTerminal(int(os.Stdin.Fd())),
		StderrIsTTY: term.IsTerminal(int(os.Stderr.Fd())),
	}
}

// DetectMode reports the mode of the running process.
func DetectMode() Mode {
	return CurrentTerminal().Mode()
}

// Mode is interactive only when stdin and stderr are both terminals, TERM is
// not "dumb", and neither METAWS_NON_INTERACTIVE nor CI is set.
// Stdout is not consulted: listings may be piped while the spinner and
// prompt stay on stderr.
func (t Terminal) Mode() Mode {
	getenv := t.Getenv
	if getenv == nil {
		getenv = func(string) string { return "" }
	}

	if forced, err := strconv.ParseBool(getenv(EnvNonInteractive)); err == nil && forced {
		return ModeNonInteractive
	}
	if getenv("CI") != "" || getenv("TERM") == "dumb" {
		return ModeNonInteractive
	}
	if !t.StdinIsTTY || !t.StderrIsTTY {
		return ModeNonInteractive
	}
	return ModeInteractive
}
