package main

import (
	"fmt"
	"os"
	"strings"
)

// uiMode is the value of check --ui.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	mode := uiMode(strings.TrimSpace(strings.ToLower(value)))
	switch mode {
	case "":
		return uiModeAuto, nil
	case uiModeAuto, uiModeOn, uiModeOff:
		return mode, nil
	}
	return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
}

// progressWanted decides whether check draws the progress view on stderr.
// Only the pretty report shares the terminal with it, and --quiet wins over
// --ui on. In auto mode a single template is too fast to be worth a view.
func progressWanted(mode uiMode, format string, quietOut, dir bool) bool {
	if format != "pretty" || quietOut {
		return false
	}
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	}
	return dir && isTerminal(os.Stderr)
}
