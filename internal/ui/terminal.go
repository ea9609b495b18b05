package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/mattn/go-isatty"
)

// IsInteractiveTerminal reports whether file is attached to a terminal.
func IsInteractiveTerminal(file *os.File) bool {
	if file == nil {
		return false
	}
	fileDescriptor := file.Fd()
	return isatty.IsTerminal(fileDescriptor) || isatty.IsCygwinTerminal(fileDescriptor)
}

// SupportsStyling reports whether file is a terminal that accepts ANSI styling.
func SupportsStyling(file *os.File) bool {
	if !IsInteractiveTerminal(file) {
		return false
	}
	return detectColorProfile(file) != colorprofile.NoTTY
}

func detectColorProfile(file *os.File) colorprofile.Profile {
	return colorprofile.Detect(file, os.Environ())
}
