// Package ui holds the terminal palette for command output.
//
// Colors degrade automatically: lipgloss detects the terminal profile, so output piped to a file or a terminal
// without color support is plain text.
package ui
