package output

import (
	"github.com/fatih/color"
)

// ColorScheme defines the colors used for different elements in the output
type ColorScheme struct {
	Method      *color.Color
	URL         *color.Color
	StatusOK    *color.Color
	StatusWarn  *color.Color
	StatusError *color.Color
	HeaderKey   *color.Color
	Label       *color.Color
	Error       *color.Color
}

// DefaultColorScheme returns the default color scheme
func DefaultColorScheme() *ColorScheme {
	return &ColorScheme{
		Method:      color.New(color.FgBlue, color.Bold),
		URL:         color.New(color.FgCyan),
		StatusOK:    color.New(color.FgGreen, color.Bold),
		StatusWarn:  color.New(color.FgYellow, color.Bold),
		StatusError: color.New(color.FgRed, color.Bold),
		HeaderKey:   color.New(color.FgYellow),
		Label:       color.New(color.FgMagenta, color.Bold),
		Error:       color.New(color.FgRed),
	}
}

// NoColorScheme returns a color scheme with all colors disabled
func NoColorScheme() *ColorScheme {
	scheme := DefaultColorScheme()
	for _, c := range []*color.Color{
		scheme.Method,
		scheme.URL,
		scheme.StatusOK,
		scheme.StatusWarn,
		scheme.StatusError,
		scheme.HeaderKey,
		scheme.Label,
		scheme.Error,
	} {
		c.DisableColor()
	}
	return scheme
}

// ErrorPrefix returns a red "Error:" prefix, or a plain one without color.
func ErrorPrefix(noColor bool) string {
	if noColor {
		return "Error:"
	}
	return color.New(color.FgRed, color.Bold).Sprint("Error:")
}
