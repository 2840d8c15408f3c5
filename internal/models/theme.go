// Package models defines the data structures shared by the foldpipe components.
package models

import (
	"fmt"
	"strings"
)

// Theme is the UI colour preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme accepts "light" or "dark" in any case.
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	}
	return "", fmt.Errorf("unknown theme %q (want light or dark)", s)
}

// Opposite returns the theme a toggle switches to.
func (t Theme) Opposite() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Icon is the toggle indicator for the theme: the sun offers the way back to
// light, the moon offers dark.
func (t Theme) Icon() string {
	if t == ThemeDark {
		return "☀"
	}
	return "☾"
}
