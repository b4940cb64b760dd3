// Package cli provides shared formatting helpers for the bgplab CLI.
package cli

import (
	"os"
)

// colorEnabled is false when NO_COLOR env var is set (per no-color.org).
var colorEnabled = os.Getenv("NO_COLOR") == ""

func colorize(code, s string) string {
	if !colorEnabled {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

// Green wraps s in ANSI green. Returns s unchanged when NO_COLOR is set.
func Green(s string) string { return colorize("32", s) }

// Yellow wraps s in ANSI yellow. Returns s unchanged when NO_COLOR is set.
func Yellow(s string) string { return colorize("33", s) }

// Red wraps s in ANSI red. Returns s unchanged when NO_COLOR is set.
func Red(s string) string { return colorize("31", s) }

// Cyan wraps s in ANSI cyan. Returns s unchanged when NO_COLOR is set.
func Cyan(s string) string { return colorize("36", s) }

// ChangeTag colors a plan tag: adds green, modifies yellow, deletes red.
func ChangeTag(tag string) string {
	switch tag {
	case "[ADD]":
		return Green(tag)
	case "[MOD]":
		return Yellow(tag)
	case "[DEL]":
		return Red(tag)
	}
	return tag
}
