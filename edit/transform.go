package edit

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRange is the error reported by line transforms
// when the line number falls outside the valid range.
var ErrRange = errors.New("line number out of range")

// Replace substitutes the first occurrence of old with new.
// Text without an occurrence passes through unchanged.
func Replace(old, new string) Transform {
	return func(s string) (string, error) {
		return strings.Replace(s, old, new, 1), nil
	}
}

// ReplaceAll substitutes every occurrence of old with new.
func ReplaceAll(old, new string) Transform {
	return func(s string) (string, error) {
		return strings.ReplaceAll(s, old, new), nil
	}
}

// Append concatenates text at the end.
func Append(text string) Transform {
	return func(s string) (string, error) {
		return s + text, nil
	}
}

// Prepend concatenates text at the beginning.
func Prepend(text string) Transform {
	return func(s string) (string, error) {
		return text + s, nil
	}
}

// Line transforms split on a single newline character.
// A trailing newline terminates the final line rather than opening an empty one,
// and it is preserved on the way back out,
// so insert/delete/replace round-trips are stable.
// No carriage-return normalization is performed.

// InsertLine inserts text as a new line at 1-indexed position n.
// Valid positions are 1 through lineCount+1;
// inserting at lineCount+1 appends a final line.
func InsertLine(n int, text string) Transform {
	return func(s string) (string, error) {
		lines, trailing := splitLines(s)
		if n < 1 || n > len(lines)+1 {
			return "", fmt.Errorf("inserting at line %d of %d: %w", n, len(lines), ErrRange)
		}
		lines = append(lines[:n-1], append([]string{text}, lines[n-1:]...)...)
		return joinLines(lines, trailing), nil
	}
}

// DeleteLine removes line n. Valid lines are 1 through lineCount.
func DeleteLine(n int) Transform {
	return func(s string) (string, error) {
		lines, trailing := splitLines(s)
		if n < 1 || n > len(lines) {
			return "", fmt.Errorf("deleting line %d of %d: %w", n, len(lines), ErrRange)
		}
		lines = append(lines[:n-1], lines[n:]...)
		return joinLines(lines, trailing), nil
	}
}

// ReplaceLine replaces the content of line n. Valid lines are 1 through lineCount.
func ReplaceLine(n int, text string) Transform {
	return func(s string) (string, error) {
		lines, trailing := splitLines(s)
		if n < 1 || n > len(lines) {
			return "", fmt.Errorf("replacing line %d of %d: %w", n, len(lines), ErrRange)
		}
		lines[n-1] = text
		return joinLines(lines, trailing), nil
	}
}

func splitLines(s string) (lines []string, trailing bool) {
	lines = strings.Split(s, "\n")
	if trailing = strings.HasSuffix(s, "\n"); trailing {
		lines = lines[:len(lines)-1]
	}
	return lines, trailing
}

func joinLines(lines []string, trailing bool) string {
	if len(lines) == 0 {
		return ""
	}
	out := strings.Join(lines, "\n")
	if trailing {
		out += "\n"
	}
	return out
}
