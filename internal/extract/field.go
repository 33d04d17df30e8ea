package extract

import (
	"errors"
	"fmt"
	"strings"
)

// ErrFieldNotFound is returned when a field's opening or closing marker is absent.
var ErrFieldNotFound = errors.New("field not found")

// Field returns the text between the first <tag> and the nearest </tag> after it.
// Scanning is purely positional; the blob is never parsed as XML.
func Field(blob, tag string) (string, error) {
	open := "<" + tag + ">"
	start := strings.Index(blob, open)
	if start < 0 {
		return "", fmt.Errorf("%w: %s", ErrFieldNotFound, tag)
	}
	start += len(open)
	end := strings.Index(blob[start:], "</"+tag+">")
	if end < 0 {
		return "", fmt.Errorf("%w: %s (unterminated)", ErrFieldNotFound, tag)
	}
	return blob[start : start+end], nil
}

// between returns the text after the first left marker and before the nearest right marker
// following it. name labels the error.
func between(s, left, right, name string) (string, error) {
	start := strings.Index(s, left)
	if start < 0 {
		return "", fmt.Errorf("%w: %s", ErrFieldNotFound, name)
	}
	start += len(left)
	end := strings.Index(s[start:], right)
	if end < 0 {
		return "", fmt.Errorf("%w: %s", ErrFieldNotFound, name)
	}
	return s[start : start+end], nil
}

// nearest returns the offset of whichever marker occurs first in s, or -1.
func nearest(s string, markers ...string) int {
	best := -1
	for _, m := range markers {
		if i := strings.Index(s, m); i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	return best
}
