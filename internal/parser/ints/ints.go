// Package ints extracts integers embedded in free-text fields, such as the
// month count in a loan term like " 36 months".
package ints

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrNoInt is returned by FirstInt when the text contains no digits.
var ErrNoInt = errors.New("no integer in text")

// FirstInt returns the first embedded integer in s, e.g. 36 for "36 months".
// Signs are not recognized: "-5" yields 5.
func FirstInt(s string) (int, error) {
	start, end := nextRun(s, 0)
	if start < 0 {
		return 0, fmt.Errorf("%q: %w", s, ErrNoInt)
	}
	return parseRun(s[start:end])
}

// nextRun returns the bounds of the first digit run at or after from, or
// (-1, -1).
func nextRun(s string, from int) (int, int) {
	start := -1
	for i := from; i < len(s); i++ {
		isDigit := s[i] >= '0' && s[i] <= '9'
		switch {
		case isDigit && start < 0:
			start = i
		case !isDigit && start >= 0:
			return start, i
		}
	}
	if start >= 0 {
		return start, len(s)
	}
	return -1, -1
}

func parseRun(run string) (int, error) {
	n, err := strconv.Atoi(run)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", run, err)
	}
	return n, nil
}
