// Package prompt reads operator input for the calibration tools. Parsing is kept
// separate from the retry loop so callers decide what to do with bad input.
package prompt

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalid is wrapped by every parse and validation failure
var ErrInvalid = errors.New("invalid input")

// ParseInt parses a base-10 integer, ignoring surrounding whitespace
func ParseInt(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Wrapf(ErrInvalid, "%q is not an integer", strings.TrimSpace(s))
	}
	return v, nil
}

// ParseFloat parses a decimal number, ignoring surrounding whitespace
func ParseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalid, "%q is not a number", strings.TrimSpace(s))
	}
	return v, nil
}

// ParseChoice returns the option equal to s. Matching is exact after trimming whitespace.
func ParseChoice(s string, options []string) (string, error) {
	s = strings.TrimSpace(s)
	for _, o := range options {
		if s == o {
			return o, nil
		}
	}
	return "", errors.Wrapf(ErrInvalid, "%q is not one of %s", s, strings.Join(options, ", "))
}

// IntValidator checks a parsed integer
type IntValidator func(int) error

// AtLeast rejects values below min
func AtLeast(min int) IntValidator {
	return func(v int) error {
		if v < min {
			return errors.Wrapf(ErrInvalid, "%d is less than %d", v, min)
		}
		return nil
	}
}
