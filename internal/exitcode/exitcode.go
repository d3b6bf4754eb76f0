// Package exitcode holds the process exit codes shared by every bridge binary.
package exitcode

import (
	"errors"
)

const (
	OK               = 0
	Failure          = 1
	CorruptedData    = 240
	RetryExhausted   = 241
	RunnerIDMismatch = 242
)

// Rule maps errors matching Err (errors.Is) to Code.
type Rule struct {
	Err  error
	Code int
}

// Of returns the exit code for err: OK for nil, the first matching rule, or Failure.
func Of(err error, rules ...Rule) int {
	if err == nil {
		return OK
	}
	for _, rule := range rules {
		if errors.Is(err, rule.Err) {
			return rule.Code
		}
	}
	return Failure
}
