package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses the task id at the front of args and returns it
// together with the remaining arguments.
//
// Accepted forms are "12" and "#12". Ids start at 1.
func ParseTaskRef(args []string) (int64, []string, error) {
	if len(args) == 0 {
		return 0, nil, ErrTaskRefRequired
	}

	ref := strings.TrimPrefix(args[0], "#")
	if !isAllDigits(ref) {
		return 0, nil, fmt.Errorf("invalid task reference: %s", args[0])
	}
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil || id < 1 {
		return 0, nil, fmt.Errorf("invalid task reference: %s", args[0])
	}
	return id, args[1:], nil
}

// parseRefArg parses a reference that must be the only argument,
// reporting problems on errOut. ok is false when the command should stop
// with exitcode.UserError.
func parseRefArg(args []string, errOut io.Writer) (id int64, ok bool) {
	id, rest, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return 0, false
	}
	if len(rest) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", rest[0])
		return 0, false
	}
	return id, true
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
