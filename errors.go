package assent

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMismatch matches every *MismatchError.
	ErrMismatch = errors.New("assent: received content does not match approved content")
	// ErrMissingApproval matches a *MismatchError raised because no approved
	// file exists yet.
	ErrMissingApproval = errors.New("assent: no approved file")
)

// MismatchError is the failure raised when received content diverges from
// the approved baseline. The received file has already been written and the
// reporter chain has already run when it is returned.
type MismatchError struct {
	Identity     TestIdentity
	ApprovedPath string
	ReceivedPath string
	// Hint is a human-readable description of the first difference.
	Hint string
	// NewTest is set when no approved file exists.
	NewTest bool
	// Report records what the reporter chain did. It never affects the outcome.
	Report Report
}

func (e *MismatchError) Error() string {
	var b strings.Builder
	if e.NewTest {
		fmt.Fprintf(&b, "assent: %s: no approved file - this looks like a new test\n", e.Identity)
	} else {
		fmt.Fprintf(&b, "assent: %s: received content does not match approved content\n", e.Identity)
	}
	fmt.Fprintf(&b, "  approved: %s\n", e.ApprovedPath)
	fmt.Fprintf(&b, "  received: %s", e.ReceivedPath)
	if e.Report.Final.Reporter != "" {
		fmt.Fprintf(&b, "\n  reporter: %s", e.Report.Final)
	}
	if e.Hint != "" {
		b.WriteString("\n")
		b.WriteString(e.Hint)
	}
	return b.String()
}

// Is matches ErrMismatch, and ErrMissingApproval for new tests.
func (e *MismatchError) Is(target error) bool {
	switch target {
	case ErrMismatch:
		return true
	case ErrMissingApproval:
		return e.NewTest
	}
	return false
}

// IOError reports an environmental failure reading or writing an approval
// file. It is never a mismatch.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("assent: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
