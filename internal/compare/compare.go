// Package compare decides whether sanitised received content matches the
// approved baseline, and explains the difference when it does not.
package compare

import "strings"

// Comparer reports whether received matches approved.
type Comparer interface {
	Compare(received, approved string) bool
}

// Func adapts a plain function to the Comparer interface.
type Func func(received, approved string) bool

// Compare calls f.
func (f Func) Compare(received, approved string) bool {
	return f(received, approved)
}

type exact struct{}

func (exact) Compare(received, approved string) bool { return received == approved }

type ignoreWhitespace struct{}

func (ignoreWhitespace) Compare(received, approved string) bool {
	return strings.Join(strings.Fields(received), " ") == strings.Join(strings.Fields(approved), " ")
}

var (
	// Exact is the default comparer: byte-for-byte string equality.
	Exact Comparer = exact{}
	// IgnoreWhitespace treats every run of whitespace as a single separator
	// and ignores leading and trailing whitespace.
	IgnoreWhitespace Comparer = ignoreWhitespace{}
)

// OrDefault returns c, or Exact when c is nil.
func OrDefault(c Comparer) Comparer {
	if c == nil {
		return Exact
	}
	return c
}
