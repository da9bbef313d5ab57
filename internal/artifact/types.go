// Package artifact defines the on-disk contract for approved and received
// files. Each test identity maps to a stable pair of paths inside the
// approvals directory, and all file IO goes through a ReaderWriter so the
// verification engine never touches the file system directly.

package artifact

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind distinguishes the two files that belong to one test identity.
type Kind string

const (
	// KindApproved is the human-accepted baseline. It is never written by the engine.
	KindApproved Kind = "approved"
	// KindReceived is the latest mismatching output.
	KindReceived Kind = "received"
)

// DefaultExtension is used when no content-type extension is configured.
const DefaultExtension = "txt"

// DefaultDir is the approvals directory relative to the package under test.
const DefaultDir = "testdata"

// TestIdentity is the logical name of one assertion: suite, case and an
// optional discriminator for data-driven cases sharing a case name.
type TestIdentity struct {
	Suite         string
	Case          string
	Discriminator string
}

// Key joins the parts with ".", dropping trailing blank parts. Letters,
// digits, '-' and '_' are kept as they are, in any script; every other byte
// is written as %XX. The encoding is reversible, so distinct identities
// never share a key, and the result is a valid file name on every
// supported platform.
func (id TestIdentity) Key() string {
	parts := []string{id.Suite, id.Case, id.Discriminator}
	for len(parts) > 0 && isBlank(parts[len(parts)-1]) {
		parts = parts[:len(parts)-1]
	}
	encoded := make([]string, len(parts))
	for i, part := range parts {
		if !isBlank(part) {
			encoded[i] = encodePart(part)
		}
	}
	return strings.Join(encoded, ".")
}

// IsZero reports whether every part is blank.
func (id TestIdentity) IsZero() bool {
	return isBlank(id.Suite) && isBlank(id.Case) && isBlank(id.Discriminator)
}

// String implements fmt.Stringer.
func (id TestIdentity) String() string {
	return id.Key()
}

// Namer derives the base file name (without markers or extension) for an identity.
type Namer func(TestIdentity) string

// DefaultNamer uses TestIdentity.Key.
func DefaultNamer(id TestIdentity) string {
	return id.Key()
}

func isBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}

func encodePart(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for i := 0; i < len(value); {
		r, size := utf8.DecodeRuneInString(value[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			writeEscaped(&b, value[i:i+1])
		case r == '-' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteString(value[i : i+size])
		default:
			writeEscaped(&b, value[i:i+size])
		}
		i += size
	}
	return b.String()
}

func writeEscaped(b *strings.Builder, raw string) {
	for i := 0; i < len(raw); i++ {
		fmt.Fprintf(b, "%%%02X", raw[i])
	}
}
