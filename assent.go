// Package assent verifies test output against a human-approved baseline.
//
// Each assertion names a test identity. Its output is sanitised and compared
// with <dir>/<identity>.approved.<ext>. On a mismatch the output is written
// to the matching .received. file, the first installed diff tool is opened
// on the pair, and the test fails. Promoting a received file to approved is
// always a human action (rename it, or run "assent approve").
//
//	func TestReport(t *testing.T) {
//		assent.Assent(t, render(report))
//	}
package assent

import (
	"strings"
	"testing"
)

// Assent verifies content for the running test and fails it on a mismatch.
// The identity is derived from t.Name(). With no configuration the project
// default is used; with several, the last one wins.
func Assent(t testing.TB, content string, cfgs ...Configuration) {
	t.Helper()
	verify(t, IdentityFromName(t.Name()), content, cfgs)
}

// AssentNamed is Assent for a test that makes more than one assertion, or a
// data-driven case that shares its name with others. discriminator is
// appended to the identity derived from t.Name().
func AssentNamed(t testing.TB, discriminator, content string, cfgs ...Configuration) {
	t.Helper()
	id := IdentityFromName(t.Name())
	if id.Discriminator != "" {
		// go test replaces spaces in subtest names, so this cannot clash
		// with a deeper subtest.
		id.Discriminator += " " + discriminator
	} else {
		id.Discriminator = discriminator
	}
	verify(t, id, content, cfgs)
}

func verify(t testing.TB, id TestIdentity, content string, cfgs []Configuration) {
	t.Helper()
	var cfg Configuration
	if len(cfgs) > 0 {
		cfg = cfgs[len(cfgs)-1]
	} else {
		var err error
		if cfg, err = DefaultConfiguration(); err != nil {
			t.Fatalf("assent: load configuration: %v", err)
			return
		}
	}
	if err := cfg.Verify(id, content); err != nil {
		t.Fatal(err)
	}
}

// IdentityFromName maps a go test name to an identity. The top-level test
// becomes the suite, the first subtest the case and any deeper subtests the
// discriminator.
func IdentityFromName(name string) TestIdentity {
	parts := strings.SplitN(name, "/", 3)
	id := TestIdentity{Suite: parts[0]}
	if len(parts) > 1 {
		id.Case = parts[1]
	}
	if len(parts) > 2 {
		id.Discriminator = parts[2]
	}
	return id
}
