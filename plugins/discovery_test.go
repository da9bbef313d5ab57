package plugins

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kingrea/assent/internal/difftool"
)

const meldOverrideYAML = `name: meld
paths: [/opt/meld/bin/meld]
args: ["--newtab", "{received}", "{approved}"]
`

const windowsOnlyYAML = `name: winonly
paths: ['C:\Tools\winonly.exe']
os: [windows]
`

func TestRegisterDiffToolsPrefersPlugins(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "araxis.yaml"), []byte(sampleDefinition), 0644); err != nil {
		t.Fatalf("write plugin: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "meld.yaml"), []byte(meldOverrideYAML), 0644); err != nil {
		t.Fatalf("write plugin: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "winonly.yml"), []byte(windowsOnlyYAML), 0644); err != nil {
		t.Fatalf("write plugin: %v", err)
	}
	reg, err := difftool.NewRegistry(difftool.Catalog("linux")...)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	names, err := RegisterDiffTools(reg, dir, "linux")
	if err != nil {
		t.Fatalf("register plugins: %v", err)
	}
	if len(names) != 2 || names[0] != "araxis" || names[1] != "meld" {
		t.Fatalf("unexpected registered names %v", names)
	}
	order := reg.Names()
	if order[0] != "araxis" || order[1] != "meld" {
		t.Fatalf("plugins should lead the fallback order, got %v", order)
	}
	meld, _ := reg.Lookup("meld")
	if meld.Paths[0] != "/opt/meld/bin/meld" {
		t.Fatalf("plugin should replace the built-in meld, got %v", meld.Paths)
	}
	if _, ok := reg.Lookup("winonly"); ok {
		t.Fatalf("windows-only plugin must not register on linux")
	}
}

func TestRegisterDiffToolsMissingDir(t *testing.T) {
	reg := &difftool.Registry{}
	names, err := RegisterDiffTools(reg, filepath.Join(t.TempDir(), "none"), "linux")
	if err != nil || names != nil {
		t.Fatalf("missing dir should be a no-op, got %v %v", names, err)
	}
}

func TestRegisterDiffToolsDuplicate(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.yaml", "b.yaml"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(sampleDefinition), 0644); err != nil {
			t.Fatalf("write plugin: %v", err)
		}
	}
	_, err := RegisterDiffTools(&difftool.Registry{}, dir, "linux")
	if err == nil || !strings.Contains(err.Error(), "plugin araxis: defined twice") {
		t.Fatalf("expected duplicate tool error naming araxis, got %v", err)
	}
}

func TestDuplicateAcrossYAMLAndGo(t *testing.T) {
	dir := t.TempDir()
	writePlugin(t, filepath.Join(dir, "araxis.yaml"), sampleDefinition)
	writePlugin(t, filepath.Join(dir, "araxis.go"), `package main

import "github.com/kingrea/assent/plugins"

func DiffTools() []plugins.DiffToolDefinition {
	return []plugins.DiffToolDefinition{{Name: "Araxis", Paths: []string{"/usr/bin/compare"}}}
}
`)
	if _, err := LoadTools(dir, "linux"); err == nil || !strings.Contains(err.Error(), "araxis") {
		t.Fatalf("expected duplicate error across file kinds, got %v", err)
	}
}

func TestDuplicateForOtherPlatformIsIgnored(t *testing.T) {
	dir := t.TempDir()
	writePlugin(t, filepath.Join(dir, "a.yaml"), windowsOnlyYAML)
	writePlugin(t, filepath.Join(dir, "b.yaml"), windowsOnlyYAML)

	tools, err := LoadTools(dir, "linux")
	if err != nil || len(tools) != 0 {
		t.Fatalf("windows tools should be skipped on linux, got %v %v", tools, err)
	}
	if _, err := LoadTools(dir, "windows"); err == nil {
		t.Fatalf("expected duplicate error on windows")
	}
}
