package plugins

import (
	"fmt"
	"strings"

	"github.com/kingrea/assent/internal/difftool"
)

// Argument placeholders substituted at launch time.
const (
	PlaceholderReceived = "{received}"
	PlaceholderApproved = "{approved}"
)

// DiffToolDefinition describes a user-registered diff program loaded from
// YAML or from a Go definition file.
//
// The struct mirrors the on-disk schema under .assent/tools/*.yaml:
//
//	name: araxis
//	paths:
//	  - /Applications/Araxis Merge.app/Contents/Utilities/compare
//	  - compare
//	args: ["-wait", "{approved}", "{received}"]
//	os: [darwin]
type DiffToolDefinition struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Paths       []string `json:"paths" yaml:"paths"`
	Args        []string `json:"args,omitempty" yaml:"args,omitempty"`
	OS          []string `json:"os,omitempty" yaml:"os,omitempty"`
}

// Normalized returns a trimmed, copy-on-write variant of the definition.
// Missing args default to "{received} {approved}".
func (def DiffToolDefinition) Normalized() DiffToolDefinition {
	clone := DiffToolDefinition{
		Name:        strings.ToLower(strings.TrimSpace(def.Name)),
		Description: strings.TrimSpace(def.Description),
		Paths:       trimmed(def.Paths),
		Args:        trimmed(def.Args),
		OS:          trimmed(def.OS),
	}
	for i, goos := range clone.OS {
		clone.OS[i] = strings.ToLower(goos)
	}
	if len(clone.Args) == 0 {
		clone.Args = []string{PlaceholderReceived, PlaceholderApproved}
	}
	return clone
}

// Validate ensures the definition can become a launchable descriptor.
func (def DiffToolDefinition) Validate() error {
	normalized := def.Normalized()
	if normalized.Name == "" {
		return fmt.Errorf("plugin: name is required")
	}
	if len(normalized.Paths) == 0 {
		return fmt.Errorf("plugin %s: at least one path is required", normalized.Name)
	}
	joined := strings.Join(normalized.Args, " ")
	for _, placeholder := range []string{PlaceholderReceived, PlaceholderApproved} {
		if !strings.Contains(joined, placeholder) {
			return fmt.Errorf("plugin %s: args must reference %s", normalized.Name, placeholder)
		}
	}
	return nil
}

// AppliesTo reports whether the tool should be registered on goos. An empty
// OS list means every platform.
func (def DiffToolDefinition) AppliesTo(goos string) bool {
	normalized := def.Normalized()
	if len(normalized.OS) == 0 {
		return true
	}
	for _, candidate := range normalized.OS {
		if candidate == strings.ToLower(goos) {
			return true
		}
	}
	return false
}

// Descriptor converts the definition into a difftool descriptor whose
// argument rule substitutes the placeholders.
func (def DiffToolDefinition) Descriptor() difftool.Descriptor {
	normalized := def.Normalized()
	template := normalized.Args
	return difftool.Descriptor{
		Name:  normalized.Name,
		Paths: normalized.Paths,
		Args: func(receivedPath, approvedPath string) []string {
			replacer := strings.NewReplacer(PlaceholderReceived, receivedPath, PlaceholderApproved, approvedPath)
			args := make([]string, len(template))
			for i, arg := range template {
				args[i] = replacer.Replace(arg)
			}
			return args
		},
	}
}

func trimmed(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}
