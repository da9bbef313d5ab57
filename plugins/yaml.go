package plugins

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseToolsYAML decodes every tool in a YAML payload. A file may hold one
// tool or several separated by "---". Unknown keys are rejected so a typo
// such as "path:" fails loudly instead of producing a tool with no paths.
func ParseToolsYAML(data []byte) ([]DiffToolDefinition, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("plugin: no diff tools defined")
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var defs []DiffToolDefinition
	for {
		var def DiffToolDefinition
		err := dec.Decode(&def)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("plugin: decode tool %d: %w", len(defs)+1, err)
		}
		if err := def.Validate(); err != nil {
			return nil, err
		}
		defs = append(defs, def.Normalized())
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("plugin: no diff tools defined")
	}
	return defs, nil
}

// loadYAMLTools adds the tools from every *.yaml and *.yml file in dir.
func (s *toolSet) loadYAMLTools(dir string) error {
	paths, err := definitionFiles(dir, isYAMLFile)
	if err != nil {
		return err
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("plugin: read %s: %w", path, err)
		}
		defs, err := ParseToolsYAML(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		for i, def := range defs {
			if err := s.add(def, sourceName(path, i, len(defs))); err != nil {
				return err
			}
		}
	}
	return nil
}

func sourceName(path string, index, total int) string {
	path = filepath.Clean(path)
	if total == 1 {
		return path
	}
	return fmt.Sprintf("%s#%d", path, index+1)
}

func isYAMLFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}
