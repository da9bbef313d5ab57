package plugins

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kingrea/assent/internal/config"
	"github.com/kingrea/assent/internal/difftool"
)

// LoadedTool is a diff tool definition together with the file it came from.
type LoadedTool struct {
	Definition DiffToolDefinition
	Source     string
}

// toolSet collects the tools that apply to one platform. A name may appear
// once per platform, so a project can ship a windows and a darwin variant
// of the same tool.
type toolSet struct {
	goos  string
	tools []LoadedTool
	seen  map[string]string
}

func newToolSet(goos string) *toolSet {
	return &toolSet{goos: strings.ToLower(goos), seen: make(map[string]string)}
}

func (s *toolSet) add(def DiffToolDefinition, source string) error {
	if err := def.Validate(); err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}
	def = def.Normalized()
	if !def.AppliesTo(s.goos) {
		return nil
	}
	if prev, ok := s.seen[def.Name]; ok {
		return fmt.Errorf("plugin %s: defined twice for %s (%s and %s)", def.Name, s.goos, prev, source)
	}
	s.seen[def.Name] = source
	s.tools = append(s.tools, LoadedTool{Definition: def, Source: source})
	return nil
}

// LoadTools reads the YAML and Go tool definitions in dir and returns the
// ones that apply to goos, YAML files first, each group in file name order.
// A missing directory holds no tools.
func LoadTools(dir, goos string) ([]LoadedTool, error) {
	set := newToolSet(goos)
	if err := set.loadYAMLTools(dir); err != nil {
		return nil, err
	}
	if err := set.loadGoTools(dir); err != nil {
		return nil, err
	}
	return set.tools, nil
}

// ProjectRegistry builds the diff tool registry for a project: the built-in
// catalog for goos, plugin tools from the configured tools directory, then
// the preferred tools moved to the front and disabled tools removed. The
// returned names are the plugin tools that were registered.
func ProjectRegistry(cfg *config.Config, goos string) (*difftool.Registry, []string, error) {
	reg, err := difftool.NewRegistry(difftool.Catalog(goos)...)
	if err != nil {
		return nil, nil, err
	}
	if cfg == nil {
		return reg, nil, nil
	}
	names, err := RegisterDiffTools(reg, cfg.ToolsDir(), goos)
	if err != nil {
		return nil, nil, err
	}
	reg.Prefer(cfg.PreferredTools()...)
	reg.Remove(cfg.DisabledTools()...)
	return reg, names, nil
}

// RegisterDiffTools registers the tools under dir that apply to goos and
// moves them ahead of the built-in tools. A plugin with a built-in's name
// replaces the built-in. It returns the names of the registered tools in
// load order.
func RegisterDiffTools(reg *difftool.Registry, dir, goos string) ([]string, error) {
	if reg == nil {
		return nil, nil
	}
	tools, err := LoadTools(dir, goos)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, tool := range tools {
		name := tool.Definition.Name
		reg.Remove(name)
		if err := reg.Register(tool.Definition.Descriptor()); err != nil {
			return nil, fmt.Errorf("plugin %s: register from %s: %w", name, tool.Source, err)
		}
		names = append(names, name)
	}
	reg.Prefer(names...)
	return names, nil
}

// definitionFiles lists the regular files in dir accepted by match, sorted
// by name.
func definitionFiles(dir string, match func(name string) bool) ([]string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("plugin: read %s: %w", dir, err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !match(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths, nil
}
