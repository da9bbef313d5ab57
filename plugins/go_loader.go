package plugins

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// goToolsFunc is the function a Go definition file must declare:
//
//	package main
//
//	import "github.com/kingrea/assent/plugins"
//
//	func DiffTools() ([]plugins.DiffToolDefinition, error)
//
// The error result is optional.
const goToolsFunc = "DiffTools"

var pluginSymbols = interp.Exports{
	"github.com/kingrea/assent/plugins/plugins": {
		"DiffToolDefinition": reflect.ValueOf((*DiffToolDefinition)(nil)),
	},
}

// loadGoTools evaluates every .go file in dir with yaegi and adds the tools
// returned by its DiffTools function. The standard library is available, so
// a file can inspect the host before deciding which tools to declare.
func (s *toolSet) loadGoTools(dir string) error {
	paths, err := definitionFiles(dir, func(name string) bool {
		return filepath.Ext(name) == ".go"
	})
	if err != nil {
		return err
	}
	for _, path := range paths {
		defs, err := evalGoTools(path)
		if err != nil {
			return err
		}
		for i, def := range defs {
			if err := s.add(def, sourceName(path, i, len(defs))); err != nil {
				return err
			}
		}
	}
	return nil
}

func evalGoTools(path string) ([]DiffToolDefinition, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plugin: read %s: %w", path, err)
	}
	if strings.TrimSpace(string(code)) == "" {
		return nil, fmt.Errorf("plugin: %s is empty", path)
	}
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("plugin: load stdlib: %w", err)
	}
	if err := i.Use(pluginSymbols); err != nil {
		return nil, fmt.Errorf("plugin: load symbols: %w", err)
	}
	if _, err := i.EvalPath(path); err != nil {
		return nil, fmt.Errorf("plugin: interpret %s: %w", path, err)
	}
	fn, err := i.Eval(goToolsFunc)
	if err != nil {
		return nil, fmt.Errorf("plugin: %s must declare %s() ([]plugins.DiffToolDefinition, error): %w", path, goToolsFunc, err)
	}
	defs, err := callGoTools(fn)
	if err != nil {
		return nil, fmt.Errorf("plugin: %s: %w", path, err)
	}
	return defs, nil
}

func callGoTools(fn reflect.Value) ([]DiffToolDefinition, error) {
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is not a function", goToolsFunc)
	}
	if fn.Type().NumIn() != 0 {
		return nil, fmt.Errorf("%s must take no arguments", goToolsFunc)
	}
	results := fn.Call(nil)
	if len(results) == 0 || len(results) > 2 {
		return nil, fmt.Errorf("%s must return ([]plugins.DiffToolDefinition[, error])", goToolsFunc)
	}
	if len(results) == 2 && !results[1].IsNil() {
		err, ok := results[1].Interface().(error)
		if !ok {
			return nil, fmt.Errorf("%s returned a non-error second value", goToolsFunc)
		}
		return nil, err
	}
	defs, ok := results[0].Interface().([]DiffToolDefinition)
	if !ok {
		return nil, fmt.Errorf("%s returned %s, want []plugins.DiffToolDefinition", goToolsFunc, results[0].Type())
	}
	return defs, nil
}
