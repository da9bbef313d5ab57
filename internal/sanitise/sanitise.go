// Package sanitise normalises received and approved content before the two
// are compared. Every sanitiser is a pure string transform; a Pipeline is an
// ordered, immutable list of them.
package sanitise

import (
	"regexp"
	"strconv"
	"strings"
)

// Func transforms content. Implementations must be pure and deterministic.
type Func func(string) string

// Apply runs every transform left to right. A nil transform is skipped.
func Apply(content string, fns ...Func) string {
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		content = fn(content)
	}
	return content
}

// Pipeline is a copy-on-write list of sanitisers split into built-ins and
// caller supplied transforms. Built-ins always run first.
type Pipeline struct {
	builtins []Func
	custom   []Func
}

// Default returns the pipeline every configuration starts from.
func Default() Pipeline {
	return Pipeline{builtins: []Func{NormaliseLineEndings}}
}

// Append returns a pipeline with fns added after the existing transforms.
func (p Pipeline) Append(fns ...Func) Pipeline {
	next := p.clone()
	next.custom = append(next.custom, compact(fns)...)
	return next
}

// Replace returns a pipeline that runs only fns, dropping the built-ins and
// any previously appended transforms.
func (p Pipeline) Replace(fns ...Func) Pipeline {
	return Pipeline{custom: compact(fns)}
}

// Len reports the number of transforms in the pipeline.
func (p Pipeline) Len() int {
	return len(p.builtins) + len(p.custom)
}

// Apply runs the pipeline over content.
func (p Pipeline) Apply(content string) string {
	content = Apply(content, p.builtins...)
	return Apply(content, p.custom...)
}

func (p Pipeline) clone() Pipeline {
	return Pipeline{
		builtins: append([]Func(nil), p.builtins...),
		custom:   append([]Func(nil), p.custom...),
	}
}

func compact(fns []Func) []Func {
	out := make([]Func, 0, len(fns))
	for _, fn := range fns {
		if fn != nil {
			out = append(out, fn)
		}
	}
	return out
}

// NormaliseLineEndings converts CRLF and lone CR line endings to LF.
func NormaliseLineEndings(content string) string {
	if !strings.Contains(content, "\r") {
		return content
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.ReplaceAll(content, "\r", "\n")
}

// TrimTrailingWhitespace strips spaces and tabs at the end of every line.
func TrimTrailingWhitespace(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}

// Replace returns a sanitiser replacing every occurrence of old with repl.
func Replace(old, repl string) Func {
	return func(content string) string {
		if old == "" {
			return content
		}
		return strings.ReplaceAll(content, old, repl)
	}
}

// ReplaceRegexp returns a sanitiser replacing every match of pattern with
// repl. It panics when pattern does not compile, like regexp.MustCompile.
func ReplaceRegexp(pattern, repl string) Func {
	re := regexp.MustCompile(pattern)
	return func(content string) string {
		return re.ReplaceAllString(content, repl)
	}
}

var (
	guidPattern      = regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\b`)
	timestampPattern = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:?\d{2})?\b`)
)

// RedactGUIDs numbers each distinct GUID in order of first appearance, so
// "a, b, a" becomes "guid_1, guid_2, guid_1". Identity between values is
// preserved while the values themselves are not.
func RedactGUIDs(content string) string {
	return numbered(guidPattern, "guid", content)
}

// RedactTimestamps replaces ISO-8601 timestamps the same way RedactGUIDs
// replaces GUIDs.
func RedactTimestamps(content string) string {
	return numbered(timestampPattern, "timestamp", content)
}

func numbered(re *regexp.Regexp, label, content string) string {
	seen := map[string]string{}
	return re.ReplaceAllStringFunc(content, func(match string) string {
		key := strings.ToLower(match)
		if token, ok := seen[key]; ok {
			return token
		}
		token := label + "_" + strconv.Itoa(len(seen)+1)
		seen[key] = token
		return token
	})
}
