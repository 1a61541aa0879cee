// Package prompts holds the LLM prompt templates used to phrase explanations.
//
// Templates live in embedded JSON files mapping a key to text with {{.Field}}
// placeholders. A template knows its fields, and rendering fails when data is
// missing one of them, so no prompt reaches a model with a placeholder left in.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

var placeholder = regexp.MustCompile(`\{\{\.([A-Za-z][A-Za-z0-9_]*)\}\}`)

// Template is one prompt with the fields it expects
type Template struct {
	Key    string
	Text   string
	Fields []string
}

// Render substitutes every placeholder. Extra data keys are ignored.
func (t *Template) Render(data map[string]string) (string, error) {
	var missing []string
	for _, f := range t.Fields {
		if _, ok := data[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("prompt %q: missing fields %s", t.Key, strings.Join(missing, ", "))
	}

	return placeholder.ReplaceAllStringFunc(t.Text, func(m string) string {
		return data[placeholder.FindStringSubmatch(m)[1]]
	}), nil
}

func newTemplate(key, text string) *Template {
	seen := make(map[string]bool)
	var fields []string
	for _, m := range placeholder.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			fields = append(fields, m[1])
		}
	}
	return &Template{Key: key, Text: text, Fields: fields}
}

// templates parsed per file
var (
	files   = make(map[string]map[string]*Template)
	filesMu sync.Mutex
)

func load(filename string) (map[string]*Template, error) {
	filesMu.Lock()
	defer filesMu.Unlock()

	if set, ok := files[filename]; ok {
		return set, nil
	}

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	set := make(map[string]*Template, len(raw))
	for key, text := range raw {
		set[key] = newTemplate(key, text)
	}
	files[filename] = set
	return set, nil
}

// Lookup returns the template stored under key in filename (e.g. "explain.json")
func Lookup(filename, key string) (*Template, error) {
	set, err := load(filename)
	if err != nil {
		return nil, err
	}
	t, ok := set[key]
	if !ok {
		return nil, fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return t, nil
}

// Render looks up a template and renders it with data
func Render(filename, key string, data map[string]string) (string, error) {
	t, err := Lookup(filename, key)
	if err != nil {
		return "", err
	}
	return t.Render(data)
}

// Keys lists the template keys of a file in sorted order
func Keys(filename string) ([]string, error) {
	set, err := load(filename)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
