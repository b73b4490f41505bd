// Package prompts provides a loader for externalized LLM prompt templates.
// Prompts are stored as JSON files and embedded at compile time.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"
)

// Outreach is the prompt file used by the summarizer and the content generator.
const Outreach = "outreach.json"

//go:embed *.json
var promptFiles embed.FS

var (
	loadOnce sync.Once
	files    map[string]map[string]string
	loadErr  error
)

// Get retrieves a prompt by filename and key.
// The filename should not include the path (e.g., "outreach.json").
// Returns an error if the file or key is not found.
func Get(filename, key string) (string, error) {
	prompts, err := loadFile(filename)
	if err != nil {
		return "", err
	}

	prompt, exists := prompts[key]
	if !exists {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}

	return prompt, nil
}

// MustGet retrieves a prompt by filename and key, panicking if not found.
// Use this for prompts that are required at initialization time.
func MustGet(filename, key string) string {
	prompt, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// Format replaces placeholders in the form {{.Key}} with values from data.
// Replacement is a single pass, so values containing placeholder text are
// never expanded again. Unknown placeholders are left as-is.
func Format(template string, data map[string]string) string {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	oldnew := make([]string, 0, len(keys)*2)
	for _, key := range keys {
		oldnew = append(oldnew, "{{."+key+"}}", data[key])
	}
	return strings.NewReplacer(oldnew...).Replace(template)
}

// List returns all available prompt keys in a file, sorted.
func List(filename string) ([]string, error) {
	prompts, err := loadFile(filename)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(prompts))
	for key := range prompts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func loadFile(filename string) (map[string]string, error) {
	loadOnce.Do(func() {
		files, loadErr = loadAll(promptFiles)
	})
	if loadErr != nil {
		return nil, loadErr
	}

	prompts, ok := files[filename]
	if !ok {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, fs.ErrNotExist)
	}
	return prompts, nil
}

// loadAll parses every embedded prompt file once.
func loadAll(fsys fs.FS) (map[string]map[string]string, error) {
	names, err := fs.Glob(fsys, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list prompt files: %w", err)
	}

	out := make(map[string]map[string]string, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt file %s: %w", name, err)
		}

		var prompts map[string]string
		if err := json.Unmarshal(data, &prompts); err != nil {
			return nil, fmt.Errorf("failed to parse prompt file %s: %w", name, err)
		}
		out[name] = prompts
	}
	return out, nil
}
