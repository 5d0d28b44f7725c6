// Package prompts loads agent prompt templates from a directory, one text
// file per role.
package prompts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Loader reads and caches prompt templates. A template is read from durable
// storage at most once per Loader lifetime.
type Loader struct {
	dir   string
	cache map[string]string
}

func NewLoader(dir string) *Loader {
	return &Loader{dir: dir, cache: make(map[string]string)}
}

// Load returns the template for the given role name, reading
// <dir>/<role>.txt on the first request and serving the cache afterwards.
func (l *Loader) Load(role string) (string, error) {
	if text, ok := l.cache[role]; ok {
		return text, nil
	}

	path := filepath.Join(l.dir, role+".txt")
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("load prompt %q: %w", path, err)
	}

	text := strings.TrimSpace(string(raw))
	l.cache[role] = text
	return text, nil
}
