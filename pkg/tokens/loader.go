package tokens

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// TokenFileExt is the extension of files holding one bearer token each.
const TokenFileExt = ".txt"

// LoadDir reads every *.txt file in dir in sorted filename order and returns the
// trimmed, non-empty contents. A missing directory yields an empty list.
func LoadDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read token dir %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), TokenFileExt) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var tokens []string
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read token file %s: %w", name, err)
		}
		token := strings.TrimSpace(string(data))
		if token == "" {
			continue
		}
		tokens = append(tokens, token)
	}

	return tokens, nil
}

// Load reads dir and builds a pool from it. It returns ErrNoTokens when the
// directory holds no usable token.
func Load(dir string) (*Pool, error) {
	tokens, err := LoadDir(dir)
	if err != nil {
		return nil, err
	}

	pool, err := NewPool(tokens)
	if err != nil {
		return nil, fmt.Errorf("%w in %s", err, dir)
	}
	return pool, nil
}
