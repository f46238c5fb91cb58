package normalize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrPathConflict is returned when a path crosses a non-object value.
var ErrPathConflict = errors.New("path crosses a non-object value")

// GetPath reads the value at a dot-delimited path of a JSON document.
func GetPath(doc []byte, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	res := gjson.GetBytes(doc, path)
	if !res.Exists() {
		return nil, false
	}
	return res.Value(), true
}

// SetPath writes value at a dot-delimited path, creating intermediate
// objects as needed.
func SetPath(doc map[string]any, path string, value any) error {
	if path == "" {
		return fmt.Errorf("set path: empty path")
	}
	keys := strings.Split(path, ".")
	node := doc
	for i, key := range keys[:len(keys)-1] {
		next, ok := node[key]
		if !ok || next == nil {
			child := make(map[string]any)
			node[key] = child
			node = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("set %s at %s: %w", path, strings.Join(keys[:i+1], "."), ErrPathConflict)
		}
		node = child
	}
	node[keys[len(keys)-1]] = value
	return nil
}
