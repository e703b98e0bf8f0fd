package config

import "strings"

// reservedSegments cannot be addressed by config get/set/unset.
var reservedSegments = []string{"__proto__", "prototype", "constructor"}

// ParseConfigPath splits a dotted key such as "voice.reconnectDelayMs".
func ParseConfigPath(raw string) ([]string, error) {
	if raw == "" {
		return nil, &ConfigError{Message: "empty config path"}
	}
	segs := strings.Split(raw, ".")
	for _, seg := range segs {
		switch {
		case seg == "":
			return nil, &ConfigError{Message: "config path contains empty segment"}
		case isReserved(seg):
			return nil, &ConfigError{Message: "config path contains blocked key: " + seg}
		}
	}
	return segs, nil
}

func isReserved(seg string) bool {
	for _, r := range reservedSegments {
		if seg == r {
			return true
		}
	}
	return false
}

// walk returns the map holding the final segment of path. With create set,
// missing or non-map intermediates are replaced by empty maps.
func walk(root map[string]any, path []string, create bool) (map[string]any, bool) {
	node := root
	for _, seg := range path[:len(path)-1] {
		child, isMap := node[seg].(map[string]any)
		if !isMap {
			if !create {
				return nil, false
			}
			child = make(map[string]any)
			node[seg] = child
		}
		node = child
	}
	return node, true
}

// GetValueAtPath reads the value addressed by path.
func GetValueAtPath(root map[string]any, path []string) (any, bool) {
	if len(path) == 0 {
		return root, true
	}
	parent, ok := walk(root, path, false)
	if !ok {
		return nil, false
	}
	v, ok := parent[path[len(path)-1]]
	return v, ok
}

// SetValueAtPath stores value at path, creating parents as needed.
func SetValueAtPath(root map[string]any, path []string, value any) {
	if len(path) == 0 {
		return
	}
	parent, _ := walk(root, path, true)
	parent[path[len(path)-1]] = value
}

// UnsetValueAtPath deletes the value at path and reports whether it existed.
func UnsetValueAtPath(root map[string]any, path []string) bool {
	if len(path) == 0 {
		return false
	}
	parent, ok := walk(root, path, false)
	if !ok {
		return false
	}
	last := path[len(path)-1]
	if _, exists := parent[last]; !exists {
		return false
	}
	delete(parent, last)
	return true
}
