package tagscan

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// withKeyword separates tag argument text from structured settings. It
// always terminates argument-text capture, including for block tags with
// continuation lines.
const withKeyword = ":with"

// splitOptions splits raw argument text at the `:with` keyword and parses
// everything after it as TOML settings.
func splitOptions(raw string) (args string, options map[string]any, err error) {
	idx := strings.Index(raw, withKeyword)
	if idx < 0 {
		return raw, nil, nil
	}
	options, err = ParseOptions(raw[idx+len(withKeyword):])
	if err != nil {
		return "", nil, err
	}
	return raw[:idx], options, nil
}

// ParseOptions parses tag settings formatted as TOML. An inline table may be
// used without additional wrapping:
//
//	value = "foo"              -> {"value": "foo"}
//	{ value = "foo", n = 42 }  -> {"value": "foo", "n": 42}
//
// Normal TOML spanning multiple lines is supported as well.
func ParseOptions(s string) (map[string]any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return map[string]any{}, nil
	}
	if strings.HasPrefix(s, "[") {
		return nil, fmt.Errorf("tag settings cannot start with %q", "[")
	}

	if strings.HasPrefix(s, "{") {
		var wrapper struct {
			A map[string]any `toml:"a"`
		}
		if _, err := toml.Decode("a = "+s, &wrapper); err != nil {
			return nil, fmt.Errorf("invalid tag settings: %w", err)
		}
		return wrapper.A, nil
	}

	options := map[string]any{}
	if _, err := toml.Decode(s, &options); err != nil {
		return nil, fmt.Errorf("invalid tag settings: %w", err)
	}
	return options, nil
}
