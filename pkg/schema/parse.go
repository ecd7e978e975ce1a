package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Parse decodes a YAML or JSON machine definition.
//
// The document is first read into a generic map and then decoded with weak
// typing, so numeric states and symbols written without quotes become
// strings, and a single accept or reject state may be given as a scalar.
// Rules may be written as a map or as the compact tuple [to, write, move].
func Parse(data []byte) (*Definition, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	if raw == nil {
		return nil, &ValidationError{Key: "", Reason: "empty document"}
	}

	var def Definition
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       ruleTupleHook,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &def,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}

	if err := def.validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// LoadFile reads and parses a definition file. The name defaults to the
// file's base name without extension.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition: %w", err)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if def.Name == "" {
		def.Name = NameFromPath(path)
	}
	return def, nil
}

// NameFromPath derives a machine name from a definition file path.
func NameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IsDefinitionFile reports whether path has an extension Parse understands.
func IsDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// validate checks the structural fields Parse can judge without consulting
// the table. Table content is left to Compile and Lint.
func (d *Definition) validate() error {
	var errs []error
	if d.Initial == "" {
		errs = append(errs, &ValidationError{Key: "initial", Reason: "is required"})
	}
	for from, row := range d.Transitions {
		for sym, rule := range row {
			if rule.To == "" {
				errs = append(errs, &ValidationError{
					Key:    fmt.Sprintf("transitions.%s.%s.to", from, sym),
					Reason: "is required",
				})
			}
		}
	}
	return collect(errs)
}

var ruleType = reflect.TypeOf(Rule{})

// ruleTupleHook turns the compact [to, write, move] form into a rule map.
func ruleTupleHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != ruleType || from.Kind() != reflect.Slice {
		return data, nil
	}
	items, ok := data.([]any)
	if !ok || len(items) != 3 {
		return nil, fmt.Errorf("rule tuple must be [to, write, move], got %v", data)
	}
	return map[string]any{
		"to":    items[0],
		"write": items[1],
		"move":  items[2],
	}, nil
}
