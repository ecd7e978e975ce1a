// Package machines embeds a small library of ready-made definitions: the
// machines used as examples throughout the module and one solution for each
// grading problem.
package machines

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/schema"
)

//go:embed defs/*.yaml
var defs embed.FS

// Names lists the embedded machines, sorted.
func Names() []string {
	entries, _ := fs.ReadDir(defs, "defs")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, schema.NameFromPath(e.Name()))
	}
	sort.Strings(names)
	return names
}

// Definition parses the embedded definition called name.
func Definition(name string) (*schema.Definition, error) {
	data, err := defs.ReadFile(path.Join("defs", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMachineNotFound, name)
	}
	def, err := schema.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("embedded machine %s: %w", name, err)
	}
	if def.Name == "" {
		def.Name = name
	}
	return def, nil
}

// Get compiles the embedded machine called name.
func Get(name string, opts ...turing.Option) (*turing.Machine[string], error) {
	def, err := Definition(name)
	if err != nil {
		return nil, err
	}
	return def.Compile(opts...)
}

// Library returns a loader holding every embedded machine.
func Library() (*memory.Library, error) {
	lib, err := memory.NewLibrary()
	if err != nil {
		return nil, err
	}
	for _, name := range Names() {
		def, err := Definition(name)
		if err != nil {
			return nil, err
		}
		if err := lib.Add(def); err != nil {
			return nil, err
		}
	}
	return lib, nil
}

// Raw returns the embedded source of name, for display.
func Raw(name string) ([]byte, error) {
	data, err := defs.ReadFile(path.Join("defs", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMachineNotFound, name)
	}
	return data, nil
}
