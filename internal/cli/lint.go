package cli

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aretw0/turing/pkg/schema"
)

// Lint checks definitions eagerly and prints every finding to w. Targets
// may be machine names, definition files or directories of them. It
// reports whether any target failed to load or had error findings.
func Lint(env *Env, targets []string, w io.Writer) (bool, error) {
	if len(targets) == 0 {
		names, err := env.Machines.ListMachines()
		if err != nil {
			return false, err
		}
		targets = names
	}

	failed := false
	check := func(label string, def *schema.Definition, err error) {
		if err != nil {
			fmt.Fprintf(w, "%s: %v\n", label, err)
			failed = true
			return
		}
		findings := schema.Lint(def)
		for _, f := range findings {
			fmt.Fprintf(w, "%s: %s\n", label, f)
		}
		if schema.HasErrors(findings) {
			failed = true
		}
		if len(findings) == 0 {
			fmt.Fprintf(w, "%s: ok\n", label)
		}
	}

	for _, target := range targets {
		info, err := os.Stat(target)
		if err == nil && info.IsDir() {
			err := filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() || !schema.IsDefinitionFile(path) {
					return nil
				}
				def, err := schema.LoadFile(path)
				check(path, def, err)
				return nil
			})
			if err != nil {
				return failed, err
			}
			continue
		}

		def, err := env.Resolve(target)
		check(target, def, err)
	}
	return failed, nil
}
