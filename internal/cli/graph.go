package cli

import (
	"fmt"
	"io"

	"github.com/aretw0/turing/internal/presentation/graph"
)

// Graph writes the Mermaid flowchart of target to w.
func Graph(env *Env, target string, w io.Writer) error {
	def, err := env.Resolve(target)
	if err != nil {
		return err
	}
	fmt.Fprint(w, graph.GenerateMermaid(def, nil))
	return nil
}
