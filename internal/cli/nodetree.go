package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/b4wexport/pkg/errors"
	pkgio "github.com/matzehuels/b4wexport/pkg/io"
	"github.com/matzehuels/b4wexport/pkg/nodetree"
	"github.com/matzehuels/b4wexport/pkg/scene"
)

// nodetreeFlags holds the command-line flags for the nodetree command.
type nodetreeFlags struct {
	kind   string // material, world or group
	pruned bool   // remove nodes that feed no output
	output string // .svg or .dot path, stdout when empty
}

// nodetreeCommand creates the nodetree command.
func (c *CLI) nodetreeCommand() *cobra.Command {
	var f nodetreeFlags

	cmd := &cobra.Command{
		Use:   "nodetree [scene.yaml] [name]",
		Short: "Draw the node tree of a material, world or node group",
		Long: `Draw the node tree of a material, world or node group as a Graphviz graph.

Output nodes are drawn with a double outline. Nodes that feed no output are
greyed out, or removed with --pruned. The --output extension selects the
format: .svg renders with Graphviz, anything else writes DOT. Without
--output the DOT text is printed.`,
		ValidArgsFunction: completeScene,
		Args:              cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			g, err := pkgio.ImportScene(args[0])
			if err != nil {
				return err
			}
			tree, isGroup, err := findTree(g, f.kind, args[1])
			if err != nil {
				return err
			}

			frag := nodetree.FromTree(tree)
			dropped := nodetree.Dropped(frag, isGroup)
			if f.pruned {
				nodetree.Prune(frag, isGroup)
				dropped = nil
			}
			logger.Debug("node tree", "nodes", len(frag.Nodes), "links", len(frag.Links), "dropped", len(dropped))

			dot := nodetree.ToDOT(frag, nodetree.DOTOptions{
				Title:   f.kind + " " + args[1],
				IsGroup: isGroup,
				Dropped: dropped,
			})
			if f.output == "" {
				fmt.Print(dot)
				return nil
			}

			data := []byte(dot)
			if strings.EqualFold(filepath.Ext(f.output), ".svg") {
				if data, err = nodetree.RenderSVG(cmd.Context(), dot); err != nil {
					return errors.Wrap(errors.ErrCodeExport, err, "render %s", f.output)
				}
			}
			if err := os.WriteFile(f.output, data, 0o644); err != nil {
				return errors.Wrap(errors.ErrCodePath, err, "write %s", f.output)
			}
			printSuccess("Drew %d nodes", len(frag.Nodes))
			printFile(f.output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&f.kind, "kind", "k", "material", "owner kind: material, world or group")
	cmd.Flags().BoolVar(&f.pruned, "pruned", false, "remove nodes that feed no output")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (.svg or .dot)")

	return cmd
}

// findTree looks up the node tree owned by the named block. isGroup reports
// whether group outputs act as sinks.
func findTree(g *scene.Graph, kind, name string) (tree *scene.NodeTree, isGroup bool, err error) {
	switch kind {
	case "material":
		id, ok := g.Lookup(scene.KindMaterial, name, "")
		if !ok {
			return nil, false, errors.New(errors.ErrCodeNotFound, "material %q not found", name)
		}
		m, _ := scene.Get[*scene.Material](g, id)
		if m == nil || !m.UseNodes || m.NodeTree == nil {
			return nil, false, errors.New(errors.ErrCodeInvalidInput, "material %q does not use nodes", name)
		}
		return m.NodeTree, false, nil
	case "world":
		id, ok := g.Lookup(scene.KindWorld, name, "")
		if !ok {
			return nil, false, errors.New(errors.ErrCodeNotFound, "world %q not found", name)
		}
		w, _ := scene.Get[*scene.World](g, id)
		if w == nil || !w.UseNodes || w.NodeTree == nil {
			return nil, false, errors.New(errors.ErrCodeInvalidInput, "world %q does not use nodes", name)
		}
		return w.NodeTree, false, nil
	case "group":
		id, ok := g.Lookup(scene.KindNodeTree, name, "")
		if !ok {
			return nil, false, errors.New(errors.ErrCodeNotFound, "node group %q not found", name)
		}
		ng, _ := scene.Get[*scene.NodeGroup](g, id)
		if ng == nil {
			return nil, false, errors.New(errors.ErrCodeNotFound, "node group %q not found", name)
		}
		return &ng.NodeTree, true, nil
	}
	return nil, false, errors.New(errors.ErrCodeInvalidInput, "unknown kind %q (want material, world or group)", kind)
}
