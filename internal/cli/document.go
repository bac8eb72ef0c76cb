package cli

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/b4wexport/pkg/blob"
	pkgio "github.com/matzehuels/b4wexport/pkg/io"
)

// messagesCommand creates the messages command.
func (c *CLI) messagesCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "messages [document.json]",
		Short: "Browse the warnings and errors recorded in a document",
		Long: `Browse the warnings and errors recorded in an exported document.

The interactive browser filters by level (a, w, e). Use --plain to print a
table instead, for example when piping the output.`,
		ValidArgsFunction: completeDocument,
		Args:              cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := pkgio.ImportDocument(args[0])
			if err != nil {
				return err
			}
			if len(doc.Warnings)+len(doc.Errors) == 0 {
				printSuccess("No messages recorded in %s", args[0])
				return nil
			}
			if plain {
				fmt.Println(messageTable(doc.Warnings, doc.Errors))
				return nil
			}

			title := fmt.Sprintf("%s · %d warnings · %d errors", filepath.Base(args[0]), len(doc.Warnings), len(doc.Errors))
			model := NewMessageListModel(title, doc.Warnings, doc.Errors)
			if _, err := tea.NewProgram(model, tea.WithContext(cmd.Context())).Run(); err != nil {
				loggerFromContext(cmd.Context()).Debug("interactive browser unavailable", "err", err)
				fmt.Println(messageTable(doc.Warnings, doc.Errors))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print a table instead of the interactive browser")
	return cmd
}

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [document.json]",
		Short: "Print a document summary and validate its binary sidecar",
		Long: `Print the header fields, record counts and binaries table of an exported
document, then check the sidecar: its magic tag, its version against
b4w_format_version and its size against the buffer offsets.`,
		ValidArgsFunction: completeDocument,
		Args:              cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := pkgio.ImportDocument(args[0])
			if err != nil {
				return err
			}
			printDocument(doc)

			sc, err := doc.CheckSidecar()
			if err != nil {
				printError("Sidecar check failed")
				return err
			}
			printNewline()
			if sc == nil {
				printInfo("No binary data")
				return nil
			}
			fmt.Println(binariesTable(doc.Binaries[0].Offsets, len(sc.Data)))
			printSuccess("Sidecar %s matches format %s (%d bytes)", doc.Binaries[0].BinFile, sc.Header, len(sc.Data))
			return nil
		},
	}
}

// printDocument prints the header fields and non-empty collections.
func printDocument(doc *pkgio.Exported) {
	fmt.Println(StyleTitle.Render(filepath.Base(doc.Path)))
	printKeyValue("Format", doc.FormatVersion)
	printKeyValue("Source", doc.BlendPath)
	printKeyValue("Warnings", strconv.Itoa(len(doc.Warnings)))
	printKeyValue("Errors", strconv.Itoa(len(doc.Errors)))

	tags := make([]string, 0, len(doc.Counts))
	for tag, n := range doc.Counts {
		if n > 0 {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)

	printNewline()
	for _, tag := range tags {
		printKeyValue(tag, StyleNumber.Render(strconv.Itoa(doc.Counts[tag])))
	}
}

// binariesTable shows every buffer's byte offset, byte length and element
// count. size is the sidecar data length after the header.
func binariesTable(o blob.Offsets, size int) string {
	rows := make([][]string, 0, len(blob.Kinds))
	for i, k := range blob.Kinds {
		end := size
		if i+1 < len(blob.Kinds) {
			end = o[blob.Kinds[i+1]]
		}
		n := end - o[k]
		rows = append(rows, []string{
			k.String(),
			strconv.Itoa(o[k]),
			strconv.Itoa(n),
			strconv.Itoa(n / k.Size()),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Buffer", "Offset", "Bytes", "Elements").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Padding(0, 1).Foreground(colorCyan)
			}
			return lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
		}).
		Render()
}
