package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/transmit/internal/source"
	"github.com/Makepad-fr/transmit/internal/ui"
)

func newDocsCmd() *cobra.Command {
	var (
		search   string
		category string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Search the project document library",
		Long: "docs lists the library that drafts pick documents from. Pass the\n" +
			"numbers it prints to `add --from-library` or `edit --from-library`.",
		Example: "  transmit docs --search plan --category mep\n" +
			"  transmit add ... --from-library E-301,P-401",
		Args: exactArgs(0, "no arguments"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			lib := source.DefaultLibrary()
			docs := lib.Search(search, category)
			envFrom(cmd).log.Debug().
				Str("search", search).
				Str("category", category).
				Int("matched", len(docs)).
				Msg("library search")

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, docs)
			}
			th := ui.Current()
			lines := []string{ui.C(th.Accent, "Document library"), ""}
			for _, d := range docs {
				lines = append(lines, fmt.Sprintf("%-6s %-36s %s  %s",
					d.DocumentNo, d.Name, ui.C(th.Muted, "Rev "+d.Revision), ui.C(th.Muted, d.Category)))
			}
			if len(docs) == 0 {
				lines = append(lines, ui.C(th.Muted, "No documents match your search."))
			}
			lines = append(lines, "", ui.C(th.Muted, fmt.Sprintf("%d of %d documents", len(docs), len(lib.Documents()))))
			ui.Panel(out, lines)
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&search, "search", "", "case-insensitive search over name, revision, category and number")
	fs.StringVar(&category, "category", "", "only this category")
	fs.BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
