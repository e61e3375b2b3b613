package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Makepad-fr/transmit/internal/listing"
	"github.com/Makepad-fr/transmit/internal/logging"
	"github.com/Makepad-fr/transmit/internal/model"
	"github.com/Makepad-fr/transmit/internal/source"
	"github.com/Makepad-fr/transmit/internal/tui"
	"github.com/Makepad-fr/transmit/internal/ui"
)

func newLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "Browse transmittals interactively",
		Args:  exactArgs(0, "no arguments"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !isTerminal(os.Stdout) {
				return usagef("ls needs a terminal; use `transmit list` instead")
			}
			e := envFrom(cmd)
			sortKey, _ := listing.ParseSortKey(e.cfg.Sort)
			return tui.Run(cmd.Context(), tui.Options{
				Source:         e.store,
				ServerPaged:    e.cfg.ServerPaged(),
				PageSize:       e.cfg.PageSize,
				PageStep:       e.cfg.PageStep,
				ServerPageSize: e.cfg.ServerPageSize,
				Sort:           sortKey,
				LoadDelay:      e.cfg.LoadDelay,
				Logger:         logging.Component(e.logs.Logger, "tui"),
			})
		},
	}
}

type listFlags struct {
	tab    string
	search string
	sort   string
	show   int
	more   int
	json   bool
}

func newListCmd() *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print a page of transmittals",
		Long: "list runs the same tab, search, sort and \"load more\" pipeline as the\n" +
			"interactive browser and prints the resulting page.",
		Args: exactArgs(0, "no arguments"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, f)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&f.tab, "tab", listing.TabAll, "status tab: all, draft, generated, sent, received")
	fs.StringVar(&f.search, "search", "", "case-insensitive search over title, number and recipient")
	fs.StringVar(&f.sort, "sort", "", "sort: date-desc, date-asc or name (default from config)")
	fs.IntVar(&f.show, "show", 0, "size of the first page (default page_size, or server_page_size for remote)")
	fs.IntVar(&f.more, "more", 0, "apply N \"load more\" steps")
	fs.BoolVar(&f.json, "json", false, "print the page as JSON")
	return cmd
}

func runList(cmd *cobra.Command, f listFlags) error {
	e := envFrom(cmd)
	ctx := cmd.Context()
	if f.show < 0 || f.more < 0 {
		return usagef("--show and --more must not be negative")
	}

	sortName := f.sort
	if sortName == "" {
		sortName = e.cfg.Sort
	}
	sortKey, err := listing.ParseSortKey(sortName)
	if err != nil {
		return err
	}

	var feed *listing.Feed[model.Transmittal]
	if e.cfg.ServerPaged() {
		feed = listing.NewServerFeed[model.Transmittal](orDefault(f.show, e.cfg.ServerPageSize))
	} else {
		feed = listing.NewClientFeed[model.Transmittal](orDefault(f.show, e.cfg.PageSize), e.cfg.PageStep)
	}
	feed.SetSort(sortKey)
	feed.SetText(f.search)
	if _, err := feed.SetTab(f.tab); err != nil {
		return err
	}

	fetch := source.Fetcher(e.store)
	if err := feed.Fetch(ctx, fetch, listing.LoadInitial); err != nil {
		return err
	}
	for range f.more {
		if !feed.Page().HasMore {
			break
		}
		if !feed.NeedsFetch() {
			feed.Grow()
			continue
		}
		if err := feed.Fetch(ctx, fetch, listing.LoadMore); err != nil {
			return err
		}
	}
	page := feed.Page()
	e.log.Debug().
		Stringer("mode", feed.Mode()).
		Int("loaded", page.Loaded).
		Int("matched", page.Matched).
		Int("shown", len(page.Items)).
		Msg("list page")

	out := cmd.OutOrStdout()
	if f.json {
		return writeJSON(out, page.Items)
	}

	counts, err := countAll(ctx, e.store)
	if err != nil {
		return err
	}
	lines := []string{ui.Header(counts), ""}
	switch {
	case len(page.Items) > 0:
		for i, t := range page.Items {
			if i > 0 {
				lines = append(lines, "")
			}
			lines = append(lines, ui.Card(t)...)
		}
	case f.search != "":
		lines = append(lines, ui.C(ui.Current().Muted, "No transmittals match your search."))
	default:
		lines = append(lines, ui.C(ui.Current().Muted, "No transmittals found."))
	}
	lines = append(lines, "", ui.Showing(len(page.Items), page.Matched, page.HasMore))
	ui.Panel(out, lines)
	return nil
}

// orDefault returns v, or def when v is unset.
func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// countAll fetches the count of every tab concurrently.
func countAll(ctx context.Context, st source.Store) (ui.StatusCounts, error) {
	tabs := listing.Tabs()
	n := make([]int, len(tabs))
	g, ctx := errgroup.WithContext(ctx)
	for i, tab := range tabs {
		g.Go(func() error {
			c, err := st.Count(ctx, tab)
			if err != nil {
				return fmt.Errorf("count %s: %w", tab, err)
			}
			n[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	counts := make(ui.StatusCounts, len(tabs))
	for i, tab := range tabs {
		counts[tab] = n[i]
	}
	logging.FromContext(ctx).Debug().Interface("counts", counts).Msg("counts fetched")
	return counts, nil
}

func newShowCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one transmittal with its documents",
		Args:  exactArgs(1, "a transmittal id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := envFrom(cmd).store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), t)
			}
			ui.Panel(cmd.OutOrStdout(), ui.Detail(t))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func newCountCmd() *cobra.Command {
	var tab string
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Print how many transmittals a tab holds",
		Args:  exactArgs(0, "no arguments"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := listing.ParseTab(tab)
			if err != nil {
				return err
			}
			n, err := envFrom(cmd).store.Count(cmd.Context(), status)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
	cmd.Flags().StringVar(&tab, "tab", listing.TabAll, "status tab: all, draft, generated, sent, received")
	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarise transmittals by status",
		Args:  exactArgs(0, "no arguments"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			counts, err := countAll(cmd.Context(), envFrom(cmd).store)
			if err != nil {
				return err
			}
			th := ui.Current()
			total := counts[listing.TabAll]
			lines := []string{ui.Header(counts), ""}
			for _, s := range model.Statuses {
				n := counts[string(s)]
				label := fmt.Sprintf("%-10s %3d ", s.Label(), n)
				lines = append(lines, ui.C(th.StatusColor(s), label)+ui.C(th.Muted, ui.ProgressBar(n, total, 24)))
			}
			lines = append(lines, "",
				"Acknowledged "+ui.ProgressBar(counts[string(model.StatusReceived)], total, 24))
			ui.Panel(cmd.OutOrStdout(), lines)
			return nil
		},
	}
}
