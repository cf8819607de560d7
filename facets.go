package main

import (
	"fmt"

	"contentdesk/internal/browse"
	"contentdesk/internal/cache"
	"contentdesk/internal/catalog"
	"contentdesk/internal/config"
	"contentdesk/internal/models"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newFacetsCommand() *cobra.Command {
	var (
		collection string
		sel        models.Selection
	)

	cmd := &cobra.Command{
		Use:   "facets",
		Short: "Print category facets of a fixture collection",
		Example: "  contentdesk facets --collection news\n" +
			"  contentdesk facets --collection news --category sports",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			cat := catalog.New(cache.NewManager(cfg.CacheTTL), cfg.FixturesDir, cfg.Collections, cfg.CacheTTL, nil, nil)
			items, err := cat.Items(cmd.Context(), collection)
			if err != nil {
				return fmt.Errorf("load %s: %w", collection, err)
			}

			page := browse.NewPage(items, cfg.Pagination.InitialVisible, cfg.Pagination.LoadMoreStep)
			page.Select(sel)

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Level", "Category", "Count"})
			appendFacets(t, "category", page.Facets())
			appendFacets(t, "subcategory", page.SubcategoryFacets())
			appendFacets(t, "subsubcategory", page.SubsubcategoryFacets())
			t.AppendFooter(table.Row{"", "matching", len(page.Filtered())})
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&collection, "collection", "news", "collection name")
	cmd.Flags().StringVar(&sel.Category, "category", "", "selected category")
	cmd.Flags().StringVar(&sel.Subcategory, "subcategory", "", "selected subcategory")
	return cmd
}

func appendFacets(t table.Writer, level string, facets []models.Facet) {
	for _, f := range facets {
		t.AppendRow(table.Row{level, f.DisplayName, f.Count})
	}
}
