package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"gallery.GO/config"
	"gallery.GO/service/colorgallery"
)

// galleryCLI is the part of the service the colorgallery:* commands drive.
type galleryCLI interface {
	Propagate(ctx context.Context, productID uint, opts colorgallery.RunOptions) *colorgallery.Report
	Clean(ctx context.Context, productID uint, opts colorgallery.RunOptions) *colorgallery.Report
	Migrate(ctx context.Context, productID uint, opts colorgallery.RunOptions) *colorgallery.Report
	Diagnose(ctx context.Context, productID uint, storeID uint16) (*colorgallery.Diagnostics, error)
}

var openGallery = func() (galleryCLI, error) {
	db, err := config.NewDB()
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	svc, err := colorgallery.ForDB(db)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func init() {
	Register(newRunCmd("colorgallery:propagate", "Copy color-tagged parent media onto the children of a configurable product", true,
		func(g galleryCLI) runFunc { return g.Propagate }))
	Register(newRunCmd("colorgallery:clean", "Remove every media record and image role from the children of a configurable product", false,
		func(g galleryCLI) runFunc { return g.Clean }))
	Register(newRunCmd("colorgallery:migrate", "Tag parent media with the colors of the children that share their files", false,
		func(g galleryCLI) runFunc { return g.Migrate }))
	Register(newDiagnoseCmd())
}

type runFunc func(ctx context.Context, productID uint, opts colorgallery.RunOptions) *colorgallery.Report

func newRunCmd(use, short string, withCleanFirst bool, pick func(galleryCLI) runFunc) *cobra.Command {
	var (
		productID  uint
		dryRun     bool
		cleanFirst bool
		asJSON     bool
	)
	c := &cobra.Command{
		Use:          use,
		Short:        short,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(c *cobra.Command, args []string) error {
			g, err := openGallery()
			if err != nil {
				return err
			}
			opts := colorgallery.RunOptions{DryRun: dryRun}
			if withCleanFirst && c.Flags().Changed("clean-first") {
				opts.CleanFirst = &cleanFirst
			}
			report := pick(g)(c.Context(), productID, opts)
			if asJSON {
				err = writeJSON(c.OutOrStdout(), report)
			} else {
				writeReport(c.OutOrStdout(), report)
			}
			if err != nil {
				return err
			}
			if report.HasErrors() {
				return fmt.Errorf("%s: %d error(s): %w", report.Operation, len(report.Errors), report.Err())
			}
			return nil
		},
	}
	c.Flags().UintVarP(&productID, "product", "p", 0, "Configurable product entity id")
	c.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without writing")
	c.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	if withCleanFirst {
		c.Flags().BoolVar(&cleanFirst, "clean-first", false, "Clean children before propagating (defaults to the clean_before_propagate setting)")
	}
	_ = c.MarkFlagRequired("product")
	return c
}

func newDiagnoseCmd() *cobra.Command {
	var (
		productID uint
		storeID   uint16
	)
	c := &cobra.Command{
		Use:          "colorgallery:diagnose",
		Short:        "Show how the color gallery of a product resolves",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(c *cobra.Command, args []string) error {
			g, err := openGallery()
			if err != nil {
				return err
			}
			d, err := g.Diagnose(c.Context(), productID, storeID)
			if err != nil {
				return err
			}
			return writeJSON(c.OutOrStdout(), d)
		},
	}
	c.Flags().UintVarP(&productID, "product", "p", 0, "Configurable product entity id")
	c.Flags().Uint16VarP(&storeID, "store", "s", 0, "Store view id")
	_ = c.MarkFlagRequired("product")
	return c
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeReport(w io.Writer, r *colorgallery.Report) {
	mode := ""
	if r.DryRun {
		mode = " (dry run)"
	}
	fmt.Fprintf(w, "%s product %d%s run %s\n", r.Operation, r.ProductID, mode, r.RunID)
	for _, a := range r.Actions {
		fmt.Fprintf(w, "  %s\n", a)
	}
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  ERROR %s\n", e)
	}
	n := r.Counts
	fmt.Fprintf(w, "children: %d processed, %d changed, %d skipped, %d failed\n",
		n.ChildrenProcessed, n.ChildrenChanged, n.ChildrenSkipped, n.ChildrenFailed)
	fmt.Fprintf(w, "media: %d linked, %d skipped, %d removed; tags updated: %d\n",
		n.MediaLinked, n.MediaSkipped, n.MediaRemoved, n.TagsUpdated)
}
