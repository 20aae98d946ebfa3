package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/stickerverse/sticker-catalog/internal/app/service"
)

func runSeed(cmd *cobra.Command, s *services) error {
	result, err := s.seed.SeedAll()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Seed complete")
	for _, row := range []struct {
		kind   string
		counts service.KindCounts
	}{
		{"categories", result.Categories},
		{"subcategories", result.Subcategories},
		{"groups", result.Groups},
		{"stickers", result.Stickers},
		{"links", result.Links},
	} {
		fmt.Fprintf(out, "  %-14s inserted=%d updated=%d duplicates_removed=%d\n",
			row.kind, row.counts.Inserted, row.counts.Updated, row.counts.DuplicatesRemoved)
	}
	return nil
}

var dedupeKinds = []string{"categories", "subcategories", "groups"}

func newDedupeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "dedupe {categories|subcategories|groups}",
		Short:     "Collapse rows sharing a natural key, keeping the oldest",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: dedupeKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := args[0]
			return withServices(*opts, func(s *services) error {
				var removed int
				var err error
				switch kind {
				case "categories":
					removed, err = s.cleanup.DeduplicateCategories()
				case "subcategories":
					removed, err = s.cleanup.DeduplicateSubcategories()
				case "groups":
					removed, err = s.cleanup.DeduplicateGroups()
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d duplicate %s\n", removed, kind)
				return nil
			})
		},
	}
}

func newPurgeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete categories, subcategories and groups outside the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(*opts, func(s *services) error {
				result, err := s.cleanup.PurgeNonCanonical()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d rows (categories=%d subcategories=%d groups=%d)\n",
					result.Total(), result.Categories, result.Subcategories, result.Groups)
				return nil
			})
		},
	}
}

func newMigrateLinksCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate-links",
		Short: "Rewrite sticker group links to canonical group codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(*opts, func(s *services) error {
				result, err := s.cleanup.MigrateGroupLinks()
				if err != nil {
					return err
				}
				printMigrateResult(cmd.OutOrStdout(), result)
				return nil
			})
		},
	}
}

func printMigrateResult(out io.Writer, result service.MigrateResult) {
	fmt.Fprintf(out, "Migrated %d links, merged %d\n", result.Migrated, result.Merged)
	if len(result.UnseededTargets) > 0 {
		fmt.Fprintf(out, "Rename targets not in the catalog: %s\n", strings.Join(result.UnseededTargets, ", "))
	}
	for _, link := range result.Unnormalizable {
		fmt.Fprintf(out, "  skipped link %d (%s -> %s): %s\n", link.ID, link.StickerCode, link.GroupCode, link.Reason)
	}
}

func newAuditCmd(opts *rootOptions) *cobra.Command {
	var xlsxPath string

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Report duplicates, code violations and orphans without changing data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(*opts, func(s *services) error {
				report, err := s.audit.RunAudit()
				if err != nil {
					return err
				}
				printAuditSummary(cmd.OutOrStdout(), report)

				if xlsxPath == "" {
					return nil
				}
				f, err := os.Create(xlsxPath)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", xlsxPath, err)
				}
				if err := service.ExportAuditXLSX(report, f); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Workbook written to %s\n", xlsxPath)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also write the report as an xlsx workbook")
	return cmd
}

func printAuditSummary(out io.Writer, report *service.AuditReport) {
	sum := report.Summary
	fmt.Fprintf(out, "Categories:        %d\n", sum.TotalCategories)
	fmt.Fprintf(out, "Subcategories:     %d\n", sum.TotalSubcategories)
	fmt.Fprintf(out, "Groups:            %d\n", sum.TotalGroups)
	fmt.Fprintf(out, "Stickers:          %d\n", sum.TotalStickers)
	fmt.Fprintf(out, "Group links:       %d\n", sum.TotalStickerGroupLinks)
	fmt.Fprintf(out, "Duplicates:        %d\n", sum.TotalDuplicates)
	fmt.Fprintf(out, "Non-canonical:     %d\n", sum.NonCanonicalCodes)
	fmt.Fprintf(out, "Underscore codes:  %d\n", sum.UnderscoreCodes)
	fmt.Fprintf(out, "Orphans:           %d\n", sum.Orphans)
	if len(report.MissingSeeded) > 0 {
		fmt.Fprintf(out, "Missing seeded rows: %s\n", strings.Join(report.MissingSeeded, ", "))
	}
}

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the catalog definition without touching the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := loadCatalog(opts.catalogPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			issues := def.Inconsistencies()
			if len(issues) == 0 {
				fmt.Fprintf(out, "Catalog OK: %d categories, %d stickers\n", len(def.Categories), len(def.Stickers))
				return nil
			}
			for _, issue := range issues {
				fmt.Fprintf(out, "  %s\n", issue)
			}
			return fmt.Errorf("catalog has %d inconsistencies", len(issues))
		},
	}
}
