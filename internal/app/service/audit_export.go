package service

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"
)

const (
	sheetSummary    = "Summary"
	sheetDuplicates = "Duplicates"
	sheetViolations = "Violations"
	sheetCounts     = "Counts"
)

// ExportAuditXLSX writes the report as a workbook with one sheet per section.
func ExportAuditXLSX(report *AuditReport, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return fmt.Errorf("failed to rename summary sheet: %w", err)
	}
	for _, name := range []string{sheetDuplicates, sheetViolations, sheetCounts} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	sum := report.Summary
	summary := [][]interface{}{
		{"Metric", "Value"},
		{"Generated at", report.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Categories", sum.TotalCategories},
		{"Subcategories", sum.TotalSubcategories},
		{"Groups", sum.TotalGroups},
		{"Stickers", sum.TotalStickers},
		{"Sticker group links", sum.TotalStickerGroupLinks},
		{"Excess duplicate rows", sum.TotalDuplicates},
		{"Non-canonical codes", sum.NonCanonicalCodes},
		{"Underscore codes", sum.UnderscoreCodes},
		{"Orphans", sum.Orphans},
		{"Missing seeded rows", len(report.MissingSeeded)},
	}
	if err := writeRows(f, sheetSummary, summary); err != nil {
		return err
	}

	duplicates := [][]interface{}{{"Level", "Key", "Count"}}
	for _, d := range report.DuplicateCategories {
		duplicates = append(duplicates, []interface{}{"category", d.Code, d.Count})
	}
	for _, d := range report.DuplicateSubcategories {
		duplicates = append(duplicates, []interface{}{"subcategory", d.Key, d.Count})
	}
	for _, d := range report.DuplicateGroups {
		duplicates = append(duplicates, []interface{}{"group", d.Key, d.Count})
	}
	if err := writeRows(f, sheetDuplicates, duplicates); err != nil {
		return err
	}

	violations := [][]interface{}{{"Finding", "Entry"}}
	sections := []struct {
		label   string
		entries []string
	}{
		{"underscore", report.UnderscoreDetails},
		{"non-canonical", report.NonCanonicalDetails},
		{"orphan subcategory", report.OrphanSubcategories},
		{"orphan group", report.OrphanGroups},
		{"orphan link", report.OrphanLinks},
		{"missing seeded", report.MissingSeeded},
		{"catalog", report.CatalogIssues},
	}
	for _, section := range sections {
		for _, entry := range section.entries {
			violations = append(violations, []interface{}{section.label, entry})
		}
	}
	if err := writeRows(f, sheetViolations, violations); err != nil {
		return err
	}

	counts := [][]interface{}{{"Kind", "Key", "Count"}}
	counts = appendCounts(counts, "subcategories", report.SubcategoryCounts)
	counts = appendCounts(counts, "groups", report.GroupCounts)
	counts = appendCounts(counts, "watch-list links", report.WatchListCounts)
	if err := writeRows(f, sheetCounts, counts); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write audit workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func appendCounts(rows [][]interface{}, kind string, counts map[string]int) [][]interface{} {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		rows = append(rows, []interface{}{kind, k, counts[k]})
	}
	return rows
}
