package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/stickerverse/sticker-catalog/internal/app/repository"
	"github.com/stickerverse/sticker-catalog/internal/catalog"
	"github.com/stickerverse/sticker-catalog/pkg/logger"
	"github.com/stickerverse/sticker-catalog/pkg/taxonomy"
)

type CodeCount struct {
	Code  string `json:"code"`
	Count int    `json:"count"`
}

// KeyCount counts rows sharing a composite key rendered as "PARENT|CODE".
type KeyCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type AuditSummary struct {
	TotalCategories        int `json:"total_categories"`
	TotalSubcategories     int `json:"total_subcategories"`
	TotalGroups            int `json:"total_groups"`
	TotalStickers          int `json:"total_stickers"`
	TotalStickerGroupLinks int `json:"total_sticker_group_links"`
	TotalDuplicates        int `json:"total_duplicates"`
	NonCanonicalCodes      int `json:"non_canonical_codes"`
	UnderscoreCodes        int `json:"underscore_codes"`
	Orphans                int `json:"orphans"`
}

type AuditReport struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Summary     AuditSummary `json:"summary"`

	DuplicateCategories    []CodeCount `json:"duplicate_categories"`
	DuplicateSubcategories []KeyCount  `json:"duplicate_subcategories"`
	DuplicateGroups        []KeyCount  `json:"duplicate_groups"`

	UnderscoreDetails   []string `json:"underscore_details"`
	NonCanonicalDetails []string `json:"non_canonical_details"`

	// SubcategoryCounts maps category code to its subcategory count.
	SubcategoryCounts map[string]int `json:"subcategory_counts"`
	// GroupCounts maps "CAT/SUB" to the number of groups under SUB.
	GroupCounts map[string]int `json:"group_counts"`
	// WatchListCounts maps each watched group code to its link count.
	WatchListCounts map[string]int `json:"watch_list_counts"`

	OrphanSubcategories []string `json:"orphan_subcategories"`
	OrphanGroups        []string `json:"orphan_groups"`
	OrphanLinks         []string `json:"orphan_links"`

	// MissingSeeded lists catalog rows absent from the store.
	MissingSeeded []string `json:"missing_seeded"`
	// CatalogIssues lists catalog entries that name no seeded row.
	CatalogIssues []string `json:"catalog_issues"`
}

// AuditService produces read-only health reports. Data problems become report
// entries; only storage errors are returned.
type AuditService interface {
	RunAudit() (*AuditReport, error)
}

type auditService struct {
	store   repository.TaxonomyStore
	catalog *catalog.Definition
}

func NewAuditService(store repository.TaxonomyStore, def *catalog.Definition) AuditService {
	return &auditService{
		store:   store,
		catalog: def,
	}
}

func (s *auditService) RunAudit() (*AuditReport, error) {
	categories, err := s.store.Categories().FindAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	subcategories, err := s.store.Subcategories().FindAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load subcategories: %w", err)
	}
	groups, err := s.store.Groups().FindAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load groups: %w", err)
	}
	links, err := s.store.Links().FindAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load sticker group links: %w", err)
	}
	stickers, err := s.store.Stickers().FindAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load stickers: %w", err)
	}

	report := &AuditReport{
		GeneratedAt:            time.Now(),
		DuplicateCategories:    []CodeCount{},
		DuplicateSubcategories: []KeyCount{},
		DuplicateGroups:        []KeyCount{},
		UnderscoreDetails:      []string{},
		NonCanonicalDetails:    []string{},
		SubcategoryCounts:      make(map[string]int),
		GroupCounts:            make(map[string]int),
		WatchListCounts:        make(map[string]int),
		OrphanSubcategories:    []string{},
		OrphanGroups:           []string{},
		OrphanLinks:            []string{},
		MissingSeeded:          []string{},
		CatalogIssues:          s.catalog.Inconsistencies(),
	}
	if report.CatalogIssues == nil {
		report.CatalogIssues = []string{}
	}

	underscore := func(entry string) {
		report.UnderscoreDetails = append(report.UnderscoreDetails, entry)
	}
	violation := func(entry string) {
		report.NonCanonicalDetails = append(report.NonCanonicalDetails, entry)
	}

	categoryRows := make(map[string]int)
	for _, c := range categories {
		categoryRows[c.Code]++
		if taxonomy.HasUnderscore(c.Code) {
			underscore("category:" + c.Code)
		}
		if !taxonomy.IsCanonical(c.Code) {
			violation("category:" + c.Code)
		}
	}

	subcategoryRows := make(map[string]int)
	subcategoryCodes := make(map[string]bool)
	subcategoriesByCategory := make(map[string]int)
	for _, sub := range subcategories {
		subcategoryRows[sub.CategoryCode+"|"+sub.Code]++
		subcategoryCodes[sub.Code] = true
		subcategoriesByCategory[sub.CategoryCode]++
		if taxonomy.HasUnderscore(sub.Code) || taxonomy.HasUnderscore(sub.CategoryCode) {
			underscore(fmt.Sprintf("subcategory:%s/%s", sub.CategoryCode, sub.Code))
		}
		if !taxonomy.IsCanonical(sub.Code) {
			violation(fmt.Sprintf("subcategory:%s/%s", sub.CategoryCode, sub.Code))
		}
		if !taxonomy.IsCanonical(sub.CategoryCode) {
			violation("subcategory.categoryCode:" + sub.CategoryCode)
		}
		if categoryRows[sub.CategoryCode] == 0 {
			report.OrphanSubcategories = append(report.OrphanSubcategories, sub.CategoryCode+"/"+sub.Code)
		}
	}

	groupRows := make(map[string]int)
	groupCodes := make(map[string]bool)
	groupsBySubcategory := make(map[string]int)
	for _, g := range groups {
		groupRows[g.SubcategoryCode+"|"+g.Code]++
		groupCodes[g.Code] = true
		groupsBySubcategory[g.SubcategoryCode]++
		if taxonomy.HasUnderscore(g.Code) || taxonomy.HasUnderscore(g.SubcategoryCode) {
			underscore(fmt.Sprintf("group:%s/%s", g.SubcategoryCode, g.Code))
		}
		if !taxonomy.IsCanonical(g.Code) {
			violation(fmt.Sprintf("group:%s/%s", g.SubcategoryCode, g.Code))
		}
		if !taxonomy.IsCanonical(g.SubcategoryCode) {
			violation("group.subcategoryCode:" + g.SubcategoryCode)
		}
		if !subcategoryCodes[g.SubcategoryCode] {
			report.OrphanGroups = append(report.OrphanGroups, g.SubcategoryCode+"/"+g.Code)
		}
	}

	stickerCodes := make(map[string]bool, len(stickers))
	for _, st := range stickers {
		stickerCodes[st.Code] = true
	}

	linkCounts := make(map[string]int)
	for _, l := range links {
		linkCounts[l.GroupCode]++
		entry := fmt.Sprintf("link:%s->%s", l.StickerCode, l.GroupCode)
		if taxonomy.HasUnderscore(l.GroupCode) || taxonomy.HasUnderscore(l.StickerCode) {
			underscore(entry)
		}
		if !taxonomy.IsCanonical(l.GroupCode) {
			violation("link.groupCode:" + l.GroupCode)
		}
		if !stickerCodes[l.StickerCode] || !groupCodes[l.GroupCode] {
			report.OrphanLinks = append(report.OrphanLinks, entry)
		}
	}

	for code, count := range categoryRows {
		if count > 1 {
			report.DuplicateCategories = append(report.DuplicateCategories, CodeCount{Code: code, Count: count})
		}
	}
	report.DuplicateSubcategories = duplicateKeys(subcategoryRows)
	report.DuplicateGroups = duplicateKeys(groupRows)
	sort.Slice(report.DuplicateCategories, func(i, j int) bool {
		return report.DuplicateCategories[i].Code < report.DuplicateCategories[j].Code
	})

	total := 0
	for _, d := range report.DuplicateCategories {
		total += d.Count - 1
	}
	for _, d := range report.DuplicateSubcategories {
		total += d.Count - 1
	}
	for _, d := range report.DuplicateGroups {
		total += d.Count - 1
	}

	for code := range categoryRows {
		report.SubcategoryCounts[code] = subcategoriesByCategory[code]
	}
	for _, sub := range subcategories {
		report.GroupCounts[sub.CategoryCode+"/"+sub.Code] = groupsBySubcategory[sub.Code]
	}
	for _, code := range s.catalog.AuditWatchList {
		report.WatchListCounts[code] = linkCounts[code]
	}

	report.MissingSeeded = s.missingSeeded(categoryRows, subcategoryRows, groupRows)

	report.Summary = AuditSummary{
		TotalCategories:        len(categories),
		TotalSubcategories:     len(subcategories),
		TotalGroups:            len(groups),
		TotalStickers:          len(stickers),
		TotalStickerGroupLinks: len(links),
		TotalDuplicates:        total,
		NonCanonicalCodes:      len(report.NonCanonicalDetails),
		UnderscoreCodes:        len(report.UnderscoreDetails),
		Orphans:                len(report.OrphanSubcategories) + len(report.OrphanGroups) + len(report.OrphanLinks),
	}

	logger.Info("Taxonomy audit completed", map[string]interface{}{
		"total_duplicates":    report.Summary.TotalDuplicates,
		"non_canonical_codes": report.Summary.NonCanonicalCodes,
		"underscore_codes":    report.Summary.UnderscoreCodes,
		"orphans":             report.Summary.Orphans,
		"missing_seeded":      len(report.MissingSeeded),
	})
	return report, nil
}

func (s *auditService) missingSeeded(categories, subcategories, groups map[string]int) []string {
	missing := []string{}
	for _, cat := range s.catalog.Categories {
		if categories[cat.Code] == 0 {
			missing = append(missing, "category:"+cat.Code)
		}
		for _, sub := range cat.Subcategories {
			if subcategories[cat.Code+"|"+sub.Code] == 0 {
				missing = append(missing, fmt.Sprintf("subcategory:%s/%s", cat.Code, sub.Code))
			}
			for _, grp := range sub.Groups {
				if groups[sub.Code+"|"+grp.Code] == 0 {
					missing = append(missing, fmt.Sprintf("group:%s/%s", sub.Code, grp.Code))
				}
			}
		}
	}
	return missing
}

func duplicateKeys(rows map[string]int) []KeyCount {
	dups := []KeyCount{}
	for key, count := range rows {
		if count > 1 {
			dups = append(dups, KeyCount{Key: key, Count: count})
		}
	}
	sort.Slice(dups, func(i, j int) bool {
		return dups[i].Key < dups[j].Key
	})
	return dups
}
