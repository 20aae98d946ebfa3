package service

import (
	"fmt"

	"github.com/stickerverse/sticker-catalog/internal/app/repository"
	"github.com/stickerverse/sticker-catalog/internal/catalog"
	"github.com/stickerverse/sticker-catalog/pkg/logger"
	"github.com/stickerverse/sticker-catalog/pkg/taxonomy"
)

type PurgeResult struct {
	Categories    int `json:"categories"`
	Subcategories int `json:"subcategories"`
	Groups        int `json:"groups"`
}

func (r PurgeResult) Total() int {
	return r.Categories + r.Subcategories + r.Groups
}

// UnnormalizableLink is a link whose group code could not be repaired.
type UnnormalizableLink struct {
	ID          uint   `json:"id"`
	StickerCode string `json:"sticker_code"`
	GroupCode   string `json:"group_code"`
	Reason      string `json:"reason"`
}

type MigrateResult struct {
	Migrated        int                  `json:"migrated"`
	Merged          int                  `json:"merged"`
	Unnormalizable  []UnnormalizableLink `json:"unnormalizable"`
	UnseededTargets []string             `json:"unseeded_targets"`
}

// CleanupService runs the one-off repair batches. Each call is one transaction
// and converges to a no-op once the data is clean.
type CleanupService interface {
	DeduplicateCategories() (int, error)
	DeduplicateSubcategories() (int, error)
	DeduplicateGroups() (int, error)
	PurgeNonCanonical() (PurgeResult, error)
	MigrateGroupLinks() (MigrateResult, error)
}

type cleanupService struct {
	store   repository.TaxonomyStore
	catalog *catalog.Definition
	cache   CatalogCache
}

func NewCleanupService(store repository.TaxonomyStore, def *catalog.Definition, cache CatalogCache) CleanupService {
	return &cleanupService{
		store:   store,
		catalog: def,
		cache:   cacheOrNoop(cache),
	}
}

func (s *cleanupService) DeduplicateCategories() (int, error) {
	deleted := 0
	err := s.store.Transaction(func(tx repository.TaxonomyStore) error {
		rows, err := tx.Categories().FindAll()
		if err != nil {
			return fmt.Errorf("failed to load categories: %w", err)
		}
		seen := make(map[string]bool, len(rows))
		for _, row := range rows {
			if !seen[row.Code] {
				seen[row.Code] = true
				continue
			}
			if err := tx.Categories().Delete(row.ID); err != nil {
				return fmt.Errorf("failed to delete category %d: %w", row.ID, err)
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.finish("dedupe_categories", deleted)
	return deleted, nil
}

// DeduplicateSubcategories only visits categories known to the catalog.
func (s *cleanupService) DeduplicateSubcategories() (int, error) {
	deleted := 0
	err := s.store.Transaction(func(tx repository.TaxonomyStore) error {
		for _, categoryCode := range s.catalog.CategoryCodes().Sorted() {
			rows, err := tx.Subcategories().FindByCategory(categoryCode)
			if err != nil {
				return fmt.Errorf("failed to load subcategories of %s: %w", categoryCode, err)
			}
			seen := make(map[string]bool, len(rows))
			for _, row := range rows {
				if !seen[row.Code] {
					seen[row.Code] = true
					continue
				}
				if err := tx.Subcategories().Delete(row.ID); err != nil {
					return fmt.Errorf("failed to delete subcategory %d: %w", row.ID, err)
				}
				deleted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.finish("dedupe_subcategories", deleted)
	return deleted, nil
}

// DeduplicateGroups only visits subcategories known to the catalog.
func (s *cleanupService) DeduplicateGroups() (int, error) {
	deleted := 0
	err := s.store.Transaction(func(tx repository.TaxonomyStore) error {
		for _, subcategoryCode := range s.catalog.SeededSubcategoryCodes().Sorted() {
			rows, err := tx.Groups().FindBySubcategory(subcategoryCode)
			if err != nil {
				return fmt.Errorf("failed to load groups of %s: %w", subcategoryCode, err)
			}
			seen := make(map[string]bool, len(rows))
			for _, row := range rows {
				if !seen[row.Code] {
					seen[row.Code] = true
					continue
				}
				if err := tx.Groups().Delete(row.ID); err != nil {
					return fmt.Errorf("failed to delete group %d: %w", row.ID, err)
				}
				deleted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.finish("dedupe_groups", deleted)
	return deleted, nil
}

// PurgeNonCanonical deletes rows missing from the catalog allow-lists, groups
// first. Children of a purged parent are kept and surface as audit orphans.
func (s *cleanupService) PurgeNonCanonical() (PurgeResult, error) {
	var result PurgeResult
	groupAllow := s.catalog.GroupAllowList()
	subcategoryAllow := s.catalog.SubcategoryAllowList()
	categoryAllow := s.catalog.CategoryCodes()

	err := s.store.Transaction(func(tx repository.TaxonomyStore) error {
		groups, err := tx.Groups().FindAll()
		if err != nil {
			return fmt.Errorf("failed to load groups: %w", err)
		}
		for _, g := range groups {
			allowed, ok := groupAllow[g.SubcategoryCode]
			if !ok || allowed.Has(g.Code) {
				continue
			}
			if err := tx.Groups().Delete(g.ID); err != nil {
				return fmt.Errorf("failed to delete group %s/%s: %w", g.SubcategoryCode, g.Code, err)
			}
			result.Groups++
		}

		subcategories, err := tx.Subcategories().FindAll()
		if err != nil {
			return fmt.Errorf("failed to load subcategories: %w", err)
		}
		for _, sub := range subcategories {
			allowed, ok := subcategoryAllow[sub.CategoryCode]
			if !ok || allowed.Has(sub.Code) {
				continue
			}
			if err := tx.Subcategories().Delete(sub.ID); err != nil {
				return fmt.Errorf("failed to delete subcategory %s/%s: %w", sub.CategoryCode, sub.Code, err)
			}
			result.Subcategories++
		}

		categories, err := tx.Categories().FindAll()
		if err != nil {
			return fmt.Errorf("failed to load categories: %w", err)
		}
		for _, cat := range categories {
			if categoryAllow.Has(cat.Code) {
				continue
			}
			if err := tx.Categories().Delete(cat.ID); err != nil {
				return fmt.Errorf("failed to delete category %s: %w", cat.Code, err)
			}
			result.Categories++
		}
		return nil
	})
	if err != nil {
		return PurgeResult{}, err
	}
	s.finish("purge_non_canonical", result.Total())
	return result, nil
}

// MigrateGroupLinks rewrites legacy group codes through the rename map and
// re-normalizes the rest. A rewrite that would duplicate an existing link for
// the same sticker deletes the legacy row instead.
func (s *cleanupService) MigrateGroupLinks() (MigrateResult, error) {
	result := MigrateResult{
		Unnormalizable:  []UnnormalizableLink{},
		UnseededTargets: s.catalog.UnseededRenameTargets(),
	}
	for _, target := range result.UnseededTargets {
		logger.Warn("Group rename target is not a seeded group", map[string]interface{}{
			"target": target,
		})
	}

	err := s.store.Transaction(func(tx repository.TaxonomyStore) error {
		links, err := tx.Links().FindAll()
		if err != nil {
			return fmt.Errorf("failed to load sticker group links: %w", err)
		}

		present := make(map[string]bool, len(links))
		for _, link := range links {
			present[link.StickerCode+"|"+link.GroupCode] = true
		}

		for _, link := range links {
			target, renamed := s.catalog.RenameTarget(link.GroupCode)
			if !renamed {
				if taxonomy.IsCanonical(link.GroupCode) {
					continue
				}
				normalized, err := taxonomy.Normalize(link.GroupCode)
				if err != nil {
					result.Unnormalizable = append(result.Unnormalizable, UnnormalizableLink{
						ID:          link.ID,
						StickerCode: link.StickerCode,
						GroupCode:   link.GroupCode,
						Reason:      err.Error(),
					})
					continue
				}
				target = normalized
				// Legacy codes may only match the rename map once normalized.
				if renamedTarget, ok := s.catalog.RenameTarget(normalized); ok {
					target = renamedTarget
				}
			}
			if target == link.GroupCode {
				continue
			}

			key := link.StickerCode + "|" + target
			if present[key] {
				if err := tx.Links().Delete(link.ID); err != nil {
					return fmt.Errorf("failed to delete link %d: %w", link.ID, err)
				}
				present[link.StickerCode+"|"+link.GroupCode] = false
				result.Merged++
				continue
			}

			if err := tx.Links().Patch(link.ID, map[string]interface{}{"group_code": target}); err != nil {
				return fmt.Errorf("failed to migrate link %d: %w", link.ID, err)
			}
			present[link.StickerCode+"|"+link.GroupCode] = false
			present[key] = true
			result.Migrated++
		}
		return nil
	})
	if err != nil {
		return MigrateResult{}, err
	}

	if len(result.Unnormalizable) > 0 {
		logger.Warn("Sticker group links left unmigrated", map[string]interface{}{
			"count": len(result.Unnormalizable),
		})
	}
	s.finish("migrate_group_links", result.Migrated+result.Merged)
	return result, nil
}

func (s *cleanupService) finish(operation string, affected int) {
	logger.Info("Taxonomy cleanup finished", map[string]interface{}{
		"operation": operation,
		"affected":  affected,
	})
	if affected == 0 {
		return
	}
	if err := s.cache.Invalidate(); err != nil {
		logger.Warn("Failed to invalidate catalog cache", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
