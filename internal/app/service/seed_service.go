package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stickerverse/sticker-catalog/internal/app/model"
	"github.com/stickerverse/sticker-catalog/internal/app/repository"
	"github.com/stickerverse/sticker-catalog/internal/catalog"
	"github.com/stickerverse/sticker-catalog/pkg/logger"
	"github.com/stickerverse/sticker-catalog/pkg/taxonomy"
	"gorm.io/gorm"
)

// UpsertResult describes what a single upsert did to its natural key.
type UpsertResult struct {
	Code              string `json:"code"`
	Inserted          bool   `json:"inserted"`
	DuplicatesRemoved int    `json:"duplicates_removed"`
}

// KindCounts aggregates upsert outcomes for one entity kind.
type KindCounts struct {
	Inserted          int `json:"inserted"`
	Updated           int `json:"updated"`
	DuplicatesRemoved int `json:"duplicates_removed"`
}

func (k *KindCounts) add(r *UpsertResult) {
	if r.Inserted {
		k.Inserted++
	} else {
		k.Updated++
	}
	k.DuplicatesRemoved += r.DuplicatesRemoved
}

type SeedResult struct {
	Categories    KindCounts `json:"categories"`
	Subcategories KindCounts `json:"subcategories"`
	Groups        KindCounts `json:"groups"`
	Stickers      KindCounts `json:"stickers"`
	Links         KindCounts `json:"links"`
}

// StickerSeed is the raw input of a sticker upsert.
type StickerSeed struct {
	Code            string
	Name            string
	CategoryCode    string
	SubcategoryCode string
	SortOrder       int
	Filename        string
	Price           decimal.Decimal
}

type SeedService interface {
	UpsertCategory(rawCode, name string, sortOrder int) (*UpsertResult, error)
	UpsertSubcategory(rawCategoryCode, rawCode, name string, sortOrder int) (*UpsertResult, error)
	UpsertGroup(rawSubcategoryCode, rawCode, name string, sortOrder int) (*UpsertResult, error)
	UpsertSticker(seed StickerSeed) (*UpsertResult, error)
	UpsertStickerGroupLink(rawStickerCode, rawGroupCode string) (*UpsertResult, error)
	SeedAll() (*SeedResult, error)
}

type seedService struct {
	store   repository.TaxonomyStore
	catalog *catalog.Definition
	cache   CatalogCache
}

func NewSeedService(store repository.TaxonomyStore, def *catalog.Definition, cache CatalogCache) SeedService {
	return &seedService{
		store:   store,
		catalog: def,
		cache:   cacheOrNoop(cache),
	}
}

func (s *seedService) UpsertCategory(rawCode, name string, sortOrder int) (*UpsertResult, error) {
	var result *UpsertResult
	err := s.store.Transaction(func(tx repository.TaxonomyStore) error {
		var err error
		result, err = upsertCategory(tx, rawCode, name, sortOrder)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return result, nil
}

func (s *seedService) UpsertSubcategory(rawCategoryCode, rawCode, name string, sortOrder int) (*UpsertResult, error) {
	var result *UpsertResult
	err := s.store.Transaction(func(tx repository.TaxonomyStore) error {
		var err error
		result, err = upsertSubcategory(tx, rawCategoryCode, rawCode, name, sortOrder)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return result, nil
}

func (s *seedService) UpsertGroup(rawSubcategoryCode, rawCode, name string, sortOrder int) (*UpsertResult, error) {
	var result *UpsertResult
	err := s.store.Transaction(func(tx repository.TaxonomyStore) error {
		var err error
		result, err = upsertGroup(tx, rawSubcategoryCode, rawCode, name, sortOrder)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return result, nil
}

func (s *seedService) UpsertSticker(seed StickerSeed) (*UpsertResult, error) {
	var result *UpsertResult
	err := s.store.Transaction(func(tx repository.TaxonomyStore) error {
		var err error
		result, err = upsertSticker(tx, seed)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return result, nil
}

func (s *seedService) UpsertStickerGroupLink(rawStickerCode, rawGroupCode string) (*UpsertResult, error) {
	var result *UpsertResult
	err := s.store.Transaction(func(tx repository.TaxonomyStore) error {
		var err error
		result, err = upsertStickerGroupLink(tx, rawStickerCode, rawGroupCode)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return result, nil
}

// SeedAll writes the whole catalog in one transaction, parents before children.
func (s *seedService) SeedAll() (*SeedResult, error) {
	logger.Info("Seeding taxonomy catalog", map[string]interface{}{
		"categories": len(s.catalog.Categories),
		"stickers":   len(s.catalog.Stickers),
	})

	result := &SeedResult{}
	err := s.store.Transaction(func(tx repository.TaxonomyStore) error {
		for _, cat := range s.catalog.Categories {
			r, err := upsertCategory(tx, cat.Code, cat.Name, cat.SortOrder)
			if err != nil {
				return err
			}
			result.Categories.add(r)
		}

		for _, cat := range s.catalog.Categories {
			for _, sub := range cat.Subcategories {
				r, err := upsertSubcategory(tx, cat.Code, sub.Code, sub.Name, sub.SortOrder)
				if err != nil {
					return err
				}
				result.Subcategories.add(r)

				for _, grp := range sub.Groups {
					r, err := upsertGroup(tx, sub.Code, grp.Code, grp.Name, grp.SortOrder)
					if err != nil {
						return err
					}
					result.Groups.add(r)
				}
			}
		}

		for _, st := range s.catalog.Stickers {
			r, err := upsertSticker(tx, StickerSeed{
				Code:            st.Code,
				Name:            st.Name,
				CategoryCode:    st.Category,
				SubcategoryCode: st.Subcategory,
				SortOrder:       st.SortOrder,
				Filename:        st.Filename,
				Price:           st.UnitPrice(),
			})
			if err != nil {
				return err
			}
			result.Stickers.add(r)

			for _, groupCode := range st.Groups {
				r, err := upsertStickerGroupLink(tx, st.Code, groupCode)
				if err != nil {
					return err
				}
				result.Links.add(r)
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to seed taxonomy catalog", err)
		return nil, err
	}

	s.invalidate()
	logger.Info("Taxonomy catalog seeded", map[string]interface{}{
		"categories_inserted":    result.Categories.Inserted,
		"subcategories_inserted": result.Subcategories.Inserted,
		"groups_inserted":        result.Groups.Inserted,
		"stickers_inserted":      result.Stickers.Inserted,
		"links_inserted":         result.Links.Inserted,
		"duplicates_removed": result.Categories.DuplicatesRemoved + result.Subcategories.DuplicatesRemoved +
			result.Groups.DuplicatesRemoved,
	})
	return result, nil
}

func (s *seedService) invalidate() {
	if err := s.cache.Invalidate(); err != nil {
		logger.Warn("Failed to invalidate catalog cache", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func normalizeCodes(raw ...string) ([]string, error) {
	codes := make([]string, len(raw))
	for i, r := range raw {
		code, err := taxonomy.Normalize(r)
		if err != nil {
			return nil, err
		}
		codes[i] = code
	}
	return codes, nil
}

func seedFields(name string, sortOrder int) map[string]interface{} {
	return map[string]interface{}{
		"name":       name,
		"is_active":  true,
		"sort_order": sortOrder,
	}
}

func upsertCategory(store repository.TaxonomyStore, rawCode, name string, sortOrder int) (*UpsertResult, error) {
	code, err := taxonomy.Normalize(rawCode)
	if err != nil {
		return nil, err
	}

	repo := store.Categories()
	existing, err := repo.FindByCode(code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up category %s: %w", code, err)
	}

	result := &UpsertResult{Code: code}
	if len(existing) == 0 {
		result.Inserted = true
		return result, repo.Create(&model.Category{Code: code, Name: name, IsActive: true, SortOrder: sortOrder})
	}

	if err := repo.Patch(existing[0].ID, seedFields(name, sortOrder)); err != nil {
		return nil, fmt.Errorf("failed to update category %s: %w", code, err)
	}
	for _, dup := range existing[1:] {
		if err := repo.Delete(dup.ID); err != nil {
			return nil, fmt.Errorf("failed to delete duplicate category %s: %w", code, err)
		}
		result.DuplicatesRemoved++
	}
	return result, nil
}

func upsertSubcategory(store repository.TaxonomyStore, rawCategoryCode, rawCode, name string, sortOrder int) (*UpsertResult, error) {
	codes, err := normalizeCodes(rawCategoryCode, rawCode)
	if err != nil {
		return nil, err
	}
	categoryCode, code := codes[0], codes[1]

	parents, err := store.Categories().FindByCode(categoryCode)
	if err != nil {
		return nil, err
	}
	if len(parents) == 0 {
		return nil, &taxonomy.ReferentialError{Kind: "category", Code: categoryCode}
	}

	repo := store.Subcategories()
	existing, err := repo.FindByNaturalKey(categoryCode, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up subcategory %s/%s: %w", categoryCode, code, err)
	}

	result := &UpsertResult{Code: code}
	if len(existing) == 0 {
		result.Inserted = true
		return result, repo.Create(&model.Subcategory{
			CategoryCode: categoryCode,
			Code:         code,
			Name:         name,
			IsActive:     true,
			SortOrder:    sortOrder,
		})
	}

	if err := repo.Patch(existing[0].ID, seedFields(name, sortOrder)); err != nil {
		return nil, fmt.Errorf("failed to update subcategory %s/%s: %w", categoryCode, code, err)
	}
	for _, dup := range existing[1:] {
		if err := repo.Delete(dup.ID); err != nil {
			return nil, fmt.Errorf("failed to delete duplicate subcategory %s/%s: %w", categoryCode, code, err)
		}
		result.DuplicatesRemoved++
	}
	return result, nil
}

func upsertGroup(store repository.TaxonomyStore, rawSubcategoryCode, rawCode, name string, sortOrder int) (*UpsertResult, error) {
	codes, err := normalizeCodes(rawSubcategoryCode, rawCode)
	if err != nil {
		return nil, err
	}
	subcategoryCode, code := codes[0], codes[1]

	parents, err := store.Subcategories().FindByCode(subcategoryCode)
	if err != nil {
		return nil, err
	}
	if len(parents) == 0 {
		return nil, &taxonomy.ReferentialError{Kind: "subcategory", Code: subcategoryCode}
	}

	repo := store.Groups()
	existing, err := repo.FindByNaturalKey(subcategoryCode, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up group %s/%s: %w", subcategoryCode, code, err)
	}

	result := &UpsertResult{Code: code}
	if len(existing) == 0 {
		result.Inserted = true
		return result, repo.Create(&model.Group{
			SubcategoryCode: subcategoryCode,
			Code:            code,
			Name:            name,
			IsActive:        true,
			SortOrder:       sortOrder,
		})
	}

	if err := repo.Patch(existing[0].ID, seedFields(name, sortOrder)); err != nil {
		return nil, fmt.Errorf("failed to update group %s/%s: %w", subcategoryCode, code, err)
	}
	for _, dup := range existing[1:] {
		if err := repo.Delete(dup.ID); err != nil {
			return nil, fmt.Errorf("failed to delete duplicate group %s/%s: %w", subcategoryCode, code, err)
		}
		result.DuplicatesRemoved++
	}
	return result, nil
}

func upsertSticker(store repository.TaxonomyStore, seed StickerSeed) (*UpsertResult, error) {
	codes, err := normalizeCodes(seed.Code, seed.CategoryCode, seed.SubcategoryCode)
	if err != nil {
		return nil, err
	}
	code, categoryCode, subcategoryCode := codes[0], codes[1], codes[2]

	parents, err := store.Subcategories().FindByNaturalKey(categoryCode, subcategoryCode)
	if err != nil {
		return nil, err
	}
	if len(parents) == 0 {
		return nil, &taxonomy.ReferentialError{Kind: "subcategory", Code: categoryCode + "/" + subcategoryCode}
	}

	price := seed.Price
	if price.IsZero() {
		price = model.DefaultStickerPrice
	}

	repo := store.Stickers()
	existing, err := repo.FindByCode(code)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up sticker %s: %w", code, err)
	}

	result := &UpsertResult{Code: code}
	if existing == nil {
		result.Inserted = true
		return result, repo.Create(&model.Sticker{
			Code:            code,
			Name:            seed.Name,
			CategoryCode:    categoryCode,
			SubcategoryCode: subcategoryCode,
			Filename:        seed.Filename,
			IsActive:        true,
			SortOrder:       seed.SortOrder,
			Price:           price,
		})
	}

	err = repo.Patch(existing.ID, map[string]interface{}{
		"name":             seed.Name,
		"category_code":    categoryCode,
		"subcategory_code": subcategoryCode,
		"filename":         seed.Filename,
		"is_active":        true,
		"sort_order":       seed.SortOrder,
		"price":            price,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update sticker %s: %w", code, err)
	}
	return result, nil
}

func upsertStickerGroupLink(store repository.TaxonomyStore, rawStickerCode, rawGroupCode string) (*UpsertResult, error) {
	codes, err := normalizeCodes(rawStickerCode, rawGroupCode)
	if err != nil {
		return nil, err
	}
	stickerCode, groupCode := codes[0], codes[1]

	if _, err := store.Stickers().FindByCode(stickerCode); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &taxonomy.ReferentialError{Kind: "sticker", Code: stickerCode}
		}
		return nil, err
	}
	groups, err := store.Groups().FindByCode(groupCode)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, &taxonomy.ReferentialError{Kind: "group", Code: groupCode}
	}

	repo := store.Links()
	existing, err := repo.FindByPair(stickerCode, groupCode)
	if err != nil {
		return nil, fmt.Errorf("failed to look up link %s->%s: %w", stickerCode, groupCode, err)
	}

	result := &UpsertResult{Code: groupCode}
	if len(existing) == 0 {
		result.Inserted = true
		return result, repo.Create(&model.StickerGroupLink{StickerCode: stickerCode, GroupCode: groupCode})
	}
	for _, dup := range existing[1:] {
		if err := repo.Delete(dup.ID); err != nil {
			return nil, fmt.Errorf("failed to delete duplicate link %s->%s: %w", stickerCode, groupCode, err)
		}
		result.DuplicatesRemoved++
	}
	return result, nil
}
