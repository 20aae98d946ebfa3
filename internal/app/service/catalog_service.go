package service

import (
	"fmt"
	"sort"

	"github.com/stickerverse/sticker-catalog/internal/app/model"
	"github.com/stickerverse/sticker-catalog/internal/app/repository"
	"github.com/stickerverse/sticker-catalog/pkg/logger"
	"github.com/stickerverse/sticker-catalog/pkg/taxonomy"
)

const DefaultRecentStickerLimit = 20

// AssetResolver turns a stored image key into a public URL.
type AssetResolver interface {
	ResolveURL(key string) *string
}

type noAssets struct{}

func (noAssets) ResolveURL(string) *string { return nil }

type CatalogService interface {
	ListCategories(onlyActive bool) ([]model.Category, error)
	ListSubcategories(categoryCode string, onlyActive bool) ([]model.Subcategory, error)
	ListGroups(subcategoryCode string, onlyActive bool) ([]model.Group, error)
	GetStickersByGroupCode(groupCode string) ([]model.Sticker, error)
	GetStickerCountsByGroupCodes(groupCodes []string) (map[string]int64, error)
	ListAllStickers() ([]model.Sticker, error)
	ListRecentStickers(limit int) ([]model.Sticker, error)
}

type catalogService struct {
	store  repository.TaxonomyStore
	assets AssetResolver
	cache  CatalogCache
}

func NewCatalogService(store repository.TaxonomyStore, assets AssetResolver, cache CatalogCache) CatalogService {
	if assets == nil {
		assets = noAssets{}
	}
	return &catalogService{
		store:  store,
		assets: assets,
		cache:  cacheOrNoop(cache),
	}
}

func (s *catalogService) ListCategories(onlyActive bool) ([]model.Category, error) {
	key := fmt.Sprintf("categories:active=%t", onlyActive)
	var categories []model.Category
	if s.cached(key, &categories) {
		return categories, nil
	}

	rows, err := s.store.Categories().FindAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories = make([]model.Category, 0, len(rows))
	for _, c := range rows {
		if onlyActive && !c.IsActive {
			continue
		}
		categories = append(categories, c)
	}
	sort.SliceStable(categories, func(i, j int) bool {
		if categories[i].SortOrder != categories[j].SortOrder {
			return categories[i].SortOrder < categories[j].SortOrder
		}
		return categories[i].Name < categories[j].Name
	})

	s.remember(key, categories)
	return categories, nil
}

// ListSubcategories lists one category's subcategories, or all of them
// ordered by category when categoryCode is empty.
func (s *catalogService) ListSubcategories(categoryCode string, onlyActive bool) ([]model.Subcategory, error) {
	code := ""
	if categoryCode != "" {
		normalized, err := taxonomy.Normalize(categoryCode)
		if err != nil {
			return nil, err
		}
		code = normalized
	}

	key := fmt.Sprintf("subcategories:%s:active=%t", code, onlyActive)
	var subcategories []model.Subcategory
	if s.cached(key, &subcategories) {
		return subcategories, nil
	}

	var rows []model.Subcategory
	var err error
	if code == "" {
		rows, err = s.store.Subcategories().FindAll()
	} else {
		rows, err = s.store.Subcategories().FindByCategory(code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list subcategories: %w", err)
	}

	subcategories = make([]model.Subcategory, 0, len(rows))
	for _, sub := range rows {
		if onlyActive && !sub.IsActive {
			continue
		}
		subcategories = append(subcategories, sub)
	}
	sort.SliceStable(subcategories, func(i, j int) bool {
		a, b := subcategories[i], subcategories[j]
		if code == "" && a.CategoryCode != b.CategoryCode {
			return a.CategoryCode < b.CategoryCode
		}
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		return a.Code < b.Code
	})

	s.remember(key, subcategories)
	return subcategories, nil
}

// ListGroups returns one group per code even if duplicates are stored.
func (s *catalogService) ListGroups(subcategoryCode string, onlyActive bool) ([]model.Group, error) {
	code, err := taxonomy.Normalize(subcategoryCode)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.Groups().FindBySubcategory(code)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	seen := make(map[string]bool, len(rows))
	groups := make([]model.Group, 0, len(rows))
	for _, g := range rows {
		if onlyActive && !g.IsActive {
			continue
		}
		if seen[g.Code] {
			continue
		}
		seen[g.Code] = true
		groups = append(groups, g)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].SortOrder != groups[j].SortOrder {
			return groups[i].SortOrder < groups[j].SortOrder
		}
		return groups[i].Code < groups[j].Code
	})
	return groups, nil
}

// GetStickersByGroupCode returns the stickers linked to groupCode in link
// order. Links pointing at missing stickers are skipped.
func (s *catalogService) GetStickersByGroupCode(groupCode string) ([]model.Sticker, error) {
	groupCode, err := taxonomy.Normalize(groupCode)
	if err != nil {
		return nil, err
	}

	links, err := s.store.Links().FindByGroupCode(groupCode)
	if err != nil {
		return nil, fmt.Errorf("failed to load links for group %s: %w", groupCode, err)
	}
	if len(links) == 0 {
		return []model.Sticker{}, nil
	}

	codes := make([]string, 0, len(links))
	for _, l := range links {
		codes = append(codes, l.StickerCode)
	}
	rows, err := s.store.Stickers().FindByCodes(codes)
	if err != nil {
		return nil, fmt.Errorf("failed to load stickers for group %s: %w", groupCode, err)
	}
	byCode := make(map[string]model.Sticker, len(rows))
	for _, st := range rows {
		byCode[st.Code] = st
	}

	stickers := make([]model.Sticker, 0, len(links))
	seen := make(map[string]bool, len(links))
	for _, l := range links {
		st, ok := byCode[l.StickerCode]
		if !ok || seen[st.Code] {
			continue
		}
		seen[st.Code] = true
		stickers = append(stickers, st)
	}
	return s.withImageURLs(stickers), nil
}

func (s *catalogService) GetStickerCountsByGroupCodes(groupCodes []string) (map[string]int64, error) {
	counts, err := s.store.Links().CountByGroupCodes(groupCodes)
	if err != nil {
		return nil, fmt.Errorf("failed to count stickers by group: %w", err)
	}
	return counts, nil
}

func (s *catalogService) ListAllStickers() ([]model.Sticker, error) {
	stickers, err := s.store.Stickers().FindAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list stickers: %w", err)
	}
	return s.withImageURLs(stickers), nil
}

func (s *catalogService) ListRecentStickers(limit int) ([]model.Sticker, error) {
	if limit <= 0 {
		limit = DefaultRecentStickerLimit
	}
	stickers, err := s.store.Stickers().FindRecent(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent stickers: %w", err)
	}
	return s.withImageURLs(stickers), nil
}

func (s *catalogService) withImageURLs(stickers []model.Sticker) []model.Sticker {
	for i := range stickers {
		stickers[i].ImageURL = s.assets.ResolveURL(stickers[i].ImageKey)
	}
	return stickers
}

func (s *catalogService) cached(key string, dest interface{}) bool {
	hit, err := s.cache.GetJSON(key, dest)
	if err != nil {
		logger.Warn("Catalog cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return false
	}
	return hit
}

func (s *catalogService) remember(key string, value interface{}) {
	if err := s.cache.SetJSON(key, value); err != nil {
		logger.Warn("Catalog cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}
