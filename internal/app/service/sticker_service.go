package service

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/stickerverse/sticker-catalog/config"
	"github.com/stickerverse/sticker-catalog/internal/app/model"
	"github.com/stickerverse/sticker-catalog/internal/app/repository"
	"github.com/stickerverse/sticker-catalog/internal/storage"
	"github.com/stickerverse/sticker-catalog/pkg/logger"
	"github.com/stickerverse/sticker-catalog/pkg/taxonomy"
	"gorm.io/gorm"
)

var (
	ErrSubcategoryRequired = errors.New("subcategory code is required")
	ErrImageKeyRequired    = errors.New("image key is required")
	ErrUploadsDisabled     = errors.New("asset uploads are not configured")
)

var (
	imageExtPattern       = regexp.MustCompile(`(?i)\.(png|webp)$`)
	filenamePrefixPattern = regexp.MustCompile(`^[A-Za-z-]+`)
	digitsPattern         = regexp.MustCompile(`^[0-9]+$`)
)

// UploadSigner issues presigned upload targets.
type UploadSigner interface {
	GenerateUploadURL(filename, contentType string) (*storage.PresignedURLResponse, error)
}

// SignerFor returns s as the upload signer when cfg names a bucket and region.
// Otherwise it returns nil and GenerateUploadURL reports ErrUploadsDisabled.
func SignerFor(cfg *config.S3Config, s *storage.S3Storage) UploadSigner {
	if s == nil || cfg == nil || !cfg.Enabled() {
		return nil
	}
	return s
}

// UploadNotifier is told about each new sticker. Implementations must not block.
type UploadNotifier interface {
	StickerUploaded(sticker model.Sticker)
}

type FinalizeUploadRequest struct {
	ImageKey        string
	Name            string
	CategoryCode    string
	SubcategoryCode string
	Filename        string
}

type FinalizeUploadResult struct {
	ID            uint           `json:"id"`
	Code          string         `json:"code"`
	AlreadyExists bool           `json:"already_exists"`
	Sticker       *model.Sticker `json:"sticker"`
}

// PrefixInfo maps an upload filename prefix to its place in the taxonomy.
type PrefixInfo struct {
	Prefix          string `json:"prefix"`
	CategoryCode    string `json:"category_code"`
	CategoryName    string `json:"category_name"`
	SubcategoryCode string `json:"subcategory_code"`
	SubcategoryName string `json:"subcategory_name"`
}

type StickerService interface {
	GenerateUploadURL(filename, contentType string) (*storage.PresignedURLResponse, error)
	FinalizeUpload(req FinalizeUploadRequest) (*FinalizeUploadResult, error)
	ResolvePrefix(prefix string) (*PrefixInfo, error)
	ListAllPrefixes() ([]PrefixInfo, error)
}

type stickerService struct {
	store    repository.TaxonomyStore
	signer   UploadSigner
	notifier UploadNotifier
	assets   AssetResolver
	cache    CatalogCache
}

func NewStickerService(
	store repository.TaxonomyStore,
	signer UploadSigner,
	notifier UploadNotifier,
	assets AssetResolver,
	cache CatalogCache,
) StickerService {
	if assets == nil {
		assets = noAssets{}
	}
	return &stickerService{
		store:    store,
		signer:   signer,
		notifier: notifier,
		assets:   assets,
		cache:    cacheOrNoop(cache),
	}
}

func (s *stickerService) GenerateUploadURL(filename, contentType string) (*storage.PresignedURLResponse, error) {
	if s.signer == nil {
		return nil, ErrUploadsDisabled
	}
	return s.signer.GenerateUploadURL(filename, contentType)
}

// FilenamePrefix returns the taxonomy prefix encoded in an upload filename:
// the leading run of letters and hyphens, uppercased, without a trailing hyphen.
func FilenamePrefix(filename string) string {
	name := imageExtPattern.ReplaceAllString(filename, "")
	prefix := strings.ToUpper(filenamePrefixPattern.FindString(name))
	return strings.TrimRight(prefix, "-")
}

func (s *stickerService) FinalizeUpload(req FinalizeUploadRequest) (*FinalizeUploadResult, error) {
	if strings.TrimSpace(req.SubcategoryCode) == "" {
		return nil, ErrSubcategoryRequired
	}
	if strings.TrimSpace(req.ImageKey) == "" {
		return nil, ErrImageKeyRequired
	}
	subcategoryCode, err := taxonomy.Normalize(req.SubcategoryCode)
	if err != nil {
		return nil, err
	}

	subcategory, err := s.findSubcategory(req.CategoryCode, subcategoryCode)
	if err != nil {
		return nil, err
	}

	if prefix := FilenamePrefix(req.Filename); prefix != "" && prefix != subcategory.Code {
		logger.Warn("Upload rejected: filename prefix mismatch", map[string]interface{}{
			"filename":    req.Filename,
			"prefix":      prefix,
			"subcategory": subcategory.Code,
		})
		return nil, &taxonomy.PrefixMismatchError{
			Filename:        req.Filename,
			Prefix:          prefix,
			SubcategoryCode: subcategory.Code,
		}
	}

	existing, err := s.store.Stickers().FindByImageKey(req.ImageKey)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up sticker by image key: %w", err)
	}
	if existing != nil {
		return &FinalizeUploadResult{
			ID:            existing.ID,
			Code:          existing.Code,
			AlreadyExists: true,
			Sticker:       s.withImageURL(existing),
		}, nil
	}

	sticker, err := s.createSticker(req, subcategory)
	var dup *taxonomy.DuplicateResourceError
	if errors.As(err, &dup) {
		logger.Warn("Sticker code collision, retrying", map[string]interface{}{
			"code": dup.Code,
		})
		sticker, err = s.createSticker(req, subcategory)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Sticker upload finalized", map[string]interface{}{
		"code":        sticker.Code,
		"subcategory": sticker.SubcategoryCode,
		"image_key":   sticker.ImageKey,
	})

	if err := s.cache.Invalidate(); err != nil {
		logger.Warn("Failed to invalidate catalog cache", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if s.notifier != nil {
		s.notifier.StickerUploaded(*sticker)
	}

	return &FinalizeUploadResult{
		ID:      sticker.ID,
		Code:    sticker.Code,
		Sticker: s.withImageURL(sticker),
	}, nil
}

// findSubcategory resolves the target subcategory. When a category code is
// given the subcategory must live under it.
func (s *stickerService) findSubcategory(rawCategoryCode, subcategoryCode string) (*model.Subcategory, error) {
	candidates, err := s.store.Subcategories().FindByCode(subcategoryCode)
	if err != nil {
		return nil, fmt.Errorf("failed to look up subcategory %s: %w", subcategoryCode, err)
	}
	if len(candidates) == 0 {
		return nil, &taxonomy.ReferentialError{Kind: "subcategory", Code: subcategoryCode}
	}
	if strings.TrimSpace(rawCategoryCode) == "" {
		return &candidates[0], nil
	}

	categoryCode, err := taxonomy.Normalize(rawCategoryCode)
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		if candidates[i].CategoryCode == categoryCode {
			return &candidates[i], nil
		}
	}
	return nil, &taxonomy.ReferentialError{Kind: "category", Code: categoryCode + "/" + subcategoryCode}
}

func (s *stickerService) createSticker(req FinalizeUploadRequest, subcategory *model.Subcategory) (*model.Sticker, error) {
	prefix := subcategory.Code
	siblings, err := s.store.Stickers().FindByCodePrefix(prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to load stickers with prefix %s: %w", prefix, err)
	}
	next := NextSequence(prefix, siblings)
	code := fmt.Sprintf("%s%05d", prefix, next)

	if _, err := s.store.Stickers().FindByCode(code); err == nil {
		return nil, &taxonomy.DuplicateResourceError{Kind: "sticker", Code: code}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check sticker code %s: %w", code, err)
	}

	sticker := &model.Sticker{
		Code:            code,
		Name:            req.Name,
		CategoryCode:    subcategory.CategoryCode,
		SubcategoryCode: subcategory.Code,
		Filename:        req.Filename,
		ImageKey:        req.ImageKey,
		IsActive:        true,
		SortOrder:       next,
		Price:           model.DefaultStickerPrice,
	}
	if err := s.store.Stickers().Create(sticker); err != nil {
		if isUniqueViolation(err) {
			return nil, &taxonomy.DuplicateResourceError{Kind: "sticker", Code: code}
		}
		return nil, fmt.Errorf("failed to create sticker %s: %w", code, err)
	}
	return sticker, nil
}

// NextSequence returns one past the highest numeric suffix among codes that
// start with prefix. Suffixes that are not plain digits count as zero.
func NextSequence(prefix string, stickers []model.Sticker) int {
	highest := 0
	for _, st := range stickers {
		if !strings.HasPrefix(st.Code, prefix) {
			continue
		}
		suffix := strings.TrimPrefix(st.Code, prefix)
		if !digitsPattern.MatchString(suffix) {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err == nil && n > highest {
			highest = n
		}
	}
	return highest + 1
}

func (s *stickerService) ResolvePrefix(prefix string) (*PrefixInfo, error) {
	code := strings.ToUpper(strings.TrimSpace(prefix))
	subcategories, err := s.store.Subcategories().FindByCode(code)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve prefix %s: %w", code, err)
	}
	if len(subcategories) == 0 {
		return nil, &taxonomy.ReferentialError{Kind: "subcategory", Code: code}
	}
	sub := subcategories[0]

	categoryName := sub.CategoryCode
	categories, err := s.store.Categories().FindByCode(sub.CategoryCode)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve category %s: %w", sub.CategoryCode, err)
	}
	if len(categories) > 0 {
		categoryName = categories[0].Name
	}

	return &PrefixInfo{
		Prefix:          sub.Code,
		CategoryCode:    sub.CategoryCode,
		CategoryName:    categoryName,
		SubcategoryCode: sub.Code,
		SubcategoryName: sub.Name,
	}, nil
}

func (s *stickerService) ListAllPrefixes() ([]PrefixInfo, error) {
	subcategories, err := s.store.Subcategories().FindAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list subcategories: %w", err)
	}
	categories, err := s.store.Categories().FindAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	names := make(map[string]string, len(categories))
	for _, c := range categories {
		if _, ok := names[c.Code]; !ok {
			names[c.Code] = c.Name
		}
	}

	prefixes := make([]PrefixInfo, 0, len(subcategories))
	for _, sub := range subcategories {
		categoryName, ok := names[sub.CategoryCode]
		if !ok {
			categoryName = sub.CategoryCode
		}
		prefixes = append(prefixes, PrefixInfo{
			Prefix:          sub.Code,
			CategoryCode:    sub.CategoryCode,
			CategoryName:    categoryName,
			SubcategoryCode: sub.Code,
			SubcategoryName: sub.Name,
		})
	}
	sort.SliceStable(prefixes, func(i, j int) bool {
		return prefixes[i].Prefix < prefixes[j].Prefix
	})
	return prefixes, nil
}

func (s *stickerService) withImageURL(sticker *model.Sticker) *model.Sticker {
	sticker.ImageURL = s.assets.ResolveURL(sticker.ImageKey)
	return sticker
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
