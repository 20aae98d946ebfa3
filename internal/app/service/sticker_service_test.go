package service

import (
	"errors"
	"sync"
	"testing"

	"github.com/stickerverse/sticker-catalog/config"
	"github.com/stickerverse/sticker-catalog/internal/app/model"
	"github.com/stickerverse/sticker-catalog/internal/app/repository"
	"github.com/stickerverse/sticker-catalog/internal/storage"
	"github.com/stickerverse/sticker-catalog/pkg/taxonomy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu       sync.Mutex
	stickers []model.Sticker
}

func (n *recordingNotifier) StickerUploaded(sticker model.Sticker) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stickers = append(n.stickers, sticker)
}

type fakeSigner struct{}

func (fakeSigner) GenerateUploadURL(filename, contentType string) (*storage.PresignedURLResponse, error) {
	return &storage.PresignedURLResponse{UploadURL: "https://upload.test/" + filename, Key: "stickers/" + filename}, nil
}

// staleStore hides existing sticker codes from the sequence scan so the
// generated code collides.
type staleStore struct {
	repository.TaxonomyStore
	staleScans int
}

func (s *staleStore) Stickers() repository.StickerRepository {
	return &staleStickerRepo{StickerRepository: s.TaxonomyStore.Stickers(), store: s}
}

type staleStickerRepo struct {
	repository.StickerRepository
	store *staleStore
}

func (r *staleStickerRepo) FindByCodePrefix(prefix string) ([]model.Sticker, error) {
	if r.store.staleScans > 0 {
		r.store.staleScans--
		return nil, nil
	}
	return r.StickerRepository.FindByCodePrefix(prefix)
}

func seedUploadTaxonomy(t *testing.T, testDB *gorm.DB) {
	require.NoError(t, testDB.Create(&model.Category{Code: "POKEMON", Name: "Pokémon"}).Error)
	require.NoError(t, testDB.Create(&model.Subcategory{CategoryCode: "POKEMON", Code: "POK-GEN", Name: "Generations"}).Error)
}

func setupStickerServiceTest(t *testing.T) (StickerService, *recordingNotifier, *gorm.DB) {
	store, testDB := setupTaxonomyTest(t)
	seedUploadTaxonomy(t, testDB)
	notifier := &recordingNotifier{}
	return NewStickerService(store, fakeSigner{}, notifier, fakeAssets{}, nil), notifier, testDB
}

func TestFilenamePrefix(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"POK-GEN_bulbasaur.png", "POK-GEN"},
		{"pok-gen-01.webp", "POK-GEN"},
		{"POK-GEN.PNG", "POK-GEN"},
		{"animals-cat.png", "ANIMALS-CAT"},
		{"123.png", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, FilenamePrefix(tt.filename))
		})
	}
}

func TestNextSequence(t *testing.T) {
	stickers := []model.Sticker{
		{Code: "POK-GEN00003"},
		{Code: "POK-GEN00012"},
		{Code: "POK-GEN-01"},
		{Code: "POK-GENX00099"},
	}
	assert.Equal(t, 13, NextSequence("POK-GEN", stickers))
	assert.Equal(t, 1, NextSequence("POK-TYP", stickers))
}

func TestStickerService_FinalizeUpload_CreatesSticker(t *testing.T) {
	stickerService, notifier, testDB := setupStickerServiceTest(t)

	result, err := stickerService.FinalizeUpload(FinalizeUploadRequest{
		ImageKey:        "stickers/abc.png",
		Name:            "Bulbasaur",
		CategoryCode:    "pokemon",
		SubcategoryCode: "pok_gen",
		Filename:        "POK-GEN_bulbasaur.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "POK-GEN00001", result.Code)
	assert.False(t, result.AlreadyExists)
	require.NotNil(t, result.Sticker.ImageURL)

	var sticker model.Sticker
	require.NoError(t, testDB.Where("code = ?", "POK-GEN00001").First(&sticker).Error)
	assert.Equal(t, 1, sticker.SortOrder)
	assert.True(t, sticker.Price.Equal(model.DefaultStickerPrice))
	assert.Equal(t, "POKEMON", sticker.CategoryCode)
	require.Len(t, notifier.stickers, 1)

	second, err := stickerService.FinalizeUpload(FinalizeUploadRequest{
		ImageKey:        "stickers/def.png",
		Name:            "Ivysaur",
		SubcategoryCode: "POK-GEN",
		Filename:        "POK-GEN_ivysaur.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "POK-GEN00002", second.Code)
}

func TestStickerService_FinalizeUpload_ExistingImageKey(t *testing.T) {
	stickerService, notifier, _ := setupStickerServiceTest(t)

	req := FinalizeUploadRequest{
		ImageKey:        "stickers/abc.png",
		Name:            "Bulbasaur",
		SubcategoryCode: "POK-GEN",
		Filename:        "POK-GEN_bulbasaur.png",
	}
	first, err := stickerService.FinalizeUpload(req)
	require.NoError(t, err)

	again, err := stickerService.FinalizeUpload(req)
	require.NoError(t, err)
	assert.True(t, again.AlreadyExists)
	assert.Equal(t, first.Code, again.Code)
	assert.Len(t, notifier.stickers, 1)
}

func TestStickerService_FinalizeUpload_Rejections(t *testing.T) {
	stickerService, _, testDB := setupStickerServiceTest(t)

	_, err := stickerService.FinalizeUpload(FinalizeUploadRequest{ImageKey: "k", SubcategoryCode: " "})
	assert.ErrorIs(t, err, ErrSubcategoryRequired)

	_, err = stickerService.FinalizeUpload(FinalizeUploadRequest{SubcategoryCode: "POK-GEN"})
	assert.ErrorIs(t, err, ErrImageKeyRequired)

	_, err = stickerService.FinalizeUpload(FinalizeUploadRequest{ImageKey: "k", SubcategoryCode: "POK-XXX", Filename: "POK-XXX_a.png"})
	var refErr *taxonomy.ReferentialError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, "POK-XXX", refErr.Code)

	_, err = stickerService.FinalizeUpload(FinalizeUploadRequest{ImageKey: "k", CategoryCode: "ANIMALS", SubcategoryCode: "POK-GEN", Filename: "POK-GEN_a.png"})
	assert.ErrorIs(t, err, taxonomy.ErrReferential)

	_, err = stickerService.FinalizeUpload(FinalizeUploadRequest{ImageKey: "k", SubcategoryCode: "POK-GEN", Filename: "POK-TYP_charmander.png"})
	var prefixErr *taxonomy.PrefixMismatchError
	require.ErrorAs(t, err, &prefixErr)
	assert.Equal(t, "POK-TYP", prefixErr.Prefix)

	var count int64
	testDB.Model(&model.Sticker{}).Count(&count)
	assert.Zero(t, count)
}

func TestStickerService_FinalizeUpload_RetriesOnceOnCollision(t *testing.T) {
	base, testDB := setupTaxonomyTest(t)
	seedUploadTaxonomy(t, testDB)
	require.NoError(t, testDB.Create(&model.Sticker{Code: "POK-GEN00001", Name: "Taken", Price: model.DefaultStickerPrice}).Error)

	store := &staleStore{TaxonomyStore: base, staleScans: 1}
	stickerService := NewStickerService(store, nil, nil, nil, nil)

	result, err := stickerService.FinalizeUpload(FinalizeUploadRequest{
		ImageKey:        "stickers/retry.png",
		Name:            "Retry",
		SubcategoryCode: "POK-GEN",
		Filename:        "POK-GEN_retry.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "POK-GEN00002", result.Code)
}

func TestStickerService_FinalizeUpload_SecondCollisionFails(t *testing.T) {
	base, testDB := setupTaxonomyTest(t)
	seedUploadTaxonomy(t, testDB)
	require.NoError(t, testDB.Create(&model.Sticker{Code: "POK-GEN00001", Name: "Taken", Price: model.DefaultStickerPrice}).Error)

	store := &staleStore{TaxonomyStore: base, staleScans: 2}
	stickerService := NewStickerService(store, nil, nil, nil, nil)

	_, err := stickerService.FinalizeUpload(FinalizeUploadRequest{
		ImageKey:        "stickers/retry.png",
		SubcategoryCode: "POK-GEN",
		Filename:        "POK-GEN_retry.png",
	})
	var dupErr *taxonomy.DuplicateResourceError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "POK-GEN00001", dupErr.Code)
}

func TestStickerService_GenerateUploadURL(t *testing.T) {
	stickerService, _, _ := setupStickerServiceTest(t)

	resp, err := stickerService.GenerateUploadURL("a.png", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "stickers/a.png", resp.Key)

	disabled := NewStickerService(nil, nil, nil, nil, nil)
	_, err = disabled.GenerateUploadURL("a.png", "image/png")
	assert.True(t, errors.Is(err, ErrUploadsDisabled))
}

func TestSignerFor(t *testing.T) {
	enabled := &config.S3Config{Region: "us-east-1", Bucket: "sticker-assets"}
	disabled := &config.S3Config{Region: "us-east-1"}

	assert.NotNil(t, SignerFor(enabled, storage.NewS3Storage(enabled)))
	assert.Nil(t, SignerFor(disabled, storage.NewS3Storage(disabled)))
	assert.Nil(t, SignerFor(enabled, nil))

	uploads := NewStickerService(nil, SignerFor(disabled, storage.NewS3Storage(disabled)), nil, nil, nil)
	_, err := uploads.GenerateUploadURL("POK-GEN.png", "image/png")
	assert.ErrorIs(t, err, ErrUploadsDisabled)
}

func TestStickerService_Prefixes(t *testing.T) {
	stickerService, _, testDB := setupStickerServiceTest(t)
	testDB.Create(&model.Subcategory{CategoryCode: "ORPHANED", Code: "ORP-ONE", Name: "One"})

	info, err := stickerService.ResolvePrefix("pok-gen")
	require.NoError(t, err)
	assert.Equal(t, PrefixInfo{
		Prefix:          "POK-GEN",
		CategoryCode:    "POKEMON",
		CategoryName:    "Pokémon",
		SubcategoryCode: "POK-GEN",
		SubcategoryName: "Generations",
	}, *info)

	_, err = stickerService.ResolvePrefix("NOPE")
	assert.ErrorIs(t, err, taxonomy.ErrReferential)

	all, err := stickerService.ListAllPrefixes()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "ORP-ONE", all[0].Prefix)
	assert.Equal(t, "ORPHANED", all[0].CategoryName)
	assert.Equal(t, "POK-GEN", all[1].Prefix)
}
