package repository

import (
	"errors"
	"testing"

	"github.com/stickerverse/sticker-catalog/internal/app/model"
	"github.com/stickerverse/sticker-catalog/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTaxonomyStoreTest(t *testing.T) (TaxonomyStore, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	return NewTaxonomyStore(testDB), testDB
}

func TestTaxonomyStore_TransactionRollsBack(t *testing.T) {
	store, _ := setupTaxonomyStoreTest(t)
	boom := errors.New("boom")

	err := store.Transaction(func(tx TaxonomyStore) error {
		require.NoError(t, tx.Categories().Create(&model.Category{Code: "POKEMON", Name: "Pokemon"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	categories, err := store.Categories().FindAll()
	require.NoError(t, err)
	assert.Empty(t, categories)

	err = store.Transaction(func(tx TaxonomyStore) error {
		return tx.Categories().Create(&model.Category{Code: "POKEMON", Name: "Pokemon"})
	})
	require.NoError(t, err)

	categories, err = store.Categories().FindAll()
	require.NoError(t, err)
	assert.Len(t, categories, 1)
}

func TestSubcategoryRepository_NaturalKey(t *testing.T) {
	store, _ := setupTaxonomyStoreTest(t)
	subs := store.Subcategories()

	// PAN exists under two categories.
	require.NoError(t, subs.Create(&model.Subcategory{CategoryCode: "HISPANIC", Code: "PAN", Name: "Pan Dulce"}))
	require.NoError(t, subs.Create(&model.Subcategory{CategoryCode: "ANIMALS", Code: "PAN", Name: "Pandas"}))

	byCode, err := subs.FindByCode("PAN")
	require.NoError(t, err)
	assert.Len(t, byCode, 2)

	byKey, err := subs.FindByNaturalKey("ANIMALS", "PAN")
	require.NoError(t, err)
	require.Len(t, byKey, 1)
	assert.Equal(t, "Pandas", byKey[0].Name)

	require.NoError(t, subs.Patch(byKey[0].ID, map[string]interface{}{"name": "Red Pandas"}))
	require.NoError(t, subs.Delete(byCode[0].ID))

	all, err := subs.FindAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Red Pandas", all[0].Name)
}

func TestStickerRepository_Lookups(t *testing.T) {
	store, _ := setupTaxonomyStoreTest(t)
	stickers := store.Stickers()

	for _, code := range []string{"POK-GEN00001", "POK-GEN00002", "POK-TYP00001"} {
		require.NoError(t, stickers.Create(&model.Sticker{
			Code:            code,
			Name:            code,
			SubcategoryCode: code[:7],
			ImageKey:        "stickers/" + code + ".png",
			Price:           model.DefaultStickerPrice,
		}))
	}

	byPrefix, err := stickers.FindByCodePrefix("POK-GEN")
	require.NoError(t, err)
	assert.Len(t, byPrefix, 2)

	found, err := stickers.FindByImageKey("stickers/POK-TYP00001.png")
	require.NoError(t, err)
	assert.Equal(t, "POK-TYP00001", found.Code)

	_, err = stickers.FindByCode("POK-GEN00099")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	byCodes, err := stickers.FindByCodes([]string{"POK-GEN00001", "POK-TYP00001", "MISSING"})
	require.NoError(t, err)
	assert.Len(t, byCodes, 2)

	recent, err := stickers.FindRecent(2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	// Code is unique.
	err = stickers.Create(&model.Sticker{Code: "POK-GEN00001", Name: "dup", Price: model.DefaultStickerPrice})
	assert.Error(t, err)
}

func TestStickerGroupLinkRepository_Counts(t *testing.T) {
	store, _ := setupTaxonomyStoreTest(t)
	links := store.Links()

	require.NoError(t, links.Create(&model.StickerGroupLink{StickerCode: "S1", GroupCode: "FIRE"}))
	require.NoError(t, links.Create(&model.StickerGroupLink{StickerCode: "S2", GroupCode: "FIRE"}))
	require.NoError(t, links.Create(&model.StickerGroupLink{StickerCode: "S1", GroupCode: "GEN-01"}))

	counts, err := links.CountByGroupCodes([]string{"FIRE", "GEN-01", "WATER"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"FIRE": 2, "GEN-01": 1, "WATER": 0}, counts)

	pair, err := links.FindByPair("S1", "FIRE")
	require.NoError(t, err)
	require.Len(t, pair, 1)

	byGroup, err := links.FindByGroupCode("FIRE")
	require.NoError(t, err)
	assert.Len(t, byGroup, 2)
}
