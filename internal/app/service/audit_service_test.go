package service

import (
	"bytes"
	"testing"

	"github.com/stickerverse/sticker-catalog/internal/app/model"
	"github.com/stickerverse/sticker-catalog/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func setupAuditServiceTest(t *testing.T) (AuditService, *gorm.DB) {
	store, testDB := setupTaxonomyTest(t)
	return NewAuditService(store, catalog.Default()), testDB
}

func TestAuditService_RunAudit_EmptyStore(t *testing.T) {
	auditService, _ := setupAuditServiceTest(t)

	report, err := auditService.RunAudit()
	require.NoError(t, err)
	assert.Zero(t, report.Summary.TotalDuplicates)
	assert.Empty(t, report.DuplicateCategories)
	assert.Empty(t, report.NonCanonicalDetails)
	assert.Contains(t, report.MissingSeeded, "category:POKEMON")
	assert.Equal(t, 0, report.WatchListCounts["FIRE"])
	assert.Len(t, report.WatchListCounts, len(catalog.Default().AuditWatchList))
}

func TestAuditService_RunAudit_CountsExcessDuplicates(t *testing.T) {
	auditService, testDB := setupAuditServiceTest(t)

	for i := 0; i < 3; i++ {
		testDB.Create(&model.Category{Code: "X", Name: "X"})
	}
	testDB.Create(&model.Subcategory{CategoryCode: "X", Code: "X-ONE", Name: "One"})
	testDB.Create(&model.Subcategory{CategoryCode: "X", Code: "X-ONE", Name: "One"})

	report, err := auditService.RunAudit()
	require.NoError(t, err)
	assert.Equal(t, []CodeCount{{Code: "X", Count: 3}}, report.DuplicateCategories)
	assert.Equal(t, []KeyCount{{Key: "X|X-ONE", Count: 2}}, report.DuplicateSubcategories)
	assert.Equal(t, 3, report.Summary.TotalDuplicates)
	assert.Equal(t, 2, report.SubcategoryCounts["X"])
}

func TestAuditService_RunAudit_ReportsViolations(t *testing.T) {
	auditService, testDB := setupAuditServiceTest(t)

	testDB.Create(&model.Category{Code: "FOOD_DRINK", Name: "Food"})
	testDB.Create(&model.Subcategory{CategoryCode: "FOOD_DRINK", Code: "fd-misc", Name: "Misc"})
	testDB.Create(&model.Group{SubcategoryCode: "fd-misc", Code: "G_1", Name: "G"})
	testDB.Create(&model.StickerGroupLink{StickerCode: "FD-MISC00001", GroupCode: "TYP_FIRE"})

	report, err := auditService.RunAudit()
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"category:FOOD_DRINK",
		"subcategory:FOOD_DRINK/fd-misc",
		"group:fd-misc/G_1",
		"link:FD-MISC00001->TYP_FIRE",
	}, report.UnderscoreDetails)

	assert.ElementsMatch(t, []string{
		"category:FOOD_DRINK",
		"subcategory:FOOD_DRINK/fd-misc",
		"subcategory.categoryCode:FOOD_DRINK",
		"group:fd-misc/G_1",
		"group.subcategoryCode:fd-misc",
		"link.groupCode:TYP_FIRE",
	}, report.NonCanonicalDetails)

	assert.Equal(t, 4, report.Summary.UnderscoreCodes)
	assert.Equal(t, 6, report.Summary.NonCanonicalCodes)
	assert.Equal(t, 1, report.GroupCounts["FOOD_DRINK/fd-misc"])
}

func TestAuditService_RunAudit_FindsOrphans(t *testing.T) {
	auditService, testDB := setupAuditServiceTest(t)

	testDB.Create(&model.Subcategory{CategoryCode: "GONE", Code: "GONE-SUB", Name: "Gone"})
	testDB.Create(&model.Group{SubcategoryCode: "MISSING", Code: "FIRE", Name: "Fire"})
	testDB.Create(&model.StickerGroupLink{StickerCode: "NOPE00001", GroupCode: "FIRE"})

	report, err := auditService.RunAudit()
	require.NoError(t, err)
	assert.Equal(t, []string{"GONE/GONE-SUB"}, report.OrphanSubcategories)
	assert.Equal(t, []string{"MISSING/FIRE"}, report.OrphanGroups)
	assert.Equal(t, []string{"link:NOPE00001->FIRE"}, report.OrphanLinks)
	assert.Equal(t, 3, report.Summary.Orphans)
	assert.Equal(t, 1, report.WatchListCounts["FIRE"])
}

func TestAuditService_RunAudit_CleanAfterSeed(t *testing.T) {
	store, _ := setupTaxonomyTest(t)
	def := catalog.Default()

	_, err := NewSeedService(store, def, nil).SeedAll()
	require.NoError(t, err)

	report, err := NewAuditService(store, def).RunAudit()
	require.NoError(t, err)
	assert.Zero(t, report.Summary.TotalDuplicates)
	assert.Empty(t, report.NonCanonicalDetails)
	assert.Empty(t, report.OrphanSubcategories)
	assert.Empty(t, report.OrphanGroups)
	assert.Empty(t, report.OrphanLinks)
	assert.Empty(t, report.MissingSeeded)
	assert.Equal(t, 1, report.WatchListCounts["GEN-01"])
}

func TestExportAuditXLSX(t *testing.T) {
	auditService, testDB := setupAuditServiceTest(t)

	testDB.Create(&model.Category{Code: "X", Name: "X"})
	testDB.Create(&model.Category{Code: "X", Name: "X"})

	report, err := auditService.RunAudit()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ExportAuditXLSX(report, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Duplicates", "Violations", "Counts"}, f.GetSheetList())

	rows, err := f.GetRows("Duplicates")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"category", "X", "2"}, rows[1])
}
