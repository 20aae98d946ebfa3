package controller

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stickerverse/sticker-catalog/internal/app/service"
	apperrors "github.com/stickerverse/sticker-catalog/internal/errors"
	"github.com/stickerverse/sticker-catalog/internal/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// TaxonomyController exposes the admin maintenance operations.
type TaxonomyController struct {
	seedService    service.SeedService
	cleanupService service.CleanupService
	auditService   service.AuditService
}

func NewTaxonomyController(
	seedService service.SeedService,
	cleanupService service.CleanupService,
	auditService service.AuditService,
) *TaxonomyController {
	return &TaxonomyController{
		seedService:    seedService,
		cleanupService: cleanupService,
		auditService:   auditService,
	}
}

// Seed applies the embedded catalog definition
// POST /api/v1/admin/taxonomy/seed
func (ctrl *TaxonomyController) Seed(c *gin.Context) {
	result, err := ctrl.seedService.SeedAll()
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Catalog seed failed", err)
		apperrors.ParseAndRespond(c, err, "seed catalog")
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpsertCategory
// POST /api/v1/admin/taxonomy/categories
func (ctrl *TaxonomyController) UpsertCategory(c *gin.Context) {
	var req UpsertCategoryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	result, err := ctrl.seedService.UpsertCategory(req.Code, req.Name, req.SortOrder)
	respondUpsert(c, result, err, "upsert category")
}

// UpsertSubcategory
// POST /api/v1/admin/taxonomy/subcategories
func (ctrl *TaxonomyController) UpsertSubcategory(c *gin.Context) {
	var req UpsertSubcategoryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	result, err := ctrl.seedService.UpsertSubcategory(req.CategoryCode, req.Code, req.Name, req.SortOrder)
	respondUpsert(c, result, err, "upsert subcategory")
}

// UpsertGroup
// POST /api/v1/admin/taxonomy/groups
func (ctrl *TaxonomyController) UpsertGroup(c *gin.Context) {
	var req UpsertGroupRequest
	if !bindAndValidate(c, &req) {
		return
	}
	result, err := ctrl.seedService.UpsertGroup(req.SubcategoryCode, req.Code, req.Name, req.SortOrder)
	respondUpsert(c, result, err, "upsert group")
}

type validatable interface {
	Validate() error
}

func bindAndValidate(c *gin.Context, req validatable) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return false
	}
	if err := req.Validate(); err != nil {
		apperrors.RespondWithValidation(c, err)
		return false
	}
	return true
}

func respondUpsert(c *gin.Context, result *service.UpsertResult, err error, context string) {
	if err != nil {
		apperrors.ParseAndRespond(c, err, context)
		return
	}
	status := http.StatusOK
	if result.Inserted {
		status = http.StatusCreated
	}
	c.JSON(status, result)
}

// DedupeCategories
// POST /api/v1/admin/taxonomy/cleanup/dedupe-categories
func (ctrl *TaxonomyController) DedupeCategories(c *gin.Context) {
	removed, err := ctrl.cleanupService.DeduplicateCategories()
	respondRemoved(c, removed, err, "deduplicate categories")
}

// DedupeSubcategories
// POST /api/v1/admin/taxonomy/cleanup/dedupe-subcategories
func (ctrl *TaxonomyController) DedupeSubcategories(c *gin.Context) {
	removed, err := ctrl.cleanupService.DeduplicateSubcategories()
	respondRemoved(c, removed, err, "deduplicate subcategories")
}

// DedupeGroups
// POST /api/v1/admin/taxonomy/cleanup/dedupe-groups
func (ctrl *TaxonomyController) DedupeGroups(c *gin.Context) {
	removed, err := ctrl.cleanupService.DeduplicateGroups()
	respondRemoved(c, removed, err, "deduplicate groups")
}

func respondRemoved(c *gin.Context, removed int, err error, context string) {
	if err != nil {
		apperrors.ParseAndRespond(c, err, context)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"removed": removed,
	})
}

// Purge deletes records outside the canonical catalog
// POST /api/v1/admin/taxonomy/cleanup/purge
func (ctrl *TaxonomyController) Purge(c *gin.Context) {
	result, err := ctrl.cleanupService.PurgeNonCanonical()
	if err != nil {
		apperrors.ParseAndRespond(c, err, "purge taxonomy")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"deleted": result,
		"total":   result.Total(),
	})
}

// MigrateLinks rewrites sticker group links to canonical group codes
// POST /api/v1/admin/taxonomy/cleanup/migrate-links
func (ctrl *TaxonomyController) MigrateLinks(c *gin.Context) {
	result, err := ctrl.cleanupService.MigrateGroupLinks()
	if err != nil {
		apperrors.ParseAndRespond(c, err, "migrate sticker group links")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Audit returns the read-only taxonomy report
// GET /api/v1/admin/taxonomy/audit
func (ctrl *TaxonomyController) Audit(c *gin.Context) {
	report, err := ctrl.auditService.RunAudit()
	if err != nil {
		apperrors.ParseAndRespond(c, err, "audit taxonomy")
		return
	}
	c.JSON(http.StatusOK, report)
}

// AuditWorkbook streams the audit report as an xlsx file
// GET /api/v1/admin/taxonomy/audit.xlsx
func (ctrl *TaxonomyController) AuditWorkbook(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	report, err := ctrl.auditService.RunAudit()
	if err != nil {
		apperrors.ParseAndRespond(c, err, "audit taxonomy")
		return
	}

	var buf bytes.Buffer
	if err := service.ExportAuditXLSX(report, &buf); err != nil {
		log.Error("Failed to export audit workbook", err)
		apperrors.InternalError(c, "Failed to export audit report")
		return
	}

	filename := fmt.Sprintf("taxonomy-audit-%s.xlsx", report.GeneratedAt.Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
