package controller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stickerverse/sticker-catalog/internal/app/service"
	apperrors "github.com/stickerverse/sticker-catalog/internal/errors"
	"github.com/stickerverse/sticker-catalog/internal/middleware"
)

// CatalogController serves the public read side of the taxonomy.
type CatalogController struct {
	catalogService service.CatalogService
}

func NewCatalogController(catalogService service.CatalogService) *CatalogController {
	return &CatalogController{
		catalogService: catalogService,
	}
}

func onlyActive(c *gin.Context) bool {
	v, err := strconv.ParseBool(c.DefaultQuery("onlyActive", "false"))
	return err == nil && v
}

// ListCategories
// GET /api/v1/categories?onlyActive=true
func (ctrl *CatalogController) ListCategories(c *gin.Context) {
	categories, err := ctrl.catalogService.ListCategories(onlyActive(c))
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list categories", err)
		apperrors.ParseAndRespond(c, err, "list categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"count":      len(categories),
	})
}

// ListSubcategoriesByCategory
// GET /api/v1/categories/:code/subcategories
func (ctrl *CatalogController) ListSubcategoriesByCategory(c *gin.Context) {
	ctrl.listSubcategories(c, c.Param("code"))
}

// ListSubcategories lists every subcategory ordered by category
// GET /api/v1/subcategories
func (ctrl *CatalogController) ListSubcategories(c *gin.Context) {
	ctrl.listSubcategories(c, "")
}

func (ctrl *CatalogController) listSubcategories(c *gin.Context, categoryCode string) {
	subcategories, err := ctrl.catalogService.ListSubcategories(categoryCode, onlyActive(c))
	if err != nil {
		apperrors.ParseAndRespond(c, err, "list subcategories")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"subcategories": subcategories,
		"count":         len(subcategories),
	})
}

// ListGroups
// GET /api/v1/subcategories/:code/groups
func (ctrl *CatalogController) ListGroups(c *gin.Context) {
	groups, err := ctrl.catalogService.ListGroups(c.Param("code"), onlyActive(c))
	if err != nil {
		apperrors.ParseAndRespond(c, err, "list groups")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"groups": groups,
		"count":  len(groups),
	})
}

// GetStickersByGroup
// GET /api/v1/groups/:code/stickers
func (ctrl *CatalogController) GetStickersByGroup(c *gin.Context) {
	stickers, err := ctrl.catalogService.GetStickersByGroupCode(c.Param("code"))
	if err != nil {
		apperrors.ParseAndRespond(c, err, "list stickers")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"stickers": stickers,
		"count":    len(stickers),
	})
}

// GetStickerCounts
// GET /api/v1/groups/sticker-counts?codes=FIRE,WATER
func (ctrl *CatalogController) GetStickerCounts(c *gin.Context) {
	var codes []string
	for _, code := range strings.Split(c.Query("codes"), ",") {
		if code = strings.TrimSpace(code); code != "" {
			codes = append(codes, code)
		}
	}
	if len(codes) == 0 {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "codes query parameter is required")
		return
	}

	counts, err := ctrl.catalogService.GetStickerCountsByGroupCodes(codes)
	if err != nil {
		apperrors.ParseAndRespond(c, err, "count stickers")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"counts": counts,
	})
}

// ListStickers returns every sticker, newest first
// GET /api/v1/stickers
func (ctrl *CatalogController) ListStickers(c *gin.Context) {
	stickers, err := ctrl.catalogService.ListAllStickers()
	if err != nil {
		apperrors.ParseAndRespond(c, err, "list stickers")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"stickers": stickers,
		"count":    len(stickers),
	})
}

// ListRecentStickers
// GET /api/v1/stickers/recent?limit=20
func (ctrl *CatalogController) ListRecentStickers(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "limit must be a positive integer")
			return
		}
		limit = n
	}

	stickers, err := ctrl.catalogService.ListRecentStickers(limit)
	if err != nil {
		apperrors.ParseAndRespond(c, err, "list stickers")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"stickers": stickers,
		"count":    len(stickers),
	})
}
