package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stickerverse/sticker-catalog/internal/app/service"
	apperrors "github.com/stickerverse/sticker-catalog/internal/errors"
	"github.com/stickerverse/sticker-catalog/internal/middleware"
	"github.com/stickerverse/sticker-catalog/pkg/taxonomy"
)

type UploadController struct {
	stickerService service.StickerService
}

func NewUploadController(stickerService service.StickerService) *UploadController {
	return &UploadController{
		stickerService: stickerService,
	}
}

// GenerateUploadURL issues a presigned PUT target for a sticker image
// POST /api/v1/admin/uploads/url
func (ctrl *UploadController) GenerateUploadURL(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		apperrors.RespondWithValidation(c, err)
		return
	}

	resp, err := ctrl.stickerService.GenerateUploadURL(req.Filename, req.ContentType)
	if err != nil {
		if errors.Is(err, service.ErrUploadsDisabled) {
			apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.UploadFailed, "Uploads are not configured")
			return
		}
		log.Error("Failed to generate upload URL", err, map[string]interface{}{
			"filename": req.Filename,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "Failed to generate upload URL")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// FinalizeUpload records an uploaded image as a sticker
// POST /api/v1/admin/uploads/finalize
func (ctrl *UploadController) FinalizeUpload(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req FinalizeUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		apperrors.RespondWithValidation(c, err)
		return
	}

	result, err := ctrl.stickerService.FinalizeUpload(service.FinalizeUploadRequest{
		ImageKey:        req.ImageKey,
		Name:            req.Name,
		CategoryCode:    req.CategoryCode,
		SubcategoryCode: req.SubcategoryCode,
		Filename:        req.Filename,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubcategoryRequired), errors.Is(err, service.ErrImageKeyRequired):
			apperrors.BadRequest(c, apperrors.ValidationRequired, err.Error())
		default:
			log.Error("Failed to finalize upload", err, map[string]interface{}{
				"image_key":        req.ImageKey,
				"subcategory_code": req.SubcategoryCode,
			})
			apperrors.ParseAndRespond(c, err, "finalize upload")
		}
		return
	}

	status := http.StatusCreated
	if result.AlreadyExists {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

// ListPrefixes
// GET /api/v1/admin/uploads/prefixes
func (ctrl *UploadController) ListPrefixes(c *gin.Context) {
	prefixes, err := ctrl.stickerService.ListAllPrefixes()
	if err != nil {
		apperrors.ParseAndRespond(c, err, "list prefixes")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"prefixes": prefixes,
		"count":    len(prefixes),
	})
}

// ResolvePrefix
// GET /api/v1/admin/uploads/prefixes/:prefix
func (ctrl *UploadController) ResolvePrefix(c *gin.Context) {
	info, err := ctrl.stickerService.ResolvePrefix(c.Param("prefix"))
	if err != nil {
		if errors.Is(err, taxonomy.ErrReferential) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Unknown prefix")
			return
		}
		apperrors.ParseAndRespond(c, err, "resolve prefix")
		return
	}
	c.JSON(http.StatusOK, info)
}
