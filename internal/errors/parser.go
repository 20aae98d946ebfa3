package errors

import (
	"errors"
	"net/http"
	"strings"

	"github.com/stickerverse/sticker-catalog/pkg/taxonomy"
	"gorm.io/gorm"
)

// ErrorInfo describes how an error is presented to API clients.
type ErrorInfo struct {
	Status  int    // HTTP status code
	Code    string // error code (see codes.go)
	Message string // client facing message
}

// ParseError classifies err. Storage details are hidden; taxonomy validation
// failures keep their message because it names the offending code.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Status:  http.StatusInternalServerError,
			Code:    InternalServerError,
			Message: "Internal server error",
		}
	}

	// 1. Taxonomy error kinds
	var normErr *taxonomy.NormalizationError
	if errors.As(err, &normErr) {
		return ErrorInfo{Status: http.StatusBadRequest, Code: ValidationInvalidCode, Message: normErr.Error()}
	}
	var refErr *taxonomy.ReferentialError
	if errors.As(err, &refErr) {
		return ErrorInfo{Status: http.StatusUnprocessableEntity, Code: TaxonomyParentNotFound, Message: refErr.Error()}
	}
	var prefixErr *taxonomy.PrefixMismatchError
	if errors.As(err, &prefixErr) {
		return ErrorInfo{Status: http.StatusUnprocessableEntity, Code: UploadPrefixMismatch, Message: prefixErr.Error()}
	}
	var dupErr *taxonomy.DuplicateResourceError
	if errors.As(err, &dupErr) {
		return ErrorInfo{Status: http.StatusConflict, Code: ResourceAlreadyExists, Message: dupErr.Error() + ", please retry"}
	}

	// 2. GORM
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Status:  http.StatusNotFound,
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrorInfo{Status: http.StatusConflict, Code: ResourceAlreadyExists, Message: "The resource already exists"}
	}

	errStrLower := strings.ToLower(err.Error())

	// 3. Constraint violations (Postgres and SQLite wording)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStrLower)
	}
	if strings.Contains(errStrLower, "violates not-null constraint") || strings.Contains(errStrLower, "not null constraint failed") {
		return ErrorInfo{Status: http.StatusBadRequest, Code: ValidationRequired, Message: "A required field is missing"}
	}

	// 4. Connectivity
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Status:  http.StatusServiceUnavailable,
			Code:    InternalExternalAPI,
			Message: "A backing service is unreachable, please try again later",
		}
	}

	return ErrorInfo{
		Status:  http.StatusInternalServerError,
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

func parseDuplicateKeyError(errLower string) ErrorInfo {
	if strings.Contains(errLower, "email") {
		return ErrorInfo{Status: http.StatusConflict, Code: AuthEmailAlreadyExists, Message: "Email is already registered"}
	}
	if strings.Contains(errLower, "stickers") || strings.Contains(errLower, "idx_stickers_code") {
		return ErrorInfo{Status: http.StatusConflict, Code: ResourceAlreadyExists, Message: "Sticker code already exists, please retry"}
	}
	return ErrorInfo{Status: http.StatusConflict, Code: ResourceAlreadyExists, Message: "Resource already exists"}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "subcategor"):
		return "Subcategory not found"
	case strings.Contains(contextLower, "categor"):
		return "Category not found"
	case strings.Contains(contextLower, "group"):
		return "Group not found"
	case strings.Contains(contextLower, "sticker"):
		return "Sticker not found"
	case strings.Contains(contextLower, "user"):
		return "User not found"
	}
	return "Requested resource was not found"
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "seed"), strings.Contains(contextLower, "upsert"):
		return "Seeding failed, please try again later"
	case strings.Contains(contextLower, "cleanup"), strings.Contains(contextLower, "migrat"):
		return "Cleanup failed, please try again later"
	case strings.Contains(contextLower, "audit"):
		return "Audit failed, please try again later"
	case strings.Contains(contextLower, "upload"):
		return "Upload failed, please try again later"
	}
	return "Internal server error, please try again later"
}

// ParseAndRespond parses err and writes it with its classified status.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, err error, context string) {
	info := ParseError(err, context)
	c.JSON(info.Status, ErrorResponse{
		Error:   info.Code,
		Message: info.Message,
	})
}
