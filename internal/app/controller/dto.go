package controller

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/stickerverse/sticker-catalog/internal/storage"
)

// ========================================
// AUTH DTOs
// ========================================

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			is.Email.Error("invalid email format"),
			validation.Length(5, 255),
		),
		validation.Field(&r.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 72).Error("password must be 8-72 characters"),
		),
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.Length(1, 100),
		),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// ========================================
// TAXONOMY DTOs
// ========================================

// Codes are normalized by the service, so only presence and length are
// checked here.

type UpsertCategoryRequest struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

func (r UpsertCategoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code, validation.Required, validation.Length(1, 64)),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&r.SortOrder, validation.Min(0)),
	)
}

type UpsertSubcategoryRequest struct {
	CategoryCode string `json:"category_code"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	SortOrder    int    `json:"sort_order"`
}

func (r UpsertSubcategoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CategoryCode, validation.Required, validation.Length(1, 64)),
		validation.Field(&r.Code, validation.Required, validation.Length(1, 64)),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&r.SortOrder, validation.Min(0)),
	)
}

type UpsertGroupRequest struct {
	SubcategoryCode string `json:"subcategory_code"`
	Code            string `json:"code"`
	Name            string `json:"name"`
	SortOrder       int    `json:"sort_order"`
}

func (r UpsertGroupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SubcategoryCode, validation.Required, validation.Length(1, 64)),
		validation.Field(&r.Code, validation.Required, validation.Length(1, 64)),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&r.SortOrder, validation.Min(0)),
	)
}

// ========================================
// UPLOAD DTOs
// ========================================

type UploadURLRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

func (r UploadURLRequest) Validate() error {
	allowed := make([]interface{}, len(storage.AllowedImageTypes))
	for i, t := range storage.AllowedImageTypes {
		allowed[i] = t
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Filename, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.ContentType,
			validation.Required,
			validation.In(allowed...).Error("only PNG and WEBP images are allowed"),
		),
	)
}

type FinalizeUploadRequest struct {
	ImageKey        string `json:"image_key"`
	Name            string `json:"name"`
	CategoryCode    string `json:"category_code"`
	SubcategoryCode string `json:"subcategory_code"`
	Filename        string `json:"filename"`
}

func (r FinalizeUploadRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ImageKey, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.SubcategoryCode, validation.Required.Error("subcategory code is required")),
		validation.Field(&r.Filename, validation.Required, validation.Length(1, 255)),
	)
}
