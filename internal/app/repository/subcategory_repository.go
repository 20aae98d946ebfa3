package repository

import (
	"github.com/stickerverse/sticker-catalog/internal/app/model"
	"github.com/stickerverse/sticker-catalog/pkg/logger"
	"gorm.io/gorm"
)

type SubcategoryRepository interface {
	FindAll() ([]model.Subcategory, error)
	FindByCategory(categoryCode string) ([]model.Subcategory, error)
	FindByCode(code string) ([]model.Subcategory, error)
	FindByNaturalKey(categoryCode, code string) ([]model.Subcategory, error)
	Create(subcategory *model.Subcategory) error
	Patch(id uint, fields map[string]interface{}) error
	Delete(id uint) error
}

type subcategoryRepository struct {
	db *gorm.DB
}

func NewSubcategoryRepository(db *gorm.DB) SubcategoryRepository {
	return &subcategoryRepository{db: db}
}

func (r *subcategoryRepository) FindAll() ([]model.Subcategory, error) {
	var subcategories []model.Subcategory
	if err := r.db.Order("id ASC").Find(&subcategories).Error; err != nil {
		logger.Error("Failed to collect subcategories", err)
		return nil, err
	}
	return subcategories, nil
}

func (r *subcategoryRepository) FindByCategory(categoryCode string) ([]model.Subcategory, error) {
	var subcategories []model.Subcategory
	err := r.db.Where("category_code = ?", categoryCode).
		Order("id ASC").
		Find(&subcategories).Error
	if err != nil {
		logger.Error("Failed to find subcategories by category", err, map[string]interface{}{
			"category_code": categoryCode,
		})
		return nil, err
	}
	return subcategories, nil
}

// FindByCode looks a subcategory code up across all categories.
func (r *subcategoryRepository) FindByCode(code string) ([]model.Subcategory, error) {
	var subcategories []model.Subcategory
	if err := r.db.Where("code = ?", code).Order("id ASC").Find(&subcategories).Error; err != nil {
		return nil, err
	}
	return subcategories, nil
}

func (r *subcategoryRepository) FindByNaturalKey(categoryCode, code string) ([]model.Subcategory, error) {
	var subcategories []model.Subcategory
	err := r.db.Where("category_code = ? AND code = ?", categoryCode, code).
		Order("id ASC").
		Find(&subcategories).Error
	if err != nil {
		logger.Error("Failed to find subcategories by natural key", err, map[string]interface{}{
			"category_code": categoryCode,
			"code":          code,
		})
		return nil, err
	}
	return subcategories, nil
}

func (r *subcategoryRepository) Create(subcategory *model.Subcategory) error {
	logger.Debug("Creating subcategory", map[string]interface{}{
		"category_code": subcategory.CategoryCode,
		"code":          subcategory.Code,
	})

	if err := r.db.Create(subcategory).Error; err != nil {
		logger.Error("Failed to create subcategory", err, map[string]interface{}{
			"category_code": subcategory.CategoryCode,
			"code":          subcategory.Code,
		})
		return err
	}
	return nil
}

func (r *subcategoryRepository) Patch(id uint, fields map[string]interface{}) error {
	return r.db.Model(&model.Subcategory{}).Where("id = ?", id).Updates(fields).Error
}

func (r *subcategoryRepository) Delete(id uint) error {
	logger.Debug("Deleting subcategory", map[string]interface{}{
		"subcategory_id": id,
	})
	return r.db.Delete(&model.Subcategory{}, id).Error
}
