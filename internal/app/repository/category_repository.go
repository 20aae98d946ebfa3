package repository

import (
	"github.com/stickerverse/sticker-catalog/internal/app/model"
	"github.com/stickerverse/sticker-catalog/pkg/logger"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	FindAll() ([]model.Category, error)
	FindByCode(code string) ([]model.Category, error)
	Create(category *model.Category) error
	Patch(id uint, fields map[string]interface{}) error
	Delete(id uint) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// FindAll returns every row in insertion order, duplicates included.
func (r *categoryRepository) FindAll() ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.Order("id ASC").Find(&categories).Error; err != nil {
		logger.Error("Failed to collect categories", err)
		return nil, err
	}
	return categories, nil
}

// FindByCode returns all rows carrying code, oldest first.
func (r *categoryRepository) FindByCode(code string) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.Where("code = ?", code).Order("id ASC").Find(&categories).Error; err != nil {
		logger.Error("Failed to find categories by code", err, map[string]interface{}{
			"code": code,
		})
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) Create(category *model.Category) error {
	logger.Debug("Creating category", map[string]interface{}{
		"code": category.Code,
		"name": category.Name,
	})

	if err := r.db.Create(category).Error; err != nil {
		logger.Error("Failed to create category", err, map[string]interface{}{
			"code": category.Code,
		})
		return err
	}
	return nil
}

func (r *categoryRepository) Patch(id uint, fields map[string]interface{}) error {
	return r.db.Model(&model.Category{}).Where("id = ?", id).Updates(fields).Error
}

func (r *categoryRepository) Delete(id uint) error {
	logger.Debug("Deleting category", map[string]interface{}{
		"category_id": id,
	})
	return r.db.Delete(&model.Category{}, id).Error
}
