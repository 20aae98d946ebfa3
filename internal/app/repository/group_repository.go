package repository

import (
	"github.com/stickerverse/sticker-catalog/internal/app/model"
	"github.com/stickerverse/sticker-catalog/pkg/logger"
	"gorm.io/gorm"
)

type GroupRepository interface {
	FindAll() ([]model.Group, error)
	FindBySubcategory(subcategoryCode string) ([]model.Group, error)
	FindByCode(code string) ([]model.Group, error)
	FindByNaturalKey(subcategoryCode, code string) ([]model.Group, error)
	Create(group *model.Group) error
	Patch(id uint, fields map[string]interface{}) error
	Delete(id uint) error
}

type groupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) FindAll() ([]model.Group, error) {
	var groups []model.Group
	if err := r.db.Order("id ASC").Find(&groups).Error; err != nil {
		logger.Error("Failed to collect groups", err)
		return nil, err
	}
	return groups, nil
}

func (r *groupRepository) FindBySubcategory(subcategoryCode string) ([]model.Group, error) {
	var groups []model.Group
	err := r.db.Where("subcategory_code = ?", subcategoryCode).
		Order("id ASC").
		Find(&groups).Error
	if err != nil {
		logger.Error("Failed to find groups by subcategory", err, map[string]interface{}{
			"subcategory_code": subcategoryCode,
		})
		return nil, err
	}
	return groups, nil
}

// FindByCode looks a group code up across all subcategories.
func (r *groupRepository) FindByCode(code string) ([]model.Group, error) {
	var groups []model.Group
	if err := r.db.Where("code = ?", code).Order("id ASC").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *groupRepository) FindByNaturalKey(subcategoryCode, code string) ([]model.Group, error) {
	var groups []model.Group
	err := r.db.Where("subcategory_code = ? AND code = ?", subcategoryCode, code).
		Order("id ASC").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *groupRepository) Create(group *model.Group) error {
	logger.Debug("Creating group", map[string]interface{}{
		"subcategory_code": group.SubcategoryCode,
		"code":             group.Code,
	})

	if err := r.db.Create(group).Error; err != nil {
		logger.Error("Failed to create group", err, map[string]interface{}{
			"subcategory_code": group.SubcategoryCode,
			"code":             group.Code,
		})
		return err
	}
	return nil
}

func (r *groupRepository) Patch(id uint, fields map[string]interface{}) error {
	return r.db.Model(&model.Group{}).Where("id = ?", id).Updates(fields).Error
}

func (r *groupRepository) Delete(id uint) error {
	return r.db.Delete(&model.Group{}, id).Error
}
