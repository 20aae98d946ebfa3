package repository

import (
	"github.com/stickerverse/sticker-catalog/internal/app/model"
	"github.com/stickerverse/sticker-catalog/pkg/logger"
	"gorm.io/gorm"
)

type StickerRepository interface {
	FindAll() ([]model.Sticker, error)
	FindRecent(limit int) ([]model.Sticker, error)
	FindByCode(code string) (*model.Sticker, error)
	FindByCodes(codes []string) ([]model.Sticker, error)
	FindByCodePrefix(prefix string) ([]model.Sticker, error)
	FindByImageKey(key string) (*model.Sticker, error)
	Create(sticker *model.Sticker) error
	Patch(id uint, fields map[string]interface{}) error
	Delete(id uint) error
}

type stickerRepository struct {
	db *gorm.DB
}

func NewStickerRepository(db *gorm.DB) StickerRepository {
	return &stickerRepository{db: db}
}

// FindAll returns every sticker, newest first.
func (r *stickerRepository) FindAll() ([]model.Sticker, error) {
	var stickers []model.Sticker
	if err := r.db.Order("created_at DESC, id DESC").Find(&stickers).Error; err != nil {
		logger.Error("Failed to collect stickers", err)
		return nil, err
	}
	return stickers, nil
}

func (r *stickerRepository) FindRecent(limit int) ([]model.Sticker, error) {
	var stickers []model.Sticker
	if err := r.db.Order("id DESC").Limit(limit).Find(&stickers).Error; err != nil {
		logger.Error("Failed to find recent stickers", err, map[string]interface{}{
			"limit": limit,
		})
		return nil, err
	}
	return stickers, nil
}

// FindByCode returns gorm.ErrRecordNotFound when no sticker has code.
func (r *stickerRepository) FindByCode(code string) (*model.Sticker, error) {
	var sticker model.Sticker
	if err := r.db.Where("code = ?", code).First(&sticker).Error; err != nil {
		return nil, err
	}
	return &sticker, nil
}

func (r *stickerRepository) FindByCodes(codes []string) ([]model.Sticker, error) {
	var stickers []model.Sticker
	if len(codes) == 0 {
		return stickers, nil
	}
	if err := r.db.Where("code IN ?", codes).Find(&stickers).Error; err != nil {
		logger.Error("Failed to find stickers by codes", err, map[string]interface{}{
			"count": len(codes),
		})
		return nil, err
	}
	return stickers, nil
}

func (r *stickerRepository) FindByCodePrefix(prefix string) ([]model.Sticker, error) {
	var stickers []model.Sticker
	if err := r.db.Where("code LIKE ?", prefix+"%").Order("code ASC").Find(&stickers).Error; err != nil {
		logger.Error("Failed to find stickers by code prefix", err, map[string]interface{}{
			"prefix": prefix,
		})
		return nil, err
	}
	return stickers, nil
}

// FindByImageKey returns gorm.ErrRecordNotFound when the asset is not attached yet.
func (r *stickerRepository) FindByImageKey(key string) (*model.Sticker, error) {
	var sticker model.Sticker
	if err := r.db.Where("image_key = ?", key).First(&sticker).Error; err != nil {
		return nil, err
	}
	return &sticker, nil
}

func (r *stickerRepository) Create(sticker *model.Sticker) error {
	logger.Debug("Creating sticker", map[string]interface{}{
		"code":             sticker.Code,
		"subcategory_code": sticker.SubcategoryCode,
	})

	if err := r.db.Create(sticker).Error; err != nil {
		logger.Error("Failed to create sticker", err, map[string]interface{}{
			"code": sticker.Code,
		})
		return err
	}
	return nil
}

func (r *stickerRepository) Patch(id uint, fields map[string]interface{}) error {
	return r.db.Model(&model.Sticker{}).Where("id = ?", id).Updates(fields).Error
}

func (r *stickerRepository) Delete(id uint) error {
	return r.db.Delete(&model.Sticker{}, id).Error
}
