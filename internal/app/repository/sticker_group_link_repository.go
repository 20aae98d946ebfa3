package repository

import (
	"github.com/stickerverse/sticker-catalog/internal/app/model"
	"github.com/stickerverse/sticker-catalog/pkg/logger"
	"gorm.io/gorm"
)

type StickerGroupLinkRepository interface {
	FindAll() ([]model.StickerGroupLink, error)
	FindByGroupCode(groupCode string) ([]model.StickerGroupLink, error)
	FindByPair(stickerCode, groupCode string) ([]model.StickerGroupLink, error)
	CountByGroupCodes(groupCodes []string) (map[string]int64, error)
	Create(link *model.StickerGroupLink) error
	Patch(id uint, fields map[string]interface{}) error
	Delete(id uint) error
}

type stickerGroupLinkRepository struct {
	db *gorm.DB
}

func NewStickerGroupLinkRepository(db *gorm.DB) StickerGroupLinkRepository {
	return &stickerGroupLinkRepository{db: db}
}

func (r *stickerGroupLinkRepository) FindAll() ([]model.StickerGroupLink, error) {
	var links []model.StickerGroupLink
	if err := r.db.Order("id ASC").Find(&links).Error; err != nil {
		logger.Error("Failed to collect sticker group links", err)
		return nil, err
	}
	return links, nil
}

func (r *stickerGroupLinkRepository) FindByGroupCode(groupCode string) ([]model.StickerGroupLink, error) {
	var links []model.StickerGroupLink
	if err := r.db.Where("group_code = ?", groupCode).Order("id ASC").Find(&links).Error; err != nil {
		logger.Error("Failed to find links by group code", err, map[string]interface{}{
			"group_code": groupCode,
		})
		return nil, err
	}
	return links, nil
}

func (r *stickerGroupLinkRepository) FindByPair(stickerCode, groupCode string) ([]model.StickerGroupLink, error) {
	var links []model.StickerGroupLink
	err := r.db.Where("sticker_code = ? AND group_code = ?", stickerCode, groupCode).
		Order("id ASC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

// CountByGroupCodes returns a count for every requested code, zero included.
func (r *stickerGroupLinkRepository) CountByGroupCodes(groupCodes []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(groupCodes))
	for _, code := range groupCodes {
		counts[code] = 0
	}
	if len(groupCodes) == 0 {
		return counts, nil
	}

	var rows []struct {
		GroupCode string
		Count     int64
	}
	err := r.db.Model(&model.StickerGroupLink{}).
		Select("group_code, COUNT(*) AS count").
		Where("group_code IN ?", groupCodes).
		Group("group_code").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to count links by group code", err, map[string]interface{}{
			"group_codes": groupCodes,
		})
		return nil, err
	}

	for _, row := range rows {
		counts[row.GroupCode] = row.Count
	}
	return counts, nil
}

func (r *stickerGroupLinkRepository) Create(link *model.StickerGroupLink) error {
	if err := r.db.Create(link).Error; err != nil {
		logger.Error("Failed to create sticker group link", err, map[string]interface{}{
			"sticker_code": link.StickerCode,
			"group_code":   link.GroupCode,
		})
		return err
	}
	return nil
}

func (r *stickerGroupLinkRepository) Patch(id uint, fields map[string]interface{}) error {
	return r.db.Model(&model.StickerGroupLink{}).Where("id = ?", id).Updates(fields).Error
}

func (r *stickerGroupLinkRepository) Delete(id uint) error {
	return r.db.Delete(&model.StickerGroupLink{}, id).Error
}
