package repository

import "gorm.io/gorm"

// TaxonomyStore bundles the taxonomy repositories over one connection so a
// caller can run several of them inside a single transaction.
type TaxonomyStore interface {
	Categories() CategoryRepository
	Subcategories() SubcategoryRepository
	Groups() GroupRepository
	Stickers() StickerRepository
	Links() StickerGroupLinkRepository
	Transaction(fn func(tx TaxonomyStore) error) error
}

type taxonomyStore struct {
	db *gorm.DB
}

func NewTaxonomyStore(db *gorm.DB) TaxonomyStore {
	return &taxonomyStore{db: db}
}

func (s *taxonomyStore) Categories() CategoryRepository {
	return NewCategoryRepository(s.db)
}

func (s *taxonomyStore) Subcategories() SubcategoryRepository {
	return NewSubcategoryRepository(s.db)
}

func (s *taxonomyStore) Groups() GroupRepository {
	return NewGroupRepository(s.db)
}

func (s *taxonomyStore) Stickers() StickerRepository {
	return NewStickerRepository(s.db)
}

func (s *taxonomyStore) Links() StickerGroupLinkRepository {
	return NewStickerGroupLinkRepository(s.db)
}

// Transaction commits when fn returns nil and rolls back otherwise.
func (s *taxonomyStore) Transaction(fn func(tx TaxonomyStore) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&taxonomyStore{db: tx})
	})
}
