// Package catalog loads the canonical taxonomy that seeding writes and that the
// cleanup operations use as their allow-lists.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/stickerverse/sticker-catalog/pkg/taxonomy"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type GroupDef struct {
	Code      string `yaml:"code"`
	Name      string `yaml:"name"`
	SortOrder int    `yaml:"sort_order"`
}

type SubcategoryDef struct {
	Code      string     `yaml:"code"`
	Name      string     `yaml:"name"`
	SortOrder int        `yaml:"sort_order"`
	Groups    []GroupDef `yaml:"groups"`
}

type CategoryDef struct {
	Code          string           `yaml:"code"`
	Name          string           `yaml:"name"`
	SortOrder     int              `yaml:"sort_order"`
	Subcategories []SubcategoryDef `yaml:"subcategories"`
}

type StickerDef struct {
	Code        string   `yaml:"code"`
	Name        string   `yaml:"name"`
	Category    string   `yaml:"category"`
	Subcategory string   `yaml:"subcategory"`
	SortOrder   int      `yaml:"sort_order"`
	Filename    string   `yaml:"filename"`
	Price       string   `yaml:"price"`
	Groups      []string `yaml:"groups"`

	price decimal.Decimal
}

// UnitPrice returns the parsed sticker price.
func (s StickerDef) UnitPrice() decimal.Decimal {
	return s.price
}

// Definition is the whole canonical taxonomy.
type Definition struct {
	Categories     []CategoryDef     `yaml:"categories"`
	Stickers       []StickerDef      `yaml:"stickers"`
	GroupRenames   map[string]string `yaml:"group_renames"`
	AuditWatchList []string          `yaml:"audit_watch_list"`
}

// CodeSet is a set of canonical codes.
type CodeSet map[string]struct{}

func (s CodeSet) Has(code string) bool {
	_, ok := s[code]
	return ok
}

// Sorted returns the members in lexical order.
func (s CodeSet) Sorted() []string {
	codes := make([]string, 0, len(s))
	for code := range s {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

var (
	defaultOnce sync.Once
	defaultDef  *Definition
)

// Default returns the embedded catalog. It panics if the embedded file is invalid.
func Default() *Definition {
	defaultOnce.Do(func() {
		def, err := Parse(defaultCatalog)
		if err != nil {
			panic(fmt.Sprintf("catalog: embedded catalog is invalid: %v", err))
		}
		defaultDef = def
	})
	return defaultDef
}

// Parse decodes and validates a catalog document. Every code it contains must
// already be canonical and every natural key must appear once.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	categories := make(CodeSet)
	subcategories := make(map[string]CodeSet)
	groups := make(map[string]CodeSet)
	for _, cat := range def.Categories {
		if err := requireCanonical("category", cat.Code); err != nil {
			return nil, err
		}
		if categories.Has(cat.Code) {
			return nil, fmt.Errorf("catalog: duplicate category %s", cat.Code)
		}
		categories[cat.Code] = struct{}{}

		for _, sub := range cat.Subcategories {
			if err := requireCanonical("subcategory", sub.Code); err != nil {
				return nil, err
			}
			if subcategories[cat.Code] == nil {
				subcategories[cat.Code] = make(CodeSet)
			}
			if subcategories[cat.Code].Has(sub.Code) {
				return nil, fmt.Errorf("catalog: duplicate subcategory %s/%s", cat.Code, sub.Code)
			}
			subcategories[cat.Code][sub.Code] = struct{}{}

			for _, grp := range sub.Groups {
				if err := requireCanonical("group", grp.Code); err != nil {
					return nil, err
				}
				if groups[sub.Code] == nil {
					groups[sub.Code] = make(CodeSet)
				}
				if groups[sub.Code].Has(grp.Code) {
					return nil, fmt.Errorf("catalog: duplicate group %s/%s", sub.Code, grp.Code)
				}
				groups[sub.Code][grp.Code] = struct{}{}
			}
		}
	}

	stickers := make(CodeSet)
	for i := range def.Stickers {
		s := &def.Stickers[i]
		for _, code := range append([]string{s.Code, s.Category, s.Subcategory}, s.Groups...) {
			if err := requireCanonical("sticker", code); err != nil {
				return nil, err
			}
		}
		if stickers.Has(s.Code) {
			return nil, fmt.Errorf("catalog: duplicate sticker %s", s.Code)
		}
		stickers[s.Code] = struct{}{}

		price, err := decimal.NewFromString(s.Price)
		if err != nil {
			return nil, fmt.Errorf("catalog: sticker %s has invalid price %q: %w", s.Code, s.Price, err)
		}
		s.price = price
	}

	for legacy, target := range def.GroupRenames {
		if err := requireCanonical("rename target", target); err != nil {
			return nil, fmt.Errorf("catalog: rename of %q: %w", legacy, err)
		}
	}
	for _, code := range def.AuditWatchList {
		if err := requireCanonical("watch-list", code); err != nil {
			return nil, err
		}
	}

	return &def, nil
}

func requireCanonical(kind, code string) error {
	normalized, err := taxonomy.Normalize(code)
	if err != nil {
		return fmt.Errorf("catalog: %s code: %w", kind, err)
	}
	if normalized != code {
		return fmt.Errorf("catalog: %s code %q is not canonical, expected %q", kind, code, normalized)
	}
	return nil
}

// CategoryCodes is the category allow-list.
func (d *Definition) CategoryCodes() CodeSet {
	set := make(CodeSet, len(d.Categories))
	for _, cat := range d.Categories {
		set[cat.Code] = struct{}{}
	}
	return set
}

// SubcategoryAllowList maps category code to its allowed subcategory codes.
// Categories without seeded subcategories have no entry.
func (d *Definition) SubcategoryAllowList() map[string]CodeSet {
	allow := make(map[string]CodeSet)
	for _, cat := range d.Categories {
		for _, sub := range cat.Subcategories {
			if allow[cat.Code] == nil {
				allow[cat.Code] = make(CodeSet)
			}
			allow[cat.Code][sub.Code] = struct{}{}
		}
	}
	return allow
}

// GroupAllowList maps subcategory code to its allowed group codes.
// Subcategories without seeded groups have no entry.
func (d *Definition) GroupAllowList() map[string]CodeSet {
	allow := make(map[string]CodeSet)
	for _, cat := range d.Categories {
		for _, sub := range cat.Subcategories {
			for _, grp := range sub.Groups {
				if allow[sub.Code] == nil {
					allow[sub.Code] = make(CodeSet)
				}
				allow[sub.Code][grp.Code] = struct{}{}
			}
		}
	}
	return allow
}

// SeededGroupCodes returns every group code in the catalog regardless of parent.
func (d *Definition) SeededGroupCodes() CodeSet {
	set := make(CodeSet)
	for _, groups := range d.GroupAllowList() {
		for code := range groups {
			set[code] = struct{}{}
		}
	}
	return set
}

// SeededSubcategoryCodes returns every subcategory code regardless of parent.
func (d *Definition) SeededSubcategoryCodes() CodeSet {
	set := make(CodeSet)
	for _, subs := range d.SubcategoryAllowList() {
		for code := range subs {
			set[code] = struct{}{}
		}
	}
	return set
}

// RenameTarget returns the canonical replacement for a legacy group code.
func (d *Definition) RenameTarget(legacy string) (string, bool) {
	target, ok := d.GroupRenames[legacy]
	return target, ok
}

// UnseededRenameTargets lists rename-map targets that name no seeded group.
func (d *Definition) UnseededRenameTargets() []string {
	seeded := d.SeededGroupCodes()
	missing := make(CodeSet)
	for _, target := range d.GroupRenames {
		if !seeded.Has(target) {
			missing[target] = struct{}{}
		}
	}
	return missing.Sorted()
}

// Inconsistencies lists entries of the rename map, the watch-list and the seed
// stickers that do not correspond to a seeded taxonomy row. They are reported,
// never corrected.
func (d *Definition) Inconsistencies() []string {
	var issues []string
	groups := d.SeededGroupCodes()
	subcategories := d.SeededSubcategoryCodes()
	categories := d.CategoryCodes()

	for _, target := range d.UnseededRenameTargets() {
		issues = append(issues, fmt.Sprintf("group_renames target %s is not a seeded group", target))
	}
	for _, code := range d.AuditWatchList {
		if !groups.Has(code) {
			issues = append(issues, fmt.Sprintf("audit_watch_list entry %s is not a seeded group", code))
		}
	}
	for _, s := range d.Stickers {
		if !categories.Has(s.Category) {
			issues = append(issues, fmt.Sprintf("sticker %s references unseeded category %s", s.Code, s.Category))
		}
		if !subcategories.Has(s.Subcategory) {
			issues = append(issues, fmt.Sprintf("sticker %s references unseeded subcategory %s", s.Code, s.Subcategory))
		}
		for _, g := range s.Groups {
			if !groups.Has(g) {
				issues = append(issues, fmt.Sprintf("sticker %s links unseeded group %s", s.Code, g))
			}
		}
	}
	return issues
}
