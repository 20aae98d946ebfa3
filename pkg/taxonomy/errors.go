package taxonomy

import (
	"errors"
	"fmt"
)

var (
	ErrReferential       = errors.New("taxonomy parent does not exist")
	ErrPrefixMismatch    = errors.New("filename prefix does not match subcategory")
	ErrDuplicateResource = errors.New("taxonomy resource already exists")
)

// ReferentialError names the parent code a write pointed at that does not exist.
type ReferentialError struct {
	Kind string // category, subcategory, group, sticker
	Code string
}

func (e *ReferentialError) Error() string {
	return fmt.Sprintf("%s code %q does not exist", e.Kind, e.Code)
}

func (e *ReferentialError) Is(target error) bool {
	return target == ErrReferential
}

// PrefixMismatchError is returned before any row is written when an uploaded
// asset's filename does not start with its target subcategory code.
type PrefixMismatchError struct {
	Filename        string
	Prefix          string
	SubcategoryCode string
}

func (e *PrefixMismatchError) Error() string {
	return fmt.Sprintf("filename prefix %q of %q does not match subcategory %q", e.Prefix, e.Filename, e.SubcategoryCode)
}

func (e *PrefixMismatchError) Is(target error) bool {
	return target == ErrPrefixMismatch
}

// DuplicateResourceError reports a generated code that collided with a stored row.
type DuplicateResourceError struct {
	Kind string
	Code string
}

func (e *DuplicateResourceError) Error() string {
	return fmt.Sprintf("%s code %s already exists", e.Kind, e.Code)
}

func (e *DuplicateResourceError) Is(target error) bool {
	return target == ErrDuplicateResource
}
