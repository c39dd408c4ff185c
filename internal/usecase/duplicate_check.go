package usecase

import (
	"context"
	"errors"
	"fmt"

	"catalog_service/internal/domain"
)

// CategoryFinder is the read capability the duplicate check needs.
type CategoryFinder interface {
	FindConflictingCategory(ctx context.Context, name, slug string, level int) (*domain.Category, error)
}

// CheckExistingCategory reports whether creating candidate would break slug
// uniqueness or (name, level) uniqueness. Only the lowest-id match is
// inspected: a match on both name and level is a NameLevelConflict, any other
// match can only be a SlugConflict.
func CheckExistingCategory(ctx context.Context, finder CategoryFinder, candidate domain.CategoryInput) error {
	existing, err := finder.FindConflictingCategory(ctx, candidate.Name, candidate.Slug, candidate.Level)
	if errors.Is(err, domain.ErrCategoryNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("duplicate check: %w", err)
	}

	if existing.Name == candidate.Name && existing.Level == candidate.Level {
		return &domain.DuplicateCategoryError{Reason: domain.NameLevelConflict}
	}
	return &domain.DuplicateCategoryError{Reason: domain.SlugConflict}
}
