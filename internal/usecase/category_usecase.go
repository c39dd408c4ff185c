package usecase

import (
	"context"
	"errors"
	"fmt"

	"catalog_service/internal/domain"

	"github.com/sirupsen/logrus"
)

type CategoryUseCase interface {
	CreateCategory(ctx context.Context, input domain.CategoryInput) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)
	GetCategoryByID(ctx context.Context, id int) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id int, input domain.CategoryInput) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int) (*domain.DeletedCategory, error)
}

type categoryUseCase struct {
	store domain.CategoryStore
	log   *logrus.Logger
}

func NewCategoryUseCase(store domain.CategoryStore, logger *logrus.Logger) CategoryUseCase {
	return &categoryUseCase{
		store: store,
		log:   logger,
	}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, input domain.CategoryInput) (*domain.Category, error) {
	uc.log.Infof("Use Case: Attempting to create category '%s' (slug '%s', level %d)", input.Name, input.Slug, input.Level)

	var created *domain.Category
	err := uc.store.WithinTransaction(ctx, func(repo domain.CategoryRepository) error {
		if err := CheckExistingCategory(ctx, repo, input); err != nil {
			return err
		}
		var err error
		created, err = repo.CreateCategory(ctx, input.ToCategory())
		return err
	})
	if err != nil {
		var dup *domain.DuplicateCategoryError
		if errors.As(err, &dup) {
			uc.log.Warnf("Use Case: Category '%s' rejected: %s", input.Name, dup.Reason)
		} else {
			uc.log.Errorf("Use Case: Failed to create category '%s': %v", input.Name, err)
		}
		return nil, err
	}

	uc.log.Infof("Use Case: Category '%s' created successfully with ID %d", created.Name, created.ID)
	return created, nil
}

func (uc *categoryUseCase) ListCategories(ctx context.Context) ([]domain.Category, error) {
	uc.log.Info("Use Case: Attempting to list all categories")

	categories, err := uc.store.ListCategories(ctx)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list categories: %v", err)
		return nil, fmt.Errorf("could not retrieve categories: %w", err)
	}

	uc.log.Infof("Use Case: Retrieved %d categories", len(categories))
	return categories, nil
}

func (uc *categoryUseCase) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	uc.log.Infof("Use Case: Attempting to get category with slug '%s'", slug)
	category, err := uc.store.GetCategoryBySlug(ctx, slug)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get category slug '%s': %v", slug, err)
		return nil, err
	}
	return category, nil
}

func (uc *categoryUseCase) GetCategoryByID(ctx context.Context, id int) (*domain.Category, error) {
	if id <= 0 {
		uc.log.Warnf("Use Case: Attempted to get category with invalid ID: %d", id)
		return nil, domain.ErrCategoryNotFound
	}

	category, err := uc.store.GetCategoryByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get category ID %d: %v", id, err)
		return nil, err
	}
	return category, nil
}

func (uc *categoryUseCase) UpdateCategory(ctx context.Context, id int, input domain.CategoryInput) (*domain.Category, error) {
	if id <= 0 {
		uc.log.Warnf("Use Case: Attempted update with invalid ID: %d", id)
		return nil, domain.ErrCategoryNotFound
	}

	uc.log.Infof("Use Case: Attempting to update category ID %d", id)
	var updated *domain.Category
	err := uc.store.WithinTransaction(ctx, func(repo domain.CategoryRepository) error {
		category, err := repo.GetCategoryByID(ctx, id)
		if err != nil {
			return err
		}
		input.Apply(category)
		updated, err = repo.UpdateCategory(ctx, category)
		return err
	})
	if err != nil {
		uc.log.Warnf("Use Case: Failed to update category ID %d: %v", id, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Category updated successfully for ID %d", updated.ID)
	return updated, nil
}

func (uc *categoryUseCase) DeleteCategory(ctx context.Context, id int) (*domain.DeletedCategory, error) {
	if id <= 0 {
		uc.log.Warnf("Use Case: Attempted delete with invalid ID: %d", id)
		return nil, domain.ErrCategoryNotFound
	}

	uc.log.Infof("Use Case: Attempting to delete category ID %d", id)
	var deleted *domain.Category
	err := uc.store.WithinTransaction(ctx, func(repo domain.CategoryRepository) error {
		if _, err := repo.GetCategoryByID(ctx, id); err != nil {
			return err
		}
		var err error
		deleted, err = repo.DeleteCategory(ctx, id)
		return err
	})
	if err != nil {
		uc.log.Warnf("Use Case: Failed to delete category ID %d: %v", id, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Category deleted successfully for ID %d", id)
	return &domain.DeletedCategory{ID: deleted.ID, Name: deleted.Name}, nil
}
