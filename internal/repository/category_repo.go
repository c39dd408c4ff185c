package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"catalog_service/internal/domain"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// PostgreSQL SQLSTATE codes the repository translates.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

// Constraint names from migrations/00001_create_category.sql.
const (
	constraintSlugUnique      = "uq_category_slug"
	constraintNameLevelUnique = "uq_category_name_level"
	constraintParentFK        = "category_parent_id_fkey"
)

const categoryColumns = `id, name, slug, is_active, level, parent_id`

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type postgresCategoryRepository struct {
	db  DBTX
	log *logrus.Logger
}

type postgresCategoryStore struct {
	postgresCategoryRepository
	pool *sql.DB
}

func NewPostgresCategoryRepository(db *sql.DB, logger *logrus.Logger) domain.CategoryStore {
	return &postgresCategoryStore{
		postgresCategoryRepository: postgresCategoryRepository{db: db, log: logger},
		pool:                       db,
	}
}

func (s *postgresCategoryStore) WithinTransaction(ctx context.Context, fn func(repo domain.CategoryRepository) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, nil)
	if err != nil {
		s.log.Errorf("Failed to begin transaction: %v", err)
		return fmt.Errorf("could not start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			s.log.Error("Recovered from panic, rolling back transaction")
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			s.log.Warnf("Rolling back transaction due to error: %v", err)
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.log.Errorf("Failed to rollback transaction: %v", rbErr)
			}
		} else {
			if cErr := tx.Commit(); cErr != nil {
				s.log.Errorf("Failed to commit transaction: %v", cErr)
				err = fmt.Errorf("failed to commit transaction: %w", cErr)
			}
		}
	}()

	err = fn(&postgresCategoryRepository{db: tx, log: s.log})
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (*domain.Category, error) {
	var (
		c        domain.Category
		parentID sql.NullInt64
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.IsActive, &c.Level, &parentID); err != nil {
		return nil, err
	}
	if parentID.Valid {
		p := int(parentID.Int64)
		c.ParentID = &p
	}
	return &c, nil
}

func (r *postgresCategoryRepository) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `INSERT INTO category (name, slug, is_active, level, parent_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + categoryColumns
	created, err := scanCategory(r.db.QueryRowContext(ctx, query,
		category.Name, category.Slug, category.IsActive, category.Level, category.ParentID))
	if err != nil {
		if domainErr := translateWriteError(err); domainErr != nil {
			r.log.Warnf("Rejected category '%s' (slug '%s'): %v", category.Name, category.Slug, domainErr)
			return nil, domainErr
		}
		r.log.Errorf("Failed to create category '%s': %v", category.Name, err)
		return nil, fmt.Errorf("could not create category: %w", err)
	}
	r.log.Infof("Category created successfully with ID: %d, Slug: %s", created.ID, created.Slug)
	return created, nil
}

func (r *postgresCategoryRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM category ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.log.Errorf("Failed to list categories: %v", err)
		return nil, fmt.Errorf("could not list categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			r.log.Errorf("Failed to scan category row: %v", err)
			return nil, fmt.Errorf("could not scan category: %w", err)
		}
		categories = append(categories, *category)
	}

	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during categories list iteration: %v", err)
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	r.log.Infof("Retrieved %d categories", len(categories))
	return categories, nil
}

func (r *postgresCategoryRepository) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM category WHERE slug = $1`
	category, err := scanCategory(r.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Category with slug '%s' not found", slug)
			return nil, domain.ErrCategoryNotFound
		}
		r.log.Errorf("Failed to get category by slug '%s': %v", slug, err)
		return nil, fmt.Errorf("could not get category by slug: %w", err)
	}
	return category, nil
}

func (r *postgresCategoryRepository) GetCategoryByID(ctx context.Context, id int) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM category WHERE id = $1`
	category, err := scanCategory(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Category with ID %d not found", id)
			return nil, domain.ErrCategoryNotFound
		}
		r.log.Errorf("Failed to get category by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not get category by id: %w", err)
	}
	return category, nil
}

func (r *postgresCategoryRepository) UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `UPDATE category
		SET name = $1, slug = $2, is_active = $3, level = $4, parent_id = $5
		WHERE id = $6
		RETURNING ` + categoryColumns
	updated, err := scanCategory(r.db.QueryRowContext(ctx, query,
		category.Name, category.Slug, category.IsActive, category.Level, category.ParentID, category.ID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Category with ID %d not found for update", category.ID)
			return nil, domain.ErrCategoryNotFound
		}
		if domainErr := translateWriteError(err); domainErr != nil {
			r.log.Warnf("Rejected update of category ID %d: %v", category.ID, domainErr)
			return nil, domainErr
		}
		r.log.Errorf("Failed to update category ID %d: %v", category.ID, err)
		return nil, fmt.Errorf("could not update category: %w", err)
	}
	r.log.Infof("Category updated successfully with ID: %d", updated.ID)
	return updated, nil
}

func (r *postgresCategoryRepository) DeleteCategory(ctx context.Context, id int) (*domain.Category, error) {
	query := `DELETE FROM category WHERE id = $1 RETURNING ` + categoryColumns
	deleted, err := scanCategory(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Attempted to delete non-existent category ID %d", id)
			return nil, domain.ErrCategoryNotFound
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			r.log.Errorf("Category ID %d is still referenced (%s)", id, pqErr.Constraint)
			return nil, &domain.ConstraintViolationError{Constraint: pqErr.Constraint, Err: err}
		}
		r.log.Errorf("Failed to delete category ID %d: %v", id, err)
		return nil, fmt.Errorf("could not delete category: %w", err)
	}
	r.log.Infof("Category deleted successfully with ID: %d", id)
	return deleted, nil
}

func (r *postgresCategoryRepository) FindConflictingCategory(ctx context.Context, name, slug string, level int) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM category
		WHERE slug = $1 OR (name = $2 AND level = $3)
		ORDER BY id ASC
		LIMIT 1`
	category, err := scanCategory(r.db.QueryRowContext(ctx, query, slug, name, level))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		r.log.Errorf("Failed to look up conflicting category for slug '%s': %v", slug, err)
		return nil, fmt.Errorf("could not look up conflicting category: %w", err)
	}
	return category, nil
}

// translateWriteError maps constraint failures raised by INSERT or UPDATE to
// domain errors. It returns nil for anything that is not a pq constraint error.
func translateWriteError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}
	switch pqErr.Code {
	case pqUniqueViolation:
		switch pqErr.Constraint {
		case constraintSlugUnique:
			return &domain.DuplicateCategoryError{Reason: domain.SlugConflict}
		case constraintNameLevelUnique:
			return &domain.DuplicateCategoryError{Reason: domain.NameLevelConflict}
		}
		return &domain.ConstraintViolationError{Constraint: pqErr.Constraint, Err: err}
	case pqForeignKeyViolation:
		if pqErr.Constraint == constraintParentFK {
			return domain.NewValidationError("parent_id", "parent category does not exist")
		}
		return &domain.ConstraintViolationError{Constraint: pqErr.Constraint, Err: err}
	case pqCheckViolation:
		return &domain.ConstraintViolationError{Constraint: pqErr.Constraint, Err: err}
	}
	return nil
}
