package domain

import "context"

type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *Category) (*Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*Category, error)
	GetCategoryByID(ctx context.Context, id int) (*Category, error)
	UpdateCategory(ctx context.Context, category *Category) (*Category, error)
	DeleteCategory(ctx context.Context, id int) (*Category, error)

	// FindConflictingCategory returns the lowest-id category whose slug equals
	// slug or whose (name, level) equals (name, level). It returns
	// ErrCategoryNotFound when there is none.
	FindConflictingCategory(ctx context.Context, name, slug string, level int) (*Category, error)
}

// CategoryStore is a CategoryRepository bound to the connection pool that can
// also open a transaction scope. fn receives a repository bound to the
// transaction; the transaction commits when fn returns nil and rolls back
// otherwise, including on panic.
type CategoryStore interface {
	CategoryRepository
	WithinTransaction(ctx context.Context, fn func(repo CategoryRepository) error) error
}
