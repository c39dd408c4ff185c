// Package memstore is an in-memory domain.CategoryStore used by tests. It
// enforces the same constraints as the category table and gives
// WithinTransaction all-or-nothing semantics by working on a copy.
package memstore

import (
	"context"
	"errors"
	"sort"
	"sync"

	"catalog_service/internal/domain"
)

type Store struct {
	mu       sync.Mutex
	st       *state
	failures map[string]error
}

type state struct {
	rows     map[int]domain.Category
	nextID   int
	failures map[string]error
}

func New() *Store {
	s := &Store{failures: map[string]error{}}
	s.st = &state{rows: map[int]domain.Category{}, nextID: 1, failures: s.failures}
	return s
}

// FailOn makes every later call of the named repository method return err.
func (s *Store) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = err
}

// Seed inserts categories directly, bypassing failure injection.
func (s *Store) Seed(categories ...domain.Category) []domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Category, 0, len(categories))
	for _, c := range categories {
		c.ID = s.st.nextID
		s.st.nextID++
		s.st.rows[c.ID] = c
		out = append(out, c)
	}
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.rows)
}

func (s *Store) WithinTransaction(ctx context.Context, fn func(repo domain.CategoryRepository) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.st.clone()
	defer func() {
		// A panic leaves the committed state untouched.
		if p := recover(); p != nil {
			panic(p)
		}
		if err == nil {
			s.st = tx
		}
	}()
	return fn(tx)
}

func (s *Store) CreateCategory(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.CreateCategory(ctx, c)
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.ListCategories(ctx)
}

func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.GetCategoryBySlug(ctx, slug)
}

func (s *Store) GetCategoryByID(ctx context.Context, id int) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.GetCategoryByID(ctx, id)
}

func (s *Store) UpdateCategory(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.UpdateCategory(ctx, c)
}

func (s *Store) DeleteCategory(ctx context.Context, id int) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.DeleteCategory(ctx, id)
}

func (s *Store) FindConflictingCategory(ctx context.Context, name, slug string, level int) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.FindConflictingCategory(ctx, name, slug, level)
}

func (st *state) clone() *state {
	rows := make(map[int]domain.Category, len(st.rows))
	for id, c := range st.rows {
		rows[id] = c
	}
	return &state{rows: rows, nextID: st.nextID, failures: st.failures}
}

func (st *state) sorted() []domain.Category {
	out := make([]domain.Category, 0, len(st.rows))
	for _, c := range st.rows {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// checkConstraints mirrors the table constraints for a row about to be written.
func (st *state) checkConstraints(c domain.Category) error {
	if c.Name == "" {
		return &domain.ConstraintViolationError{Constraint: "category_name_length_check", Err: errors.New("empty name")}
	}
	if c.Slug == "" {
		return &domain.ConstraintViolationError{Constraint: "category_slug_length_check", Err: errors.New("empty slug")}
	}
	for _, other := range st.sorted() {
		if other.ID == c.ID {
			continue
		}
		if other.Slug == c.Slug {
			return &domain.DuplicateCategoryError{Reason: domain.SlugConflict}
		}
		if other.Name == c.Name && other.Level == c.Level {
			return &domain.DuplicateCategoryError{Reason: domain.NameLevelConflict}
		}
	}
	if c.ParentID != nil {
		if _, ok := st.rows[*c.ParentID]; !ok && *c.ParentID != c.ID {
			return domain.NewValidationError("parent_id", "parent category does not exist")
		}
	}
	return nil
}

func copyCategory(c domain.Category) *domain.Category {
	if c.ParentID != nil {
		p := *c.ParentID
		c.ParentID = &p
	}
	return &c
}

func (st *state) CreateCategory(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	if err := st.failures["CreateCategory"]; err != nil {
		return nil, err
	}
	row := *copyCategory(*c)
	row.ID = st.nextID
	if err := st.checkConstraints(row); err != nil {
		return nil, err
	}
	st.nextID++
	st.rows[row.ID] = row
	return copyCategory(row), nil
}

func (st *state) ListCategories(ctx context.Context) ([]domain.Category, error) {
	if err := st.failures["ListCategories"]; err != nil {
		return nil, err
	}
	return st.sorted(), nil
}

func (st *state) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	if err := st.failures["GetCategoryBySlug"]; err != nil {
		return nil, err
	}
	for _, c := range st.sorted() {
		if c.Slug == slug {
			return copyCategory(c), nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

func (st *state) GetCategoryByID(ctx context.Context, id int) (*domain.Category, error) {
	if err := st.failures["GetCategoryByID"]; err != nil {
		return nil, err
	}
	c, ok := st.rows[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	return copyCategory(c), nil
}

func (st *state) UpdateCategory(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	if err := st.failures["UpdateCategory"]; err != nil {
		return nil, err
	}
	if _, ok := st.rows[c.ID]; !ok {
		return nil, domain.ErrCategoryNotFound
	}
	row := *copyCategory(*c)
	if err := st.checkConstraints(row); err != nil {
		return nil, err
	}
	st.rows[row.ID] = row
	return copyCategory(row), nil
}

func (st *state) DeleteCategory(ctx context.Context, id int) (*domain.Category, error) {
	if err := st.failures["DeleteCategory"]; err != nil {
		return nil, err
	}
	c, ok := st.rows[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	for _, other := range st.rows {
		if other.ParentID != nil && *other.ParentID == id && other.ID != id {
			return nil, &domain.ConstraintViolationError{
				Constraint: "category_parent_id_fkey",
				Err:        errors.New("category is referenced by a child category"),
			}
		}
	}
	delete(st.rows, id)
	return copyCategory(c), nil
}

func (st *state) FindConflictingCategory(ctx context.Context, name, slug string, level int) (*domain.Category, error) {
	if err := st.failures["FindConflictingCategory"]; err != nil {
		return nil, err
	}
	for _, c := range st.sorted() {
		if c.Slug == slug || (c.Name == name && c.Level == level) {
			return copyCategory(c), nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}
