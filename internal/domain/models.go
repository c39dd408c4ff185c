package domain

// Category is a named, leveled classification node. ParentID links it
// under another category; cycles are not rejected.
type Category struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	IsActive bool   `json:"is_active"`
	Level    int    `json:"level"`
	ParentID *int   `json:"parent_id"`
}

// CategoryInput holds the mutable fields of a category after validation and
// defaulting. It is used for both create and full-replace update.
type CategoryInput struct {
	Name     string `json:"name"      validate:"required,max=100"`
	Slug     string `json:"slug"      validate:"required,max=120"`
	IsActive bool   `json:"is_active"`
	Level    int    `json:"level"`
	ParentID *int   `json:"parent_id"`
}

// DeletedCategory is returned after a physical delete.
type DeletedCategory struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Length limits mirror the validate tags on CategoryInput and the column
// checks in the category migration.
const (
	DefaultCategoryLevel = 100
	MaxCategoryNameLen   = 100
	MaxCategorySlugLen   = 120
)

// ToCategory builds an unsaved Category from the input.
func (in CategoryInput) ToCategory() *Category {
	return &Category{
		Name:     in.Name,
		Slug:     in.Slug,
		IsActive: in.IsActive,
		Level:    in.Level,
		ParentID: in.ParentID,
	}
}

// Apply overwrites every mutable field of c with the input values.
func (in CategoryInput) Apply(c *Category) {
	c.Name = in.Name
	c.Slug = in.Slug
	c.IsActive = in.IsActive
	c.Level = in.Level
	c.ParentID = in.ParentID
}
