package domain

import "github.com/google/uuid"

// UncategorizedID is the fixed identifier of the default category. The
// applications.category_id column defaults to it, so ON DELETE SET DEFAULT
// always lands on a row that exists.
var UncategorizedID = uuid.Nil.String()

// Names of the seeded categories.
const (
	CategoryUncategorized = "Uncategorized"
	CategoryDevelopment   = "Development"
	CategoryCommunication = "Communication"
	CategoryEntertainment = "Entertainment"
	CategorySocial        = "Social"
	CategoryProductivity  = "Productivity"
	CategoryWork          = "Work"
)

type Category struct {
	ID        string
	Name      string
	Icon      string
	Color     string // hex RGB, e.g. "#8ec07c"
	SortOrder int
	IsDefault bool
}

// DefaultCategories is the seed set inserted by migrations. The first entry
// is the undeletable default.
func DefaultCategories() []Category {
	return []Category{
		{ID: UncategorizedID, Name: CategoryUncategorized, Icon: "questionmark.folder", Color: "#928374", SortOrder: 0, IsDefault: true},
		{Name: CategoryDevelopment, Icon: "hammer", Color: "#83a598", SortOrder: 1},
		{Name: CategoryCommunication, Icon: "bubble.left.and.bubble.right", Color: "#8ec07c", SortOrder: 2},
		{Name: CategoryEntertainment, Icon: "play.rectangle", Color: "#fb4934", SortOrder: 3},
		{Name: CategorySocial, Icon: "person.2", Color: "#d3869b", SortOrder: 4},
		{Name: CategoryProductivity, Icon: "checklist", Color: "#fabd2f", SortOrder: 5},
		{Name: CategoryWork, Icon: "briefcase", Color: "#fe8019", SortOrder: 6},
	}
}
