package entities

import "fmt"

// Category is a UI-facing bucket of relationships, named for what the other
// person is to the focal person ("parents" holds people who are PARENT of me).
type Category string

const (
	CategoryParents         Category = "parents"
	CategorySiblings        Category = "siblings"
	CategorySpouse          Category = "spouse"
	CategoryChildren        Category = "children"
	CategoryGrandparents    Category = "grandparents"
	CategoryGrandchildren   Category = "grandchildren"
	CategoryUnclesAunts     Category = "unclesAunts"
	CategoryNephewsNieces   Category = "nephewsNieces"
	CategoryCousins         Category = "cousins"
	CategoryStepParents     Category = "stepParents"
	CategoryStepChildren    Category = "stepChildren"
	CategoryHalfSiblings    Category = "halfSiblings"
	CategoryAdoptedParents  Category = "adoptedParents"
	CategoryAdoptedChildren Category = "adoptedChildren"
	CategoryInLaws          Category = "inLaws"
	CategoryOthers          Category = "others"
)

// categories is the display order used when grouping.
var categories = []Category{
	CategoryParents, CategorySiblings, CategorySpouse, CategoryChildren,
	CategoryGrandparents, CategoryGrandchildren, CategoryUnclesAunts, CategoryNephewsNieces,
	CategoryCousins, CategoryStepParents, CategoryStepChildren, CategoryHalfSiblings,
	CategoryAdoptedParents, CategoryAdoptedChildren, CategoryInLaws, CategoryOthers,
}

var categoryTypes = map[Category]RelationType{
	CategoryParents:         RelationParent,
	CategorySiblings:        RelationSibling,
	CategorySpouse:          RelationSpouse,
	CategoryChildren:        RelationChild,
	CategoryGrandparents:    RelationGrandparent,
	CategoryGrandchildren:   RelationGrandchild,
	CategoryUnclesAunts:     RelationUncleAunt,
	CategoryNephewsNieces:   RelationNephewNiece,
	CategoryCousins:         RelationCousin,
	CategoryStepParents:     RelationStepParent,
	CategoryStepChildren:    RelationStepChild,
	CategoryHalfSiblings:    RelationHalfSibling,
	CategoryAdoptedParents:  RelationAdoptedParent,
	CategoryAdoptedChildren: RelationAdoptedChild,
	CategoryInLaws:          RelationInLaw,
	CategoryOthers:          RelationOther,
}

// typeCategories is the reverse lookup for display grouping. PARTNER and
// FRIEND have no category of their own.
var typeCategories = func() map[RelationType]Category {
	m := make(map[RelationType]Category, len(categoryTypes)+2)
	for c, t := range categoryTypes {
		m[t] = c
	}
	m[RelationPartner] = CategorySpouse
	m[RelationFriend] = CategoryOthers
	return m
}()

// AllCategories returns the categories in display order.
func AllCategories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool {
	_, ok := categoryTypes[c]
	return ok
}

// Type returns the relationship type the category stands for.
func (c Category) Type() RelationType {
	return categoryTypes[c]
}

// Reciprocal returns the category the focal person falls into from the
// other person's side: someone in my "parents" has me in their "children".
func (c Category) Reciprocal() Category {
	return CategoryFor(c.Type().Inverse())
}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", fmt.Errorf("%w: invalid category %q", ErrValidation, s)
	}
	return c, nil
}

// CategoryFor returns the display bucket for a relationship type.
func CategoryFor(t RelationType) Category {
	if c, ok := typeCategories[t]; ok {
		return c
	}
	return CategoryOthers
}
