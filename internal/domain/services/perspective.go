package services

import (
	"fmt"
	"sort"

	"github.com/ersonp/kin-core/internal/domain/entities"
)

// DisplayType returns what the other party of rel is to viewerID.
//
// An edge reads "PersonID IS Type OF RelatedID". The related person sees the
// person as Type; the person sees the related person as the inverse.
func DisplayType(rel entities.Relationship, viewerID string) (entities.RelationType, error) {
	switch viewerID {
	case rel.RelatedID:
		return rel.Type, nil
	case rel.PersonID:
		return rel.Type.Inverse(), nil
	default:
		return "", fmt.Errorf("%w: %s on relationship %s", entities.ErrNotParticipant, viewerID, rel.ID)
	}
}

// RelationView is one labeled entry in a person's relationship list.
type RelationView struct {
	Relationship entities.Relationship `json:"relationship"`
	OtherID      string                `json:"otherId"`
	OtherName    string                `json:"otherName,omitempty"`
	Type         entities.RelationType `json:"displayType"`
	Label        string                `json:"label"`
	Category     entities.Category     `json:"category"`
}

// CategoryGroup holds the views that fall into one category.
type CategoryGroup struct {
	Category entities.Category `json:"category"`
	Members  []RelationView    `json:"members"`
}

// ResolveView canonicalizes edges for viewerID and labels each remaining
// edge from the viewer's side.
func ResolveView(viewerID string, edges []entities.Relationship) []RelationView {
	canonical := Canonicalize(viewerID, edges)
	views := make([]RelationView, 0, len(canonical))
	for _, rel := range canonical {
		t, err := DisplayType(rel, viewerID)
		if err != nil {
			continue
		}
		views = append(views, RelationView{
			Relationship: rel,
			OtherID:      rel.OtherID(viewerID),
			Type:         t,
			Label:        t.Label(),
			Category:     entities.CategoryFor(t),
		})
	}
	return views
}

// GroupByCategory buckets views in display order. Within a bucket members
// are sorted by display name, then ID. names maps person IDs to display
// names; missing names sort as the ID.
func GroupByCategory(views []RelationView, names map[string]string) []CategoryGroup {
	buckets := make(map[entities.Category][]RelationView)
	for _, v := range views {
		if name, ok := names[v.OtherID]; ok {
			v.OtherName = name
		}
		buckets[v.Category] = append(buckets[v.Category], v)
	}

	groups := make([]CategoryGroup, 0, len(buckets))
	for _, c := range entities.AllCategories() {
		members, ok := buckets[c]
		if !ok {
			continue
		}
		sort.SliceStable(members, func(i, j int) bool {
			ni, nj := sortName(members[i]), sortName(members[j])
			if ni != nj {
				return ni < nj
			}
			return members[i].OtherID < members[j].OtherID
		})
		groups = append(groups, CategoryGroup{Category: c, Members: members})
	}
	return groups
}

func sortName(v RelationView) string {
	if v.OtherName != "" {
		return entities.NormalizeName(v.OtherName)
	}
	return v.OtherID
}
