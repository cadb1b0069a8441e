package services

import (
	"sort"

	"github.com/ersonp/kin-core/internal/domain/entities"
)

// Canonicalize collapses the edges touching focalID to one edge per related
// person. Within a pair, edges stored from the focal person's side win, and
// ties go to the lowest edge ID. Edges that do not touch focalID are
// dropped. The result is sorted by related person then edge ID, so it does
// not depend on input order and Canonicalize(f, Canonicalize(f, e)) returns
// the same slice.
func Canonicalize(focalID string, edges []entities.Relationship) []entities.Relationship {
	best := make(map[string]entities.Relationship, len(edges))
	for _, edge := range edges {
		if !edge.Touches(focalID) || edge.PersonID == edge.RelatedID {
			continue
		}
		key := edge.PairKey()
		current, seen := best[key]
		if !seen || preferred(focalID, edge, current) {
			best[key] = edge
		}
	}

	result := make([]entities.Relationship, 0, len(best))
	for _, edge := range best {
		result = append(result, edge)
	}
	sort.Slice(result, func(i, j int) bool {
		oi, oj := result[i].OtherID(focalID), result[j].OtherID(focalID)
		if oi != oj {
			return oi < oj
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// preferred reports whether candidate should replace current.
func preferred(focalID string, candidate, current entities.Relationship) bool {
	candOwned := candidate.PersonID == focalID
	curOwned := current.PersonID == focalID
	if candOwned != curOwned {
		return candOwned
	}
	return candidate.ID < current.ID
}
