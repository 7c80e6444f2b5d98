package viewmodel

import (
	"cmp"
	"fmt"

	"golang.org/x/text/collate"

	"github.com/amaumene/whirlwatch/internal/models"
)

// SortKey selects the ordering of the displayed sequence
type SortKey string

const (
	SortTitleAsc           SortKey = "title_asc"
	SortTitleDesc          SortKey = "title_desc"
	SortAddedAsc           SortKey = "added_date_asc"
	SortAddedDesc          SortKey = "added_date_desc"
	SortLastUpdatedAsc     SortKey = "last_updated_asc"
	SortLastUpdatedDesc    SortKey = "last_updated_desc"
	SortRatingAsc          SortKey = "rating_asc"
	SortRatingDesc         SortKey = "rating_desc"
	SortListAverageAsc     SortKey = "list_average_asc"
	SortListAverageDesc    SortKey = "list_average_desc"
	SortExternalRatingAsc  SortKey = "external_rating_asc"
	SortExternalRatingDesc SortKey = "external_rating_desc"
)

// DefaultSort matches the history view's initial ordering
const DefaultSort = SortLastUpdatedDesc

var sortKeys = map[SortKey]bool{
	SortTitleAsc: true, SortTitleDesc: true,
	SortAddedAsc: true, SortAddedDesc: true,
	SortLastUpdatedAsc: true, SortLastUpdatedDesc: true,
	SortRatingAsc: true, SortRatingDesc: true,
	SortListAverageAsc: true, SortListAverageDesc: true,
	SortExternalRatingAsc: true, SortExternalRatingDesc: true,
}

// ParseSortKey validates a sort key string
func ParseSortKey(s string) (SortKey, error) {
	k := SortKey(s)
	if !sortKeys[k] {
		return "", fmt.Errorf("invalid sort key %q", s)
	}
	return k, nil
}

// descending reports whether the key orders from high to low
func (k SortKey) descending() bool {
	switch k {
	case SortTitleDesc, SortAddedDesc, SortLastUpdatedDesc, SortRatingDesc, SortListAverageDesc, SortExternalRatingDesc:
		return true
	}
	return false
}

// comparator returns the ascending comparison for the key's field
func comparator(k SortKey, coll *collate.Collator) func(a, b *models.MediaRecord) int {
	switch k {
	case SortTitleAsc, SortTitleDesc:
		return func(a, b *models.MediaRecord) int {
			return coll.CompareString(a.Title, b.Title)
		}
	case SortAddedAsc, SortAddedDesc:
		return func(a, b *models.MediaRecord) int {
			return a.AddedAt.Compare(b.AddedAt)
		}
	case SortLastUpdatedAsc, SortLastUpdatedDesc:
		return func(a, b *models.MediaRecord) int {
			return a.LastUpdatedAt.Compare(b.LastUpdatedAt)
		}
	case SortRatingAsc, SortRatingDesc:
		return func(a, b *models.MediaRecord) int {
			return compareNullable(a.PersonalRating, b.PersonalRating)
		}
	case SortListAverageAsc, SortListAverageDesc:
		return func(a, b *models.MediaRecord) int {
			return compareNullable(a.ListAverageRating, b.ListAverageRating)
		}
	case SortExternalRatingAsc, SortExternalRatingDesc:
		return func(a, b *models.MediaRecord) int {
			return compareNullable(a.ExternalRating, b.ExternalRating)
		}
	}
	return func(a, b *models.MediaRecord) int { return 0 }
}

// compareNullable orders nil below every number
func compareNullable(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return cmp.Compare(*a, *b)
}
