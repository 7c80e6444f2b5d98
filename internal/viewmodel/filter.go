package viewmodel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/amaumene/whirlwatch/internal/models"
)

// All is the sentinel filter value meaning "no constraint"
const All = "all"

// FilterField names one filter parameter of the view
type FilterField string

const (
	FilterSearch            FilterField = "search"
	FilterMediaKind         FilterField = "media_kind"
	FilterWatchStatus       FilterField = "watch_status"
	FilterList              FilterField = "list"
	FilterMinExternalRating FilterField = "min_external_rating"
)

// Filters holds the active predicates. Zero values mean "all".
type Filters struct {
	Search            string             `json:"search,omitempty"`
	MediaKind         models.MediaKind   `json:"media_kind,omitempty"`
	WatchStatus       models.WatchStatus `json:"watch_status,omitempty"`
	ListID            int64              `json:"list_id,omitempty"`
	MinExternalRating float64            `json:"min_external_rating,omitempty"`
}

// set parses value into the given field
func (f *Filters) set(field FilterField, value string) error {
	value = strings.TrimSpace(value)
	isAll := value == "" || value == All

	switch field {
	case FilterSearch:
		// search is free text, "all" is a legitimate query
		f.Search = value
	case FilterMediaKind:
		if isAll {
			f.MediaKind = ""
			return nil
		}
		kind, err := models.ParseMediaKind(value)
		if err != nil {
			return err
		}
		f.MediaKind = kind
	case FilterWatchStatus:
		if isAll {
			f.WatchStatus = ""
			return nil
		}
		status, err := models.ParseWatchStatus(value)
		if err != nil {
			return err
		}
		f.WatchStatus = status
	case FilterList:
		if isAll {
			f.ListID = 0
			return nil
		}
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid list id %q", value)
		}
		f.ListID = id
	case FilterMinExternalRating:
		if isAll {
			f.MinExternalRating = 0
			return nil
		}
		min, err := strconv.ParseFloat(value, 64)
		if err != nil || min < 0 || min > 10 {
			return fmt.Errorf("invalid minimum rating %q", value)
		}
		f.MinExternalRating = min
	default:
		return fmt.Errorf("unknown filter field %q", field)
	}
	return nil
}

// matches reports whether r satisfies every active predicate.
// foldedSearch is the case-folded search text.
func (f *Filters) matches(r *models.MediaRecord, foldedTitle, foldedSearch string) bool {
	if foldedSearch != "" && !strings.Contains(foldedTitle, foldedSearch) {
		return false
	}
	if f.MediaKind != "" && r.MediaKind != f.MediaKind {
		return false
	}
	if f.WatchStatus != "" && r.WatchStatus != f.WatchStatus {
		return false
	}
	if f.ListID != 0 && r.ListID != f.ListID {
		return false
	}
	if f.MinExternalRating > 0 && (r.ExternalRating == nil || *r.ExternalRating < f.MinExternalRating) {
		return false
	}
	return true
}
