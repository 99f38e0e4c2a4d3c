package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Selection is the set of models chosen for an export run.
type Selection struct {
	Manufacturer string      `json:"manufacturer"`
	Models       []Model     `json:"models"`
	Series       []Series    `json:"series"`
	ListingType  ListingType `json:"listing_type"`
}

// LoadSelection reads a selection document from a JSON file.
func LoadSelection(path string) (*Selection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read selection: %w", err)
	}
	var sel Selection
	if err := json.Unmarshal(data, &sel); err != nil {
		return nil, fmt.Errorf("parse selection: %w", err)
	}
	if _, err := ParseListingType(string(sel.ListingType)); err != nil {
		return nil, err
	}
	return &sel, nil
}

// IsEmpty reports whether the selection carries no models.
func (s *Selection) IsEmpty() bool {
	return s == nil || len(s.Models) == 0
}

// ModelIDs returns the selected model identifiers in ascending order.
func (s *Selection) ModelIDs() []int64 {
	if s == nil {
		return nil
	}
	ids := make([]int64, 0, len(s.Models))
	for _, m := range s.Models {
		ids = append(ids, m.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SeriesIDs returns the distinct series ids referenced by the selection, in
// the order the series list declares them. Series with no selected models are
// excluded.
func (s *Selection) SeriesIDs() []int64 {
	if s == nil {
		return nil
	}
	selected := make(map[int64]struct{}, len(s.Models))
	for _, m := range s.Models {
		selected[m.SeriesID] = struct{}{}
	}
	ids := make([]int64, 0, len(selected))
	seen := make(map[int64]struct{}, len(selected))
	for _, sr := range s.Series {
		if _, ok := selected[sr.ID]; !ok {
			continue
		}
		if _, dup := seen[sr.ID]; dup {
			continue
		}
		seen[sr.ID] = struct{}{}
		ids = append(ids, sr.ID)
	}
	// Selected models may reference a series id missing from the series list;
	// keep them so the partition still covers the full selection.
	for _, m := range s.Models {
		if _, ok := seen[m.SeriesID]; !ok {
			seen[m.SeriesID] = struct{}{}
			ids = append(ids, m.SeriesID)
		}
	}
	return ids
}

// ModelsForSeries returns the subset of selected models in the given series.
func (s *Selection) ModelsForSeries(seriesID int64) []Model {
	if s == nil {
		return nil
	}
	var subset []Model
	for _, m := range s.Models {
		if m.SeriesID == seriesID {
			subset = append(subset, m)
		}
	}
	return subset
}

// SeriesName resolves a series id against the selection's series list.
func (s *Selection) SeriesName(seriesID int64) string {
	if s == nil {
		return ""
	}
	for _, sr := range s.Series {
		if sr.ID == seriesID {
			return sr.Name
		}
	}
	return ""
}

// Fingerprint derives the deterministic cache key for the selection:
// manufacturer, distinct series ids, listing type, and sorted model ids.
// Equal selections always produce equal fingerprints regardless of model
// ordering.
func (s *Selection) Fingerprint() string {
	if s == nil {
		return ""
	}
	seriesIDs := s.SeriesIDs()
	sort.Slice(seriesIDs, func(i, j int) bool { return seriesIDs[i] < seriesIDs[j] })

	var b strings.Builder
	b.WriteString(strings.TrimSpace(s.Manufacturer))
	b.WriteByte('|')
	for i, id := range seriesIDs {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", id)
	}
	b.WriteByte('|')
	b.WriteString(string(s.ListingType))
	b.WriteByte('|')
	for i, id := range s.ModelIDs() {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", id)
	}
	return b.String()
}
