package pathplan

import (
	"fmt"
	"strings"
	"time"

	"listforge/internal/catalog"
)

// Mode discriminates the two plan shapes.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeMulti  Mode = "multi"
)

// Stable node keys. Retry passes address nodes by key, so these never change
// between a run and its retry.
const (
	KeySingle = "single"
	KeyMaster = "master"
)

// multiSeriesLabel is the literal series name bound into the master node's
// folder template. The filename token uses the underscore form.
const (
	multiSeriesLabel = "Multi-Series"
	multiSeriesToken = "Multi_Series"
)

// Node is one logical output unit of a plan. Label is the display name used
// for progress reporting; it is carried on the node so snapshots replay with
// the same labels regardless of later renames.
type Node struct {
	Key      string  `json:"key"`
	Label    string  `json:"label,omitempty"`
	Folder   string  `json:"folder"`
	Filename string  `json:"filename"`
	SeriesID int64   `json:"series_id,omitempty"`
	ModelIDs []int64 `json:"model_ids"`
}

// SeriesKey returns the stable node key for a per-series child.
func SeriesKey(seriesID int64) string {
	return fmt.Sprintf("series-%d", seriesID)
}

// SavePlan is the deterministic output layout for one export run.
// In single mode Master is the sole node and Children is empty; in multi mode
// Master aggregates the full selection and Children partition it by series.
type SavePlan struct {
	Mode     Mode   `json:"mode"`
	Master   Node   `json:"master"`
	Children []Node `json:"children,omitempty"`
}

// Nodes returns the plan's nodes in processing order: master first, then
// children in series-list order.
func (p *SavePlan) Nodes() []Node {
	if p == nil {
		return nil
	}
	nodes := make([]Node, 0, 1+len(p.Children))
	nodes = append(nodes, p.Master)
	nodes = append(nodes, p.Children...)
	return nodes
}

// Build computes the save plan for a selection. It returns nil when the
// manufacturer, the selection, or the template is missing; everything else is
// resolved without error, leaving legality to segment sanitization.
func Build(sel *catalog.Selection, template, marketplace string, now time.Time) *SavePlan {
	if sel == nil || sel.IsEmpty() {
		return nil
	}
	if strings.TrimSpace(sel.Manufacturer) == "" || strings.TrimSpace(template) == "" {
		return nil
	}

	seriesIDs := sel.SeriesIDs()
	base := Bindings{
		Manufacturer: sel.Manufacturer,
		Marketplace:  marketplace,
		Date:         now,
	}

	if len(seriesIDs) == 1 {
		seriesName := sel.SeriesName(seriesIDs[0])
		bindings := base
		bindings.Series = seriesName
		return &SavePlan{
			Mode: ModeSingle,
			Master: Node{
				Key:      KeySingle,
				Label:    seriesName,
				Folder:   ResolveTemplate(template, bindings),
				Filename: planFilename(marketplace, sel.Manufacturer, seriesName),
				SeriesID: seriesIDs[0],
				ModelIDs: modelIDs(sel.ModelsForSeries(seriesIDs[0])),
			},
		}
	}

	masterBindings := base
	masterBindings.Series = multiSeriesLabel
	plan := &SavePlan{
		Mode: ModeMulti,
		Master: Node{
			Key:      KeyMaster,
			Label:    "Master",
			Folder:   ResolveTemplate(template, masterBindings),
			Filename: masterFilename(marketplace, sel.Manufacturer),
			ModelIDs: sel.ModelIDs(),
		},
	}
	for _, seriesID := range seriesIDs {
		seriesName := sel.SeriesName(seriesID)
		bindings := base
		bindings.Series = seriesName
		plan.Children = append(plan.Children, Node{
			Key:      SeriesKey(seriesID),
			Label:    seriesName,
			Folder:   ResolveTemplate(template, bindings),
			Filename: planFilename(marketplace, sel.Manufacturer, seriesName),
			SeriesID: seriesID,
			ModelIDs: modelIDs(sel.ModelsForSeries(seriesID)),
		})
	}
	return plan
}

// planFilename follows the user-visible naming contract:
// <Marketplace>-<Manufacturer>-<Series>.xlsx with whitespace collapsed to
// underscores inside each token. The extension is rewritten per format when
// the file is written.
func planFilename(marketplace, manufacturer, series string) string {
	return fmt.Sprintf("%s-%s-%s.xlsx", fileToken(marketplace), fileToken(manufacturer), fileToken(series))
}

func masterFilename(marketplace, manufacturer string) string {
	return fmt.Sprintf("%s-%s-%s.xlsx", fileToken(marketplace), fileToken(manufacturer), multiSeriesToken)
}

func modelIDs(models []catalog.Model) []int64 {
	ids := make([]int64, 0, len(models))
	for _, m := range models {
		ids = append(ids, m.ID)
	}
	return ids
}
