// Package report renders networks, failure outcomes and sweeps as CSV or JSON.
package report

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"sort"
	"strconv"

	"github.com/DrSkyle/aquagrid/pkg/network"
)

// InventoryItem is one segment row of the inventory export.
type InventoryItem struct {
	SegmentID     string `json:"segment_id"`
	Class         string `json:"class"`
	Source        string `json:"source"`
	Target        string `json:"target"`
	Material      string `json:"material"`
	DiameterMM    int    `json:"diameter_mm"`
	InstalledYear int    `json:"installed_year"`
	RatedPSI      int    `json:"rated_pressure_psi"`
	Priority      int    `json:"priority_score"`
	State         string `json:"state"`
	Confirmation  string `json:"confirmation"`
	Critical      bool   `json:"critical"`
}

// SweepEntry is one ranked segment of a sweep.
type SweepEntry struct {
	Rank       int    `json:"rank"`
	SegmentID  string `json:"segment_id"`
	Class      string `json:"class"`
	Priority   int    `json:"priority_score"`
	Critical   bool   `json:"critical"`
	Affected   int    `json:"affected_nodes"`
	DryDemand  int    `json:"dry_demand_nodes"`
	Population int    `json:"estimated_population"`
}

// Inventory lists segments by descending priority, then id.
func Inventory(net network.Network) []InventoryItem {
	critical := make(map[string]bool)
	for _, id := range network.Bridges(net) {
		critical[id] = true
	}

	items := make([]InventoryItem, 0, len(net.Segments))
	for _, s := range net.Segments {
		items = append(items, InventoryItem{
			SegmentID:     s.ID,
			Class:         string(s.Class),
			Source:        s.Source,
			Target:        s.Target,
			Material:      s.Material,
			DiameterMM:    s.Diameter,
			InstalledYear: s.InstalledYear,
			RatedPSI:      s.RatedPressure,
			Priority:      s.PriorityScore,
			State:         string(s.State),
			Confirmation:  string(s.Confirmation),
			Critical:      critical[s.ID],
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Priority != items[j].Priority {
			return items[i].Priority > items[j].Priority
		}
		return items[i].SegmentID < items[j].SegmentID
	})
	return items
}

// WriteInventoryCSV writes the segment inventory.
func WriteInventoryCSV(w io.Writer, net network.Network) error {
	cw := csv.NewWriter(w)

	header := []string{
		"SegmentID",
		"Class",
		"Source",
		"Target",
		"Material",
		"DiameterMM",
		"InstalledYear",
		"RatedPSI",
		"Priority",
		"State",
		"Confirmation",
		"Critical",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, item := range Inventory(net) {
		record := []string{
			item.SegmentID,
			item.Class,
			item.Source,
			item.Target,
			item.Material,
			strconv.Itoa(item.DiameterMM),
			strconv.Itoa(item.InstalledYear),
			strconv.Itoa(item.RatedPSI),
			strconv.Itoa(item.Priority),
			item.State,
			item.Confirmation,
			strconv.FormatBool(item.Critical),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteSweepCSV writes ranked sweep entries in the order given.
func WriteSweepCSV(w io.Writer, entries []SweepEntry) error {
	cw := csv.NewWriter(w)

	header := []string{"Rank", "SegmentID", "Class", "Priority", "Critical", "AffectedNodes", "DryDemandNodes", "EstimatedPopulation"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, e := range entries {
		record := []string{
			strconv.Itoa(e.Rank),
			e.SegmentID,
			e.Class,
			strconv.Itoa(e.Priority),
			strconv.FormatBool(e.Critical),
			strconv.Itoa(e.Affected),
			strconv.Itoa(e.DryDemand),
			strconv.Itoa(e.Population),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
