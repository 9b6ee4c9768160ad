package model

import "strings"

// MetricInfo is a catalog entry describing how a metric is interpreted.
type MetricInfo struct {
	Name        string
	Unit        string
	LowerBetter bool
}

// catalog lists metrics with an explicit direction attribute. Entries here
// win over the substring heuristic below.
var catalog = map[string]MetricInfo{
	"ghg_intensity":          {Name: "GHG emissions intensity", Unit: "tCO2e/$M", LowerBetter: true},
	"scope1_emissions":       {Name: "Scope 1 emissions", Unit: "tCO2e", LowerBetter: true},
	"scope2_emissions":       {Name: "Scope 2 emissions", Unit: "tCO2e", LowerBetter: true},
	"water_consumption":      {Name: "Water consumption", Unit: "m3", LowerBetter: true},
	"waste_generated":        {Name: "Waste generated", Unit: "t", LowerBetter: true},
	"incident_rate":          {Name: "Recordable incident rate", Unit: "per 200k hours", LowerBetter: true},
	"spill_volume":           {Name: "Spill volume", Unit: "m3", LowerBetter: true},
	"renewable_energy_share": {Name: "Renewable energy share", Unit: "%", LowerBetter: false},
	"board_diversity":        {Name: "Board diversity", Unit: "%", LowerBetter: false},
	"training_hours":         {Name: "Training hours per employee", Unit: "h", LowerBetter: false},
}

// lowerBetterHints is the substring fallback for metrics not in the catalog:
// emissions, water/waste consumption, incident rates, spill volume.
var lowerBetterHints = []string{"emission", "ghg", "water", "waste", "incident", "spill"}

// Lookup returns the catalog entry for a metric, if one exists.
func Lookup(metricID string) (MetricInfo, bool) {
	info, ok := catalog[metricID]
	return info, ok
}

// LowerIsBetter reports whether smaller values of the metric represent
// better performance. Catalog entries are authoritative; unknown metrics
// fall back to a substring heuristic over the metric ID.
func LowerIsBetter(metricID string) bool {
	if info, ok := catalog[metricID]; ok {
		return info.LowerBetter
	}
	id := strings.ToLower(metricID)
	for _, hint := range lowerBetterHints {
		if strings.Contains(id, hint) {
			return true
		}
	}
	return false
}
