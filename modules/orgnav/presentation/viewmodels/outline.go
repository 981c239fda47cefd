package viewmodels

// OutlineRow is one unit in a depth-first outline of the chart.
type OutlineRow struct {
	ID          string `json:"id"`
	UnitID      int    `json:"unit_id"`
	Name        string `json:"name"`
	ShortName   string `json:"short_name,omitempty"`
	Kind        string `json:"kind"`
	Depth       int    `json:"depth"`
	Positions   int    `json:"positions"`
	People      int    `json:"people"`
	HasChildren bool   `json:"has_children"`
	Selected    bool   `json:"selected,omitempty"`
}

type Outline struct {
	Rows []OutlineRow `json:"rows"`
}
