package viewmodels

type SearchResult struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	Subtitle string `json:"subtitle"`
	Level    *int   `json:"level,omitempty"`
}

type SearchResponse struct {
	Query       string         `json:"query"`
	Results     []SearchResult `json:"results"`
	Suggestions []SearchResult `json:"suggestions,omitempty"`
}

type LevelRow struct {
	Level     int `json:"level"`
	Units     int `json:"units"`
	Positions int `json:"positions"`
	People    int `json:"people"`
}

type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// NavigationOutcome reports whether a navigation request moved the view.
type NavigationOutcome struct {
	Target   string    `json:"target"`
	Focused  bool      `json:"focused"`
	Viewport *Viewport `json:"viewport,omitempty"`
}

type FilterState struct {
	Units []int `json:"units"`
}
