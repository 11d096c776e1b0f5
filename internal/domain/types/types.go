// Package types contains the read shapes returned by scoreboard queries.
package types

// Standing is one row of a ranked scoreboard.
type Standing struct {
	Rank    int    `json:"rank"`
	HouseID string `json:"house_id"`
	Name    string `json:"name"`
	Color   string `json:"color,omitempty"`
	Score   int64  `json:"score"`
}

// HouseSummary is a house with its total and per-category points.
type HouseSummary struct {
	HouseID   string           `json:"house_id"`
	Name      string           `json:"name"`
	Color     string           `json:"color,omitempty"`
	Total     int64            `json:"total"`
	Breakdown map[string]int64 `json:"breakdown"`
	Revision  uint64           `json:"revision"`
}

// Board is the published scoreboard as served to clients.
type Board struct {
	Revision  uint64                      `json:"revision"`
	Totals    map[string]int64            `json:"totals"`
	Breakdown map[string]map[string]int64 `json:"breakdown"`
	Ranking   []Standing                  `json:"ranking"`
}
