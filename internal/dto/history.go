package dto

// HistoryFilter contains query parameters for the enrichment history listing.
type HistoryFilter struct {
	Q       string
	Page    int
	PerPage int
}
