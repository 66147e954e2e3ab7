package dto

// EnrichRequest is the payload of POST /enrich.
type EnrichRequest struct {
	Company         string   `json:"company"`
	FastMode        bool     `json:"fast_mode"`
	FieldsToExtract []string `json:"fields_to_extract"`
}

// BulkEnrichRequest is the payload of POST /enrich/bulk.
type BulkEnrichRequest struct {
	Companies       []string `json:"companies"`
	FastMode        bool     `json:"fast_mode"`
	FieldsToExtract []string `json:"fields_to_extract"`
}

// KeywordsRequest is the payload of POST /keywords.
type KeywordsRequest struct {
	URL string `json:"url"`
}
