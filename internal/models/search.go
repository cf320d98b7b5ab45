package models

// SearchResult is one candidate from a symbol search.
type SearchResult struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
}

// ResolvedResource maps a user-facing symbol to the source's internal
// resource identifier. ResourceID may carry a variant suffix such as
// "/consolidated"; ResourcePath is the id embedded in a company page path.
type ResolvedResource struct {
	Symbol       string `json:"symbol"`
	ResourceID   string `json:"resource_id"`
	ResourcePath string `json:"resource_path"`
}
