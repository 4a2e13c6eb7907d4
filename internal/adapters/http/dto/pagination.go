package dto

// ListQuotesRequest carries the query parameters of GET /api/v1/quotes.
// Out-of-range values are clamped by the service, never rejected, so the
// fields carry no validation tags; only unparseable values fail binding.
type ListQuotesRequest struct {
	// Page is the 1-based page number. Values below 1 are clamped to 1.
	Page int `form:"page"`

	// PerPage is the page size. Zero means the configured default;
	// other values are clamped to the configured range.
	PerPage int `form:"per_page"`

	// Character filters to quotes by this character, matched exactly but
	// ignoring case.
	Character string `form:"character"`

	// Search filters to quotes whose text contains this substring,
	// ignoring case.
	Search string `form:"search"`
}

// QuoteListResponse is one page of quotes plus the pagination totals.
type QuoteListResponse struct {
	Quotes     []QuoteResponse `json:"quotes"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	PerPage    int             `json:"per_page"`
	TotalPages int             `json:"total_pages"`
}
