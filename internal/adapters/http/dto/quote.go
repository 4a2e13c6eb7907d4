package dto

import (
	"time"

	"github.com/jsamuelsen/quote-machine/internal/domain"
)

// QuoteResponse is the wire shape of a single quote.
type QuoteResponse struct {
	ID        int64     `json:"id"`
	QuoteText string    `json:"quote_text"`
	Character string    `json:"character"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewQuoteResponse converts a domain quote to its wire shape.
func NewQuoteResponse(q *domain.Quote) *QuoteResponse {
	return &QuoteResponse{
		ID:        q.ID,
		QuoteText: q.QuoteText,
		Character: q.Character,
		CreatedAt: q.CreatedAt,
		UpdatedAt: q.UpdatedAt,
	}
}

// NewQuoteResponses converts a slice of domain quotes, preserving order.
func NewQuoteResponses(quotes []domain.Quote) []QuoteResponse {
	out := make([]QuoteResponse, 0, len(quotes))
	for i := range quotes {
		out = append(out, *NewQuoteResponse(&quotes[i]))
	}

	return out
}

// CreateQuoteRequest is the body of POST /api/v1/quotes.
// The service trims both fields and enforces the non-empty rule; the
// notempty tag just rejects obviously blank bodies at the edge.
type CreateQuoteRequest struct {
	QuoteText string `json:"quote_text" validate:"required,notempty"`
	Character string `json:"character"  validate:"required,notempty"`
}

// UpdateQuoteRequest is the body of PUT /api/v1/quotes/:id.
// Absent fields keep their stored values; a field that is present but
// blank is rejected by the service.
type UpdateQuoteRequest struct {
	QuoteText *string `json:"quote_text"`
	Character *string `json:"character"`
}

// ToDomain converts the request into the domain's partial-update shape.
func (r *UpdateQuoteRequest) ToDomain() domain.QuoteUpdate {
	return domain.QuoteUpdate{
		QuoteText: r.QuoteText,
		Character: r.Character,
	}
}

// CharactersResponse is the body of GET /api/v1/characters.
type CharactersResponse struct {
	Characters []string `json:"characters"`
}
