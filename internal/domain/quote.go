// Package domain contains core business entities and rules.
package domain

import "time"

// Quote represents a quotation attributed to a character.
// This is a domain entity - it has no knowledge of external systems.
type Quote struct {
	// ID is the store-assigned identifier. It is immutable and never
	// reused within a process lifetime.
	ID int64

	// QuoteText is the text of the quote. Never empty after trimming.
	QuoteText string

	// Character is who said the quote. Free text, never empty after
	// trimming. Stored exactly as typed; read paths compare it
	// case-insensitively.
	Character string

	// CreatedAt is set once when the quote is stored.
	CreatedAt time.Time

	// UpdatedAt moves forward on every successful update.
	// Invariant: UpdatedAt >= CreatedAt, with equality at creation.
	UpdatedAt time.Time
}

// QuoteUpdate describes a partial update. Nil fields are left unchanged.
type QuoteUpdate struct {
	QuoteText *string
	Character *string
}

// IsEmpty reports whether the update changes nothing.
func (u QuoteUpdate) IsEmpty() bool {
	return u.QuoteText == nil && u.Character == nil
}

// CharacterCount pairs a character name with how many quotes it has.
type CharacterCount struct {
	Character string
	Count     int64
}
