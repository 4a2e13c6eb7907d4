package storage

import (
	"time"

	"github.com/jsamuelsen/quote-machine/internal/domain"
)

// quoteRecord is the GORM model for the quotes table. Timestamp tracking is
// disabled on purpose: the application layer owns created_at/updated_at so
// that both are identical at creation and updated_at only moves forward on
// real updates.
type quoteRecord struct {
	ID        int64     `gorm:"primaryKey"`
	QuoteText string    `gorm:"type:text;not null"`
	Character string    `gorm:"size:100;not null;index"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false"`
}

// TableName pins the table name regardless of GORM's pluralization rules.
func (quoteRecord) TableName() string {
	return "quotes"
}

func (r quoteRecord) toDomain() domain.Quote {
	return domain.Quote{
		ID:        r.ID,
		QuoteText: r.QuoteText,
		Character: r.Character,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func fromDomain(q *domain.Quote) quoteRecord {
	return quoteRecord{
		ID:        q.ID,
		QuoteText: q.QuoteText,
		Character: q.Character,
		CreatedAt: q.CreatedAt,
		UpdatedAt: q.UpdatedAt,
	}
}
