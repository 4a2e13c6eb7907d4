package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/jsamuelsen/quote-machine/internal/domain"
	"github.com/jsamuelsen/quote-machine/internal/ports"
)

// QuoteRepository implements ports.QuoteRepository on a GORM connection.
// It also implements ports.HealthChecker by pinging the underlying pool.
type QuoteRepository struct {
	db *gorm.DB
}

// NewQuoteRepository creates a repository bound to an open connection.
func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// listFilters applies the character and search predicates of a query.
// The character column must stay quoted: CHARACTER is a type keyword in
// postgres and trips the parser when unquoted in expressions.
func listFilters(query ports.ListQuery) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if query.Character != "" {
			tx = tx.Where(`LOWER("character") = LOWER(?)`, query.Character)
		}

		if query.Search != "" {
			pattern := "%" + escapeLike(query.Search) + "%"
			tx = tx.Where(`LOWER(quote_text) LIKE LOWER(?) ESCAPE '\'`, pattern)
		}

		return tx
	}
}

// escapeLike neutralizes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

// List returns one page of quotes in stable id order plus the total number
// of rows matching the filters. A zero limit returns only the count.
func (r *QuoteRepository) List(ctx context.Context, query ports.ListQuery) ([]domain.Quote, int64, error) {
	var total int64

	err := r.db.WithContext(ctx).
		Model(&quoteRecord{}).
		Scopes(listFilters(query)).
		Count(&total).Error
	if err != nil {
		return nil, 0, fmt.Errorf("counting quotes: %w", err)
	}

	if query.Limit <= 0 || total == 0 {
		return []domain.Quote{}, total, nil
	}

	var records []quoteRecord

	err = r.db.WithContext(ctx).
		Scopes(listFilters(query)).
		Order("id asc").
		Offset(query.Offset).
		Limit(query.Limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("listing quotes: %w", err)
	}

	quotes := make([]domain.Quote, 0, len(records))
	for _, record := range records {
		quotes = append(quotes, record.toDomain())
	}

	return quotes, total, nil
}

// GetByID retrieves a single quote.
func (r *QuoteRepository) GetByID(ctx context.Context, id int64) (*domain.Quote, error) {
	var record quoteRecord

	err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("quote", id)
		}

		return nil, fmt.Errorf("fetching quote %d: %w", id, err)
	}

	quote := record.toDomain()

	return &quote, nil
}

// Create inserts the quote and fills in its store-assigned ID.
func (r *QuoteRepository) Create(ctx context.Context, quote *domain.Quote) error {
	record := fromDomain(quote)

	err := r.db.WithContext(ctx).Create(&record).Error
	if err != nil {
		return fmt.Errorf("creating quote: %w", err)
	}

	quote.ID = record.ID

	return nil
}

// CreateIfAbsent inserts the quote unless the exact (quote_text, character)
// pair already exists. Matching is case-sensitive: seeding treats "Bender"
// and "bender" as different rows, mirroring how quotes are stored.
func (r *QuoteRepository) CreateIfAbsent(ctx context.Context, quote *domain.Quote) (bool, error) {
	record := fromDomain(quote)

	result := r.db.WithContext(ctx).
		Where(`quote_text = ? AND "character" = ?`, quote.QuoteText, quote.Character).
		FirstOrCreate(&record)
	if result.Error != nil {
		return false, fmt.Errorf("upserting quote: %w", result.Error)
	}

	quote.ID = record.ID

	return result.RowsAffected > 0, nil
}

// Update persists the quote's current field values under its ID.
// created_at is never touched on update.
func (r *QuoteRepository) Update(ctx context.Context, quote *domain.Quote) error {
	result := r.db.WithContext(ctx).
		Model(&quoteRecord{}).
		Where("id = ?", quote.ID).
		Updates(map[string]any{
			"quote_text": quote.QuoteText,
			"character":  quote.Character,
			"updated_at": quote.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("updating quote %d: %w", quote.ID, result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("quote", quote.ID)
	}

	return nil
}

// Delete removes a quote.
func (r *QuoteRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&quoteRecord{}, id)
	if result.Error != nil {
		return fmt.Errorf("deleting quote %d: %w", id, result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("quote", id)
	}

	return nil
}

// Random returns a uniformly random quote. random() is supported by both
// sqlite and postgres, so selection happens in the database.
func (r *QuoteRepository) Random(ctx context.Context) (*domain.Quote, error) {
	var record quoteRecord

	err := r.db.WithContext(ctx).Order("random()").Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewEmptyStoreError("quote")
		}

		return nil, fmt.Errorf("picking random quote: %w", err)
	}

	quote := record.toDomain()

	return &quote, nil
}

// Characters returns the distinct character names sorted ascending, cased
// exactly as stored.
func (r *QuoteRepository) Characters(ctx context.Context) ([]string, error) {
	names := make([]string, 0)

	err := r.db.WithContext(ctx).
		Model(&quoteRecord{}).
		Distinct(`"character"`).
		Order(`"character" asc`).
		Pluck("character", &names).Error
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}

	return names, nil
}

// CharacterCounts returns up to limit characters ordered by quote count,
// most quoted first, ties broken by name.
func (r *QuoteRepository) CharacterCounts(ctx context.Context, limit int) ([]domain.CharacterCount, error) {
	counts := make([]domain.CharacterCount, 0)

	tx := r.db.WithContext(ctx).
		Model(&quoteRecord{}).
		Select(`"character", COUNT(*) AS count`).
		Group("character").
		Order(`count DESC`).
		Order(`"character" asc`)

	if limit > 0 {
		tx = tx.Limit(limit)
	}

	err := tx.Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("counting quotes per character: %w", err)
	}

	return counts, nil
}

// Count returns the total number of stored quotes.
func (r *QuoteRepository) Count(ctx context.Context) (int64, error) {
	var total int64

	err := r.db.WithContext(ctx).Model(&quoteRecord{}).Count(&total).Error
	if err != nil {
		return 0, fmt.Errorf("counting quotes: %w", err)
	}

	return total, nil
}

// Name identifies this component in health check responses.
func (r *QuoteRepository) Name() string {
	return "database"
}

// Check reports whether the database is reachable.
func (r *QuoteRepository) Check(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}
