package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-machine/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-machine/internal/adapters/storage"
	"github.com/jsamuelsen/quote-machine/internal/app"
	"github.com/jsamuelsen/quote-machine/internal/domain"
	"github.com/jsamuelsen/quote-machine/internal/platform/config"
)

// newTestService builds a QuoteService over a throwaway sqlite store so
// handler tests exercise real persistence and error mapping end to end.
func newTestService(t *testing.T) *app.QuoteService {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          filepath.Join(t.TempDir(), "quotes.db"),
		MaxOpenConns: 1,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := storage.Open(cfg, logger)
	require.NoError(t, err)
	require.NoError(t, storage.Migrate(db, cfg))

	return app.NewQuoteService(app.QuoteServiceConfig{
		Repository: storage.NewQuoteRepository(db),
		Logger:     logger,
	})
}

// newClosedStoreService builds a QuoteService whose database connection is
// already closed, so every repository call fails.
func newClosedStoreService(t *testing.T) *app.QuoteService {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          filepath.Join(t.TempDir(), "quotes.db"),
		MaxOpenConns: 1,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := storage.Open(cfg, logger)
	require.NoError(t, err)
	require.NoError(t, storage.Migrate(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	return app.NewQuoteService(app.QuoteServiceConfig{
		Repository: storage.NewQuoteRepository(db),
		Logger:     logger,
	})
}

// seedQuotes inserts the standard three-quote fixture and returns the
// stored quotes in id order.
func seedQuotes(t *testing.T, svc *app.QuoteService) []domain.Quote {
	t.Helper()

	fixtures := []struct{ text, character string }{
		{"Bite my shiny metal ass!", "Bender"},
		{"I'm back, baby!", "Bender"},
		{"Good news, everyone!", "Professor Farnsworth"},
	}

	quotes := make([]domain.Quote, 0, len(fixtures))
	for _, f := range fixtures {
		q, err := svc.Create(context.Background(), f.text, f.character)
		require.NoError(t, err)
		quotes = append(quotes, *q)
	}

	return quotes
}

// getRequest runs a handler against a GET request built from target.
func getRequest(handler gin.HandlerFunc, target string, params gin.Params) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	c.Params = params

	handler(c)

	return w
}

// jsonRequest runs a handler against a request carrying a JSON body.
func jsonRequest(handler gin.HandlerFunc, method, target, body string, params gin.Params) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = params

	handler(c)

	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	return resp
}

func TestNewQuoteHandler(t *testing.T) {
	handler := NewQuoteHandler(newTestService(t))

	require.NotNil(t, handler)
}

func TestQuoteHandler_List(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		wantTexts      []string
		wantTotal      int64
		wantPage       int
		wantPerPage    int
		wantTotalPages int
	}{
		{
			name:           "defaults return everything in id order",
			query:          "",
			wantTexts:      []string{"Bite my shiny metal ass!", "I'm back, baby!", "Good news, everyone!"},
			wantTotal:      3,
			wantPage:       1,
			wantPerPage:    20,
			wantTotalPages: 1,
		},
		{
			name:           "second page of two",
			query:          "?page=2&per_page=2",
			wantTexts:      []string{"Good news, everyone!"},
			wantTotal:      3,
			wantPage:       2,
			wantPerPage:    2,
			wantTotalPages: 2,
		},
		{
			name:           "page past the end is empty but keeps the count",
			query:          "?page=9&per_page=2",
			wantTexts:      []string{},
			wantTotal:      3,
			wantPage:       9,
			wantPerPage:    2,
			wantTotalPages: 2,
		},
		{
			name:           "per_page above the cap clamps",
			query:          "?per_page=500",
			wantTexts:      []string{"Bite my shiny metal ass!", "I'm back, baby!", "Good news, everyone!"},
			wantTotal:      3,
			wantPage:       1,
			wantPerPage:    100,
			wantTotalPages: 1,
		},
		{
			name:           "character filter ignores case",
			query:          "?character=bender",
			wantTexts:      []string{"Bite my shiny metal ass!", "I'm back, baby!"},
			wantTotal:      2,
			wantPage:       1,
			wantPerPage:    20,
			wantTotalPages: 1,
		},
		{
			name:           "search matches substrings ignoring case",
			query:          "?search=NEWS",
			wantTexts:      []string{"Good news, everyone!"},
			wantTotal:      1,
			wantPage:       1,
			wantPerPage:    20,
			wantTotalPages: 1,
		},
		{
			name:           "character and search combine",
			query:          "?character=BENDER&search=shiny",
			wantTexts:      []string{"Bite my shiny metal ass!"},
			wantTotal:      1,
			wantPage:       1,
			wantPerPage:    20,
			wantTotalPages: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t)
			seedQuotes(t, svc)
			handler := NewQuoteHandler(svc)

			w := getRequest(handler.List, "/api/v1/quotes"+tt.query, nil)

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var resp dto.QuoteListResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

			texts := make([]string, 0, len(resp.Quotes))
			for _, q := range resp.Quotes {
				texts = append(texts, q.QuoteText)
			}

			assert.Equal(t, tt.wantTexts, texts)
			assert.Equal(t, tt.wantTotal, resp.TotalCount)
			assert.Equal(t, tt.wantPage, resp.Page)
			assert.Equal(t, tt.wantPerPage, resp.PerPage)
			assert.Equal(t, tt.wantTotalPages, resp.TotalPages)
		})
	}
}

func TestQuoteHandler_List_EmptyStore(t *testing.T) {
	handler := NewQuoteHandler(newTestService(t))

	w := getRequest(handler.List, "/api/v1/quotes", nil)

	require.Equal(t, http.StatusOK, w.Code)
	// The quotes key must be an empty array, not null.
	assert.Contains(t, w.Body.String(), `"quotes":[]`)
	assert.Contains(t, w.Body.String(), `"total_pages":0`)
}

func TestQuoteHandler_List_RejectsNonNumericPage(t *testing.T) {
	handler := NewQuoteHandler(newTestService(t))

	w := getRequest(handler.List, "/api/v1/quotes?page=abc", nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrorCodeBadRequest, decodeError(t, w).Error.Code)
}

func TestQuoteHandler_Get(t *testing.T) {
	svc := newTestService(t)
	seeded := seedQuotes(t, svc)
	handler := NewQuoteHandler(svc)

	t.Run("found", func(t *testing.T) {
		w := getRequest(handler.Get, "/api/v1/quotes/1", gin.Params{{Key: "id", Value: "1"}})

		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.QuoteResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, seeded[0].ID, resp.ID)
		assert.Equal(t, "Bite my shiny metal ass!", resp.QuoteText)
		assert.Equal(t, "Bender", resp.Character)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := getRequest(handler.Get, "/api/v1/quotes/999", gin.Params{{Key: "id", Value: "999"}})

		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrorCodeNotFound, decodeError(t, w).Error.Code)
	})

	t.Run("non-integer id", func(t *testing.T) {
		w := getRequest(handler.Get, "/api/v1/quotes/abc", gin.Params{{Key: "id", Value: "abc"}})

		require.Equal(t, http.StatusBadRequest, w.Code)

		resp := decodeError(t, w)
		assert.Equal(t, dto.ErrorCodeBadRequest, resp.Error.Code)
		assert.Contains(t, resp.Error.Message, "integer")
	})
}

func TestQuoteHandler_Create(t *testing.T) {
	svc := newTestService(t)
	handler := NewQuoteHandler(svc)

	w := jsonRequest(handler.Create, http.MethodPost, "/api/v1/quotes",
		`{"quote_text": "  Why not Zoidberg?  ", "character": " Zoidberg "}`, nil)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp dto.QuoteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Positive(t, resp.ID)
	assert.Equal(t, "Why not Zoidberg?", resp.QuoteText)
	assert.Equal(t, "Zoidberg", resp.Character)
	assert.True(t, resp.UpdatedAt.Equal(resp.CreatedAt))

	// Pin the wire casing of the payload.
	assert.Contains(t, w.Body.String(), `"quote_text"`)
	assert.Contains(t, w.Body.String(), `"created_at"`)

	stored, err := svc.Get(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Why not Zoidberg?", stored.QuoteText)
}

func TestQuoteHandler_Create_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCode  string
		wantField string
	}{
		{
			name:      "missing quote_text",
			body:      `{"character": "Bender"}`,
			wantCode:  dto.ErrorCodeValidation,
			wantField: "quote_text",
		},
		{
			name:      "whitespace quote_text",
			body:      `{"quote_text": "   ", "character": "Bender"}`,
			wantCode:  dto.ErrorCodeValidation,
			wantField: "quote_text",
		},
		{
			name:      "missing character",
			body:      `{"quote_text": "Bite my shiny metal ass!"}`,
			wantCode:  dto.ErrorCodeValidation,
			wantField: "character",
		},
		{
			name:     "malformed json",
			body:     `{"quote_text": `,
			wantCode: dto.ErrorCodeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t)
			handler := NewQuoteHandler(svc)

			w := jsonRequest(handler.Create, http.MethodPost, "/api/v1/quotes", tt.body, nil)

			require.Equal(t, http.StatusBadRequest, w.Code)

			resp := decodeError(t, w)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			if tt.wantField != "" {
				assert.Contains(t, resp.Error.Details, tt.wantField)
			}

			count, err := svc.Count(context.Background())
			require.NoError(t, err)
			assert.Zero(t, count, "invalid request must not create a quote")
		})
	}
}

func TestQuoteHandler_Update(t *testing.T) {
	svc := newTestService(t)
	seeded := seedQuotes(t, svc)
	handler := NewQuoteHandler(svc)

	t.Run("partial update keeps the other field", func(t *testing.T) {
		w := jsonRequest(handler.Update, http.MethodPut, "/api/v1/quotes/1",
			`{"quote_text": "I'm Bender, baby!"}`, gin.Params{{Key: "id", Value: "1"}})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp dto.QuoteResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "I'm Bender, baby!", resp.QuoteText)
		assert.Equal(t, "Bender", resp.Character)
		assert.True(t, resp.UpdatedAt.After(seeded[0].UpdatedAt))
	})

	t.Run("no fields", func(t *testing.T) {
		w := jsonRequest(handler.Update, http.MethodPut, "/api/v1/quotes/1",
			`{}`, gin.Params{{Key: "id", Value: "1"}})

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrorCodeValidation, decodeError(t, w).Error.Code)
	})

	t.Run("blank character", func(t *testing.T) {
		w := jsonRequest(handler.Update, http.MethodPut, "/api/v1/quotes/1",
			`{"character": "   "}`, gin.Params{{Key: "id", Value: "1"}})

		require.Equal(t, http.StatusBadRequest, w.Code)

		resp := decodeError(t, w)
		assert.Equal(t, dto.ErrorCodeValidation, resp.Error.Code)
		assert.Contains(t, resp.Error.Details, "character")
	})

	t.Run("unknown id", func(t *testing.T) {
		w := jsonRequest(handler.Update, http.MethodPut, "/api/v1/quotes/999",
			`{"quote_text": "Anything"}`, gin.Params{{Key: "id", Value: "999"}})

		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrorCodeNotFound, decodeError(t, w).Error.Code)
	})
}

func TestQuoteHandler_Delete(t *testing.T) {
	svc := newTestService(t)
	seedQuotes(t, svc)
	handler := NewQuoteHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/api/v1/quotes/1", nil)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.Delete(c)
	// Gin defers the status write until a body write or engine flush; a
	// body-less 204 never reaches the recorder without an explicit flush.
	c.Writer.WriteHeaderNow()

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	// Deleting the same quote again reports not found.
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/api/v1/quotes/1", nil)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.Delete(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrorCodeNotFound, decodeError(t, w).Error.Code)
}

func TestQuoteHandler_Random(t *testing.T) {
	t.Run("empty store", func(t *testing.T) {
		handler := NewQuoteHandler(newTestService(t))

		w := getRequest(handler.Random, "/api/v1/random", nil)

		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrorCodeEmptyStore, decodeError(t, w).Error.Code)
	})

	t.Run("returns a stored quote", func(t *testing.T) {
		svc := newTestService(t)
		seeded := seedQuotes(t, svc)
		handler := NewQuoteHandler(svc)

		w := getRequest(handler.Random, "/api/v1/random", nil)

		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.QuoteResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		ids := make([]int64, 0, len(seeded))
		for _, q := range seeded {
			ids = append(ids, q.ID)
		}
		assert.Contains(t, ids, resp.ID)
	})
}

func TestQuoteHandler_Characters(t *testing.T) {
	t.Run("sorted distinct characters", func(t *testing.T) {
		svc := newTestService(t)
		seedQuotes(t, svc)
		handler := NewQuoteHandler(svc)

		w := getRequest(handler.Characters, "/api/v1/characters", nil)

		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.CharactersResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, []string{"Bender", "Professor Farnsworth"}, resp.Characters)
	})

	t.Run("empty store yields an empty array", func(t *testing.T) {
		handler := NewQuoteHandler(newTestService(t))

		w := getRequest(handler.Characters, "/api/v1/characters", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"characters":[]`)
	})
}

func TestQuoteHandler_RegisterQuoteRoutes(t *testing.T) {
	handler := NewQuoteHandler(newTestService(t))

	router := gin.New()
	api := router.Group("/api/v1")
	handler.RegisterQuoteRoutes(api)

	routes := router.Routes()

	expectedRoutes := []string{
		"GET /api/v1/quotes",
		"POST /api/v1/quotes",
		"GET /api/v1/quotes/:id",
		"PUT /api/v1/quotes/:id",
		"DELETE /api/v1/quotes/:id",
		"GET /api/v1/random",
		"GET /api/v1/characters",
	}

	routeMap := make(map[string]bool)
	for _, r := range routes {
		routeMap[r.Method+" "+r.Path] = true
	}

	for _, expected := range expectedRoutes {
		assert.True(t, routeMap[expected], "missing route: %s", expected)
	}
}
