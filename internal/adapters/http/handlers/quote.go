package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-machine/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-machine/internal/app"
)

// QuoteHandler handles quote-related HTTP endpoints.
type QuoteHandler struct {
	service *app.QuoteService
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service *app.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		service: service,
	}
}

// List handles GET /api/v1/quotes.
// Supports page/per_page pagination plus character and search filters;
// out-of-range paging values are clamped, never rejected.
func (h *QuoteHandler) List(c *gin.Context) {
	var req dto.ListQuotesRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.RespondWithBindingError(c, err)
		return
	}

	page, err := h.service.List(c.Request.Context(), app.ListParams{
		Page:      req.Page,
		PerPage:   req.PerPage,
		Character: req.Character,
		Search:    req.Search,
	})
	if err != nil {
		dto.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.QuoteListResponse{
		Quotes:     dto.NewQuoteResponses(page.Items),
		TotalCount: page.TotalCount,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages,
	})
}

// Get handles GET /api/v1/quotes/:id.
func (h *QuoteHandler) Get(c *gin.Context) {
	id, ok := quoteID(c)
	if !ok {
		return
	}

	quote, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		dto.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponse(quote))
}

// Create handles POST /api/v1/quotes.
func (h *QuoteHandler) Create(c *gin.Context) {
	var req dto.CreateQuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindingError(c, err)
		return
	}

	quote, err := h.service.Create(c.Request.Context(), req.QuoteText, req.Character)
	if err != nil {
		dto.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuoteResponse(quote))
}

// Update handles PUT /api/v1/quotes/:id.
// The update is partial: absent fields keep their stored values.
func (h *QuoteHandler) Update(c *gin.Context) {
	id, ok := quoteID(c)
	if !ok {
		return
	}

	var req dto.UpdateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.RespondWithErrorCode(c, dto.ErrorCodeBadRequest, "request could not be parsed")
		return
	}

	quote, err := h.service.Update(c.Request.Context(), id, req.ToDomain())
	if err != nil {
		dto.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponse(quote))
}

// Delete handles DELETE /api/v1/quotes/:id.
func (h *QuoteHandler) Delete(c *gin.Context) {
	id, ok := quoteID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		dto.RespondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Random handles GET /api/v1/random.
// Responds 404 with the EMPTY_STORE code when no quotes are stored.
func (h *QuoteHandler) Random(c *gin.Context) {
	quote, err := h.service.Random(c.Request.Context())
	if err != nil {
		dto.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponse(quote))
}

// Characters handles GET /api/v1/characters.
func (h *QuoteHandler) Characters(c *gin.Context) {
	characters, err := h.service.Characters(c.Request.Context())
	if err != nil {
		dto.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CharactersResponse{Characters: characters})
}

// quoteID parses the :id path parameter. On failure it writes the 400
// response and reports false.
func quoteID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		dto.RespondWithErrorCode(c, dto.ErrorCodeBadRequest, "quote id must be an integer")
		return 0, false
	}

	return id, true
}

// RegisterQuoteRoutes registers quote routes on the given router group.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.GET("", h.List)
	quotes.POST("", h.Create)
	quotes.GET("/:id", h.Get)
	quotes.PUT("/:id", h.Update)
	quotes.DELETE("/:id", h.Delete)

	rg.GET("/random", h.Random)
	rg.GET("/characters", h.Characters)
}
