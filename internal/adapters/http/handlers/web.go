package handlers

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-machine/internal/app"
	"github.com/jsamuelsen/quote-machine/internal/domain"
	"github.com/jsamuelsen/quote-machine/internal/web"
)

// WebHandler serves the HTML landing page.
type WebHandler struct {
	service *app.QuoteService
}

// NewWebHandler creates a new web handler.
func NewWebHandler(service *app.QuoteService) *WebHandler {
	return &WebHandler{
		service: service,
	}
}

// Home handles GET /. An empty store renders fallback copy with a 200; a
// failing store renders the error copy with a 500.
func (h *WebHandler) Home(c *gin.Context) {
	quote, err := h.service.Random(c.Request.Context())

	var (
		data   web.HomeData
		status = http.StatusOK
	)

	switch {
	case err == nil:
		data = web.QuoteHome(*quote)
	case domain.IsEmptyStore(err):
		data = web.EmptyHome()
	default:
		data = web.ErrorHome()
		status = http.StatusInternalServerError
	}

	templ.Handler(web.Home(data), templ.WithStatus(status)).ServeHTTP(c.Writer, c.Request)
}
