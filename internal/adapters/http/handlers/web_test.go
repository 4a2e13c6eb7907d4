package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebHandler_Home(t *testing.T) {
	t.Run("renders a stored quote", func(t *testing.T) {
		svc := newTestService(t)
		seedQuotes(t, svc)
		handler := NewWebHandler(svc)

		w := getRequest(handler.Home, "/", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "<blockquote>")
		assert.Contains(t, w.Body.String(), "/static/images/")
	})

	t.Run("empty store renders the fallback copy", func(t *testing.T) {
		handler := NewWebHandler(newTestService(t))

		w := getRequest(handler.Home, "/", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "No quotes available! Please add some quotes.")
		assert.Contains(t, w.Body.String(), "default.jpg")
	})

	t.Run("unreachable store renders the error copy", func(t *testing.T) {
		handler := NewWebHandler(newClosedStoreService(t))

		w := getRequest(handler.Home, "/", nil)

		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "Something went wrong! Please try again.")
	})
}

func TestWebHandler_Home_EscapesStoredText(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Create(context.Background(), `<script>alert("hi")</script>`, "Bender")
	require.NoError(t, err)

	handler := NewWebHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	handler.Home(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "<script>alert")
	assert.Contains(t, w.Body.String(), "&lt;script&gt;")
}
