package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flashContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestFlashRoundTrip(t *testing.T) {
	m := NewManager(nil, 0, "localhost", false)

	c, w := flashContext(t)
	m.SetFlash(c, FlashSuccess, "Nota creada.")

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	// next request carries the cookie back
	c2, _ := flashContext(t)
	for _, ck := range cookies {
		c2.Request.AddCookie(ck)
	}
	f, ok := m.TakeFlash(c2)
	require.True(t, ok)
	assert.Equal(t, FlashSuccess, f.Kind)
	assert.Equal(t, "Nota creada.", f.Message)
}

func TestFlashSurvivesSeparators(t *testing.T) {
	m := NewManager(nil, 0, "localhost", false)

	c, w := flashContext(t)
	m.SetFlash(c, FlashError, "uno|dos, tres & cuatro")

	c2, _ := flashContext(t)
	for _, ck := range w.Result().Cookies() {
		c2.Request.AddCookie(ck)
	}
	f, ok := m.TakeFlash(c2)
	require.True(t, ok)
	assert.Equal(t, "uno|dos, tres & cuatro", f.Message)
}

func TestTakeFlashEmpty(t *testing.T) {
	m := NewManager(nil, 0, "localhost", false)
	c, _ := flashContext(t)
	_, ok := m.TakeFlash(c)
	assert.False(t, ok)
}
