package middleware

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrotli(t *testing.T) {
	long := strings.Repeat("nilai mahasiswa ", 200)

	r := gin.New()
	r.Use(Brotli())
	r.GET("/long", func(c *gin.Context) {
		// Several writes, the later ones shorter than MinLength.
		c.String(http.StatusOK, long)
		c.Writer.WriteString("tail")
	})
	r.GET("/short", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	t.Run("compresses long bodies", func(t *testing.T) {
		w := serve(r, "/long", map[string]string{"Accept-Encoding": "gzip, br;q=0.9"})
		assert.Equal(t, "br", w.Header().Get("Content-Encoding"))

		plain, err := io.ReadAll(brotli.NewReader(w.Body))
		require.NoError(t, err)
		assert.Equal(t, long+"tail", string(plain))
	})

	t.Run("leaves short bodies alone", func(t *testing.T) {
		w := serve(r, "/short", map[string]string{"Accept-Encoding": "br"})
		assert.Empty(t, w.Header().Get("Content-Encoding"))
		assert.Equal(t, "ok", w.Body.String())
	})

	t.Run("respects Accept-Encoding", func(t *testing.T) {
		w := serve(r, "/long", map[string]string{"Accept-Encoding": "gzip"})
		assert.Empty(t, w.Header().Get("Content-Encoding"))
		assert.Equal(t, long+"tail", w.Body.String())
	})
}
