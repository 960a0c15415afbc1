package middleware

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

// minCompressBytes is the smallest body worth compressing.
const minCompressBytes = 1024

// bufferedWriter holds the whole response body until the handler returns.
type bufferedWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bufferedWriter) Write(data []byte) (int, error) {
	return w.body.Write(data)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	return w.body.WriteString(s)
}

// Compress brotli-encodes JSON responses of at least minCompressBytes for
// clients that accept it. Parsed forms and history pages are the large ones.
func Compress(quality int) gin.HandlerFunc {
	if quality < brotli.BestSpeed || quality > brotli.BestCompression {
		quality = brotli.DefaultCompression
	}

	return func(c *gin.Context) {
		if !acceptsBrotli(c.Request) {
			c.Next()
			return
		}

		orig := c.Writer
		bw := &bufferedWriter{ResponseWriter: orig}
		c.Writer = bw
		c.Next()
		c.Writer = orig

		body := bw.body.Bytes()
		if len(body) < minCompressBytes || orig.Header().Get("Content-Encoding") != "" {
			_, _ = orig.Write(body)
			return
		}

		h := orig.Header()
		h.Set("Content-Encoding", "br")
		h.Add("Vary", "Accept-Encoding")
		h.Del("Content-Length")

		zw := brotli.NewWriterLevel(orig, quality)
		if _, err := zw.Write(body); err != nil {
			_ = c.Error(err)
		}
		if err := zw.Close(); err != nil {
			_ = c.Error(err)
		}
	}
}

func acceptsBrotli(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		name, _, _ := strings.Cut(strings.TrimSpace(enc), ";")
		if strings.EqualFold(name, "br") {
			return true
		}
	}
	return false
}
