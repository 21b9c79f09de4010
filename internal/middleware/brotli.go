package middleware

import (
	"net/http"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

// brotliMinLength is the smallest response body worth compressing.
const brotliMinLength = 1024

type brotliResponseWriter struct {
	gin.ResponseWriter
	bw         *brotli.Writer
	pending    []byte
	started    sync.Once
	compressed bool
}

func (w *brotliResponseWriter) Write(data []byte) (int, error) {
	w.pending = append(w.pending, data...)
	if len(w.pending) < brotliMinLength {
		return len(data), nil
	}

	w.started.Do(func() {
		w.compressed = true
		w.ResponseWriter.Header().Set("Content-Encoding", "br")
		w.ResponseWriter.Header().Del("Content-Length")
	})
	_, err := w.bw.Write(w.pending)
	w.pending = w.pending[:0]
	return len(data), err
}

func (w *brotliResponseWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// finish drains any buffered bytes. Small responses never crossed the
// threshold and go out uncompressed.
func (w *brotliResponseWriter) finish() error {
	if len(w.pending) > 0 && !w.compressed {
		_, err := w.ResponseWriter.Write(w.pending)
		w.pending = nil
		return err
	}
	if len(w.pending) > 0 {
		if _, err := w.bw.Write(w.pending); err != nil {
			return err
		}
		w.pending = nil
	}
	if w.compressed {
		return w.bw.Close()
	}
	return nil
}

// Brotli compresses response bodies for clients that accept it. WebSocket
// upgrades pass through untouched; wrapping the writer breaks the handshake.
func Brotli() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") || !acceptsBrotli(c.Request) {
			c.Next()
			return
		}

		c.Header("Vary", "Accept-Encoding")

		w := &brotliResponseWriter{
			ResponseWriter: c.Writer,
			bw:             brotli.NewWriterLevel(c.Writer, brotli.DefaultCompression),
		}
		c.Writer = w
		defer func() {
			if err := w.finish(); err != nil {
				_ = c.Error(err)
			}
		}()

		c.Next()
	}
}

func acceptsBrotli(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		if strings.TrimSpace(strings.ToLower(enc)) == "br" {
			return true
		}
	}
	return false
}
