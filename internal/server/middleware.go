package server

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"tasktracker/internal/domain/errors"
	"tasktracker/internal/domain/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// RequestLogger writes one structured entry per request. Server errors are
// logged at error level, client errors at warn.
func RequestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		status := ctx.Writer.Status()
		entry := log.WithFields(log.Fields{
			"method":   ctx.Request.Method,
			"path":     ctx.Request.URL.Path,
			"status":   status,
			"duration": time.Since(start).String(),
			"ip":       ctx.ClientIP(),
		})
		if user, ok := ctx.Get(ContextUserKey); ok {
			if u, ok := user.(*models.User); ok && u != nil {
				entry = entry.WithField("user_id", u.ID)
			}
		}
		if len(ctx.Errors) > 0 {
			entry = entry.WithField("errors", ctx.Errors.String())
		}

		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("Запрос завершился ошибкой сервера")
		case status >= http.StatusBadRequest:
			entry.Warn("Запрос отклонен")
		default:
			entry.Info("Запрос обработан")
		}
	}
}

// CORS allows credentialed requests from origins. A "*" entry allows any
// origin by reflecting it back, since browsers reject a literal wildcard
// together with credentials.
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowCredentials = true
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "Content-Encoding", "Accept-Encoding"}
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}

	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowOriginFunc = func(string) bool { return true }
			return cors.New(cfg)
		}
	}
	if len(origins) == 0 {
		origins = []string{defaultCORSOrigin}
	}
	cfg.AllowOrigins = origins
	return cors.New(cfg)
}

// gzipBody closes both the gzip stream and the underlying request body.
type gzipBody struct {
	io.Reader
	closers []io.Closer
}

func (b *gzipBody) Close() error {
	var first error
	for _, c := range b.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// GzipRequestDecompress transparently inflates request bodies sent with
// Content-Encoding: gzip.
func GzipRequestDecompress() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !strings.Contains(strings.ToLower(ctx.GetHeader("Content-Encoding")), "gzip") {
			ctx.Next()
			return
		}

		gr, err := gzip.NewReader(ctx.Request.Body)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": errors.ErrInvalidGzipRequest.Error()})
			return
		}
		ctx.Request.Body = &gzipBody{Reader: gr, closers: []io.Closer{gr, ctx.Request.Body}}
		ctx.Request.Header.Del("Content-Encoding")
		ctx.Request.Header.Del("Content-Length")
		ctx.Request.ContentLength = -1

		ctx.Next()
	}
}

// minCompressSize keeps small JSON replies such as {message} uncompressed.
const minCompressSize = 1024

var compressibleTypes = []string{
	"application/json",
	"application/xml",
	"application/javascript",
	"text/html",
	"text/css",
	"text/plain",
	"text/xml",
	"text/javascript",
}

// compressWriter buffers the body until it is large enough to be worth
// compressing, then switches to a gzip stream.
type compressWriter struct {
	gin.ResponseWriter
	gz      *gzip.Writer
	pending bytes.Buffer
	status  int
}

func (w *compressWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *compressWriter) Write(data []byte) (int, error) {
	if w.gz != nil {
		n, err := w.gz.Write(data)
		if err != nil {
			return n, errors.ErrGzipCompressionFailed
		}
		return n, nil
	}

	w.pending.Write(data)
	if w.pending.Len() >= minCompressSize && w.compressible() {
		w.startGzip()
		if _, err := w.gz.Write(w.pending.Bytes()); err != nil {
			return 0, errors.ErrGzipCompressionFailed
		}
		w.pending.Reset()
	}
	return len(data), nil
}

func (w *compressWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *compressWriter) compressible() bool {
	switch w.status {
	case http.StatusNoContent, http.StatusNotModified, http.StatusPartialContent:
		return false
	}
	if w.status >= http.StatusMultipleChoices && w.status < http.StatusBadRequest {
		return false
	}
	if w.Header().Get("Content-Encoding") != "" {
		return false
	}
	return isCompressibleContentType(w.Header().Get("Content-Type"))
}

func (w *compressWriter) startGzip() {
	w.Header().Del("Content-Length")
	w.Header().Set("Content-Encoding", "gzip")
	w.gz = gzip.NewWriter(w.ResponseWriter)
}

func (w *compressWriter) Flush() {
	if w.gz != nil {
		_ = w.gz.Flush()
	} else if w.pending.Len() > 0 {
		_, _ = w.ResponseWriter.Write(w.pending.Bytes())
		w.pending.Reset()
	}
	w.ResponseWriter.Flush()
}

func (w *compressWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.ResponseWriter.Hijack()
}

// finish writes out whatever is still buffered or open.
func (w *compressWriter) finish() error {
	if w.gz != nil {
		if err := w.gz.Close(); err != nil {
			return errors.ErrGzipCompressionFailed
		}
		return nil
	}
	if w.pending.Len() > 0 {
		_, err := w.ResponseWriter.Write(w.pending.Bytes())
		w.pending.Reset()
		return err
	}
	return nil
}

// GzipResponseCompress compresses textual responses of at least
// minCompressSize bytes for clients that accept gzip.
func GzipResponseCompress() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.Method == http.MethodHead ||
			!strings.Contains(strings.ToLower(ctx.GetHeader("Accept-Encoding")), "gzip") {
			ctx.Next()
			return
		}

		addVary(ctx.Writer.Header(), "Accept-Encoding")
		cw := &compressWriter{ResponseWriter: ctx.Writer, status: http.StatusOK}
		ctx.Writer = cw

		ctx.Next()

		if err := cw.finish(); err != nil {
			_ = ctx.Error(err)
		}
	}
}

func addVary(header http.Header, value string) {
	vary := header.Get("Vary")
	switch {
	case vary == "":
		header.Set("Vary", value)
	case !strings.Contains(vary, value):
		header.Set("Vary", vary+", "+value)
	}
}

func isCompressibleContentType(ct string) bool {
	lower := strings.ToLower(ct)
	if lower == "" || strings.HasPrefix(lower, "text/event-stream") {
		return false
	}
	for _, prefix := range compressibleTypes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
