package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"time"

	"cruiseops/models"
	"cruiseops/utils"

	"github.com/julienschmidt/httprouter"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	idempotencyTTL    = 24 * time.Hour
	maxIdempotentBody = 1 << 20
)

type IdempotencyStore interface {
	// Insert reports false when a record with the same scope and key already exists.
	Insert(ctx context.Context, rec models.IdempotencyRecord) (bool, error)
	Find(ctx context.Context, scope, key string) (models.IdempotencyRecord, error)
	SaveResponse(ctx context.Context, scope, key string, resp models.CachedResponse) error
	Release(ctx context.Context, scope, key string) error
}

func computeRequestHash(r *http.Request, bodyBytes []byte, userID string) string {
	h := sha256.New()
	h.Write([]byte(r.Method + ":" + r.URL.Path + ":" + userID + ":"))
	h.Write(bodyBytes)
	return hex.EncodeToString(h.Sum(nil))
}

// CaptureResponseWriter wraps http.ResponseWriter to capture status and body.
type CaptureResponseWriter struct {
	w           http.ResponseWriter
	statusCode  int
	buf         bytes.Buffer
	wroteHeader bool
}

func NewCaptureResponseWriter(w http.ResponseWriter) *CaptureResponseWriter {
	return &CaptureResponseWriter{w: w, statusCode: http.StatusOK}
}

func (c *CaptureResponseWriter) Header() http.Header {
	return c.w.Header()
}

func (c *CaptureResponseWriter) WriteHeader(statusCode int) {
	if !c.wroteHeader {
		c.statusCode = statusCode
		c.w.WriteHeader(statusCode)
		c.wroteHeader = true
	}
}

func (c *CaptureResponseWriter) Write(b []byte) (int, error) {
	c.buf.Write(b)
	return c.w.Write(b)
}

func (c *CaptureResponseWriter) Status() int {
	return c.statusCode
}

func (c *CaptureResponseWriter) BodyBytes() []byte {
	return c.buf.Bytes()
}

// Idempotent makes a mutating endpoint safe to retry when the client sends
// Idempotency-Key:
//   - first request: the handler runs and its response is stored for 24h
//   - same key, same request: the stored response is replayed
//   - same key, different request: 409
//   - same key while the first is still running: 409
//
// 5xx responses are not stored so the client can retry them. Keys are scoped per company.
func Idempotent(store IdempotencyStore, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		key := r.Header.Get(IdempotencyHeader)
		if key == "" {
			next(w, r, ps)
			return
		}

		userID := PrincipalFrom(r.Context()).UserID
		scope := CompanyFrom(r.Context())

		bodyBytes, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxIdempotentBody))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				utils.RespondWithError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			utils.RespondWithError(w, http.StatusBadRequest, "failed to read request body")
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

		reqHash := computeRequestHash(r, bodyBytes, userID)
		now := time.Now().UTC()
		rec := models.IdempotencyRecord{
			Key:         key,
			Scope:       scope,
			Method:      r.Method,
			Path:        r.URL.Path,
			UserID:      userID,
			RequestHash: reqHash,
			CreatedAt:   now,
			ExpiresAt:   now.Add(idempotencyTTL),
		}

		ctx := r.Context()
		inserted, err := store.Insert(ctx, rec)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "idempotency lookup error")
			return
		}
		if inserted {
			crw := NewCaptureResponseWriter(w)
			next(crw, r, ps)

			if crw.Status() >= http.StatusInternalServerError {
				_ = store.Release(context.WithoutCancel(ctx), scope, key)
				return
			}
			_ = store.SaveResponse(context.WithoutCancel(ctx), scope, key, models.CachedResponse{
				Status:      crw.Status(),
				ContentType: w.Header().Get("Content-Type"),
				Body:        append([]byte(nil), crw.BodyBytes()...),
			})
			return
		}

		existing, err := store.Find(ctx, scope, key)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "idempotency lookup error")
			return
		}
		if existing.RequestHash != reqHash {
			utils.RespondWithError(w, http.StatusConflict, "idempotency-key conflict")
			return
		}
		if existing.Response == nil {
			utils.RespondWithError(w, http.StatusConflict, "request with this idempotency-key is still in progress")
			return
		}

		if existing.Response.ContentType != "" {
			w.Header().Set("Content-Type", existing.Response.ContentType)
		}
		w.Header().Set("Idempotent-Replayed", "true")
		w.WriteHeader(existing.Response.Status)
		_, _ = w.Write(existing.Response.Body)
	}
}
