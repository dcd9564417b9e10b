package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/kunalverma/groupbuy-backend/api/responses"
	pkgerrors "github.com/kunalverma/groupbuy-backend/pkg/errors"
	"github.com/kunalverma/groupbuy-backend/pkg/logger"
	pkgredis "github.com/kunalverma/groupbuy-backend/pkg/redis"
)

const (
	defaultIdempotencyTTL  = 24 * time.Hour
	criticalIdempotencyTTL = 7 * 24 * time.Hour
)

type idempotencyRule struct {
	method string
	match  func(pattern string) bool
	ttl    time.Duration
}

// Endpoints that must tolerate client retries. Money-moving routes keep
// their records for a week, everything else for a day.
var idempotencyRules = []idempotencyRule{
	{http.MethodPost, exactPath("/api/v1/retailers/register"), defaultIdempotencyTTL},
	{http.MethodPost, pathAround("/api/v1/notifications/", "/read"), defaultIdempotencyTTL},
	{http.MethodPost, exactPath("/api/v1/notifications/read-all"), defaultIdempotencyTTL},
	{http.MethodPost, exactPath("/api/v1/orders"), criticalIdempotencyTTL},
	{http.MethodPost, exactPath("/api/v1/admin/payments"), criticalIdempotencyTTL},
	{http.MethodPost, pathAround("/api/v1/payments/", "/dispute"), criticalIdempotencyTTL},
	{http.MethodPost, pathAround("/api/v1/admin/payments/", "/resolve"), criticalIdempotencyTTL},
}

// idempotencyRecord is the replayable response stored in Redis. The request
// hash pins the record to the original body so a reused key with a
// different payload is rejected instead of silently answered.
type idempotencyRecord struct {
	Status      int               `json:"status"`
	Body        string            `json:"body"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequestHash string            `json:"request_hash"`
}

// Idempotency replays the stored response for a repeated Idempotency-Key on
// guarded routes. Server errors are never stored, so a retry after a 5xx
// reaches the handler again.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		guard := idempotencyGuard{store: store, logg: logg, next: next}
		return http.HandlerFunc(guard.serve)
	}
}

type idempotencyGuard struct {
	store pkgredis.IdempotencyStore
	logg  *logger.Logger
	next  http.Handler
}

func (g idempotencyGuard) serve(w http.ResponseWriter, r *http.Request) {
	ttl, guarded := ttlFor(r.Method, routePattern(r))
	if !guarded || g.store == nil {
		g.next.ServeHTTP(w, r)
		return
	}

	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key == "" {
		responses.WriteError(r.Context(), g.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		responses.WriteError(r.Context(), g.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	digest := requestDigest(body)
	storeKey := g.store.IdempotencyKey(scopeFor(r), key)

	stored, err := g.store.Get(r.Context(), storeKey)
	if err != nil && !errors.Is(err, redis.Nil) {
		responses.WriteError(r.Context(), g.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
		return
	}
	if stored != "" {
		g.replay(w, r, stored, digest)
		return
	}

	capture := &responseCapture{ResponseWriter: w}
	g.next.ServeHTTP(capture, r)
	g.persist(r, capture, digest, storeKey, ttl)
}

func (g idempotencyGuard) replay(w http.ResponseWriter, r *http.Request, stored, digest string) {
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		responses.WriteError(r.Context(), g.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	if record.RequestHash != digest {
		responses.WriteError(r.Context(), g.logg, w, pkgerrors.New(pkgerrors.CodeConflict, "idempotency key reused with different request body"))
		return
	}

	if ct := record.Headers["Content-Type"]; ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(record.Status)
	if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

func (g idempotencyGuard) persist(r *http.Request, capture *responseCapture, digest, storeKey string, ttl time.Duration) {
	status := capture.status
	if status == 0 {
		status = http.StatusOK
	}
	if status >= http.StatusInternalServerError {
		return
	}

	record := idempotencyRecord{
		Status:      status,
		Body:        base64.StdEncoding.EncodeToString(capture.body.Bytes()),
		RequestHash: digest,
	}
	if ct := capture.Header().Get("Content-Type"); ct != "" {
		record.Headers = map[string]string{"Content-Type": ct}
	}

	payload, err := json.Marshal(record)
	if err != nil {
		g.logError(r, "marshal idempotency record", err)
		return
	}
	if _, err := g.store.SetNX(r.Context(), storeKey, string(payload), ttl); err != nil {
		g.logError(r, "persist idempotency record", err)
	}
}

func (g idempotencyGuard) logError(r *http.Request, msg string, err error) {
	if g.logg != nil {
		g.logg.Error(r.Context(), msg, err)
	}
}

// scopeFor namespaces records per caller, so two retailers reusing the same
// key value never collide.
func scopeFor(r *http.Request) string {
	return strings.Join([]string{
		PhoneFromContext(r.Context()),
		RetailerIDFromContext(r.Context()),
		r.Method,
		r.URL.Path,
	}, "|")
}

func requestDigest(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

func ttlFor(method, pattern string) (time.Duration, bool) {
	if pattern == "" {
		return 0, false
	}
	for _, rule := range idempotencyRules {
		if rule.method == method && rule.match(pattern) {
			return rule.ttl, true
		}
	}
	return 0, false
}

func exactPath(path string) func(string) bool {
	return func(pattern string) bool {
		return strings.TrimSuffix(pattern, "/") == path
	}
}

func pathAround(prefix, suffix string) func(string) bool {
	return func(pattern string) bool {
		return strings.HasPrefix(pattern, prefix) && strings.HasSuffix(pattern, suffix)
	}
}

type responseCapture struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (rc *responseCapture) WriteHeader(status int) {
	rc.status = status
	rc.ResponseWriter.WriteHeader(status)
}

func (rc *responseCapture) Write(payload []byte) (int, error) {
	rc.body.Write(payload)
	return rc.ResponseWriter.Write(payload)
}
