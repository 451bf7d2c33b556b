package mockapi

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/eventdeck/eventdeck-client/internal/auth"
	"github.com/eventdeck/eventdeck-client/internal/domain"
	domainerrors "github.com/eventdeck/eventdeck-client/internal/errors"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

const (
	claimsKey   ctxKey = "claims"
	badTokenKey ctxKey = "bad_token"
)

const msgSessionExpired = "Session expired. Please login again."

// authenticate attaches the claims of a valid bearer token. Requests without
// a token continue anonymously; handlers decide whether that is allowed.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := s.tokens.Verify(token)
		if err != nil {
			ctx := context.WithValue(r.Context(), badTokenKey, true)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) outageGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.outage.Load() {
			writeError(w, domainerrors.Unavailable("backend is down for maintenance"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// caller returns the authenticated account's claims.
func caller(ctx context.Context) (*auth.Claims, error) {
	if claims, ok := ctx.Value(claimsKey).(*auth.Claims); ok {
		return claims, nil
	}
	if bad, _ := ctx.Value(badTokenKey).(bool); bad {
		return nil, huma.Error401Unauthorized(msgSessionExpired)
	}
	return nil, huma.Error401Unauthorized("Authentication required")
}

func callerID(ctx context.Context) (domain.EntityID, error) {
	claims, err := caller(ctx)
	if err != nil {
		return "", err
	}
	return domain.EntityID(claims.Subject), nil
}

func requireAdmin(ctx context.Context) error {
	claims, err := caller(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(claims.Authorities, domain.AuthorityAdmin) {
		return huma.Error403Forbidden("Administrator role required")
	}
	return nil
}

type endpointStats struct {
	count     float64
	totalTime float64
}

// requestStats backs the http.server.requests actuator metric, keyed by
// route pattern.
type requestStats struct {
	mu    sync.Mutex
	byURI map[string]*endpointStats
}

func newRequestStats() *requestStats {
	return &requestStats{byURI: make(map[string]*endpointStats)}
}

func (rs *requestStats) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		rctx := chi.RouteContext(r.Context())
		if rctx == nil {
			return
		}
		pattern := rctx.RoutePattern()
		if pattern == "" || strings.HasPrefix(pattern, "/actuator") {
			return
		}

		rs.mu.Lock()
		defer rs.mu.Unlock()
		st, ok := rs.byURI[pattern]
		if !ok {
			st = &endpointStats{}
			rs.byURI[pattern] = st
		}
		st.count++
		st.totalTime += time.Since(start).Seconds()
	})
}

func (rs *requestStats) uris() []string {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	out := make([]string, 0, len(rs.byURI))
	for uri := range rs.byURI {
		out = append(out, uri)
	}
	slices.Sort(out)
	return out
}

// totals sums the stats of uri, or of every uri when empty.
func (rs *requestStats) totals(uri string) (count, totalTime float64) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	for u, st := range rs.byURI {
		if uri == "" || u == uri {
			count += st.count
			totalTime += st.totalTime
		}
	}
	return count, totalTime
}
