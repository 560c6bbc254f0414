package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kkarhua/fullrest-backend/api/responses"
	"github.com/kkarhua/fullrest-backend/internal/auth"
	pkgerrors "github.com/kkarhua/fullrest-backend/pkg/errors"
	"github.com/kkarhua/fullrest-backend/pkg/logger"
)

// maxLoginBody caps how much of the login body is buffered for keying.
const maxLoginBody = 64 << 10

type windowCounter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// LoginThrottle counts login attempts per client IP and per account email in
// fixed windows. A zero limit disables that dimension.
type LoginThrottle struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
	onBlocked  func(dimension string)
}

func NewLoginThrottle(name string, window time.Duration, ipLimit, emailLimit int) LoginThrottle {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "login"
	}
	return LoginThrottle{name: name, window: window, ipLimit: ipLimit, emailLimit: emailLimit}
}

// OnBlocked returns a copy that calls fn with "ip" or "email" on every
// rejected attempt.
func (t LoginThrottle) OnBlocked(fn func(dimension string)) LoginThrottle {
	t.onBlocked = fn
	return t
}

func (t LoginThrottle) enabled() bool {
	return t.window > 0 && (t.ipLimit > 0 || t.emailLimit > 0)
}

// bucket is one counter an attempt is charged against.
type bucket struct {
	dimension string
	key       string
	limit     int
	logField  string
	logValue  string
}

// buckets lists the counters for an attempt. The email is hashed so raw
// addresses never reach Redis or the logs.
func (t LoginThrottle) buckets(ip string, login auth.LoginRequest) []bucket {
	var out []bucket
	if t.ipLimit > 0 && ip != "" {
		out = append(out, bucket{
			dimension: "ip",
			key:       t.name + ":ip:" + ip,
			limit:     t.ipLimit,
			logField:  "ip",
			logValue:  ip,
		})
	}
	if email := strings.ToLower(strings.TrimSpace(login.Email)); t.emailLimit > 0 && email != "" {
		sum := sha256.Sum256([]byte(email))
		digest := hex.EncodeToString(sum[:])
		out = append(out, bucket{
			dimension: "email",
			key:       t.name + ":email:" + digest,
			limit:     t.emailLimit,
			logField:  "email_hash",
			logValue:  digest,
		})
	}
	return out
}

// Middleware charges each attempt against its buckets before the login
// handler runs. It is a no-op when the throttle is disabled or store is nil.
func (t LoginThrottle) Middleware(store windowCounter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !t.enabled() || store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var login auth.LoginRequest
			if t.emailLimit > 0 {
				var err error
				if login, err = peekLogin(r); err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
					return
				}
			}

			for _, b := range t.buckets(remoteIP(r), login) {
				allowed, count, err := store.FixedWindowAllow(ctx, b.key, int64(b.limit), t.window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if !allowed {
					t.reject(ctx, logg, w, b, count)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (t LoginThrottle) reject(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, b bucket, count int64) {
	if t.onBlocked != nil {
		t.onBlocked(b.dimension)
	}
	if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{
			"throttle":       t.name,
			"dimension":      b.dimension,
			"attempts":       count,
			"limit":          b.limit,
			"window_seconds": int(t.window.Seconds()),
			b.logField:       b.logValue,
		})
		logg.Warn(ctx, "auth.login.throttled")
	}
	w.Header().Set("Retry-After", strconv.Itoa(int(t.window.Seconds())))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
}

// peekLogin decodes the login payload and restores the body for the handler.
// A body that is not a login object yields an empty request, leaving the
// handler to report the validation error.
func peekLogin(r *http.Request) (auth.LoginRequest, error) {
	var login auth.LoginRequest
	if r.Body == nil {
		return login, nil
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxLoginBody))
	if err != nil {
		return login, err
	}
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(raw), r.Body))
	_ = json.Unmarshal(raw, &login)
	return login, nil
}

// remoteIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// socket peer.
func remoteIP(r *http.Request) string {
	if first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ","); strings.TrimSpace(first) != "" {
		return strings.TrimSpace(first)
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
