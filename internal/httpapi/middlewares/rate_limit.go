package middlewares

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"filevault/internal/auth"
	"filevault/internal/metrics"
	"filevault/internal/ratelimit"

	"github.com/labstack/echo/v4"
)

type credentialVerifier interface {
	Verify(c echo.Context, username, password string) (auth.Identity, error)
}

// NewRateLimitMiddleware limits requests per verified Basic-auth user, or per
// client IP when the request carries no valid credentials. Credentials are
// only verified while the client IP still has budget left.
func NewRateLimitMiddleware(verifier credentialVerifier, cfg ratelimit.Config) echo.MiddlewareFunc {
	limiter := ratelimit.New(cfg)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			now := time.Now().UTC()
			scope := requestScope(c.Request().Method)
			ip := clientIP(c)
			ipRule := ratelimit.Rule{Scope: scope, Kind: ratelimit.BucketIP}

			var result ratelimit.Result
			username, password, hasCredentials := c.Request().BasicAuth()
			switch {
			case hasCredentials && verifier != nil:
				if peek := limiter.Peek(now, ipRule, ip); !peek.Allowed {
					return rejectRateLimited(c, peek)
				}
				identity, err := verifier.Verify(c, username, password)
				if err == nil && identity.Username != "" {
					userRule := ratelimit.Rule{Scope: scope, Kind: ratelimit.BucketUser}
					result = limiter.Take(now, userRule, identity.Username)
				} else {
					result = limiter.Take(now, ipRule, ip)
				}
			default:
				result = limiter.Take(now, ipRule, ip)
			}

			if !result.Allowed {
				return rejectRateLimited(c, result)
			}
			if result.Limit > 0 {
				setRateLimitHeaders(c.Response().Header(), result)
			}
			return next(c)
		}
	}
}

func rejectRateLimited(c echo.Context, result ratelimit.Result) error {
	metrics.RecordRateLimitHit()
	setRateLimitHeaders(c.Response().Header(), result)
	c.Response().Header().Set("Retry-After", strconv.FormatInt(result.ResetIn, 10))
	return c.JSON(http.StatusTooManyRequests, map[string]any{
		"status": "Rate limit exceeded",
	})
}

func requestScope(method string) ratelimit.Scope {
	switch strings.ToUpper(strings.TrimSpace(method)) {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ratelimit.ScopeRead
	default:
		return ratelimit.ScopeWrite
	}
}

func clientIP(c echo.Context) string {
	ip := strings.TrimSpace(c.RealIP())
	if ip == "" {
		ip = clientIPFromRemoteAddr(c.Request().RemoteAddr)
	}
	if ip == "" {
		ip = "unknown"
	}
	return ip
}

func setRateLimitHeaders(header http.Header, result ratelimit.Result) {
	limit := strconv.Itoa(result.Limit)
	remaining := strconv.Itoa(result.Remaining)

	header.Set("X-RateLimit-Limit", limit)
	header.Set("X-RateLimit-Remaining", remaining)
	header.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt, 10))

	header.Set("RateLimit-Limit", limit)
	header.Set("RateLimit-Remaining", remaining)
	header.Set("RateLimit-Reset", strconv.FormatInt(result.ResetIn, 10))
}

func clientIPFromRemoteAddr(remoteAddr string) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(remoteAddr))
	if err != nil {
		return strings.TrimSpace(remoteAddr)
	}
	return strings.TrimSpace(host)
}
