package server

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"

	"github.com/IstiaqueAhmd/fitness-agent/internal/config"
)

// ResolvedAuth holds the resolved auth configuration for the API.
type ResolvedAuth struct {
	Mode  string // "token" | "open"
	Token string
}

// ResolveAuth resolves the API token from config and environment.
// Precedence: config value, then FITBOT_API_TOKEN. An empty token leaves
// the API open, which is the expected setup for loopback binds.
func ResolveAuth(cfg config.ServerAuth) ResolvedAuth {
	token := cfg.Token
	if token == "" {
		token = os.Getenv("FITBOT_API_TOKEN")
	}
	if token == "" {
		return ResolvedAuth{Mode: "open"}
	}
	return ResolvedAuth{Mode: "token", Token: token}
}

// authorize checks the request's bearer token against the resolved auth.
func (a ResolvedAuth) authorize(r *http.Request) bool {
	if a.Mode == "open" {
		return true
	}
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	return safeEqual(token, a.Token)
}

// safeEqual performs a constant-time string comparison to prevent timing attacks.
// It avoids early-return on length mismatch to prevent leaking secret length via timing.
func safeEqual(a, b string) bool {
	lenMatch := subtle.ConstantTimeEq(int32(len(a)), int32(len(b)))
	cmp := subtle.ConstantTimeCompare([]byte(a), []byte(b))
	return subtle.ConstantTimeSelect(lenMatch, cmp, 0) == 1
}
