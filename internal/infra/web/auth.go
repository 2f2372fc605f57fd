package web

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"heartlink/internal/config"
	"heartlink/internal/domain"
	"heartlink/internal/infra/logging"
)

type ctxKey string

const ctxUserID ctxKey = "auth_user_id"

// TokenPair is what register and login hand back to the client.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // seconds until the access token expires
}

// AuthManager mints and parses the HMAC-signed JWTs used on every
// authenticated route.
type AuthManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthManager(cfg config.AuthConfig) *AuthManager {
	return &AuthManager{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}
}

type claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"typ"`
}

func (a *AuthManager) Mint(userID string) (TokenPair, error) {
	access, err := a.sign(userID, "access", a.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := a.sign(userID, "refresh", a.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(a.accessTTL.Seconds()),
	}, nil
}

func (a *AuthManager) sign(userID, typ string, ttl time.Duration) (string, error) {
	now := time.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TokenType: typ,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(a.secret)
}

// Parse validates an access token and returns the user id it carries.
func (a *AuthManager) Parse(token string) (string, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrUnauthorized
		}
		return a.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", domain.ErrUnauthorized
	}
	if c.TokenType != "access" || c.Subject == "" {
		return "", domain.ErrUnauthorized
	}
	return c.Subject, nil
}

// RequireAuth rejects requests without a valid bearer token and stores the
// user id in the request context.
func (a *AuthManager) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, domain.ErrUnauthorized)
			return
		}
		userID, err := a.Parse(token)
		if err != nil {
			writeError(w, domain.ErrUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserID, userID)
		ctx = logging.WithUserID(ctx, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	// The WebSocket handshake can't set headers from browsers, so /ws accepts
	// the token as a query parameter.
	return r.URL.Query().Get("token")
}

// UserIDFrom returns the authenticated user id stored by RequireAuth, or ""
// when the request did not pass through it.
func UserIDFrom(ctx context.Context) string {
	if v := ctx.Value(ctxUserID); v != nil {
		return v.(string)
	}
	return ""
}

func userIDFrom(ctx context.Context) string { return UserIDFrom(ctx) }
