package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/justsurfingit/jobtracker/internal/store"
)

const (
	GuestCookieName = "guest_session"
	ownerKey        = "owner"
)

var ErrUnauthenticated = errors.New("authentication required")

// Claims carried by the bearer token issued by the sign-in provider.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// SessionChecker reports whether a guest session id was issued and is still
// live.
type SessionChecker interface {
	Active(sessionID string) bool
}

// Resolver turns a request into an owner context. Bearer tokens identify
// users. Guests are identified by an issued guest_session cookie only; a
// token for the guest email still needs that cookie.
type Resolver struct {
	Secret     []byte
	GuestEmail string
	GuestTTL   time.Duration

	// Sessions, when set, rejects guest cookies it does not know.
	Sessions SessionChecker
}

func NewResolver(secret, guestEmail string, guestTTL time.Duration) *Resolver {
	return &Resolver{Secret: []byte(secret), GuestEmail: guestEmail, GuestTTL: guestTTL}
}

func (r *Resolver) Resolve(req *http.Request) (store.Owner, error) {
	cookie := ""
	if c, err := req.Cookie(GuestCookieName); err == nil {
		cookie = c.Value
	}

	if raw, ok := bearer(req); ok {
		claims, err := r.Parse(raw)
		if err != nil {
			return store.Owner{}, err
		}
		if r.GuestEmail != "" && strings.EqualFold(claims.Email, r.GuestEmail) {
			return r.guest(cookie)
		}
		return store.UserOwner(claims.Subject), nil
	}
	return r.guest(cookie)
}

// guest resolves the guest session cookie. Every guest gets its own issued
// session, so the shared guest token alone never selects a collection.
func (r *Resolver) guest(cookie string) (store.Owner, error) {
	if cookie == "" {
		return store.Owner{}, ErrUnauthenticated
	}
	if r.Sessions != nil && !r.Sessions.Active(cookie) {
		return store.Owner{}, fmt.Errorf("%w: guest session not found or expired", ErrUnauthenticated)
	}
	return store.GuestOwner(cookie), nil
}

// Parse verifies an HS256 token and returns its claims.
func (r *Resolver) Parse(raw string) (*Claims, error) {
	if len(r.Secret) == 0 {
		return nil, fmt.Errorf("%w: token auth not configured", ErrUnauthenticated)
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return r.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}
	return claims, nil
}

// Sign issues a token for userID. Used by the CLI and tests.
func (r *Resolver) Sign(userID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.Secret)
}

func bearer(req *http.Request) (string, bool) {
	h := req.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(h[7:])
	return tok, tok != ""
}

// Middleware resolves the owner once per request and aborts with 401 when
// there is none.
func (r *Resolver) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, err := r.Resolve(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set(ownerKey, owner)
		c.Next()
	}
}

// OwnerFrom returns the owner stored by Middleware.
func OwnerFrom(c *gin.Context) store.Owner {
	if v, ok := c.Get(ownerKey); ok {
		if o, ok := v.(store.Owner); ok {
			return o
		}
	}
	return store.Owner{}
}

// StartGuest issues a fresh guest session cookie and returns its id.
func (r *Resolver) StartGuest(w http.ResponseWriter) string {
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     GuestCookieName,
		Value:    id,
		MaxAge:   int(r.GuestTTL.Seconds()),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// EndGuest expires the guest session cookie.
func EndGuest(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     GuestCookieName,
		Value:    "",
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
