package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	authModel "github.com/festy23/ctf_platform/internal/auth/model"
	"github.com/festy23/ctf_platform/internal/response"
)

const principalKey = "principal"

// Authenticator resolves a raw session token to its principal.
type Authenticator interface {
	Authenticate(ctx context.Context, rawToken string) (authModel.Principal, error)
}

// Auth builds capability guards around handlers.
type Auth struct {
	authenticator Authenticator
	cookieName    string
	logger        *zap.SugaredLogger
}

// NewAuth creates the auth guards. Tokens are read from the Authorization
// bearer header first and from the cookieName cookie otherwise.
func NewAuth(a Authenticator, cookieName string, logger *zap.SugaredLogger) *Auth {
	return &Auth{authenticator: a, cookieName: cookieName, logger: logger}
}

// Authenticate resolves the caller's session if there is one. Requests
// without a valid session pass through anonymously.
func (a *Auth) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		a.resolve(c)
		c.Next()
	}
}

// RequireUser rejects requests without a user session.
func (a *Auth) RequireUser() gin.HandlerFunc {
	return a.require(func(p authModel.Principal) error {
		if p.IsUser() {
			return nil
		}
		if p.IsAdmin() {
			return authModel.ErrUserRequired
		}
		return authModel.ErrNotLoggedIn
	})
}

// RequireAdmin rejects requests without an admin session.
func (a *Auth) RequireAdmin() gin.HandlerFunc {
	return a.require(func(p authModel.Principal) error {
		if p.IsAdmin() {
			return nil
		}
		return authModel.ErrAdminRequired
	})
}

// RequireAny rejects requests without a user or admin session.
func (a *Auth) RequireAny() gin.HandlerFunc {
	return a.require(func(p authModel.Principal) error {
		if p.IsUser() || p.IsAdmin() {
			return nil
		}
		return authModel.ErrAdminRequired
	})
}

func (a *Auth) require(check func(authModel.Principal) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := a.resolve(c); err != nil {
			response.Error(c, a.logger, err)
			return
		}

		p, _ := PrincipalFrom(c)
		if err := check(p); err != nil {
			response.Error(c, a.logger, err)
			return
		}
		c.Next()
	}
}

// resolve stores the principal in c. It only fails when the session store
// cannot be reached; an invalid token leaves the request anonymous.
func (a *Auth) resolve(c *gin.Context) error {
	if _, ok := PrincipalFrom(c); ok {
		return nil
	}

	raw := TokenFrom(c, a.cookieName)
	if raw == "" {
		return nil
	}

	p, err := a.authenticator.Authenticate(c.Request.Context(), raw)
	if err != nil {
		if errors.Is(err, authModel.ErrNotLoggedIn) {
			return nil
		}
		return err
	}

	SetPrincipal(c, p)
	return nil
}

// TokenFrom extracts the session token from the request.
func TokenFrom(c *gin.Context, cookieName string) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie
	}
	return ""
}

// SetPrincipal stores the authenticated principal in c.
func SetPrincipal(c *gin.Context, p authModel.Principal) {
	c.Set(principalKey, p)
}

// PrincipalFrom returns the principal stored by the auth guards.
func PrincipalFrom(c *gin.Context) (authModel.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return authModel.Principal{}, false
	}
	p, ok := v.(authModel.Principal)
	return p, ok
}

// MustPrincipal returns the principal of a guarded route. It panics when
// the route was registered without a guard.
func MustPrincipal(c *gin.Context) authModel.Principal {
	p, ok := PrincipalFrom(c)
	if !ok {
		panic("middleware: route registered without an auth guard")
	}
	return p
}
