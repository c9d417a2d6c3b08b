package mockapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const userIDKey = "userID"

// issueToken mints an HS256 token with the account id as subject.
func (s *Server) issueToken(a *account) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub": formatID(a.ID),
		"iat": now.Unix(),
		"exp": now.Add(24 * time.Hour).Unix(),
	}
	if a.Admin {
		claims["role"] = "admin"
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// authenticate validates the bearer token and stashes the account id on the
// request context.
func (s *Server) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return fail(c, http.StatusUnauthorized, "NOT_AUTHENTICATED", "Authorization header is missing")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return fail(c, http.StatusUnauthorized, "NOT_AUTHENTICATED", "Invalid token format, must be Bearer token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
			return s.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			return fail(c, http.StatusUnauthorized, "SESSION_EXPIRED", "Invalid or expired token")
		}

		subject, err := token.Claims.GetSubject()
		if err != nil {
			return fail(c, http.StatusUnauthorized, "SESSION_EXPIRED", "Token carries no subject")
		}
		userID, err := strconv.ParseInt(subject, 10, 64)
		if err != nil {
			return fail(c, http.StatusUnauthorized, "SESSION_EXPIRED", "Invalid subject in token")
		}

		s.store.mu.Lock()
		_, exists := s.store.accounts[userID]
		s.store.mu.Unlock()
		if !exists {
			return fail(c, http.StatusUnauthorized, "SESSION_EXPIRED", "Unknown account")
		}

		c.Set(userIDKey, userID)

		return next(c)
	}
}

// requireAdmin gates admin routes. Must run after authenticate.
func (s *Server) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		a := s.currentAccount(c)
		if a == nil || !a.Admin {
			return fail(c, http.StatusForbidden, "FORBIDDEN", "admin access required")
		}

		return next(c)
	}
}

// currentAccount resolves the authenticated account, or nil.
func (s *Server) currentAccount(c echo.Context) *account {
	userID, ok := c.Get(userIDKey).(int64)
	if !ok {
		return nil
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	return s.store.accounts[userID]
}
