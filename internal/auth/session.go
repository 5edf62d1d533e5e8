package auth

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"codeberg.org/parley/server/internal/logger"
)

const (
	sessionName   = "parley_session"
	sessionKeyVar = "session_key"
)

var (
	sessionStore *sessions.CookieStore

	errMissingCookieSecret = errors.New("COOKIE_SECRET must be set")
)

// sets up the cookie store for anonymous session tracking
func InitializeSessionStore() error {
	secret := os.Getenv("COOKIE_SECRET")
	if secret == "" {
		return errMissingCookieSecret
	}

	sessionStore = sessions.NewCookieStore([]byte(secret))

	baseURL := os.Getenv("BASE_URL")
	isHTTPS := strings.HasPrefix(baseURL, "https://")

	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60, // 30 days
		HttpOnly: true,
		Secure:   isHTTPS,
		SameSite: http.SameSiteLaxMode,
	}

	return nil
}

// returns a stable session key for an anonymous caller, minting and
// persisting one in the cookie on first contact. Falls back to the
// client IP when the cookie cannot be written.
func SessionKey(c *gin.Context) string {
	if sessionStore == nil {
		return "ip:" + c.ClientIP()
	}

	session, err := sessionStore.Get(c.Request, sessionName)
	if err != nil {
		// a tampered or stale cookie still yields a fresh session below
		logger.Debug("failed to decode session cookie", "error", err.Error())
	}

	if key, ok := session.Values[sessionKeyVar].(string); ok && key != "" {
		return key
	}

	key := uuid.New().String()
	session.Values[sessionKeyVar] = key

	if err := session.Save(c.Request, c.Writer); err != nil {
		logger.Warn("failed to persist session cookie, using client IP", "error", err.Error())
		return "ip:" + c.ClientIP()
	}

	return key
}
