package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

const authCookieName = "khare_auth"

// cookieTokenStore persists the session token for one request. A bearer
// header wins over the cookie on load; Save and Clear only touch the cookie.
type cookieTokenStore struct {
	c      *fiber.Ctx
	secure bool
}

func (store cookieTokenStore) Load() (string, bool) {
	if token := bearerToken(store.c.Get(fiber.HeaderAuthorization)); token != "" {
		return token, true
	}
	token := utils.CopyString(strings.TrimSpace(store.c.Cookies(authCookieName)))
	return token, token != ""
}

func (store cookieTokenStore) Save(token string, expiresAt time.Time) {
	store.c.Cookie(&fiber.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   store.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (store cookieTokenStore) Clear() {
	store.c.Cookie(&fiber.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-1 * time.Hour),
		HTTPOnly: true,
		Secure:   store.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return utils.CopyString(strings.TrimSpace(token))
}
