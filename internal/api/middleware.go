package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	authCookieName     = "totoro_auth"
	authTokenQueryKey  = "token"
	ownerSubject       = "owner"
	contextLanguageKey = "lang"
	contextMessagesKey = "messages"
)

var errMissingToken = errors.New("missing auth token")

type ownerClaims struct {
	jwt.RegisteredClaims
}

// LanguageMiddleware resolves the response language: an explicit ?lang wins,
// then the stored profile preference, then Accept-Language.
func (handler *Handler) LanguageMiddleware(c *fiber.Ctx) error {
	language := ""
	if requested := strings.TrimSpace(c.Query("lang")); requested != "" {
		language = handler.i18n.NormalizeLanguage(requested)
	}
	if language == "" {
		if profile, err := handler.settings.LoadSettings(); err == nil && profile.Language != "" {
			language = handler.i18n.NormalizeLanguage(profile.Language)
		}
	}
	if language == "" {
		language = handler.i18n.DetectFromAcceptLanguage(c.Get(fiber.HeaderAcceptLanguage))
	}

	c.Locals(contextLanguageKey, language)
	c.Locals(contextMessagesKey, handler.i18n.Messages(language))
	return c.Next()
}

// AuthRequired enforces the owner lock. With no passphrase configured every
// request passes.
func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	locked, err := handler.auth.Locked()
	if err != nil {
		return handler.serviceError(c, err)
	}
	if !locked {
		return c.Next()
	}

	if err := handler.authenticateRequest(c); err != nil {
		return apiError(c, fiber.StatusUnauthorized, "error.unauthorized")
	}
	return c.Next()
}

func (handler *Handler) authenticateRequest(c *fiber.Ctx) error {
	rawToken := requestToken(c)
	if rawToken == "" {
		return errMissingToken
	}

	claims := &ownerClaims{}
	token, err := jwt.ParseWithClaims(rawToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return handler.secretKey, nil
	}, jwt.WithTimeFunc(handler.now))
	if err != nil || !token.Valid {
		return errors.New("invalid token")
	}
	if claims.Subject != ownerSubject {
		return errors.New("unexpected token subject")
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(handler.now()) {
		return errors.New("token expired")
	}
	return nil
}

// requestToken looks at the bearer header, then the auth cookie. Calendar
// clients cannot send headers, so the feed also accepts ?token=.
func requestToken(c *fiber.Ctx) string {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(header) > len("Bearer ") && strings.EqualFold(header[:len("Bearer ")], "Bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	if cookie := strings.TrimSpace(c.Cookies(authCookieName)); cookie != "" {
		return cookie
	}
	if strings.HasSuffix(c.Path(), ".ics") {
		return strings.TrimSpace(c.Query(authTokenQueryKey))
	}
	return ""
}

func (handler *Handler) buildToken(ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	now := handler.now()
	expiresAt := now.Add(ttl)

	claims := ownerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ownerSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(handler.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
