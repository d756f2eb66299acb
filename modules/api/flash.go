package api

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	flashCookie = "flash"
	flashTTL    = 5 * time.Minute
	flashIssuer = "backlog-api"
)

// Flash levels.
const (
	flashSuccess = "success"
	flashError   = "error"
)

// Flash is a one-shot message shown on the next page view.
type Flash struct {
	Level   string
	Message string
}

type flashClaims struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	jwt.RegisteredClaims
}

// flashSigner stores flash messages in a cookie as an HS256 token, so a
// client cannot forge one.
type flashSigner struct {
	secret []byte
	method jwt.SigningMethod
}

func newFlashSigner(secret string) *flashSigner {
	return &flashSigner{secret: []byte(secret), method: jwt.SigningMethodHS256}
}

func (s *flashSigner) sign(f Flash, now time.Time) (string, error) {
	claims := flashClaims{
		Level:   f.Level,
		Message: f.Message,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    flashIssuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(flashTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(s.method, claims)
	return token.SignedString(s.secret)
}

func (s *flashSigner) parse(raw string) (Flash, error) {
	token, err := jwt.ParseWithClaims(raw, &flashClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithIssuer(flashIssuer))
	if err != nil {
		return Flash{}, err
	}

	claims, ok := token.Claims.(*flashClaims)
	if !ok || !token.Valid {
		return Flash{}, errors.New("invalid flash token")
	}
	return Flash{Level: claims.Level, Message: claims.Message}, nil
}

// set attaches a flash to the response.
func (s *flashSigner) set(c *fiber.Ctx, level, message string) {
	now := time.Now()
	value, err := s.sign(Flash{Level: level, Message: message}, now)
	if err != nil {
		log.Printf("[api] Warning: failed to sign flash message for %s %s: %v", c.Method(), c.Path(), err)
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    value,
		Path:     "/",
		Expires:  now.Add(flashTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// consume reads and clears the pending flash. Tampered or expired cookies are
// dropped silently.
func (s *flashSigner) consume(c *fiber.Ctx) *Flash {
	raw := c.Cookies(flashCookie)
	if raw == "" {
		return nil
	}
	c.ClearCookie(flashCookie)

	f, err := s.parse(raw)
	if err != nil {
		return nil
	}
	return &f
}
