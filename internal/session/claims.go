package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainerrors "github.com/eventdeck/eventdeck-client/internal/errors"
)

// Claims is the readable part of a bearer token. The client never holds the
// signing key, so nothing here is verified.
type Claims struct {
	Subject     string
	Username    string
	Authorities []string
	IssuedAt    time.Time
	ExpiresAt   time.Time // zero when the token carries no exp claim
}

// Expired reports whether the token is past its exp claim at now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// ParseClaims decodes a JWT without checking its signature. Opaque tokens
// yield a VALIDATION error.
func ParseClaims(token string) (Claims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return Claims{}, domainerrors.Wrap(err, domainerrors.CodeValidation, "token is not a JWT")
	}

	var c Claims
	c.Subject, _ = mc.GetSubject()
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	if name, ok := mc["username"].(string); ok {
		c.Username = name
	}
	c.Authorities = stringList(mc["authorities"])
	if len(c.Authorities) == 0 {
		c.Authorities = stringList(mc["roles"])
	}
	return c, nil
}

// stringList accepts ["ROLE_X"], [{"authority": "ROLE_X"}] and "ROLE_X".
func stringList(v any) []string {
	switch v := v.(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			switch item := item.(type) {
			case string:
				out = append(out, item)
			case map[string]any:
				if a, ok := item["authority"].(string); ok {
					out = append(out, a)
				}
			}
		}
		return out
	}
	return nil
}
