package credentials

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expiryLeeway triggers a refresh slightly before the token actually lapses.
const expiryLeeway = 60 * time.Second

// Token is a cached bearer token pair from the service's auth endpoint.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// NewToken builds a Token from an auth response. When the access token is a
// JWT carrying an exp claim, that claim wins over expiresIn; the token is not
// signature-verified here since it is opaque bearer material for this client.
func NewToken(access, refresh string, expiresIn int, now time.Time) Token {
	t := Token{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    now.Add(time.Duration(expiresIn) * time.Second),
	}
	if exp, ok := jwtExpiry(access); ok {
		t.ExpiresAt = exp
	}
	return t
}

// Valid reports whether the access token is still usable at now, with a
// leeway so calls in flight do not race the expiry.
func (t Token) Valid(now time.Time) bool {
	if t.AccessToken == "" {
		return false
	}
	return now.Before(t.ExpiresAt.Add(-expiryLeeway))
}

func jwtExpiry(access string) (time.Time, bool) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(access, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
