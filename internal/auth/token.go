package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var parseJWT = func(tokenStr string, keyFunc jwt.Keyfunc, opts ...jwt.ParserOption) (*jwt.Token, error) {
	return jwt.NewParser(opts...).Parse(tokenStr, keyFunc)
}

var (
	ErrMalformed    = errors.New("malformed token")
	ErrBadSignature = errors.New("invalid token signature")
	ErrExpired      = errors.New("token expired")
)

// Identity is the resolved caller, derived fresh from a token on every
// request. It is never cached server-side.
type Identity struct {
	UserID   uint
	Username string
	IsGuest  bool
}

// Codec issues and verifies signed, expiring identity tokens. The server
// keeps no record of issued tokens; validity is fully determined by the
// signature and the expiry claim.
type Codec struct {
	secret   []byte
	lifetime time.Duration
}

func NewCodec(secret string, lifetime time.Duration) *Codec {
	return &Codec{secret: []byte(secret), lifetime: lifetime}
}

// Issue signs a token carrying the given identity, valid for the codec's
// configured lifetime starting at now.
func (c *Codec) Issue(username string, userID uint, isGuest bool, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":   username,
		"uid":   userID,
		"guest": isGuest,
		"iat":   now.Unix(),
		"exp":   now.Add(c.lifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify checks the token's signature and expiry against now and returns the
// embedded Identity. It performs no I/O.
func (c *Codec) Verify(tokenStr string, now time.Time) (Identity, error) {
	token, err := parseJWT(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Identity{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return Identity{}, ErrBadSignature
		default:
			return Identity{}, ErrMalformed
		}
	}
	if !token.Valid {
		return Identity{}, ErrBadSignature
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrMalformed
	}
	return identityFromClaims(claims)
}

func identityFromClaims(claims jwt.MapClaims) (Identity, error) {
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return Identity{}, ErrMalformed
	}
	// JWT numbers decode as float64
	uid, ok := claims["uid"].(float64)
	if !ok || uid <= 0 {
		return Identity{}, ErrMalformed
	}
	guest, _ := claims["guest"].(bool)
	return Identity{UserID: uint(uid), Username: sub, IsGuest: guest}, nil
}
