package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrExpiredToken   = errors.New("token has expired")
	ErrMalformedToken = errors.New("token is malformed")
)

// Claims carries the principal id next to the registered exp/iat/iss claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"id"`
}

// TokenCodec signs and verifies HMAC tokens. It holds no per-token state.
type TokenCodec struct {
	secret []byte
	method jwt.SigningMethod
	issuer string
	now    func() time.Time
}

// NewTokenCodec accepts HS256, HS384 and HS512.
func NewTokenCodec(secret, method, issuer string) (*TokenCodec, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	m, ok := jwt.GetSigningMethod(method).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported jwt signing method %q", method)
	}
	return &TokenCodec{
		secret: []byte(secret),
		method: m,
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// WithClock replaces the time source used for issuing and validating.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	c.now = now
	return c
}

// Issue returns a token for userID valid for ttl, and its expiry.
func (c *TokenCodec) Issue(userID int64, ttl time.Duration) (string, time.Time, error) {
	now := c.now()
	expiresAt := jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(c.method, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: expiresAt,
		},
		UserID: userID,
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt.Time, nil
}

// Decode verifies signature, algorithm, issuer and expiry. A token is
// expired once now reaches exp.
func (c *TokenCodec) Decode(tokenString string) (Claims, error) {
	claims := Claims{}

	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(c.issuer),
		jwt.WithTimeFunc(c.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, fmt.Errorf("%w: %v", ErrExpiredToken, err)
	case err != nil:
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	case claims.UserID <= 0:
		return Claims{}, fmt.Errorf("%w: missing principal id", ErrMalformedToken)
	}
	return claims, nil
}
