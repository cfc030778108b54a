package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ds124wfegd/learnlink/internal/entity"

	jwt "github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	Role entity.Role `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the numeric id stored in the subject claim.
func (c *Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

type JWTManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewJWTManager(secret string, ttl time.Duration, issuer string) *JWTManager {
	return &JWTManager{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
		now:    time.Now,
	}
}

// Issue signs an HS256 access token for the user.
func (m *JWTManager) Issue(userID int64, role entity.Role) (string, time.Time, error) {
	issuedAt := m.now()
	expiresAt := issuedAt.Add(m.ttl)

	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse validates the token and returns the caller it identifies.
func (m *JWTManager) Parse(tokenStr string) (entity.Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return entity.Principal{}, fmt.Errorf("%w: %v", entity.ErrInvalidToken, err)
	}

	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return entity.Principal{}, entity.ErrInvalidToken
	}
	id, err := c.UserID()
	if err != nil || !c.Role.Valid() {
		return entity.Principal{}, entity.ErrInvalidToken
	}
	return entity.Principal{ID: id, Role: c.Role}, nil
}
