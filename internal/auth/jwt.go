package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrMalformedToken = errors.New("malformed token")

type Claims struct {
	UserID int64 `json:"id"`
	jwt.RegisteredClaims
}

// Manager issues and checks HS256 tokens carrying a user id. A zero ttl
// issues tokens without an exp claim.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (m *Manager) Issue(userID int64) (string, error) {
	now := m.now().UTC()

	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			Subject:  strconv.FormatInt(userID, 10),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}

	if m.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify reports whether the token is well formed, signed with our secret
// and not past its exp claim. It knows nothing about revocation.
func (m *Manager) Verify(tokenStr string) bool {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(t *jwt.Token) (interface{}, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)

	return err == nil && token.Valid
}

// Decode extracts the user id without checking the signature. Call Verify
// first.
func (m *Manager) Decode(tokenStr string) (int64, error) {
	claims, err := m.DecodeClaims(tokenStr)
	if err != nil {
		return 0, err
	}

	return claims.UserID, nil
}

// DecodeClaims is Decode returning every claim, including the token id used
// for revocation.
func (m *Manager) DecodeClaims(tokenStr string) (*Claims, error) {
	claims := &Claims{}

	_, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	if claims.UserID <= 0 {
		return nil, fmt.Errorf("%w: missing user id", ErrMalformedToken)
	}

	return claims, nil
}
