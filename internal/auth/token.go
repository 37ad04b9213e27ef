package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the account variant a token asserts.
type Role string

const (
	RoleUser       Role = "user"
	RoleEmployer   Role = "employer"
	RoleVendor     Role = "vendor"
	RoleSuperAdmin Role = "superadmin"
)

// Recognized reports whether the role is one of the four account variants.
func (r Role) Recognized() bool {
	switch r {
	case RoleUser, RoleEmployer, RoleVendor, RoleSuperAdmin:
		return true
	}
	return false
}

// ErrInvalidToken covers every decode failure: bad signature, malformed
// structure, or expiry. Callers get one undifferentiated error so a 401
// never leaks which check failed.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the token payload: subject id plus declared role.
type Claims struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
	jwt.RegisteredClaims
}

// Codec signs and verifies bearer tokens with a process-wide secret.
// Construct it once at startup and inject it; never rebuild per request.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Issue produces a signed token asserting {id, role} for the given ttl.
func (c *Codec) Issue(id string, role Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		ID:   id,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Decode verifies a token and returns its claims. All failures collapse
// into ErrInvalidToken.
func (c *Codec) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.ID) == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
