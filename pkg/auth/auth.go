package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yhk1105/114-1-DBFinal/pkg/model"
)

// Claims represents the JWT claims.
type Claims struct {
	MemberID int64  `json:"member_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

const TokenExpiry = 7 * 24 * time.Hour

type Resolver struct {
	Secret []byte
}

// Resolve turns a bearer token into the member identity.
// Any failure is reported as model.ErrUnauthenticated.
func (r *Resolver) Resolve(token string) (model.Identity, error) {
	if token == "" {
		return model.Identity{}, model.ErrUnauthenticated
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return r.Secret, nil
	})
	if err != nil {
		return model.Identity{}, fmt.Errorf("%w: %w", model.ErrUnauthenticated, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.MemberID <= 0 {
		return model.Identity{}, fmt.Errorf("%w: invalid claims", model.ErrUnauthenticated)
	}

	role := claims.Role
	if role == "" {
		role = model.RoleMember
	}

	return model.Identity{MemberID: claims.MemberID, Role: role}, nil
}

// Issue signs a token for the member. Used by the seeder and tests, token issuance itself lives elsewhere.
func (r *Resolver) Issue(memberID int64, role string) (string, error) {
	if len(r.Secret) == 0 {
		return "", errors.New("empty secret")
	}

	now := time.Now()
	claims := Claims{
		MemberID: memberID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.Secret)
	if err != nil {
		return "", fmt.Errorf("can't sign token: %w", err)
	}

	return signed, nil
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored by WithIdentity, or model.ErrUnauthenticated.
func FromContext(ctx context.Context) (model.Identity, error) {
	id, ok := ctx.Value(ctxKey{}).(model.Identity)
	if !ok {
		return model.Identity{}, model.ErrUnauthenticated
	}
	return id, nil
}
