package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "agrocert/pkg/domain-errors"
)

// Claims is the identity claim issued by the auth gateway.
type Claims struct {
	UserID      string          `json:"user_id"`
	Role        string          `json:"role"`
	Permissions map[string]bool `json:"permissions,omitempty"`
	Comunidades []string        `json:"comunidades,omitempty"`
	jwt.RegisteredClaims
}

// JWTService verifies gateway tokens. Issuing is only used by local tooling and tests.
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewJWTService(signingKey string, issuer string, audience string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// TokenInput describes the identity to embed in a token.
type TokenInput struct {
	UserID      uuid.UUID
	Role        string
	Permissions map[string]bool
	Comunidades []uuid.UUID
}

func (s *JWTService) GenerateAccessToken(in TokenInput, expiresIn time.Duration) (string, error) {
	comunidades := make([]string, 0, len(in.Comunidades))
	for _, c := range in.Comunidades {
		comunidades = append(comunidades, c.String())
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:      in.UserID.String(),
		Role:        in.Role,
		Permissions: in.Permissions,
		Comunidades: comunidades,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithAudience(s.audience))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}
