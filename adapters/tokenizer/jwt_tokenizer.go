package tokenizer

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/layer-3/walletgate/core"
	"github.com/layer-3/walletgate/ports"
)

// AudienceAccess marks access tokens so other token kinds can never pass
// the middleware.
const AudienceAccess = "session:access"

// DefaultAccessExpiry is the default access token lifetime
const DefaultAccessExpiry = 15 * time.Minute

// JWTTokenizer implements ports.Tokenizer with HS256-signed JWTs.
type JWTTokenizer struct {
	secret []byte
	expiry time.Duration
}

// NewJWTTokenizer creates a tokenizer signing with the given secret.
func NewJWTTokenizer(secret []byte, expiry time.Duration) (ports.Tokenizer, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("jwt secret must not be empty")
	}
	if expiry <= 0 {
		expiry = DefaultAccessExpiry
	}
	return &JWTTokenizer{secret: secret, expiry: expiry}, nil
}

// IssueAccessToken signs a credential for the authenticated user.
func (j *JWTTokenizer) IssueAccessToken(user *core.User) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{AudienceAccess},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.expiry)),
		},
		WalletAddress: user.WalletAddress,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// ParseAccessToken verifies the signature, expiry and audience of a token.
func (j *JWTTokenizer) ParseAccessToken(tokenStr string) (*ports.AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithAudience(AudienceAccess))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, core.ErrUnauthorized
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok {
		return nil, fmt.Errorf("invalid claims type")
	}

	return &ports.AccessClaims{
		Subject:       claims.Subject,
		WalletAddress: claims.WalletAddress,
	}, nil
}
