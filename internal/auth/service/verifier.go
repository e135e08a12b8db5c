package service

import (
	"context"
	"crypto/rsa"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	authDomain "github.com/allisson/entitygate/internal/auth/domain"
	"github.com/allisson/entitygate/internal/config"
	apperrors "github.com/allisson/entitygate/internal/errors"
)

// jwtVerifier implements Verifier using JWT signature verification. It
// supports HS256 with a shared secret or RS256 with a configured public key;
// the key material is supplied configuration, never generated here.
type jwtVerifier struct {
	keyFunc  jwt.Keyfunc
	methods  []string
	issuer   string
	audience string
}

// NewJWTVerifier creates a Verifier from the JWT configuration. Exactly one
// of JWTHMACSecret or JWTRSAPublicKey must be set.
func NewJWTVerifier(cfg *config.Config) (Verifier, error) {
	switch {
	case cfg.JWTHMACSecret != "" && cfg.JWTRSAPublicKey != "":
		return nil, fmt.Errorf("both JWT_HMAC_SECRET and JWT_RSA_PUBLIC_KEY are set; pick one")

	case cfg.JWTHMACSecret != "":
		secret := []byte(cfg.JWTHMACSecret)
		return &jwtVerifier{
			keyFunc:  func(*jwt.Token) (any, error) { return secret, nil },
			methods:  []string{jwt.SigningMethodHS256.Alg()},
			issuer:   cfg.JWTIssuer,
			audience: cfg.JWTAudience,
		}, nil

	case cfg.JWTRSAPublicKey != "":
		publicKey, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.JWTRSAPublicKey))
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_RSA_PUBLIC_KEY: %w", err)
		}
		return newRSAVerifier(publicKey, cfg), nil

	default:
		return nil, fmt.Errorf("no JWT verification key configured")
	}
}

func newRSAVerifier(publicKey *rsa.PublicKey, cfg *config.Config) Verifier {
	return &jwtVerifier{
		keyFunc:  func(*jwt.Token) (any, error) { return publicKey, nil },
		methods:  []string{jwt.SigningMethodRS256.Alg()},
		issuer:   cfg.JWTIssuer,
		audience: cfg.JWTAudience,
	}
}

// Verify parses and validates the token and maps it to an identity assertion.
func (v *jwtVerifier) Verify(ctx context.Context, token string) (*authDomain.IdentityAssertion, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods(v.methods),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		options = append(options, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		options = append(options, jwt.WithAudience(v.audience))
	}

	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, v.keyFunc, options...); err != nil {
		return nil, apperrors.Wrap(authDomain.ErrVerification, err.Error())
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, apperrors.Wrap(authDomain.ErrVerification, "token has no subject")
	}

	expiry, err := claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return nil, apperrors.Wrap(authDomain.ErrVerification, "token has no expiry")
	}

	issuer, _ := claims.GetIssuer()

	return &authDomain.IdentityAssertion{
		Token:     token,
		SubjectID: subject,
		Issuer:    issuer,
		ExpiresAt: expiry.Time.UTC(),
		Claims:    claims,
	}, nil
}
