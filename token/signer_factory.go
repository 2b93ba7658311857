package token

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/flow-client/internal/config"
	"github.com/pkg/errors"
)

// NewSigner picks the access token signer named by the configured algorithm.
func NewSigner(cfg config.TokenConfig) (Signer, error) {
	switch alg := cfg.GetJWTAlgorithm(); alg {
	case "", jwt.SigningMethodHS256.Alg():
		if cfg.GetSecretKey() == "" {
			return nil, errors.New("SECRET_KEY is required for HS256")
		}
		return NewHMACSigner(cfg.GetSecretKey()), nil

	case jwt.SigningMethodRS256.Alg():
		keyPair, err := LoadOrCreateRSAKeyPair(cfg.GetSigningKeyPath())
		if err != nil {
			return nil, errors.Wrap(err, "failed to load RS256 key")
		}
		return NewKeyPairSigner(keyPair), nil

	default:
		return nil, errors.Errorf("unsupported signing algorithm: %s", alg)
	}
}
