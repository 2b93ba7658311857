package token

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"os"
	"path/filepath"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const rsaKeyBits = 2048

// KeyPair is an RSA key used for RS256 access tokens.
type KeyPair struct {
	KeyID      string
	PrivateKey *rsa.PrivateKey
}

// GenerateRSAKeyPair creates a fresh key. The key ID is derived from the
// public key so reloading the same key keeps the same ID.
func GenerateRSAKeyPair() (*KeyPair, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate RSA key")
	}
	return newKeyPair(privateKey)
}

func newKeyPair(privateKey *rsa.PrivateKey) (*KeyPair, error) {
	der, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal public key")
	}
	sum := sha256.Sum256(der)
	return &KeyPair{KeyID: hex.EncodeToString(sum[:8]), PrivateKey: privateKey}, nil
}

// ExportPrivateKeyPEM encodes the private key as PKCS#1 PEM.
func (kp *KeyPair) ExportPrivateKeyPEM() []byte {
	return pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(kp.PrivateKey),
	})
}

// LoadRSAKeyPairFromPEM parses a PKCS#1 PEM private key.
func LoadRSAKeyPairFromPEM(data []byte) (*KeyPair, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("failed to decode PEM block")
	}
	privateKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse RSA private key")
	}
	return newKeyPair(privateKey)
}

// LoadOrCreateRSAKeyPair reads the key at path, generating and saving one
// when the file does not exist yet.
func LoadOrCreateRSAKeyPair(path string) (*KeyPair, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		return LoadRSAKeyPairFromPEM(data)
	}
	if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "failed to read signing key %s", path)
	}

	kp, err := GenerateRSAKeyPair()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(err, "failed to create key folder")
	}
	if err := os.WriteFile(path, kp.ExportPrivateKeyPEM(), 0o600); err != nil {
		return nil, errors.Wrapf(err, "failed to write signing key %s", path)
	}
	return kp, nil
}

// KeyPairSigner signs RS256 tokens and stamps them with the key ID.
type KeyPairSigner struct {
	keyPair *KeyPair
}

var _ Signer = (*KeyPairSigner)(nil)

func NewKeyPairSigner(keyPair *KeyPair) *KeyPairSigner {
	return &KeyPairSigner{keyPair: keyPair}
}

func (a *KeyPairSigner) Sign(claims jwt.MapClaims) (string, error) {
	t := jwt.NewWithClaims(a.GetSigningMethod(), claims)
	t.Header["kid"] = a.keyPair.KeyID
	signed, err := t.SignedString(a.keyPair.PrivateKey)
	if err != nil {
		return "", errors.Wrap(err, "[KeyPairSigner.Sign] failed to sign token")
	}
	return signed, nil
}

func (a *KeyPairSigner) GetVerificationKey(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
		return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return &a.keyPair.PrivateKey.PublicKey, nil
}

func (a *KeyPairSigner) GetSigningMethod() jwt.SigningMethod {
	return jwt.SigningMethodRS256
}
