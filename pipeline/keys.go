package pipeline

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotEd25519 is returned when a private key file holds a key of a
// different type.
var ErrNotEd25519 = errors.New("pipeline: private key is not ed25519")

// LoadPrivateKey reads a PEM-encoded PKCS #8 ed25519 private key.
func LoadPrivateKey(path string) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block in %s", path)
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse PKCS #8 key: %w", err)
	}
	key, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotEd25519, parsed)
	}
	return key, nil
}

// SignHash computes the detached signature the registry verifies: an
// ed25519 signature over the ASCII bytes of the uppercase hex content
// hash, returned as uppercase hex.
func SignHash(key ed25519.PrivateKey, contentHash string) string {
	message := strings.ToUpper(contentHash)
	return fmt.Sprintf("%X", ed25519.Sign(key, []byte(message)))
}
