// Package signing signs Strong Customer Authentication (SCA) one-time tokens
// with the private key whose public half is registered with Wise.
package signing

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/ssh"
)

var (
	// ErrNoKey is returned when signing is attempted without a private key.
	ErrNoKey = errors.New("signing key is not configured")

	// ErrUnsupportedKey is returned for private keys that are not RSA.
	ErrUnsupportedKey = errors.New("signing key must be an RSA private key")
)

// Signer produces the x-signature value for an SCA token.
type Signer interface {
	Sign(token string) (string, error)
}

// ParsePrivateKey decodes a PEM (PKCS#1 or PKCS#8) or OpenSSH encoded
// RSA private key.
func ParsePrivateKey(data []byte) (*rsa.PrivateKey, error) {
	if len(data) == 0 {
		return nil, ErrNoKey
	}

	raw, err := ssh.ParseRawPrivateKey(data)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	switch key := raw.(type) {
	case *rsa.PrivateKey:
		return key, nil
	default:
		return nil, fmt.Errorf("%w (got %T)", ErrUnsupportedKey, raw)
	}
}

// RSASigner signs tokens with RSA PKCS#1 v1.5 over SHA-256 of the raw token
// bytes and returns standard base64.
type RSASigner struct {
	key *rsa.PrivateKey
}

// NewRSASigner wraps an already parsed key.
func NewRSASigner(key *rsa.PrivateKey) *RSASigner {
	return &RSASigner{key: key}
}

// NewRSASignerFromPEM parses data with ParsePrivateKey and wraps the result.
func NewRSASignerFromPEM(data []byte) (*RSASigner, error) {
	key, err := ParsePrivateKey(data)
	if err != nil {
		return nil, err
	}
	return NewRSASigner(key), nil
}

// Sign implements Signer.
func (s *RSASigner) Sign(token string) (string, error) {
	if s == nil || s.key == nil {
		return "", ErrNoKey
	}

	digest := sha256.Sum256([]byte(token))
	sig, err := rsa.SignPKCS1v15(rand.Reader, s.key, crypto.SHA256, digest[:])
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return base64.StdEncoding.EncodeToString(sig), nil
}

// SignToken parses privateKey and signs token in one step.
func SignToken(privateKey []byte, token string) (string, error) {
	signer, err := NewRSASignerFromPEM(privateKey)
	if err != nil {
		return "", err
	}
	return signer.Sign(token)
}

// Verify checks a base64 signature produced by Sign against pub.
func Verify(pub *rsa.PublicKey, token, signature string) error {
	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}

	digest := sha256.Sum256([]byte(token))
	return rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], sig)
}
