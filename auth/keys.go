package auth

import (
	"crypto/rsa"
	"encoding/pem"
	"errors"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const inlineSource = "inline"

// KeyPair holds the RSA keys used to sign and verify tokens.
// It is read-only after loading and safe for concurrent use.
type KeyPair struct {
	Public  *rsa.PublicKey
	Private *rsa.PrivateKey
}

// LoadKeyPair reads and parses the PEM files at the given paths
func LoadKeyPair(publicPath, privatePath string) (*KeyPair, error) {
	pubPEM, err := os.ReadFile(publicPath)
	if err != nil {
		return nil, &KeyParseError{Kind: PublicKey, Source: publicPath, Err: err}
	}
	pub, err := parsePublicKey(pubPEM, publicPath)
	if err != nil {
		return nil, err
	}

	privPEM, err := os.ReadFile(privatePath)
	if err != nil {
		return nil, &KeyParseError{Kind: PrivateKey, Source: privatePath, Err: err}
	}
	priv, err := parsePrivateKey(privPEM, privatePath)
	if err != nil {
		return nil, err
	}

	return &KeyPair{Public: pub, Private: priv}, nil
}

// ParsePublicKeyPEM parses a PKIX ("PUBLIC KEY") or PKCS#1 ("RSA PUBLIC KEY") RSA public key
func ParsePublicKeyPEM(data []byte) (*rsa.PublicKey, error) {
	return parsePublicKey(data, inlineSource)
}

// ParsePrivateKeyPEM parses a PKCS#8 ("PRIVATE KEY") or PKCS#1 ("RSA PRIVATE KEY") RSA private key
func ParsePrivateKeyPEM(data []byte) (*rsa.PrivateKey, error) {
	return parsePrivateKey(data, inlineSource)
}

// Matches reports whether the public key belongs to the private key
func (k *KeyPair) Matches() bool {
	if k == nil || k.Public == nil || k.Private == nil {
		return false
	}
	return k.Private.PublicKey.Equal(k.Public)
}

func parsePublicKey(data []byte, source string) (*rsa.PublicKey, error) {
	if err := checkArmor(data); err != nil {
		return nil, &KeyParseError{Kind: PublicKey, Source: source, Err: err}
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM(normalizePEM(data))
	if err != nil {
		return nil, &KeyParseError{Kind: PublicKey, Source: source, Err: err}
	}
	return key, nil
}

func parsePrivateKey(data []byte, source string) (*rsa.PrivateKey, error) {
	if err := checkArmor(data); err != nil {
		return nil, &KeyParseError{Kind: PrivateKey, Source: source, Err: err}
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(normalizePEM(data))
	if err != nil {
		return nil, &KeyParseError{Kind: PrivateKey, Source: source, Err: err}
	}
	return key, nil
}

func checkArmor(data []byte) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return errors.New("empty key material")
	}
	if !strings.Contains(string(data), "-----BEGIN ") {
		return errors.New("missing PEM armor")
	}
	return nil
}

// normalizePEM re-encodes the first PEM block so stray indentation or CRLF
// line endings in the source file do not break decoding.
func normalizePEM(data []byte) []byte {
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	cleaned := []byte(strings.Join(lines, "\n"))

	block, _ := pem.Decode(cleaned)
	if block == nil {
		return cleaned
	}
	return pem.EncodeToMemory(block)
}
