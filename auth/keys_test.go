package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// generateTestKeyPair creates a 2048-bit RSA key pair for testing
func generateTestKeyPair(t *testing.T) *KeyPair {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return &KeyPair{Public: &priv.PublicKey, Private: priv}
}

func pkixPEM(t *testing.T, pub *rsa.PublicKey) []byte {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(pub)
	require.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
}

func pkcs8PEM(t *testing.T, priv *rsa.PrivateKey) []byte {
	t.Helper()
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	require.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
}

// writeKeyFiles writes the key pair as PKIX/PKCS#8 PEM files into a temp dir
func writeKeyFiles(t *testing.T, keys *KeyPair) (string, string) {
	t.Helper()
	dir := t.TempDir()
	pubPath := filepath.Join(dir, "public.pem")
	privPath := filepath.Join(dir, "private.pem")
	require.NoError(t, os.WriteFile(pubPath, pkixPEM(t, keys.Public), 0o600))
	require.NoError(t, os.WriteFile(privPath, pkcs8PEM(t, keys.Private), 0o600))
	return pubPath, privPath
}

func TestLoadKeyPair(t *testing.T) {
	keys := generateTestKeyPair(t)

	t.Run("loads PKIX public and PKCS#8 private keys", func(t *testing.T) {
		pubPath, privPath := writeKeyFiles(t, keys)

		loaded, err := LoadKeyPair(pubPath, privPath)
		require.NoError(t, err)
		assert.True(t, loaded.Public.Equal(keys.Public))
		assert.True(t, loaded.Private.Equal(keys.Private))
		assert.True(t, loaded.Matches())
	})

	t.Run("missing public key file", func(t *testing.T) {
		_, privPath := writeKeyFiles(t, keys)

		_, err := LoadKeyPair(filepath.Join(t.TempDir(), "absent.pem"), privPath)
		require.Error(t, err)

		var kpe *KeyParseError
		require.ErrorAs(t, err, &kpe)
		assert.Equal(t, PublicKey, kpe.Kind)
		assert.True(t, os.IsNotExist(kpe.Err))
	})

	t.Run("garbage private key file", func(t *testing.T) {
		pubPath, privPath := writeKeyFiles(t, keys)
		require.NoError(t, os.WriteFile(privPath, []byte("not a key"), 0o600))

		_, err := LoadKeyPair(pubPath, privPath)
		require.Error(t, err)

		var kpe *KeyParseError
		require.ErrorAs(t, err, &kpe)
		assert.Equal(t, PrivateKey, kpe.Kind)
		assert.Equal(t, privPath, kpe.Source)
		assert.True(t, IsKeyParseError(err))
	})
}

func TestParsePublicKeyPEM(t *testing.T) {
	keys := generateTestKeyPair(t)

	t.Run("PKIX", func(t *testing.T) {
		pub, err := ParsePublicKeyPEM(pkixPEM(t, keys.Public))
		require.NoError(t, err)
		assert.True(t, pub.Equal(keys.Public))
	})

	t.Run("PKCS#1", func(t *testing.T) {
		data := pem.EncodeToMemory(&pem.Block{Type: "RSA PUBLIC KEY", Bytes: x509.MarshalPKCS1PublicKey(keys.Public)})
		pub, err := ParsePublicKeyPEM(data)
		require.NoError(t, err)
		assert.True(t, pub.Equal(keys.Public))
	})

	t.Run("indented armor with CRLF line endings", func(t *testing.T) {
		lines := strings.Split(strings.TrimSpace(string(pkixPEM(t, keys.Public))), "\n")
		for i := range lines {
			lines[i] = "    " + lines[i]
		}
		data := []byte(strings.Join(lines, "\r\n") + "\r\n")

		pub, err := ParsePublicKeyPEM(data)
		require.NoError(t, err)
		assert.True(t, pub.Equal(keys.Public))
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := ParsePublicKeyPEM([]byte("  \n"))
		var kpe *KeyParseError
		require.ErrorAs(t, err, &kpe)
		assert.Equal(t, "inline", kpe.Source)
	})

	t.Run("no armor", func(t *testing.T) {
		_, err := ParsePublicKeyPEM([]byte("MIIBIjANBgkqhkiG9w0BAQEFAAOCAQ8AMIIBCgKCAQEA"))
		assert.True(t, IsKeyParseError(err))
	})

	t.Run("non-RSA key", func(t *testing.T) {
		ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		require.NoError(t, err)
		der, err := x509.MarshalPKIXPublicKey(&ecKey.PublicKey)
		require.NoError(t, err)

		_, err = ParsePublicKeyPEM(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
		var kpe *KeyParseError
		require.ErrorAs(t, err, &kpe)
		assert.Equal(t, PublicKey, kpe.Kind)
	})
}

func TestParsePrivateKeyPEM(t *testing.T) {
	keys := generateTestKeyPair(t)

	t.Run("PKCS#8", func(t *testing.T) {
		priv, err := ParsePrivateKeyPEM(pkcs8PEM(t, keys.Private))
		require.NoError(t, err)
		assert.True(t, priv.Equal(keys.Private))
	})

	t.Run("PKCS#1", func(t *testing.T) {
		data := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(keys.Private)})
		priv, err := ParsePrivateKeyPEM(data)
		require.NoError(t, err)
		assert.True(t, priv.Equal(keys.Private))
	})

	t.Run("public key passed as private", func(t *testing.T) {
		_, err := ParsePrivateKeyPEM(pkixPEM(t, keys.Public))
		var kpe *KeyParseError
		require.ErrorAs(t, err, &kpe)
		assert.Equal(t, PrivateKey, kpe.Kind)
	})

	t.Run("non-RSA key", func(t *testing.T) {
		ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		require.NoError(t, err)
		der, err := x509.MarshalPKCS8PrivateKey(ecKey)
		require.NoError(t, err)

		_, err = ParsePrivateKeyPEM(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
		assert.True(t, IsKeyParseError(err))
	})
}

func TestKeyPair_Matches(t *testing.T) {
	a := generateTestKeyPair(t)
	b := generateTestKeyPair(t)

	assert.True(t, a.Matches())
	assert.False(t, (&KeyPair{Public: a.Public, Private: b.Private}).Matches())
	assert.False(t, (&KeyPair{Public: a.Public}).Matches())

	var nilPair *KeyPair
	assert.False(t, nilPair.Matches())
}
