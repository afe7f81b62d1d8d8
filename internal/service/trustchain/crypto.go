package trustchain

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/nacl/sign"
)

// SigningKey and VerifyKey are the nacl/sign key pair standing in for the
// Ed25519 SigningKey/VerifyKey pair of the original crypto module.
type SigningKey *[64]byte
type VerifyKey *[32]byte

// GenerateSigningKey mints a fresh device or organization root keypair.
func GenerateSigningKey() (SigningKey, VerifyKey, error) {
	pub, priv, err := sign.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("generate signing key: %w", err)
	}
	return SigningKey(priv), VerifyKey(pub), nil
}

func signAndAddMeta(key SigningKey, payload []byte) []byte {
	return sign.Sign(nil, payload, (*[64]byte)(key))
}

// SignWithRootKey signs payload with an organization's root signing key.
// Exported for internal/adapter/rootkey, the only caller outside this
// package allowed to hold a raw SigningKey.
func SignWithRootKey(key SigningKey, payload []byte) []byte {
	return signAndAddMeta(key, payload)
}

// OpenWithVerifyKey verifies an arbitrary nacl/sign envelope against a raw
// verify key and returns the enclosed payload. Exported for the session
// handshake, the one caller outside this package that checks a signature
// against a device's own already-trusted key rather than walking a
// certifier chain.
func OpenWithVerifyKey(verifyKey []byte, signed []byte) ([]byte, error) {
	return verifySignatureFrom(verifyKey, signed)
}

func verifySignatureFrom(key []byte, signed []byte) ([]byte, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("%w: verify key must be 32 bytes, got %d", ErrBadSignature, len(key))
	}
	var vk [32]byte
	copy(vk[:], key)
	payload, ok := sign.Open(nil, signed, &vk)
	if !ok {
		return nil, ErrBadSignature
	}
	return payload, nil
}
