package services

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// KeyService holds the verifier's ed25519 key and signs canonical
// signing-message bytes. Key material never leaves this service.
type KeyService struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
	address    string
}

// NewKeyService derives the verifier account from a hex-encoded 32-byte
// ed25519 seed. The account address is the sha3-256 digest of the public
// key followed by the single-key scheme byte 0x00.
func NewKeyService(privateKeyHex string) (*KeyService, error) {
	cleaned := strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x")
	if cleaned == "" {
		return nil, fmt.Errorf("verifier private key is required")
	}

	seed, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("invalid verifier private key hex: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("verifier private key must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}

	privateKey := ed25519.NewKeyFromSeed(seed)
	publicKey := privateKey.Public().(ed25519.PublicKey)

	hasher := sha3.New256()
	hasher.Write(publicKey)
	hasher.Write([]byte{0x00}) // single-key authentication scheme
	address := "0x" + hex.EncodeToString(hasher.Sum(nil))

	return &KeyService{
		privateKey: privateKey,
		publicKey:  publicKey,
		address:    address,
	}, nil
}

// Address returns the verifier's account address with 0x prefix.
func (k *KeyService) Address() string {
	return k.address
}

// PublicKeyHex returns the raw 32-byte public key as 64 hex characters,
// without prefix or scheme byte.
func (k *KeyService) PublicKeyHex() string {
	return hex.EncodeToString(k.publicKey)
}

// Sign signs the signing-message bytes and returns the 0x-prefixed
// signature hex.
func (k *KeyService) Sign(_ context.Context, signingMessage []byte) (string, error) {
	if len(signingMessage) == 0 {
		return "", fmt.Errorf("signing message is empty")
	}
	signature := ed25519.Sign(k.privateKey, signingMessage)
	return "0x" + hex.EncodeToString(signature), nil
}
