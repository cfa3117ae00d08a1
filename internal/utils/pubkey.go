package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// ed25519 public keys are 32 bytes = 64 hex chars
const PublicKeyHexLen = 64

var hexKeyPattern = regexp.MustCompile("^[0-9a-fA-F]{64}$")

// NormalizePublicKey strips the one-byte signature-scheme discriminator that
// some wallets prepend to the ed25519 public key ("00" + 64 hex chars, with
// or without a leading "0x") and returns the bare 64-hex-char key.
// Exactly one prefix is stripped; anything that does not end up as 64 hex
// chars is rejected before it can reach the sponsorship relay.
func NormalizePublicKey(publicKeyHex string) (string, error) {
	if publicKeyHex == "" {
		return "", fmt.Errorf("public key is empty")
	}

	clean := publicKeyHex
	if strings.HasPrefix(clean, "0x00") && len(clean) > 4 {
		clean = clean[4:]
	} else if strings.HasPrefix(clean, "0x") {
		clean = clean[2:]
	} else if strings.HasPrefix(clean, "00") && len(clean) > PublicKeyHexLen {
		clean = clean[2:]
	}

	if len(clean) != PublicKeyHexLen {
		return "", fmt.Errorf("invalid public key length: %d chars (expected %d)", len(clean), PublicKeyHexLen)
	}
	if !hexKeyPattern.MatchString(clean) {
		return "", fmt.Errorf("public key is not valid hex")
	}

	return clean, nil
}

// IsAccountAddress checks whether a string is a 32-byte account address
// (0x + 64 hex chars, or bare 64 hex chars)
func IsAccountAddress(address string) bool {
	if address == "" {
		return false
	}
	if strings.HasPrefix(strings.ToLower(address), "0x") {
		address = address[2:]
	}
	return len(address) == PublicKeyHexLen && hexKeyPattern.MatchString(address)
}

// EnsureHexPrefix adds the 0x prefix if missing
func EnsureHexPrefix(s string) string {
	if strings.HasPrefix(s, "0x") {
		return s
	}
	return "0x" + s
}
