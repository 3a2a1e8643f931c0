// Copyright (c) 2026 Mara Hartman.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var (
	ErrInvalidHostKey = errors.New("invalid host key")
	ErrInvalidToken   = errors.New("invalid token format")
)

// JoinCodeLength is the length of generated session join codes.
const JoinCodeLength = 6

// joinCodeChars excludes ambiguous characters (0/O, 1/I).
const joinCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateJoinCode creates a random 6-character session join code.
// Uniqueness is enforced by the session.join_code constraint; callers
// retry on collision.
func GenerateJoinCode() (string, error) {
	code := make([]byte, JoinCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(joinCodeChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate join code: %w", err)
		}
		code[i] = joinCodeChars[n.Int64()]
	}
	return string(code), nil
}

// GenerateHostKey creates an HMAC-based host key for a session
// This is deterministic and verifiable
func GenerateHostKey(sessionID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(sessionID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateHostKey checks if the provided host key is valid for the session
func ValidateHostKey(sessionID, hostKey, salt string) error {
	expected := GenerateHostKey(sessionID, salt)
	if !hmac.Equal([]byte(hostKey), []byte(expected)) {
		return ErrInvalidHostKey
	}
	return nil
}

// GeneratePlayerToken creates a random secure token for a player
// This identifies the player across requests within their session
func GeneratePlayerToken() (string, error) {
	b := make([]byte, 24) // 24 bytes = 192 bits of entropy
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate player token: %w", err)
	}
	// URL-safe base64 without padding
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// NormalizeJoinCode uppercases a join code and rejects malformed input
func NormalizeJoinCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != JoinCodeLength {
		return "", ErrInvalidToken
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < 'A' || c > 'Z') && (c < '2' || c > '9') {
			return "", ErrInvalidToken
		}
	}
	return code, nil
}
