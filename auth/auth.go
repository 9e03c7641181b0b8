// Copyright (c) 2025 Daniel Kuo.
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
	"io"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
)

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidToken     = errors.New("invalid token format")
)

// Key purposes for DeriveKey
const (
	PurposeSessionCookie = "roodle session cookie"
	PurposeIPHash        = "roodle ip hash"
)

const (
	alphanumeric = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// PollIDLength is the length of poll and option identifiers
	PollIDLength = 12
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateAlphanumeric returns n random characters from 0-9, a-z, A-Z
func GenerateAlphanumeric(n int) (string, error) {
	max := big.NewInt(int64(len(alphanumeric)))
	result := make([]byte, n)
	for i := range result {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random ID: %w", err)
		}
		result[i] = alphanumeric[idx.Int64()]
	}
	return string(result), nil
}

// GeneratePollID creates an identifier for a poll or one of its options
func GeneratePollID() (string, error) {
	return GenerateAlphanumeric(PollIDLength)
}

// GenerateAccountID creates the primary key of a new account
func GenerateAccountID() string {
	return uuid.NewString()
}

// GenerateSessionToken creates an opaque session token
func GenerateSessionToken() string {
	return uuid.NewString()
}

// DeriveKey expands the configured secret into an independent key per purpose
func DeriveKey(secret, purpose string) []byte {
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(purpose))
	if _, err := io.ReadFull(r, key); err != nil {
		// hkdf only fails past 255 blocks of output
		panic(err)
	}
	return key
}

func mac(value string, key []byte) string {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(value))
	// Use URL-safe base64 and trim padding for cookie-safe values
	return strings.TrimRight(base64.URLEncoding.EncodeToString(h.Sum(nil)), "=")
}

// Sign appends an HMAC of value so it can be stored client-side
func Sign(value string, key []byte) string {
	return value + "." + mac(value, key)
}

// Verify checks a value produced by Sign and returns the original value
func Verify(signed string, key []byte) (string, error) {
	i := strings.LastIndexByte(signed, '.')
	if i <= 0 || i == len(signed)-1 {
		return "", ErrInvalidToken
	}
	value, sig := signed[:i], signed[i+1:]
	if !hmac.Equal([]byte(sig), []byte(mac(value, key))) {
		return "", ErrInvalidSignature
	}
	return value, nil
}

// HashIP creates a one-way hash of an IP address for privacy
func HashIP(ip string, key []byte) string {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for deduplication
	return hex.EncodeToString(sum[:8])
}

// Username derives a username from the local part of an email address
func Username(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
