// Package extcrypto provides identifier and hashing functions for builder
// programs.
//
// Security note: MD5 and SHA-1 are provided for compatibility/fingerprinting only
// and should NOT be used for cryptographic security purposes.
package extcrypto

import (
	"crypto/hmac"
	"crypto/md5" //nolint:gosec // intentional: provided for non-security fingerprinting
	"crypto/sha1" //nolint:gosec // intentional
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	"github.com/google/uuid"

	"github.com/sandrolain/gobuilder/pkg/ext/extutil"
	"github.com/sandrolain/gobuilder/pkg/functions"
)

// All returns all cryptographic function definitions.
func All() []functions.Def {
	return []functions.Def{
		UUID(),
		Hash(),
		HMAC(),
	}
}

// UUID returns the definition for uuid().
// Generates a random UUID v4 string.
func UUID() functions.Def {
	return extutil.Value("uuid", 0, 0, func([]string) (string, error) {
		id, err := uuid.NewRandom()
		if err != nil {
			return "", fmt.Errorf("uuid: %w", err)
		}
		return id.String(), nil
	})
}

// Hash returns the definition for hash(str, algorithm).
// Supported algorithms: "md5", "sha1", "sha256", "sha384", "sha512".
// Returns a lowercase hex-encoded digest.
func Hash() functions.Def {
	return extutil.Value("hash", 2, 2, func(args []string) (string, error) {
		newHash, err := hasher(args[1])
		if err != nil {
			return "", fmt.Errorf("hash: %w", err)
		}
		h := newHash()
		h.Write([]byte(args[0]))
		return hex.EncodeToString(h.Sum(nil)), nil
	})
}

// HMAC returns the definition for hmac(str, key, algorithm).
// Returns a lowercase hex-encoded HMAC.
func HMAC() functions.Def {
	return extutil.Value("hmac", 3, 3, func(args []string) (string, error) {
		newHash, err := hasher(args[2])
		if err != nil {
			return "", fmt.Errorf("hmac: %w", err)
		}
		mac := hmac.New(newHash, []byte(args[1]))
		mac.Write([]byte(args[0]))
		return hex.EncodeToString(mac.Sum(nil)), nil
	})
}

func hasher(algorithm string) (func() hash.Hash, error) {
	switch strings.ToLower(algorithm) {
	case "md5":
		return md5.New, nil //nolint:gosec
	case "sha1":
		return sha1.New, nil //nolint:gosec
	case "sha256":
		return sha256.New, nil
	case "sha384":
		return sha512.New384, nil
	case "sha512":
		return sha512.New, nil
	default:
		return nil, fmt.Errorf("unsupported algorithm %q; use md5, sha1, sha256, sha384, or sha512", algorithm)
	}
}
