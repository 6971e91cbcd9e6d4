package oauth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

// pkceVerifierBytes is the number of random bytes for the PKCE code verifier.
// 32 bytes encode to a 43 character verifier, the RFC 7636 minimum.
const pkceVerifierBytes = 32

// PKCEChallengeMethod is the only challenge method this server issues.
const PKCEChallengeMethod = "S256"

// PKCEChallenge is a verifier together with its derived challenge.
type PKCEChallenge struct {
	CodeVerifier        string
	CodeChallenge       string
	CodeChallengeMethod string
}

// GeneratePKCE generates a new PKCE code verifier and its S256 challenge.
func GeneratePKCE() (*PKCEChallenge, error) {
	verifierBytes := make([]byte, pkceVerifierBytes)
	if _, err := rand.Read(verifierBytes); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes for PKCE: %w", err)
	}

	verifier := base64.RawURLEncoding.EncodeToString(verifierBytes)

	return &PKCEChallenge{
		CodeVerifier:        verifier,
		CodeChallenge:       S256Challenge(verifier),
		CodeChallengeMethod: PKCEChallengeMethod,
	}, nil
}

// S256Challenge returns base64url(SHA256(verifier)) without padding.
func S256Challenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

// VerifyChallenge reports whether challenge is the S256 challenge of
// verifier. The comparison runs in constant time.
func VerifyChallenge(verifier, challenge string) bool {
	if verifier == "" || challenge == "" {
		return false
	}
	computed := S256Challenge(verifier)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(challenge)) == 1
}
