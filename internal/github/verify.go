package github

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

const signaturePrefix = "sha256="

// VerifySignature reports whether header carries a valid HMAC-SHA256
// signature of payload under secret, in GitHub's "sha256=<hex>" form.
// The comparison is constant-time.
func VerifySignature(payload []byte, header, secret string) bool {
	if !strings.HasPrefix(header, signaturePrefix) {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := signaturePrefix + hex.EncodeToString(mac.Sum(nil))

	return subtle.ConstantTimeCompare([]byte(expected), []byte(header)) == 1
}
