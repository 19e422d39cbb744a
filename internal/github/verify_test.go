package github

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := "s3cr3t"
	payload := []byte(`{"ref":"refs/heads/main"}`)

	tests := []struct {
		name    string
		payload []byte
		header  string
		secret  string
		want    bool
	}{
		{
			name:    "valid signature",
			payload: payload,
			header:  sign(secret, payload),
			secret:  secret,
			want:    true,
		},
		{
			name:    "empty payload",
			payload: []byte{},
			header:  sign(secret, []byte{}),
			secret:  secret,
			want:    true,
		},
		{
			name:    "missing header",
			payload: payload,
			header:  "",
			secret:  secret,
			want:    false,
		},
		{
			name:    "wrong prefix",
			payload: payload,
			header:  "sha1=" + sign(secret, payload)[7:],
			secret:  secret,
			want:    false,
		},
		{
			name:    "wrong secret",
			payload: payload,
			header:  sign("other", payload),
			secret:  secret,
			want:    false,
		},
		{
			name:    "truncated header",
			payload: payload,
			header:  sign(secret, payload)[:20],
			secret:  secret,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifySignature(tt.payload, tt.header, tt.secret); got != tt.want {
				t.Errorf("VerifySignature() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerifySignatureMutationFlips(t *testing.T) {
	secret := "s3cr3t"
	payload := []byte(`{"ref":"refs/heads/main","after":"abc"}`)
	header := sign(secret, payload)

	if !VerifySignature(payload, header, secret) {
		t.Fatal("baseline signature did not verify")
	}

	for i := range payload {
		mutated := append([]byte(nil), payload...)
		mutated[i] ^= 0x01
		if VerifySignature(mutated, header, secret) {
			t.Errorf("payload byte %d mutation still verified", i)
		}
	}

	// Flip each hex digit of the signature itself.
	for i := len("sha256="); i < len(header); i++ {
		mutated := []byte(header)
		if mutated[i] == '0' {
			mutated[i] = '1'
		} else {
			mutated[i] = '0'
		}
		if VerifySignature(payload, string(mutated), secret) {
			t.Errorf("header byte %d mutation still verified", i)
		}
	}
}
