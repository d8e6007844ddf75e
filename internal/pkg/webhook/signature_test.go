package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSign(t *testing.T) {
	body := []byte(`{"event":"verification.completed","data":{"x":1}}`)
	secret := "top-secret"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	assert.Equal(t, expected, Sign(secret, body))
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"foo":"bar"}`)
	secret := "top-secret"

	sig := Sign(secret, body)
	assert.True(t, VerifySignature(secret, body, sig))
	assert.False(t, VerifySignature(secret, body, "sha256=deadbeef"))
	assert.False(t, VerifySignature("other-secret", body, sig))

	// Any byte change in the payload must invalidate the signature.
	tampered := append([]byte{}, body...)
	tampered[0] = '['
	assert.False(t, VerifySignature(secret, tampered, sig))
}

func TestIsAcceptableURL(t *testing.T) {
	assert.True(t, IsAcceptableURL("https://example.com/hook"))
	assert.True(t, IsAcceptableURL("http://localhost:9000/cb"))
	assert.False(t, IsAcceptableURL("ftp://example.com/hook"))
	assert.False(t, IsAcceptableURL("file:///etc/passwd"))
	assert.False(t, IsAcceptableURL("not a url"))
	assert.False(t, IsAcceptableURL(""))
	assert.False(t, IsAcceptableURL("https://"))
}
