package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// GenerateHMAC signs message with secret and returns the hex digest.
// The transport signs apiKey+timestamp this way for the X-Signature header.
func GenerateHMAC(message, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyHMAC checks a hex signature produced by GenerateHMAC.
func VerifyHMAC(message, secret, sign string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	expectedSign := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expectedSign), []byte(sign))
}
