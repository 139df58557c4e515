package service

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"regexp"
)

const (
	// 128-bit minimum entropy
	minTokenBytes = 16
	maxTokenBytes = 64

	generatedTokenBytes = 32
	maxTokenChars       = 128
)

var urlSafeRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// DropTokenCodec produces, validates and hashes public drop tokens. The
// derive and hash secrets are separate on purpose: knowing the storage hash
// of a token must not help recompute a tag's deterministic token, and vice
// versa. Deployments without distinct secrets fall back to a shared one.
type DropTokenCodec struct {
	hashSecret   []byte
	deriveSecret []byte
}

func NewDropTokenCodec(hashSecret []byte, deriveSecret []byte) *DropTokenCodec {
	return &DropTokenCodec{hashSecret: hashSecret, deriveSecret: deriveSecret}
}

// Generate returns a fresh random public token: 32 bytes of entropy,
// base64url without padding.
func (c *DropTokenCodec) Generate() (string, error) {
	buf := make([]byte, generatedTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// DeriveForTag maps a tag code to its deterministic drop token. The same
// code always yields the same token, so a printed QR code doubles as a
// message inbox without any database lookup. Nothing checks that the code
// corresponds to a real tag; doing so would reintroduce an enumeration
// oracle.
func (c *DropTokenCodec) DeriveForTag(tagCode string) string {
	mac := hmac.New(sha256.New, c.deriveSecret)
	mac.Write([]byte("drop:" + tagCode))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// IsValidFormat reports whether token is a canonical unpadded base64url
// string decoding to 16-64 bytes. Re-encoding the decoded bytes must
// reproduce the input exactly, so alternate encodings of the same bytes
// cannot pass as distinct valid tokens. The canonical comparison is
// constant-time.
func (c *DropTokenCodec) IsValidFormat(token string) bool {
	if token == "" || len(token) > maxTokenChars || !urlSafeRe.MatchString(token) {
		return false
	}

	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return false
	}
	if len(decoded) < minTokenBytes || len(decoded) > maxTokenBytes {
		return false
	}

	canonical := base64.RawURLEncoding.EncodeToString(decoded)
	return subtle.ConstantTimeCompare([]byte(token), []byte(canonical)) == 1
}

// Hash returns the one-way storage key for a public token. Stored data never
// contains the public token itself, so a database compromise does not yield
// scannable tokens.
func (c *DropTokenCodec) Hash(publicToken string) string {
	mac := hmac.New(sha256.New, c.hashSecret)
	mac.Write([]byte(publicToken))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
