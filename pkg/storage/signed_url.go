package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"
)

const defaultSignedURLTTL = 24 * time.Hour

var (
	// ErrTokenInvalid covers malformed tokens and bad signatures.
	ErrTokenInvalid = errors.New("storage: invalid download token")
	// ErrTokenExpired is returned once the embedded deadline has passed.
	ErrTokenExpired = errors.New("storage: download token expired")
)

// SignedURLSigner mints and verifies HMAC signed download tokens. A token
// carries the export job ID, the stored file name and an expiry deadline,
// so download links stay valid without any server side session.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
}

func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = defaultSignedURLTTL
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl}
}

// Generate returns a URL-safe token for the given job and file name.
func (s *SignedURLSigner) Generate(jobID, relPath string) (string, time.Time, error) {
	if jobID == "" || relPath == "" {
		return "", time.Time{}, ErrTokenInvalid
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, errors.New("storage: signing secret not configured")
	}

	expiresAt := time.Now().Add(s.ttl)
	exp := strconv.FormatInt(expiresAt.Unix(), 10)
	path := base64.RawURLEncoding.EncodeToString([]byte(relPath))

	token := strings.Join([]string{jobID, exp, path, s.sign(jobID, exp, path)}, ".")
	return token, expiresAt, nil
}

// Parse verifies the signature and deadline and returns the token contents.
// Cleanup routines pass allowExpired to resolve files past their deadline.
func (s *SignedURLSigner) Parse(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return "", "", time.Time{}, ErrTokenInvalid
	}
	jobID, exp, path, sig := parts[0], parts[1], parts[2], parts[3]

	if !hmac.Equal([]byte(s.sign(jobID, exp, path)), []byte(sig)) {
		return "", "", time.Time{}, ErrTokenInvalid
	}

	expUnix, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return "", "", time.Time{}, ErrTokenInvalid
	}
	expiresAt = time.Unix(expUnix, 0)
	if !allowExpired && time.Now().After(expiresAt) {
		return "", "", time.Time{}, ErrTokenExpired
	}

	rawPath, err := base64.RawURLEncoding.DecodeString(path)
	if err != nil {
		return "", "", time.Time{}, ErrTokenInvalid
	}
	return jobID, string(rawPath), expiresAt, nil
}

func (s *SignedURLSigner) sign(jobID, exp, path string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(jobID))
	mac.Write([]byte{'\n'})
	mac.Write([]byte(exp))
	mac.Write([]byte{'\n'})
	mac.Write([]byte(path))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
