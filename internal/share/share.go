// Package share creates public plan tokens and the links and QR codes that carry them.
package share

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

// randomBytes is the entropy appended to every token.
const randomBytes = 16

// DefaultQRSize is the edge length in pixels of generated QR images.
const DefaultQRSize = 256

var (
	ErrInvalidToken  = errors.New("invalid share token")
	ErrInvalidQRSize = errors.New("invalid QR code size")
)

// nowFunc and randRead are swapped in tests.
var (
	nowFunc      = time.Now
	realRandRead = rand.Read
	randRead     = realRandRead
)

// NewToken returns base36(unix millis) followed by 32 lowercase hex characters.
// The timestamp prefix keeps tokens roughly sortable, the random suffix makes them unguessable.
func NewToken() (string, error) {
	buf := make([]byte, randomBytes)
	if _, err := randRead(buf); err != nil {
		return "", err
	}
	ts := strconv.FormatInt(nowFunc().UnixMilli(), 36)
	return ts + hex.EncodeToString(buf), nil
}

// ValidToken checks the shape of a token before it reaches storage.
func ValidToken(token string) bool {
	if len(token) <= randomBytes*2 || len(token) > 64 {
		return false
	}
	for _, r := range token {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'z') {
			return false
		}
	}
	_, err := hex.DecodeString(token[len(token)-randomBytes*2:])
	return err == nil
}

// IssuedAt recovers the creation time encoded in a token.
func IssuedAt(token string) (time.Time, error) {
	if !ValidToken(token) {
		return time.Time{}, ErrInvalidToken
	}
	ms, err := strconv.ParseInt(token[:len(token)-randomBytes*2], 36, 64)
	if err != nil {
		return time.Time{}, ErrInvalidToken
	}
	return time.UnixMilli(ms).UTC(), nil
}

// URL is the public page address for token under baseURL.
func URL(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/p/" + token
}

// QRCode renders content as a PNG of size pixels. Zero uses DefaultQRSize.
func QRCode(content string, size int) ([]byte, error) {
	if size < 0 {
		return nil, ErrInvalidQRSize
	}
	if size == 0 {
		size = DefaultQRSize
	}
	return qrcode.Encode(content, qrcode.Medium, size)
}
