package share

import (
	"bytes"
	"errors"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToken(t *testing.T) {
	issued := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	nowFunc = func() time.Time { return issued }
	defer func() { nowFunc = time.Now }()

	token, err := NewToken()
	require.NoError(t, err)
	assert.True(t, ValidToken(token))
	assert.Len(t, token, len("lt6fosg0")+32)

	got, err := IssuedAt(token)
	require.NoError(t, err)
	assert.True(t, issued.Equal(got))

	other, err := NewToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestNewToken_RandFailure(t *testing.T) {
	randRead = func([]byte) (int, error) { return 0, errors.New("no entropy") }
	defer func() { randRead = realRandRead }()

	_, err := NewToken()
	assert.Error(t, err)
}

func TestValidToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{name: "empty", token: "", want: false},
		{name: "hex only", token: "0123456789abcdef0123456789abcdef", want: false},
		{name: "uppercase", token: "LT6FOSG0" + "0123456789abcdef0123456789abcdef", want: false},
		{name: "bad suffix", token: "lt6fosg0" + "0123456789abcdef0123456789abcdez", want: false},
		{name: "path chars", token: "../etc" + "0123456789abcdef0123456789abcdef", want: false},
		{name: "valid", token: "lt6fosg0" + "0123456789abcdef0123456789abcdef", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidToken(tt.token))
		})
	}
}

func TestURL(t *testing.T) {
	assert.Equal(t, "https://x.test/p/abc", URL("https://x.test/", "abc"))
	assert.Equal(t, "https://x.test/p/abc", URL("https://x.test", "abc"))
}

func TestQRCode(t *testing.T) {
	data, err := QRCode("https://x.test/p/abc", 0)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, DefaultQRSize, img.Bounds().Dx())

	_, err = QRCode("https://x.test/p/abc", -4)
	assert.ErrorIs(t, err, ErrInvalidQRSize)
}
