package share

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeMatchesBrowser(t *testing.T) {
	// btoa(encodeURIComponent(...)) as computed by a browser.
	tests := []struct {
		text, token string
	}{
		{"", ""},
		{"a b", "YSUyMGI="},            // a%20b
		{"x: 1\n", "eCUzQSUyMDElMEE="}, // x%3A%201%0A
		{"é", "JUMzJUE5"},              // %C3%A9
		{"(ok)!*~'", "KG9rKSEqfic="},   // unreserved, untouched
	}
	for _, tt := range tests {
		assert.Equal(t, tt.token, Encode(tt.text), "Encode(%q)", tt.text)
	}
}

func TestRoundTrip(t *testing.T) {
	docs := []string{
		"services:\n  web:\n    image: nginx:1.25\n    ports: [\"8080:80\"]\n",
		"# ünïcödé ✓\nservices: {}\n",
		strings.Repeat("a+b/c=d&e?f#g%h ", 50),
	}
	for _, d := range docs {
		got, err := Decode(Encode(d))
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
}

func TestDecodeTolerance(t *testing.T) {
	text := "services:\n  web: {image: \"a?b>c\"}\n"
	token := Encode(text)

	variants := map[string]string{
		"padded":     token,
		"whitespace": "  " + token + "\n",
		"unpadded":   strings.TrimRight(token, "="),
		"url-safe":   strings.NewReplacer("+", "-", "/", "_").Replace(token),
		"query-plus": strings.ReplaceAll(token, "+", " "),
	}
	for name, v := range variants {
		t.Run(name, func(t *testing.T) {
			got, err := Decode(v)
			require.NoError(t, err)
			assert.Equal(t, text, got)
		})
	}
}

func TestDecodeInvalid(t *testing.T) {
	for _, token := range []string{
		"",
		"!!!not base64!!!",
		"JUZG", // %FF: decodes but is not UTF-8
		"JTI=", // %2: truncated escape
	} {
		_, err := Decode(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "Decode(%q)", token)
	}
}

func TestURL(t *testing.T) {
	text := "services: {}\n"
	link, err := URL("https://composeviz.dev/app#old", text)
	require.NoError(t, err)
	assert.Equal(t, "https://composeviz.dev/app#"+Encode(text), link)

	got, err := FromURL(link)
	require.NoError(t, err)
	assert.Equal(t, text, got)
}

func TestFromURLQueryParam(t *testing.T) {
	text := "services:\n  db: {image: postgres}\n"
	link := "https://composeviz.dev/?" + QueryParam + "=" + url.QueryEscape(Encode(text)) + "#ignored"
	got, err := FromURL(link)
	require.NoError(t, err)
	assert.Equal(t, text, got)

	_, err = FromURL("https://composeviz.dev/")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
