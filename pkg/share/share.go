// Package share encodes documents into share-link tokens and back.
//
// A token is base64(encodeURIComponent(text)), the format the browser
// editor writes into the URL fragment, so links produced by either side
// open in the other.
package share

import (
	"encoding/base64"
	"errors"
	"net/url"
	"strings"
	"unicode/utf8"
)

// ErrInvalidToken is returned by [Decode] for text that is not a token.
var ErrInvalidToken = errors.New("invalid share token")

// QueryParam is the query parameter that may carry a token instead of the
// fragment.
const QueryParam = "yaml"

// Encode returns the token of text.
func Encode(text string) string {
	return base64.StdEncoding.EncodeToString([]byte(escapeComponent(text)))
}

// Decode returns the text of token. It tolerates the mangling tokens
// suffer in transit: surrounding whitespace, '+' decoded to ' ' by query
// parsing, the URL-safe alphabet and stripped padding.
func Decode(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidToken
	}
	token = strings.NewReplacer(" ", "+", "-", "+", "_", "/").Replace(token)
	token = strings.TrimRight(token, "=")

	raw, err := base64.RawStdEncoding.DecodeString(token)
	if err != nil {
		return "", errors.Join(ErrInvalidToken, err)
	}
	text, err := url.PathUnescape(string(raw))
	if err != nil {
		return "", errors.Join(ErrInvalidToken, err)
	}
	if !utf8.ValidString(text) {
		return "", ErrInvalidToken
	}
	return text, nil
}

// URL returns base with the token of text as its fragment. Any existing
// fragment is replaced.
func URL(base, text string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String() + "#" + Encode(text), nil
}

// FromURL extracts and decodes the token of a share link. The query
// parameter wins over the fragment.
func FromURL(link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", errors.Join(ErrInvalidToken, err)
	}
	token := u.Query().Get(QueryParam)
	if token == "" {
		token = u.EscapedFragment()
	}
	return Decode(token)
}

// escapeComponent percent-encodes s the way encodeURIComponent does: every
// UTF-8 byte except A-Z a-z 0-9 and - _ . ! ~ * ' ( ).
func escapeComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0F])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
