package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"HTTPS://Example.COM/Path#frag", "https://example.com/Path"},
		{"example.com", "https://example.com/"},
		{"https://www.example.com", "https://www.example.com/"},
		{"http://127.0.0.1:8080/a?b=1", "http://127.0.0.1:8080/a?b=1"},
		{"https://bücher.de/katalog", "https://xn--bcher-kva.de/katalog"},
		{"  https://example.com/x  ", "https://example.com/x"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeURL(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeURL_NoHost(t *testing.T) {
	_, err := NormalizeURL("https://")
	assert.Error(t, err)
}

func TestResolveURL(t *testing.T) {
	got, err := ResolveURL("https://example.com", "/blog/post")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/blog/post", got)

	got, err = ResolveURL("https://example.com", "https://Other.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "https://other.example.com/", got)

	_, err = ResolveURL("https://example.com", "   ")
	assert.Error(t, err)
}

func TestBaseURL(t *testing.T) {
	got, err := BaseURL("https://Example.com/some/page")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", got)

	got, err = BaseURL("example.com/")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", got)

	_, err = BaseURL("")
	assert.ErrorIs(t, err, ErrEmptyDomain)
}
