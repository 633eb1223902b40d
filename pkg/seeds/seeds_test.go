package seeds

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seeds.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadURLs(t *testing.T) {
	path := writeFile(t, "Rank,url\n1,https://example.com/\n2,\n3,https://example.com/about\n")
	urls, err := LoadURLs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/", "https://example.com/about"}, urls)
}

func TestLoadURLsCustomColumn(t *testing.T) {
	path := writeFile(t, "Domain,Rank\nexample.com,1\n")
	urls, err := LoadURLs(path, "Domain")
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com"}, urls)
}

func TestLoadURLsErrors(t *testing.T) {
	_, err := LoadURLs(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	_, err = LoadURLs(writeFile(t, ""))
	assert.ErrorIs(t, err, ErrEmptySeedFile)

	_, err = LoadURLs(writeFile(t, "Rank\n1\n"))
	assert.ErrorContains(t, err, "header")
}
