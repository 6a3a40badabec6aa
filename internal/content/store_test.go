package content

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.jpg", "photo.jpg"},
		{"../evil.sh", "..evil.sh"},
		{"../../etc/passwd", "....etcpasswd"},
		{"img 001 (front).jpg", "img001front.jpg"},
		{"snap_2024-01-02.png", "snap_2024-01-02.png"},
		{"<script>", "script"},
		{"", ""},
	}
	for _, tt := range tests {
		got := SanitizeFilename(tt.in)
		require.Equal(t, tt.want, got)
		require.NotContains(t, got, "/")
		require.NotContains(t, got, "\\")
	}
}

func TestSaveWritesDecodedPayload(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, "/api/image")
	require.NoError(t, err)

	payload := base64.StdEncoding.EncodeToString([]byte("image-bytes"))
	url, err := s.Save("10.0.0.5", "front.jpg", payload)
	require.NoError(t, err)
	require.Equal(t, "/api/image/10.0.0.5_front.jpg", url)

	data, err := os.ReadFile(filepath.Join(dir, "10.0.0.5_front.jpg"))
	require.NoError(t, err)
	require.Equal(t, "image-bytes", string(data))
}

func TestSaveStripsTraversalSegments(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, "/api/image")
	require.NoError(t, err)

	payload := base64.StdEncoding.EncodeToString([]byte("x"))
	url, err := s.Save("dev-1", "../evil.sh", payload)
	require.NoError(t, err)
	require.Equal(t, "/api/image/dev-1_..evil.sh", url)

	// Nothing escaped the storage directory.
	_, err = os.Stat(filepath.Join(dir, "dev-1_..evil.sh"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(filepath.Dir(dir), "evil.sh"))
	require.True(t, os.IsNotExist(err))
}

func TestSaveDefaultsEmptyFilename(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, "/api/image")
	require.NoError(t, err)

	payload := base64.StdEncoding.EncodeToString([]byte("x"))
	url, err := s.Save("dev-1", "()[]", payload)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "/api/image/dev-1_img_"))
	require.True(t, strings.HasSuffix(url, ".jpg"))
}

func TestSaveRejectsBadBase64(t *testing.T) {
	s, err := NewStore(t.TempDir(), "/api/image")
	require.NoError(t, err)

	_, err = s.Save("dev-1", "a.jpg", "not-base64!!!")
	require.Error(t, err)
}

func TestPathRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, "/api/image")
	require.NoError(t, err)

	_, err = s.Path("../secret")
	require.Error(t, err)
	_, err = s.Path("")
	require.Error(t, err)

	path, err := s.Path("dev-1_front.jpg")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "dev-1_front.jpg"), path)
}
