package blobstore_test

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go-jobseeker-backend/pkg/blobstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreatesCategoryDirs(t *testing.T) {
	root := filepath.Join(t.TempDir(), "uploads")

	_, err := blobstore.New(root)
	require.NoError(t, err)

	for _, dir := range []string{blobstore.DirProfilePictures, blobstore.DirResumes} {
		info, err := os.Stat(filepath.Join(root, dir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	// Initialization is idempotent
	_, err = blobstore.New(root)
	assert.NoError(t, err)
}

func TestSaveAndOpenRoundtrip(t *testing.T) {
	store, err := blobstore.New(t.TempDir())
	require.NoError(t, err)

	content := []byte("%PDF-1.4 resume body")
	path, err := store.Save(blobstore.DirResumes, "resume.pdf", bytes.NewReader(content))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(path, "/uploads/resumes/"))
	assert.True(t, strings.HasSuffix(path, "_resume.pdf"))

	storedName := strings.TrimPrefix(path, "/uploads/resumes/")
	rc, err := store.Open(blobstore.DirResumes, storedName)
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestSaveIdenticalNamesConcurrently(t *testing.T) {
	store, err := blobstore.New(t.TempDir())
	require.NoError(t, err)

	const n = 10
	paths := make([]string, n)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := store.Save(blobstore.DirResumes, "cv.pdf", strings.NewReader(fmt.Sprintf("body-%d", i)))
			assert.NoError(t, err)
			paths[i] = p
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for i, p := range paths {
		assert.False(t, seen[p], "path %s returned twice", p)
		seen[p] = true

		storedName := strings.TrimPrefix(p, "/uploads/resumes/")
		rc, err := store.Open(blobstore.DirResumes, storedName)
		require.NoError(t, err)
		got, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("body-%d", i), string(got))
	}
}

func TestSaveRejectsUnknownCategory(t *testing.T) {
	store, err := blobstore.New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("secrets", "x.txt", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestSaveSanitizesOriginalName(t *testing.T) {
	store, err := blobstore.New(t.TempDir())
	require.NoError(t, err)

	path, err := store.Save(blobstore.DirProfilePictures, "my photo (1).png", strings.NewReader("img"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_my_photo_1.png"))
	assert.NotContains(t, path, " ")
}

func TestOpenRejectsPathTraversal(t *testing.T) {
	root := t.TempDir()
	store, err := blobstore.New(root)
	require.NoError(t, err)

	// A file outside the store root that must never be reachable
	secret := filepath.Join(root, "..", "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("secret"), 0o600))

	cases := []struct {
		subDir   string
		fileName string
	}{
		{blobstore.DirResumes, "../../../etc/passwd"},
		{blobstore.DirResumes, "../../secret.txt"},
		{blobstore.DirResumes, ".."},
		{"../..", "secret.txt"},
	}

	for _, tc := range cases {
		_, err := store.Open(tc.subDir, tc.fileName)
		assert.ErrorIs(t, err, blobstore.ErrNotFound, "subDir=%q fileName=%q", tc.subDir, tc.fileName)
	}
}

func TestOpenMissingFile(t *testing.T) {
	store, err := blobstore.New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open(blobstore.DirResumes, "nope.pdf")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", blobstore.ContentType("cv.pdf"))
	assert.Equal(t, "image/jpeg", blobstore.ContentType("photo.JPG"))
	assert.Equal(t, "image/jpeg", blobstore.ContentType("photo.jpeg"))
	assert.Equal(t, "image/png", blobstore.ContentType("photo.png"))
	// Unknown extensions fall back to a generic binary type
	assert.Equal(t, "application/octet-stream", blobstore.ContentType("archive.xyz"))
	assert.Equal(t, "application/octet-stream", blobstore.ContentType("noextension"))
}
