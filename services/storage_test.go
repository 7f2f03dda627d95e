package services

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dispatch_crm_go/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	tempDir := t.TempDir()
	storage := NewLocalStorage(tempDir)
	ctx := context.Background()
	key := "loads/l1/rate-confirmations/rc.pdf"

	t.Run("Put writes the object", func(t *testing.T) {
		result, err := storage.Put(ctx, key, []byte("%PDF-1.4"), "application/pdf")
		require.NoError(t, err)
		assert.Equal(t, key, result.Key)
		assert.Equal(t, "rc.pdf", result.FileName)
		assert.Equal(t, int64(8), result.FileSize)

		_, err = os.Stat(filepath.Join(tempDir, filepath.FromSlash(key)))
		assert.NoError(t, err)
	})

	t.Run("Get returns content and type", func(t *testing.T) {
		reader, contentType, err := storage.Get(ctx, key)
		require.NoError(t, err)
		defer reader.Close()

		got, _ := io.ReadAll(reader)
		assert.Equal(t, "%PDF-1.4", string(got))
		assert.Equal(t, "application/pdf", contentType)
	})

	t.Run("Delete is idempotent", func(t *testing.T) {
		assert.NoError(t, storage.Delete(ctx, key))
		assert.NoError(t, storage.Delete(ctx, key))
		_, err := os.Stat(filepath.Join(tempDir, filepath.FromSlash(key)))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("URLs", func(t *testing.T) {
		expected := "/" + filepath.ToSlash(filepath.Join(tempDir, "some/key"))
		assert.Equal(t, expected, storage.PublicURL("some/key"))

		signed, err := storage.SignedURL(ctx, "some/key", time.Hour)
		require.NoError(t, err)
		assert.Equal(t, expected, signed)
	})
}

func TestStorageKeys(t *testing.T) {
	key := GenerateStorageKey("prefix", "export.csv")
	assert.True(t, strings.HasPrefix(key, "prefix/"))
	assert.True(t, strings.HasSuffix(key, ".csv"))
	assert.Len(t, strings.Split(filepath.Base(key), "_"), 2)

	assert.True(t, strings.HasPrefix(RateConfirmationKey("l1"), "loads/l1/rate-confirmations/"))

	day := time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC)
	assert.True(t, strings.HasPrefix(CDRArchiveKey(day, "cdr.xlsx"), "call-reports/2024-03-09/"))
}

func TestNewStorageFallsBackToLocal(t *testing.T) {
	cfg := &config.Config{UploadDir: t.TempDir()}
	storage := NewStorage(cfg)
	assert.Equal(t, "local", storage.Name())
}

func TestR2PublicURL(t *testing.T) {
	r2 := &R2Storage{bucket: "b", publicURL: "https://files.example.com/"}
	assert.Equal(t, "https://files.example.com/a/b.pdf", r2.PublicURL("a/b.pdf"))
	assert.Equal(t, "r2", r2.Name())

	r2.publicURL = ""
	assert.Empty(t, r2.PublicURL("a/b.pdf"))
}
