package util

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

// AtomicWrite streams r into a sibling temp file and renames it over dst.
func AtomicWrite(fsys afero.Fs, dst string, r io.Reader) error {
	if err := fsys.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create parent dir: %w", err)
	}

	tmp := dst + ".treesync.tmp"
	f, err := fsys.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = fsys.Remove(tmp)
		return fmt.Errorf("failed to write: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := fsys.Rename(tmp, dst); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("failed to rename: %w", err)
	}

	return nil
}

func RemoveIfExists(fsys afero.Fs, path string) error {
	if err := fsys.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}

	return nil
}

// MD5 returns the hex md5 digest of the file at path.
func MD5(fsys afero.Fs, path string) (string, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}

	defer func(f afero.File) {
		_ = f.Close()
	}(f)

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
