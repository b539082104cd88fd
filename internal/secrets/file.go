package secrets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// KeyFileStore читает секреты из файлов под root. Файл, доступный группе
// или остальным, считается скомпрометированным и не читается.
type KeyFileStore struct {
	root fs.FS
	dir  string
}

var _ Store = (*KeyFileStore)(nil)

func NewKeyFileStore(dir string) *KeyFileStore {
	return &KeyFileStore{root: os.DirFS(dir), dir: dir}
}

func (s *KeyFileStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := strings.TrimSpace(key)
	if name == "" {
		return "", errors.New("secret key is empty")
	}
	if !filepath.IsLocal(name) {
		return "", fmt.Errorf("secret key %q escapes %s", key, s.dir)
	}
	name = filepath.ToSlash(name)

	info, err := fs.Stat(s.root, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("key file %q: %w", key, ErrNotFound)
		}
		return "", fmt.Errorf("stat key file %q: %w", key, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("key file %q is a directory", key)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		return "", fmt.Errorf("key file %q has mode %04o, want 0600 or stricter", key, perm)
	}

	data, err := fs.ReadFile(s.root, name)
	if err != nil {
		return "", fmt.Errorf("read key file %q: %w", key, err)
	}

	value := strings.TrimSpace(string(data))
	if value == "" {
		return "", fmt.Errorf("key file %q is empty: %w", key, ErrNotFound)
	}
	return value, nil
}
