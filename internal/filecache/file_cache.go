//go:build !tinygo

package filecache

import (
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
)

// New returns a Cache backed by plain files under dir, one per Key.
func New(dir string) Cache {
	return newFileCache(dir)
}

func newFileCache(dir string) *fileCache {
	return &fileCache{dirPath: dir}
}

type fileCache struct {
	dirPath string
}

// path returns the file dir holds key's entry under: the hex encoding of
// the full key, so collisions are only possible if the caller's Key
// construction collides.
func (fc *fileCache) path(key Key) string {
	return filepath.Join(fc.dirPath, hex.EncodeToString(key[:]))
}

func (fc *fileCache) Get(key Key) (content io.ReadCloser, ok bool, err error) {
	f, err := os.Open(fc.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return f, true, nil
}

func (fc *fileCache) Add(key Key, content io.Reader) (err error) {
	if err := os.MkdirAll(fc.dirPath, 0o755); err != nil {
		return err
	}
	f, err := os.Create(fc.path(key))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = io.Copy(f, content)
	return err
}

func (fc *fileCache) Delete(key Key) (err error) {
	err = os.Remove(fc.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
