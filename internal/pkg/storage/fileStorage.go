package storage

import (
	"io"
	"os"
	"path/filepath"
)

// FileStorage gives read access to files below a base directory.
type FileStorage interface {
	Get(path string) (io.ReadCloser, error)
	ReadAll(path string) ([]byte, error)
	Exists(path string) bool
}

type fileStorage struct {
	basePath string
}

func NewFileStorage(basePath string) FileStorage {
	return &fileStorage{basePath: basePath}
}

// resolve keeps lookups inside basePath, "../x" maps to basePath/x.
func (s *fileStorage) resolve(path string) string {
	return filepath.Join(s.basePath, filepath.Clean("/"+path))
}

func (s *fileStorage) Get(path string) (io.ReadCloser, error) {
	return os.Open(s.resolve(path))
}

func (s *fileStorage) ReadAll(path string) ([]byte, error) {
	f, err := s.Get(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (s *fileStorage) Exists(path string) bool {
	info, err := os.Stat(s.resolve(path))
	return err == nil && !info.IsDir()
}
