package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a raw file or converted document does not exist.
	ErrNotFound = errors.New("file not found")
)

const tempPrefix = ".tmp-"

// FileStore manages the two on-disk areas of the pipeline: raw grid files
// waiting for conversion and converted documents ready to be served.
//
// State lives only in file existence. Writes go through a temporary name in
// the same directory and are published with a rename, so readers never see a
// partially written file.
type FileStore struct {
	rawDir string
	docDir string
}

// NewFileStore creates a FileStore. Directories are created on demand.
func NewFileStore(rawDir, docDir string) *FileStore {
	return &FileStore{
		rawDir: rawDir,
		docDir: docDir,
	}
}

// RawDir returns the raw grid area.
func (s *FileStore) RawDir() string { return s.rawDir }

// DocDir returns the converted document area.
func (s *FileStore) DocDir() string { return s.docDir }

// RawPath returns the path of a raw grid file.
func (s *FileStore) RawPath(name string) string {
	return filepath.Join(s.rawDir, name)
}

// DocumentPath returns the path of a converted document.
func (s *FileStore) DocumentPath(name string) string {
	return filepath.Join(s.docDir, name)
}

// EnsureRawDir creates the raw grid area if needed.
func (s *FileStore) EnsureRawDir() error {
	return ensureDir(s.rawDir)
}

// EnsureDocDir creates the converted document area if needed.
func (s *FileStore) EnsureDocDir() error {
	return ensureDir(s.docDir)
}

func ensureDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("unable to access directory %s: not a directory", dir)
		}
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("unable to access directory %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("unable to create directory %s: %w", dir, err)
	}
	return nil
}

// WriteRaw streams r into the raw area under name. The file becomes visible
// only once the copy has completed.
func (s *FileStore) WriteRaw(name string, r io.Reader) error {
	if err := s.EnsureRawDir(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.rawDir, tempPrefix+name+"-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, s.RawPath(name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish %s: %w", name, err)
	}
	return nil
}

// RawExists reports whether a raw grid file is present.
func (s *FileStore) RawExists(name string) (bool, error) {
	return exists(s.RawPath(name))
}

// RemoveRaw deletes a raw grid file.
func (s *FileStore) RemoveRaw(name string) error {
	err := os.Remove(s.RawPath(name))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

// TempDocumentPath returns a unique scratch path inside the document area
// for producing the document called name.
func (s *FileStore) TempDocumentPath(name, token string) string {
	return filepath.Join(s.docDir, tempPrefix+name+"-"+token)
}

// PublishDocument atomically moves a finished scratch file to its final name.
func (s *FileStore) PublishDocument(tmpPath, name string) error {
	if err := os.Rename(tmpPath, s.DocumentPath(name)); err != nil {
		return fmt.Errorf("publish %s: %w", name, err)
	}
	return nil
}

// DiscardTemp removes a scratch file left by a failed conversion.
func (s *FileStore) DiscardTemp(tmpPath string) {
	_ = os.Remove(tmpPath)
}

// DocumentExists reports whether a converted document is present.
func (s *FileStore) DocumentExists(name string) (bool, error) {
	return exists(s.DocumentPath(name))
}

// ReadDocument returns the content of a converted document.
func (s *FileStore) ReadDocument(name string) ([]byte, error) {
	data, err := os.ReadFile(s.DocumentPath(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// ListDocuments returns the names of all published documents, sorted.
func (s *FileStore) ListDocuments() ([]string, error) {
	entries, err := os.ReadDir(s.docDir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), tempPrefix) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
