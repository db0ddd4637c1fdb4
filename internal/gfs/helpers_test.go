package gfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/i474232898/windmap/internal/store"
)

var errCorrupt = errors.New("grib2json: corrupt message")

// fakeConverter copies a summary of the raw file into the output document.
type fakeConverter struct {
	mu    sync.Mutex
	fail  map[string]bool
	calls []string
}

func (f *fakeConverter) Convert(_ context.Context, rawPath, outPath string) error {
	name := filepath.Base(rawPath)

	f.mu.Lock()
	f.calls = append(f.calls, name)
	fail := f.fail[name]
	f.mu.Unlock()

	if fail {
		// Leave a partial scratch file behind like a crashed converter would.
		_ = os.WriteFile(outPath, []byte(`[{"hea`), 0o644)
		return errCorrupt
	}

	data, err := os.ReadFile(rawPath)
	if err != nil {
		return err
	}
	doc := fmt.Sprintf(`[{"header":{"file":%q},"data":[%d]}]`, name, len(data))
	return os.WriteFile(outPath, []byte(doc), 0o644)
}

func newTestStore(t *testing.T) *store.FileStore {
	t.Helper()
	root := t.TempDir()
	return store.NewFileStore(filepath.Join(root, "grib-data"), filepath.Join(root, "json-data"))
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeRaw(t *testing.T, st *store.FileStore, name, body string) {
	t.Helper()
	require.NoError(t, st.EnsureRawDir())
	require.NoError(t, os.WriteFile(st.RawPath(name), []byte(body), 0o644))
}

func writeDocument(t *testing.T, st *store.FileStore, name, body string) {
	t.Helper()
	require.NoError(t, st.EnsureDocDir())
	require.NoError(t, os.WriteFile(st.DocumentPath(name), []byte(body), 0o644))
}

func fileExists(t *testing.T, path string) bool {
	t.Helper()
	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false
	}
	require.NoError(t, err)
	return true
}
