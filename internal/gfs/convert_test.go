package gfs

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertAllIsolatesFailures(t *testing.T) {
	st := newTestStore(t)
	names := []string{"2024010106.f000", "2024010106.f003", "2024010106.f006"}
	for _, n := range names {
		writeRaw(t, st, n, "GRIB")
	}

	conv := &fakeConverter{fail: map[string]bool{"2024010106.f003": true}}
	bridge := NewConversionBridge(st, conv, quietLogger())

	err := bridge.ConvertAll(context.Background(), names)
	require.Error(t, err)
	assert.ErrorIs(t, err, errCorrupt)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 1)
	assert.Contains(t, err.Error(), "2024010106.f003")

	// Every item was attempted, in order.
	assert.Equal(t, names, conv.calls)

	for _, n := range []string{"2024010106.f000", "2024010106.f006"} {
		assert.True(t, fileExists(t, st.DocumentPath(DocumentNameFor(n))), n)
		assert.False(t, fileExists(t, st.RawPath(n)), "raw file %s should be removed", n)
	}

	assert.True(t, fileExists(t, st.RawPath("2024010106.f003")), "failed raw file is retained")
	assert.False(t, fileExists(t, st.DocumentPath("2024010106.f003.json")))

	entries, err := os.ReadDir(st.DocDir())
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no scratch output may survive a failed conversion")
}

func TestConvertAllSucceeds(t *testing.T) {
	st := newTestStore(t)
	writeRaw(t, st, "2024010100.f000", "GRIB")

	bridge := NewConversionBridge(st, &fakeConverter{}, quietLogger())
	require.NoError(t, bridge.ConvertAll(context.Background(), []string{"2024010100.f000"}))

	data, err := st.ReadDocument("2024010100.f000.json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"header":{"file":"2024010100.f000"},"data":[4]}]`, string(data))
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not available on windows")
	}
	path := filepath.Join(t.TempDir(), "grib2json")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestExecConverterPassesPaths(t *testing.T) {
	// Arguments: --data --output <out> --names --compact <in>
	bin := writeScript(t, `cp "$6" "$3"`+"\n")

	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	out := filepath.Join(dir, "out.json")
	require.NoError(t, os.WriteFile(in, []byte(`[]`), 0o644))

	require.NoError(t, NewExecConverter(bin, 0).Convert(context.Background(), in, out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}

func TestExecConverterReportsStderr(t *testing.T) {
	bin := writeScript(t, "echo starting >&2\necho 'bad grib record' >&2\nexit 3\n")

	err := NewExecConverter(bin, 0).Convert(context.Background(), "in", "out")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad grib record")
}
