package unpack

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/unpack/internal/codec"
	"github.com/meigma/unpack/internal/codec/codectest"
)

type zipEntry struct {
	name string
	data []byte
	mod  time.Time
}

// writeZip builds a real zip fixture on disk. The name carries no archive
// extension, so opening it goes through magic-number sniffing.
func writeZip(t *testing.T, entries []zipEntry) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "bundle.dat")
	f, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.name,
			Modified: e.mod,
			Method:   zip.Deflate,
		})
		require.NoError(t, err)
		if len(e.data) > 0 {
			_, err = w.Write(e.data)
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestExtractTo_ZipEndToEnd(t *testing.T) {
	t.Parallel()

	mod := time.Date(2024, 3, 14, 15, 9, 26, 0, time.UTC)
	path := writeZip(t, []zipEntry{
		{name: "a.txt", data: []byte("alpha"), mod: mod},
		{name: "docs/", mod: mod},
		{name: "docs/b.txt", data: []byte("bravo bravo"), mod: mod},
		{name: "empty.txt", mod: mod},
	})

	a, err := Open(path)
	require.NoError(t, err)

	dest := t.TempDir()
	stats, err := a.ExtractTo(dest)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.FileCount)
	assert.Equal(t, 1, stats.DirCount)
	assert.Equal(t, int64(len("alpha")+len("bravo bravo")), stats.TotalBytes)

	got, err := os.ReadFile(filepath.Join(dest, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("alpha"), got)

	got, err = os.ReadFile(filepath.Join(dest, "docs", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("bravo bravo"), got)

	// The two extraction modes must agree byte for byte.
	inMemory, err := a.ReadFile("docs/b.txt")
	require.NoError(t, err)
	assert.Equal(t, got, inMemory)

	info, err := os.Stat(filepath.Join(dest, "empty.txt"))
	require.NoError(t, err)
	assert.Zero(t, info.Size())

	// Modification times come back from the container metadata. Zip
	// stores them with second precision.
	info, err = os.Stat(filepath.Join(dest, "a.txt"))
	require.NoError(t, err)
	assert.WithinDuration(t, mod, info.ModTime(), 2*time.Second)
}

func TestExtractTo_WritesTreeAndStats(t *testing.T) {
	t.Parallel()

	fake := &codectest.Codec{
		Entries: []codectest.Entry{
			codectest.Dir("docs"),
			codectest.File("docs/guide.md", []byte("read me")),
			codectest.File("empty.bin", nil),
		},
	}
	a, err := Open(touchArchive(t), WithCodec(fake))
	require.NoError(t, err)

	dest := t.TempDir()
	stats, err := a.ExtractTo(dest)
	require.NoError(t, err)

	assert.Equal(t, ExtractStats{FileCount: 2, DirCount: 1, TotalBytes: 7}, stats)
	assert.DirExists(t, filepath.Join(dest, "docs"))
	assert.FileExists(t, filepath.Join(dest, "docs", "guide.md"))
	assert.FileExists(t, filepath.Join(dest, "empty.bin"))
	assert.True(t, fake.Balanced())
}

func TestExtractTo_ConflictFailsWithoutOverwrite(t *testing.T) {
	t.Parallel()

	fake := &codectest.Codec{
		Entries: []codectest.Entry{codectest.File("report.txt", []byte("new"))},
	}
	a, err := Open(touchArchive(t), WithCodec(fake))
	require.NoError(t, err)

	dest := t.TempDir()
	existing := filepath.Join(dest, "report.txt")
	require.NoError(t, os.WriteFile(existing, []byte("keep me"), 0o644))

	stats, err := a.ExtractTo(dest)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCreate)
	assert.ErrorIs(t, err, fs.ErrExist)
	assert.Zero(t, stats.FileCount)

	got, rerr := os.ReadFile(existing)
	require.NoError(t, rerr)
	assert.Equal(t, []byte("keep me"), got, "the existing file must be untouched")
	assert.True(t, fake.Balanced())
}

func TestExtractTo_OverwriteReplaces(t *testing.T) {
	t.Parallel()

	fake := &codectest.Codec{
		Entries: []codectest.Entry{codectest.File("report.txt", []byte("new"))},
	}
	a, err := Open(touchArchive(t), WithCodec(fake))
	require.NoError(t, err)

	dest := t.TempDir()
	existing := filepath.Join(dest, "report.txt")
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0o644))

	stats, err := a.ExtractTo(dest, ExtractWithOverwrite(true))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FileCount)

	got, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
}

func TestExtractTo_AbortKeepsEarlierFiles(t *testing.T) {
	t.Parallel()

	fake := &codectest.Codec{
		Entries: []codectest.Entry{
			codectest.File("one.txt", []byte("first")),
			{Header: codec.Header{Path: "two.txt", Size: 8}, Data: []byte("par"), ReadErr: codec.ErrBadData},
			codectest.File("three.txt", []byte("never")),
		},
	}
	a, err := Open(touchArchive(t), WithCodec(fake))
	require.NoError(t, err)

	dest := t.TempDir()
	stats, err := a.ExtractTo(dest)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadData)

	var ae *ArchiveError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "two.txt", ae.Entry)

	// Entries committed before the failure stay; the failing entry
	// leaves nothing behind, and later entries are never reached.
	got, rerr := os.ReadFile(filepath.Join(dest, "one.txt"))
	require.NoError(t, rerr)
	assert.Equal(t, []byte("first"), got)
	assert.NoFileExists(t, filepath.Join(dest, "two.txt"))
	assert.NoFileExists(t, filepath.Join(dest, "three.txt"))
	assert.Equal(t, 1, stats.FileCount)

	names, rerr := os.ReadDir(dest)
	require.NoError(t, rerr)
	assert.Len(t, names, 1, "no temp files may survive the abort")
	assert.True(t, fake.Balanced())
}

func TestExtractTo_RejectsEscapingPaths(t *testing.T) {
	t.Parallel()

	fake := &codectest.Codec{
		Entries: []codectest.Entry{
			{Header: codec.Header{Path: "../evil.txt", Size: 4}, Data: []byte("evil")},
		},
	}
	a, err := Open(touchArchive(t), WithCodec(fake))
	require.NoError(t, err)

	base := t.TempDir()
	dest := filepath.Join(base, "out")
	require.NoError(t, os.Mkdir(dest, 0o750))

	_, err = a.ExtractTo(dest)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadData)
	assert.NoFileExists(t, filepath.Join(base, "evil.txt"))
	assert.Equal(t, 0, fake.ReadCalls, "escaping entries must be rejected before any data read")
	assert.True(t, fake.Balanced())
}

func TestExtractTo_CreatesParentDirectories(t *testing.T) {
	t.Parallel()

	// No directory entries at all; parents come from the file path.
	fake := &codectest.Codec{
		Entries: []codectest.Entry{
			codectest.File("deep/nested/leaf.txt", []byte("leaf")),
		},
	}
	a, err := Open(touchArchive(t), WithCodec(fake))
	require.NoError(t, err)

	dest := t.TempDir()
	stats, err := a.ExtractTo(dest)
	require.NoError(t, err)

	assert.Equal(t, ExtractStats{FileCount: 1, TotalBytes: 4}, stats)
	got, err := os.ReadFile(filepath.Join(dest, "deep", "nested", "leaf.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("leaf"), got)
}

func TestExtractTo_DirectoryEntriesNeverReadData(t *testing.T) {
	t.Parallel()

	fake := &codectest.Codec{
		Entries: []codectest.Entry{
			codectest.Dir("a"),
			codectest.Dir("a/b"),
		},
	}
	a, err := Open(touchArchive(t), WithCodec(fake))
	require.NoError(t, err)

	dest := t.TempDir()
	stats, err := a.ExtractTo(dest)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.DirCount)
	assert.Equal(t, 0, fake.ReadCalls)
	assert.DirExists(t, filepath.Join(dest, "a", "b"))
}

func TestExtractTo_ProgressEvents(t *testing.T) {
	t.Parallel()

	fake := &codectest.Codec{
		Entries: []codectest.Entry{
			codectest.File("data.bin", []byte("0123456789")),
		},
	}
	a, err := Open(touchArchive(t), WithCodec(fake), WithBufferSize(4))
	require.NoError(t, err)

	var events []ProgressEvent
	_, err = a.ExtractTo(t.TempDir(), ExtractWithProgress(func(ev ProgressEvent) {
		events = append(events, ev)
	}))
	require.NoError(t, err)

	want := []ProgressEvent{
		{Path: "data.bin", BytesDone: 4, BytesTotal: 10},
		{Path: "data.bin", BytesDone: 8, BytesTotal: 10},
		{Path: "data.bin", BytesDone: 10, BytesTotal: 10},
		{Path: "data.bin", BytesDone: 10, BytesTotal: 10}, // commit
	}
	assert.Equal(t, want, events)
}

func TestExtractTo_PreserveTimes(t *testing.T) {
	t.Parallel()

	mod := time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC)
	entry := codectest.File("stamped.txt", []byte("x"))
	entry.Header.ModTime = mod

	t.Run("default restores metadata times", func(t *testing.T) {
		t.Parallel()

		fake := &codectest.Codec{Entries: []codectest.Entry{entry}}
		a, err := Open(touchArchive(t), WithCodec(fake))
		require.NoError(t, err)

		dest := t.TempDir()
		_, err = a.ExtractTo(dest)
		require.NoError(t, err)

		info, err := os.Stat(filepath.Join(dest, "stamped.txt"))
		require.NoError(t, err)
		assert.WithinDuration(t, mod, info.ModTime(), time.Second)
	})

	t.Run("disabled keeps write time", func(t *testing.T) {
		t.Parallel()

		fake := &codectest.Codec{Entries: []codectest.Entry{entry}}
		a, err := Open(touchArchive(t), WithCodec(fake))
		require.NoError(t, err)

		dest := t.TempDir()
		_, err = a.ExtractTo(dest, ExtractWithPreserveTimes(false))
		require.NoError(t, err)

		info, err := os.Stat(filepath.Join(dest, "stamped.txt"))
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now(), info.ModTime(), time.Minute)
	})
}

func TestExtractTo_PreserveMode(t *testing.T) {
	t.Parallel()

	entry := codectest.File("script.sh", []byte("#!/bin/sh\n"))
	entry.Header.Mode = 0o700

	fake := &codectest.Codec{Entries: []codectest.Entry{entry}}
	a, err := Open(touchArchive(t), WithCodec(fake))
	require.NoError(t, err)

	dest := t.TempDir()
	_, err = a.ExtractTo(dest, ExtractWithPreserveMode(true))
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dest, "script.sh"))
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0o700), info.Mode().Perm())
}

func TestExtractTo_PasswordOverride(t *testing.T) {
	t.Parallel()

	fake := &codectest.Codec{
		Password: "pw",
		Entries: []codectest.Entry{
			codectest.EncryptedFile("secret.txt", []byte("s3cret")),
		},
	}
	a, err := Open(touchArchive(t), WithCodec(fake), WithPassword("wrong"))
	require.NoError(t, err)

	_, err = a.ExtractTo(t.TempDir())
	assert.ErrorIs(t, err, ErrMissingPassword)

	stats, err := a.ExtractTo(t.TempDir(), ExtractWithPassword("pw"))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FileCount)
	assert.Equal(t, []string{"wrong", "pw"}, fake.Passwords)
}
