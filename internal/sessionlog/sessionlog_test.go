package sessionlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/birchlabs/irengine/internal/ircode"
	"github.com/birchlabs/irengine/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	_, err := New(dir)
	require.NoError(t, err)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestWrite_HeaderWrittenOnceAndRowsAppend(t *testing.T) {
	dir := t.TempDir()
	l, err := New(dir)
	require.NoError(t, err)
	defer l.Close()

	code := ircode.Code{Protocol: protocol.NEC, Data: 0x1234, Bits: 32}
	require.NoError(t, l.Write("tv/Power", code, 3))
	require.NoError(t, l.Write("tv/Vol+", code, 2))

	name := time.Now().UTC().Format("2006-01-02.log")
	contents, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(contents), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, header, lines[0]+"\n")
	assert.Contains(t, lines[1], "tv/Power")
	assert.Contains(t, lines[2], "tv/Vol+")
}

func TestWrite_AppendsToExistingFileWithoutDuplicatingHeader(t *testing.T) {
	dir := t.TempDir()
	name := time.Now().UTC().Format("2006-01-02.log")
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(header), 0o644))

	l, err := New(dir)
	require.NoError(t, err)
	defer l.Close()

	require.NoError(t, l.Write("tv/Power", ircode.Code{Protocol: protocol.NEC, Data: 1, Bits: 32}, 1))

	contents, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(contents), "utime,isotime"))
}

func TestClose_IsIdempotentWithoutWrite(t *testing.T) {
	l, err := New(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, l.Close())
	assert.NoError(t, l.Close())
}
