package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harbourview/driftsync/internal/core/domain"
	"github.com/harbourview/driftsync/internal/core/ports/driven"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNew_RequiresPath(t *testing.T) {
	_, err := New("src-1", "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	c, err := New("src-1", dir)
	require.NoError(t, err)

	assert.NoError(t, c.Validate(context.Background()))
}

func TestValidate_MissingDir(t *testing.T) {
	c, err := New("src-1", filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)

	assert.Error(t, c.Validate(context.Background()))
}

func TestFullSync(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "readme.md", "# hello")
	writeFile(t, dir, "sub/notes.txt", "notes")
	writeFile(t, dir, ".hidden/secret.txt", "secret")

	c, err := New("src-1", dir)
	require.NoError(t, err)

	docsChan, errsChan := c.FullSync(context.Background())

	var docs []domain.Document
	for doc := range docsChan {
		docs = append(docs, doc)
	}
	terminal := <-errsChan

	var complete *driven.SyncComplete
	require.ErrorAs(t, terminal, &complete)
	assert.NotEmpty(t, complete.NewCursor)
	assert.Equal(t, 1, complete.Skipped, "hidden file skipped")

	require.Len(t, docs, 2)
	for _, doc := range docs {
		assert.Equal(t, "src-1", doc.SourceID)
		assert.Equal(t, []string{domain.PrincipalPublic}, doc.AllowedGroups,
			"local files are public")
		assert.NotEmpty(t, doc.Content)
	}
}

func TestIncrementalSync_OnlyNewerFiles(t *testing.T) {
	dir := t.TempDir()
	old := writeFile(t, dir, "old.txt", "old")
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	writeFile(t, dir, "new.txt", "new")

	c, err := New("src-1", dir)
	require.NoError(t, err)

	since := time.Now().Add(-time.Minute)
	state := domain.SyncState{Cursor: strconv.FormatInt(since.UnixNano(), 10)}

	changesChan, errsChan := c.IncrementalSync(context.Background(), state)

	var changes []domain.DocumentChange
	for change := range changesChan {
		changes = append(changes, change)
	}
	terminal := <-errsChan

	var complete *driven.SyncComplete
	require.ErrorAs(t, terminal, &complete)

	require.Len(t, changes, 1)
	assert.Equal(t, domain.ChangeUpdated, changes[0].Type)
	assert.Equal(t, "new.txt", changes[0].Document.Name)
}

func TestIncrementalSync_InvalidCursor(t *testing.T) {
	c, err := New("src-1", t.TempDir())
	require.NoError(t, err)

	_, errsChan := c.IncrementalSync(context.Background(), domain.SyncState{Cursor: "bogus"})
	assert.ErrorIs(t, <-errsChan, domain.ErrCursorExpired)
}

func TestDetectMIMEType(t *testing.T) {
	assert.Equal(t, "text/markdown", detectMIMEType("readme.md"))
	assert.Equal(t, "text/plain", detectMIMEType("app.log"))
	assert.Equal(t, "text/typescript", detectMIMEType("main.ts"))
	assert.Equal(t, "text/x-go", detectMIMEType("main.go"))
	assert.Equal(t, "text/plain", detectMIMEType("LICENSE"))
}

func TestIsHidden(t *testing.T) {
	assert.True(t, isHidden("/home/me/.config/app.toml"))
	assert.True(t, isHidden(".git/config"))
	assert.False(t, isHidden("/home/me/docs/readme.md"))
}

func TestClose_Idempotent(t *testing.T) {
	c, err := New("src-1", t.TempDir())
	require.NoError(t, err)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, errsChan := c.FullSync(context.Background())
	assert.ErrorIs(t, <-errsChan, domain.ErrConnectorClosed)
}
