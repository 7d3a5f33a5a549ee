package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentID_Stable(t *testing.T) {
	a := DocumentID("src-1", "sharepoint://items/42")
	b := DocumentID("src-1", "sharepoint://items/42")
	assert.Equal(t, a, b)
}

func TestDocumentID_DiffersBySourceAndURI(t *testing.T) {
	base := DocumentID("src-1", "adls://fs/a.txt")
	assert.NotEqual(t, base, DocumentID("src-2", "adls://fs/a.txt"))
	assert.NotEqual(t, base, DocumentID("src-1", "adls://fs/b.txt"))
}

func TestDocumentID_IndexSafe(t *testing.T) {
	id := DocumentID("src-1", "adls://fs/with spaces/ünïcode.txt")
	assert.Len(t, id, 32)
	assert.Regexp(t, "^[0-9a-f]+$", id)
}
