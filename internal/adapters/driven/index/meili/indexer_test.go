package meili

import (
	"encoding/json"
	"testing"

	meili "github.com/meilisearch/meilisearch-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harbourview/driftsync/internal/core/ports/driven"
)

func TestBuildPrincipalFilter(t *testing.T) {
	tests := []struct {
		name       string
		principals []string
		want       string
	}{
		{
			name:       "no principals is public only",
			principals: nil,
			want:       `allowed_groups IN ["public"]`,
		},
		{
			name:       "user and group",
			principals: []string{"user:u1", "group:g1"},
			want:       `allowed_groups IN ["public", "user:u1", "group:g1"]`,
		},
		{
			name:       "public not duplicated",
			principals: []string{"public", "user:u1"},
			want:       `allowed_groups IN ["public", "user:u1"]`,
		},
		{
			name:       "empty entries dropped",
			principals: []string{"", "user:u1"},
			want:       `allowed_groups IN ["public", "user:u1"]`,
		},
		{
			name:       "embedded quotes escaped",
			principals: []string{`user:a"b`},
			want:       `allowed_groups IN ["public", "user:a\"b"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildPrincipalFilter(tt.principals))
		})
	}
}

func TestSanitiseRecords(t *testing.T) {
	records := []driven.IndexRecord{
		{ID: "doc-1", AllowedGroups: []string{"user:u1"}},
		{ID: "doc-2", AllowedGroups: nil},
		{ID: "doc-3", AllowedGroups: []string{}},
	}

	out := sanitiseRecords(records)

	require.Len(t, out, 3, "nil allow-list records are rewritten, not dropped")
	assert.Equal(t, []string{"user:u1"}, out[0].AllowedGroups)
	// An unreadable ACL becomes an empty allow-list so the stored entry
	// is overwritten and matches no principal filter.
	assert.NotNil(t, out[1].AllowedGroups)
	assert.Empty(t, out[1].AllowedGroups)
	assert.Empty(t, out[2].AllowedGroups)

	// Input untouched.
	assert.Nil(t, records[1].AllowedGroups)
}

func TestDecodeString(t *testing.T) {
	hit := meili.Hit{
		"id":    json.RawMessage(`"doc-1"`),
		"title": json.RawMessage(`"report.md"`),
		"size":  json.RawMessage(`7`),
	}

	assert.Equal(t, "doc-1", decodeString(hit, "id"))
	assert.Equal(t, "report.md", decodeString(hit, "title"))
	assert.Empty(t, decodeString(hit, "missing"))
	assert.Empty(t, decodeString(hit, "size"), "non-string values decode to empty")
}

func TestDecodeFormattedString(t *testing.T) {
	hit := meili.Hit{
		"_formatted": json.RawMessage(`{"content":"  ...quarterly <em>report</em>...  "}`),
	}

	assert.Equal(t, "...quarterly <em>report</em>...", decodeFormattedString(hit, "content"))
	assert.Empty(t, decodeFormattedString(hit, "missing"))
	assert.Empty(t, decodeFormattedString(meili.Hit{}, "content"))
}
