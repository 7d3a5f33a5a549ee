package sharepoint

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_RoundTrip(t *testing.T) {
	cursor := NewCursor()
	cursor.DeltaLink = "https://graph.microsoft.com/v1.0/drives/d/root/delta?token=abc"

	decoded, err := DecodeCursor(cursor.Encode())

	require.NoError(t, err)
	assert.Equal(t, CursorVersion, decoded.Version)
	assert.Equal(t, cursor.DeltaLink, decoded.DeltaLink)
	assert.False(t, decoded.IsEmpty())
}

func TestDecodeCursor_Empty(t *testing.T) {
	cursor, err := DecodeCursor("")

	require.NoError(t, err)
	assert.True(t, cursor.IsEmpty())
	assert.Equal(t, CursorVersion, cursor.Version)
}

func TestDecodeCursor_InvalidBase64(t *testing.T) {
	_, err := DecodeCursor("not base64 !!!")
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestDecodeCursor_InvalidJSON(t *testing.T) {
	_, err := DecodeCursor(base64.StdEncoding.EncodeToString([]byte("not json")))
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestDecodeCursor_FutureVersion(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString([]byte(`{"v":99,"delta_link":"x"}`))

	_, err := DecodeCursor(raw)
	assert.ErrorIs(t, err, ErrInvalidCursor)
}
