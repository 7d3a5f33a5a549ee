package datalake

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_RoundTrip(t *testing.T) {
	cursor := NewCursor()
	watermark := time.Date(2026, 3, 2, 10, 30, 0, 123456789, time.UTC)
	cursor.SetWatermark(watermark)

	decoded, err := DecodeCursor(cursor.Encode())

	require.NoError(t, err)
	assert.Equal(t, CursorVersion, decoded.Version)
	assert.False(t, decoded.IsEmpty())
	assert.True(t, decoded.WatermarkTime().Equal(watermark))
}

func TestDecodeCursor_Empty(t *testing.T) {
	cursor, err := DecodeCursor("")

	require.NoError(t, err)
	assert.True(t, cursor.IsEmpty())
	assert.True(t, cursor.WatermarkTime().IsZero())
}

func TestDecodeCursor_Invalid(t *testing.T) {
	_, err := DecodeCursor("%%%")
	assert.ErrorIs(t, err, ErrInvalidCursor)

	_, err = DecodeCursor(base64.StdEncoding.EncodeToString([]byte("not json")))
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestDecodeCursor_FutureVersion(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString([]byte(`{"v":99,"watermark":"x"}`))

	_, err := DecodeCursor(raw)
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestCursor_MalformedWatermarkIsZero(t *testing.T) {
	c := &Cursor{Version: CursorVersion, Watermark: "not a time"}
	assert.True(t, c.WatermarkTime().IsZero())
}
