package api

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_JSON_Get(t *testing.T) {
	obj := JSON{
		"id":    "111",
		"count": float64(3),
		"emoji": JSON{"id": nil, "name": "heart"},
		"attachments": Array{
			{"id": "333", "width": 800},
		},
	}

	id, err := obj.GetString("id")
	require.NoError(t, err)
	require.Equal(t, "111", id)

	count, err := obj.GetInt("count")
	require.NoError(t, err)
	require.Equal(t, 3, count)

	// Dotted paths traverse nested objects, null resolves to the zero value.
	name, err := obj.GetString("emoji.name")
	require.NoError(t, err)
	require.Equal(t, "heart", name)

	emojiID, err := obj.GetString("emoji.id")
	require.NoError(t, err)
	require.Empty(t, emojiID)

	attachments, err := obj.GetArray("attachments")
	require.NoError(t, err)
	require.Len(t, attachments, 1)

	_, err = obj.GetString("missing")
	require.Error(t, err)
}

func Test_Parameter_Encode(t *testing.T) {
	query := Parameter{"limit": "100", "before": "a b"}
	require.Equal(t, "before=a%20b&limit=100", query.Encode())
}
