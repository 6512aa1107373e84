package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestItemIDAcceptsNumbersAndStrings(t *testing.T) {
	var items []Item
	err := json.Unmarshal([]byte(`[
		{"id": 7, "title": "Groceries", "description": "milk and eggs"},
		{"id": "65f1c0ab", "title": "Laundry", "description": "whites only"},
		{"id": null, "title": "Draft", "description": "no id yet"}
	]`), &items)
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, ItemID("7"), items[0].ID)
	require.Equal(t, ItemID("65f1c0ab"), items[1].ID)
	require.Equal(t, ItemID(""), items[2].ID)
}

func TestItemIDRejectsObjects(t *testing.T) {
	var it Item
	err := json.Unmarshal([]byte(`{"id": {"oid": 1}}`), &it)
	require.Error(t, err)
}

func TestItemIDMarshalsAsString(t *testing.T) {
	b, err := json.Marshal(Item{ID: "12", Title: "Read", Description: "a book"})
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"12","title":"Read","description":"a book"}`, string(b))
}
