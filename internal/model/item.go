package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Item is the server-owned CRUD entity shown on the dashboard.
type Item struct {
	ID          ItemID `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ItemInput is the body of create and update calls.
type ItemInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Input returns the editable part of the item.
func (it Item) Input() ItemInput {
	return ItemInput{Title: it.Title, Description: it.Description}
}

// ItemID is opaque to the client. Backends hand out numbers or strings,
// both decode into the same form.
type ItemID string

func (id *ItemID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("item id: %w", err)
		}
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("item id: %w", err)
	}
	*id = ItemID(n.String())
	return nil
}

func (id ItemID) String() string { return string(id) }
