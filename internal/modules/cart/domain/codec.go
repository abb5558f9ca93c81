package domain

import (
	"encoding/json"
	"fmt"
)

// Version is the current persisted cart format.
const Version = 1

type persisted struct {
	Version int             `json:"version"`
	State   json.RawMessage `json:"state"`
}

type state struct {
	Items       []Line `json:"items"`
	TableID     string `json:"tableId,omitempty"`
	TableNumber int    `json:"tableNumber,omitempty"`
}

// version 0 carts were bound by table id only.
type stateV0 struct {
	Items   []Line `json:"items"`
	TableID string `json:"tableId,omitempty"`
}

// Encode serialises the cart as {version, state}.
func (c *Cart) Encode() ([]byte, error) {
	c.mu.Lock()
	s := state{Items: append([]Line(nil), c.lines...), TableID: c.tableID, TableNumber: c.tableNumber}
	c.mu.Unlock()

	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return json.Marshal(persisted{Version: Version, State: raw})
}

// Decode restores a cart written by Encode, migrating older versions.
func Decode(data []byte) (*Cart, error) {
	var envelope persisted
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}

	var s state
	switch envelope.Version {
	case 0:
		var old stateV0
		if err := json.Unmarshal(envelope.State, &old); err != nil {
			return nil, fmt.Errorf("decode cart v0: %w", err)
		}
		s = state{Items: old.Items, TableID: old.TableID}
	case Version:
		if err := json.Unmarshal(envelope.State, &s); err != nil {
			return nil, fmt.Errorf("decode cart: %w", err)
		}
	default:
		return nil, fmt.Errorf("decode cart: unsupported version %d", envelope.Version)
	}

	return &Cart{lines: s.Items, tableID: s.TableID, tableNumber: s.TableNumber}, nil
}
