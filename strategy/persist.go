// Copyright (c) 2024 Neomantra Corp
//
// User-data and strategy-output persistence (spec §4.5.5, §6.4). JSON
// encoding uses segmentio/encoding/json, the fast-path JSON library already
// in the teacher's go.mod, for the same reason the teacher pulls it in:
// hot-path marshal/unmarshal of flat KV and record data.

package strategy

import (
	"os"
	"path/filepath"

	"github.com/segmentio/encoding/json"
)

// SaveUserData persists a context's opaque user-data KV store to
// `outputs/{name}/ud_{name}.json` (spec §4.5.5, §6.4).
func SaveUserData(outputsDir, name string, data map[string]string) error {
	dir := filepath.Join(outputsDir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	buf, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "ud_"+name+".json"), buf, 0644)
}

// LoadUserData reloads a previously saved user-data KV store, returning an
// empty map if the file doesn't exist yet.
func LoadUserData(outputsDir, name string) (map[string]string, error) {
	path := filepath.Join(outputsDir, name, "ud_"+name+".json")
	buf, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	var data map[string]string
	if err := json.Unmarshal(buf, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// LoadUserDataValue implements `stra_load_user_data(k, default)` semantics.
func LoadUserDataValue(data map[string]string, key, def string) string {
	if v, ok := data[key]; ok {
		return v
	}
	return def
}

// StateDump is the end-of-backtest state dump shape written to
// `outputs/{name}/{name}.json` (spec §6.4).
type StateDump struct {
	Positions  map[string]*PositionInfo     `json:"positions"`
	Signals    map[string]*Signal           `json:"signals"`
	CondOrders map[string][]ConditionalOrder `json:"conditions"`
	Fund       FundInfo                     `json:"fund"`
}

// SaveStateDump writes the full context state snapshot.
func SaveStateDump(outputsDir, name string, dump StateDump) error {
	dir := filepath.Join(outputsDir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	buf, err := json.Marshal(dump)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name+".json"), buf, 0644)
}
