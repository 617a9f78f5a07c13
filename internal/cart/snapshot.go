package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrMalformedSnapshot = errors.New("malformed cart snapshot")

// writeSnapshot replaces path atomically: the state is written to a temp file
// in the same directory and renamed over the target.
func writeSnapshot(path string, st State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

func readSnapshot(path string) (State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return State{}, err
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if err := st.validate(); err != nil {
		return State{}, err
	}
	return st, nil
}

func (st State) validate() error {
	if st.AddOnTotal.IsNegative() {
		return fmt.Errorf("%w: negative add-on total", ErrMalformedSnapshot)
	}
	for i, it := range st.Items {
		if it.Qty < 1 {
			return fmt.Errorf("%w: item %d has quantity %d", ErrMalformedSnapshot, i, it.Qty)
		}
		if it.Price.IsNegative() {
			return fmt.Errorf("%w: item %d has negative price", ErrMalformedSnapshot, i)
		}
		if it.IsAddOn {
			return fmt.Errorf("%w: item %d is an add-on line", ErrMalformedSnapshot, i)
		}
	}
	return nil
}
