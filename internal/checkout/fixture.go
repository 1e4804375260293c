package checkout

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFixture reads a YAML checkout snapshot from path.
func LoadFixture(path string) (State, error) {
	f, err := os.Open(path)
	if err != nil {
		return State{}, fmt.Errorf("open fixture %s: %w", path, err)
	}
	defer f.Close()
	return DecodeFixture(f)
}

// DecodeFixture decodes a YAML checkout snapshot.
func DecodeFixture(r io.Reader) (State, error) {
	var s State
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return State{}, fmt.Errorf("decode fixture: %w", err)
	}
	return s, nil
}
