package checkout

import (
	"bytes"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"
)

// InitializationData is the opaque, provider-specific configuration attached
// to a payment method. It is stored as a protobuf Struct so it round-trips
// through JSON and YAML without a schema.
type InitializationData struct {
	fields *structpb.Struct
}

// NewInitializationData builds InitializationData from a plain map.
func NewInitializationData(m map[string]any) (InitializationData, error) {
	if m == nil {
		return InitializationData{}, nil
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return InitializationData{}, fmt.Errorf("initialization data: %w", err)
	}
	return InitializationData{fields: s}, nil
}

// MustInitializationData is NewInitializationData that panics on error.
func MustInitializationData(m map[string]any) InitializationData {
	d, err := NewInitializationData(m)
	if err != nil {
		panic(err)
	}
	return d
}

// IsZero reports whether no data is present.
func (d InitializationData) IsZero() bool {
	return d.fields == nil || len(d.fields.GetFields()) == 0
}

// Value returns the raw value stored under key.
func (d InitializationData) Value(key string) (*structpb.Value, bool) {
	if d.fields == nil {
		return nil, false
	}
	v, ok := d.fields.GetFields()[key]
	return v, ok
}

// String returns the string stored under key, or "" when absent or not a string.
func (d InitializationData) String(key string) string {
	v, ok := d.Value(key)
	if !ok {
		return ""
	}
	if _, isString := v.GetKind().(*structpb.Value_StringValue); !isString {
		return ""
	}
	return v.GetStringValue()
}

// Map returns a plain-map copy of the data.
func (d InitializationData) Map() map[string]any {
	if d.fields == nil {
		return nil
	}
	return d.fields.AsMap()
}

func (d InitializationData) MarshalJSON() ([]byte, error) {
	if d.fields == nil {
		return []byte("null"), nil
	}
	return protojson.Marshal(d.fields)
}

func (d *InitializationData) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*d = InitializationData{}
		return nil
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(b, s); err != nil {
		return fmt.Errorf("initialization data: %w", err)
	}
	d.fields = s
	return nil
}

func (d *InitializationData) UnmarshalYAML(node *yaml.Node) error {
	var m map[string]any
	if err := node.Decode(&m); err != nil {
		return err
	}
	parsed, err := NewInitializationData(m)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
