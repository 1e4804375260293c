// Package monitor validates payloads crossing the service boundary against
// JSON schema contracts.
package monitor

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/xeipuuv/gojsonschema"

	"github.com/yourorg/checkout-orchestrator/internal/apperr"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Built-in contract names.
const (
	OrderSubmission = "order_submission"
	ExecuteRequest  = "execute_request"
	MethodRequest   = "method_request"
)

var validationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "checkout_contract_validation_failures_total",
	Help: "Payloads rejected by a JSON schema contract.",
}, []string{"contract"})

// ContractMonitor validates documents against a compiled JSON schema.
type ContractMonitor struct {
	name   string
	schema *gojsonschema.Schema
}

// NewContractMonitor compiles the schema stored at schemaPath.
func NewContractMonitor(schemaPath string) (*ContractMonitor, error) {
	abs, err := filepath.Abs(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("error resolving schema path %s: %w", schemaPath, err)
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewReferenceLoader("file://" + filepath.ToSlash(abs)))
	if err != nil {
		return nil, fmt.Errorf("error loading or compiling schema %s: %w", schemaPath, err)
	}
	name := strings.TrimSuffix(filepath.Base(schemaPath), filepath.Ext(schemaPath))
	return &ContractMonitor{name: name, schema: schema}, nil
}

// NewContractMonitorFromJSON compiles an in-memory schema.
func NewContractMonitorFromJSON(name string, schemaJSON []byte) (*ContractMonitor, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("error compiling schema %s: %w", name, err)
	}
	return &ContractMonitor{name: name, schema: schema}, nil
}

// Builtin returns the monitor for one of the embedded contracts.
func Builtin(name string) (*ContractMonitor, error) {
	raw, err := schemaFS.ReadFile("schemas/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("unknown contract %q: %w", name, err)
	}
	return NewContractMonitorFromJSON(name, raw)
}

// MustBuiltin is Builtin that panics on error.
func MustBuiltin(name string) *ContractMonitor {
	cm, err := Builtin(name)
	if err != nil {
		panic(err)
	}
	return cm
}

// Load returns the contract name, read from dir/<name>.json when dir is set
// and that file exists, and from the embedded schemas otherwise.
func Load(dir, name string) (*ContractMonitor, error) {
	if dir != "" {
		path := filepath.Join(dir, name+".json")
		_, err := os.Stat(path)
		switch {
		case err == nil:
			return NewContractMonitor(path)
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("contract %s: %w", name, err)
		}
	}
	return Builtin(name)
}

// Name returns the contract name.
func (cm *ContractMonitor) Name() string { return cm.name }

// Validate validates a JSON document. It returns true if valid, or false and
// the list of violations.
func (cm *ContractMonitor) Validate(document []byte) (bool, []string, error) {
	result, err := cm.schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return false, nil, fmt.Errorf("error during validation: %w", err)
	}
	if result.Valid() {
		return true, nil, nil
	}

	var violations []string
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return false, violations, nil
}

// Check encodes v and validates it. Violations are reported as an error
// wrapping apperr.ErrInvalidRequest.
func (cm *ContractMonitor) Check(v any) error {
	document, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%s: encode: %w", cm.name, err)
	}
	return cm.CheckBytes(document)
}

// CheckBytes is Check for an already encoded document.
func (cm *ContractMonitor) CheckBytes(document []byte) error {
	valid, violations, err := cm.Validate(document)
	if err != nil {
		validationFailures.WithLabelValues(cm.name).Inc()
		return fmt.Errorf("%s: %w: %v", cm.name, apperr.ErrInvalidRequest, err)
	}
	if !valid {
		validationFailures.WithLabelValues(cm.name).Inc()
		return fmt.Errorf("%s: %w: %s", cm.name, apperr.ErrInvalidRequest, FormatErrors(violations))
	}
	return nil
}

// FormatErrors joins violations into a single message.
func FormatErrors(violations []string) string {
	if len(violations) == 0 {
		return ""
	}
	return "Validation errors: " + strings.Join(violations, "; ")
}
