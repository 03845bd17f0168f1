// Package tools defines the named, schema-described operations exposed to
// model-driven callers and the book catalog tools built on the HTTP client.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
)

// Annotations are behavioural hints surfaced to tool hosts.
type Annotations struct {
	ReadOnly    bool
	Destructive bool
	Idempotent  bool
}

// Tool is a single callable operation.
type Tool interface {
	Name() string
	Description() string
	// Schema is the JSON Schema of the arguments object.
	Schema() json.RawMessage
	Annotations() Annotations
	// Execute runs the tool with raw JSON arguments and returns text for the
	// caller. Expected outcomes such as a missing book are reported in the
	// text; the error is reserved for failures of the call itself.
	Execute(ctx context.Context, args json.RawMessage) (string, error)
}

// prettyJSON renders v with two-space indentation and unescaped non-ASCII.
func prettyJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func errorJSON(message string) (string, error) {
	return prettyJSON(map[string]string{"error": message})
}

// decodeArgs unmarshals args into v. Empty args decode as an empty object.
func decodeArgs(args json.RawMessage, v any) error {
	if len(bytes.TrimSpace(args)) == 0 {
		return nil
	}
	return json.Unmarshal(args, v)
}
