package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/cuongbtq/poke-report/internal/report/domain"
)

// messageSchema only constrains the envelope. Field truthiness and the
// sample size are checked in code so a bad sample size can fail the job
// after its identifier is known.
const messageSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "array",
	"minItems": 1,
	"prefixItems": [
		{"type": "object", "required": ["id_request"]}
	]
}`

var compiledMessageSchema = jsonschema.MustCompileString("message.json", messageSchema)

// ParseMessage validates a raw queue message and extracts the job identifier.
// The sample size is kept raw and decoded later by Message.SampleSize.
func ParseMessage(body []byte) (*domain.Message, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, domain.NewValidationError("", "message body is empty")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, domain.NewValidationError("", fmt.Sprintf("message is not valid JSON: %v", err))
	}

	if err := compiledMessageSchema.Validate(doc); err != nil {
		var vErr *jsonschema.ValidationError
		if errors.As(err, &vErr) {
			return nil, domain.NewValidationError("", describeSchemaError(doc, vErr))
		}
		return nil, domain.NewValidationError("", err.Error())
	}

	// Re-decode the first element with raw fields; the schema guarantees its shape.
	var records []json.RawMessage
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, domain.NewValidationError("", fmt.Sprintf("message is not an array: %v", err))
	}
	var first map[string]json.RawMessage
	if err := json.Unmarshal(records[0], &first); err != nil {
		return nil, domain.NewValidationError("", fmt.Sprintf("first element is not an object: %v", err))
	}

	id, err := parseIdentifier(first["id_request"])
	if err != nil {
		return nil, err
	}

	return &domain.Message{
		ID:            id,
		RawSampleSize: first["sample_size"],
	}, nil
}

// parseIdentifier accepts a JSON integer or a string holding one.
// Falsy values (null, false, 0, "") are rejected.
func parseIdentifier(raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	switch string(raw) {
	case "", "null", "false", `""`, "0":
		return 0, domain.NewValidationError("id_request", "identifier is missing or empty")
	}

	var num json.Number
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, domain.NewValidationError("id_request", err.Error())
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, domain.NewValidationError("id_request", "identifier is missing or empty")
		}
		num = json.Number(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		num = json.Number(raw)
	default:
		return 0, domain.NewValidationError("id_request", fmt.Sprintf("identifier is not integer-like: %s", string(raw)))
	}

	id, err := domain.ParseInteger(num)
	if err != nil {
		return 0, domain.NewValidationError("id_request", fmt.Sprintf("identifier is not integer-like: %s", string(raw)))
	}
	if id == 0 {
		return 0, domain.NewValidationError("id_request", "identifier is missing or empty")
	}
	return id, nil
}

func describeSchemaError(doc any, vErr *jsonschema.ValidationError) string {
	arr, ok := doc.([]any)
	switch {
	case !ok:
		return "message must be a JSON array"
	case len(arr) == 0:
		return "message array is empty"
	}
	if _, ok := arr[0].(map[string]any); !ok {
		return "first element must be an object"
	}
	if leaf := deepestCause(vErr); leaf != "" {
		return leaf
	}
	return vErr.Error()
}

func deepestCause(vErr *jsonschema.ValidationError) string {
	for len(vErr.Causes) > 0 {
		vErr = vErr.Causes[0]
	}
	return vErr.Message
}
