package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
)

const (
	// MaxRequestBodySize is the maximum allowed request body size (1MB).
	MaxRequestBodySize = 1 << 20
)

type decodeOptions struct {
	allowUnknown   bool
	allowEmpty     bool
	allowNonObject bool
	jsonOnly       bool
}

// DecodeOption adjusts how DecodeJSON treats a request body.
type DecodeOption func(*decodeOptions)

// AllowUnknownFields accepts fields that T does not declare.
func AllowUnknownFields() DecodeOption {
	return func(o *decodeOptions) { o.allowUnknown = true }
}

// AllowEmptyBody returns the zero value of T instead of an error for an empty body.
func AllowEmptyBody() DecodeOption {
	return func(o *decodeOptions) { o.allowEmpty = true }
}

// AllowNonObjectBody returns the zero value of T when the body is valid JSON
// but not an object, such as an array.
func AllowNonObjectBody() DecodeOption {
	return func(o *decodeOptions) { o.allowNonObject = true }
}

// IgnoreNonJSONBody returns the zero value of T without reading the body
// unless the Content-Type is application/json.
func IgnoreNonJSONBody() DecodeOption {
	return func(o *decodeOptions) { o.jsonOnly = true }
}

// IsJSONContentType reports whether the request declares an application/json body.
func IsJSONContentType(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

// DecodeJSON decodes JSON from the request body with size limits and validation.
// By default unknown fields and empty bodies are rejected.
func DecodeJSON[T any](r *http.Request, opts ...DecodeOption) (T, error) {
	var zeroValue T

	var o decodeOptions
	for _, opt := range opts {
		opt(&o)
	}

	if o.jsonOnly && !IsJSONContentType(r) {
		return zeroValue, nil
	}

	if r.Body == nil {
		if o.allowEmpty {
			return zeroValue, nil
		}
		return zeroValue, errors.New("request body is empty")
	}

	r.Body = http.MaxBytesReader(nil, r.Body, MaxRequestBodySize)
	defer func() {
		_ = r.Body.Close()
	}()

	decoder := json.NewDecoder(r.Body)
	if !o.allowUnknown {
		decoder.DisallowUnknownFields()
	}

	var v T
	if err := decoder.Decode(&v); err != nil {
		var syntaxErr *json.SyntaxError
		var unmarshalErr *json.UnmarshalTypeError
		var maxBytesErr *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxErr):
			return zeroValue, fmt.Errorf("malformed JSON at position %d", syntaxErr.Offset)
		case errors.As(err, &unmarshalErr):
			if unmarshalErr.Field == "" {
				if o.allowNonObject {
					return zeroValue, nil
				}
				return zeroValue, fmt.Errorf("request body must be a JSON object, got %s", unmarshalErr.Value)
			}
			return zeroValue, fmt.Errorf("invalid value for field %q", unmarshalErr.Field)
		case errors.As(err, &maxBytesErr):
			return zeroValue, fmt.Errorf("request body too large (max %d bytes)", MaxRequestBodySize)
		case errors.Is(err, io.EOF):
			if o.allowEmpty {
				return zeroValue, nil
			}
			return zeroValue, errors.New("request body is empty")
		case errors.Is(err, io.ErrUnexpectedEOF):
			return zeroValue, errors.New("malformed JSON: unexpected end of input")
		default:
			return zeroValue, fmt.Errorf("failed to decode JSON: %w", err)
		}
	}

	// Ensure there's no additional data after the JSON value
	if decoder.More() {
		return zeroValue, errors.New("request body contains multiple JSON objects")
	}

	return v, nil
}
