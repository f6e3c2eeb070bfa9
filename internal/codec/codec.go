// Package codec defines the serialization capability shared by the audit
// recorder, the database log core and the JSON HTTP client.
package codec

import (
	"io"

	json "github.com/goccy/go-json"
)

// Codec converts values to and from their wire representation.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	ContentType() string
}

// JSON is the default Codec, backed by goccy/go-json.
var JSON Codec = jsonCodec{}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (jsonCodec) ContentType() string { return "application/json" }

// MarshalString serializes v and returns the result as a string.
func MarshalString(c Codec, v any) (string, error) {
	data, err := c.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Decode reads r fully and unmarshals it into a new T.
func Decode[T any](c Codec, r io.Reader) (T, error) {
	var out T
	data, err := io.ReadAll(r)
	if err != nil {
		return out, err
	}
	if err := c.Unmarshal(data, &out); err != nil {
		return out, err
	}
	return out, nil
}
