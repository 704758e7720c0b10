package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// RemoveIDsField is the form field carrying acknowledged queue ids.
const RemoveIDsField = "removeIds"

// DecodeError reports a response body that does not match the envelope shape.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ApplicationError is a well-formed envelope with success=false.
type ApplicationError struct {
	ID      int
	Message string
	Code    string
}

func (e *ApplicationError) Error() string {
	if e.Message == "" {
		return "store reported failure"
	}
	return "store reported failure: " + e.Message
}

// Decode parses body into an envelope. Any mismatch fails the whole decode.
func Decode[T any](body []byte) (Envelope[T], error) {
	var env Envelope[T]
	if len(bytes.TrimSpace(body)) == 0 {
		return env, &DecodeError{Err: fmt.Errorf("empty body")}
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope[T]{}, &DecodeError{Err: err}
	}
	return env, nil
}

// EncodeRemoveIDs renders the markComplete form body, e.g. "removeIds=[3,7,9]".
// The array is sent literally; form decoders accept brackets and commas unescaped.
func EncodeRemoveIDs(ids []int) string {
	buf := make([]byte, 0, len(RemoveIDsField)+3+len(ids)*4)
	buf = append(buf, RemoveIDsField...)
	buf = append(buf, '=', '[')
	for i, id := range ids {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendInt(buf, int64(id), 10)
	}
	buf = append(buf, ']')
	return string(buf)
}
