package protocol

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_QueueEnvelope(t *testing.T) {
	body := []byte(`{"id":1,"success":true,"message":null,"result":[{"id":3,"command":"give bob 10","packageName":"vip"}]}`)

	env, err := Decode[[]QueueItem](body)
	require.NoError(t, err)
	require.NoError(t, env.Err())

	assert.Equal(t, 1, env.ID)
	require.Len(t, env.Result, 1)
	assert.Equal(t, 3, env.Result[0].ID)
	assert.Equal(t, "give bob 10", env.Result[0].Command)
	assert.Equal(t, "vip", env.Result[0].PackageName)
}

func TestDecode_NullResult(t *testing.T) {
	env, err := Decode[[]QueueItem]([]byte(`{"id":2,"success":true,"error":null,"message":null,"result":null}`))
	require.NoError(t, err)
	assert.Empty(t, env.Result)
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty", body: ""},
		{name: "whitespace", body: "  \n"},
		{name: "html", body: "<html>Bad Gateway</html>"},
		{name: "truncated", body: `{"success":true,"result":[{"id":3`},
		{name: "wrong success type", body: `{"success":"yes"}`},
		{name: "result not array", body: `{"success":true,"result":{"id":3}}`},
		{name: "id not int", body: `{"success":true,"result":[{"id":"three","command":"x"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode[[]QueueItem]([]byte(tt.body))
			require.Error(t, err)

			var decodeErr *DecodeError
			assert.True(t, errors.As(err, &decodeErr), "expected DecodeError, got %T", err)
		})
	}
}

func TestEnvelope_Err(t *testing.T) {
	env, err := Decode[json.RawMessage]([]byte(`{"id":9,"success":false,"error":"invalid_token","message":"Invalid API token"}`))
	require.NoError(t, err)

	appErr := &ApplicationError{}
	require.ErrorAs(t, env.Err(), &appErr)
	assert.Equal(t, "Invalid API token", appErr.Message)
	assert.Equal(t, "invalid_token", appErr.Code)
	assert.Equal(t, 9, appErr.ID)
	assert.Contains(t, env.Err().Error(), "Invalid API token")
}

func TestEnvelope_ErrFallsBackToErrorField(t *testing.T) {
	env, err := Decode[[]QueueItem]([]byte(`{"success":false,"error":"rate limited","message":null}`))
	require.NoError(t, err)

	appErr := &ApplicationError{}
	require.ErrorAs(t, env.Err(), &appErr)
	assert.Equal(t, "rate limited", appErr.Message)
}

func TestEncodeRemoveIDs(t *testing.T) {
	assert.Equal(t, "removeIds=[3,7,9]", EncodeRemoveIDs([]int{3, 7, 9}))
	assert.Equal(t, "removeIds=[42]", EncodeRemoveIDs([]int{42}))
	assert.Equal(t, "removeIds=[]", EncodeRemoveIDs(nil))
}
