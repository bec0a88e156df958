package shared

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	Name string `json:"name" validate:"required"`
	Age  int    `json:"age" validate:"gte=0"`
}

type selfValidating struct {
	Value int `json:"value"`
}

func (s selfValidating) Validate() error {
	if s.Value%2 != 0 {
		return errors.New("value must be even")
	}
	return nil
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name        string
		requestBody string
		wantErr     bool
		errContains string
	}{
		{name: "valid json", requestBody: `{"name": "test", "age": 30}`},
		{name: "unknown fields ignored", requestBody: `{"name": "test", "extra": true}`},
		{name: "invalid json", requestBody: `{"name": "test", "age": 30,}`, wantErr: true, errContains: "invalid character"},
		{name: "empty body", requestBody: "", wantErr: true, errContains: "EOF"},
		{name: "trailing value", requestBody: `{"name": "a"}{"name": "b"}`, wantErr: true, errContains: "single JSON value"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(tc.requestBody))
			var payload testPayload

			err := DecodeJSON(httptest.NewRecorder(), req, &payload)

			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "test", payload.Name)
		})
	}
}

func TestDecodeJSONBodyTooLarge(t *testing.T) {
	body := `{"name": "` + strings.Repeat("x", MaxRequestBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))

	var payload testPayload
	err := DecodeJSON(httptest.NewRecorder(), req, &payload)

	var tooLarge *http.MaxBytesError
	assert.ErrorAs(t, err, &tooLarge)
}

func TestValidateRequest(t *testing.T) {
	t.Run("struct tags", func(t *testing.T) {
		assert.NoError(t, ValidateRequest(testPayload{Name: "ok"}))

		err := ValidateRequest(testPayload{Age: -1})
		var fieldErrs validator.ValidationErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Len(t, fieldErrs, 2)
	})

	t.Run("validate method", func(t *testing.T) {
		assert.NoError(t, ValidateRequest(selfValidating{Value: 2}))
		assert.EqualError(t, ValidateRequest(selfValidating{Value: 3}), "value must be even")
	})
}
