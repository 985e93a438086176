package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2020-HelloWorld/masala-models/internal/risk"
	"github.com/2020-HelloWorld/masala-models/internal/synth"
)

func TestWriteError(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"invalid argument", fmt.Errorf("days -1: %w", synth.ErrInvalidArgument), http.StatusBadRequest, "days -1: invalid argument"},
		{"missing pair", fmt.Errorf("Onion/ZZ: %w", risk.ErrNotFound), http.StatusNotFound, "Onion/ZZ: pair not found"},
		{"missing row", pgx.ErrNoRows, http.StatusNotFound, pgx.ErrNoRows.Error()},
		{"internal error omits message", errors.New("db failed"), http.StatusInternalServerError, "internal error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tc.err)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, tc.message, body["error"])
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Count int `json:"count"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"count":3}`))
	require.NoError(t, DecodeJSON(r, &dst))
	assert.Equal(t, 3, dst.Count)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"count":3,"extra":true}`))
	assert.Error(t, DecodeJSON(r, &dst))
}
