package utils

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{NotFound("Ship not found"), http.StatusNotFound},
		{Conflict("dup"), http.StatusConflict},
		{Invalid("bad %s", "x"), http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", Forbidden("no")), http.StatusForbidden},
		{Upstream("pricing down"), http.StatusBadGateway},
		{fmt.Errorf("driver exploded"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Status(tc.err), tc.err.Error())
	}
}

func TestRespondWithErrHidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithErr(rec, fmt.Errorf("mongo: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "mongo")

	rec = httptest.NewRecorder()
	RespondWithErr(rec, NotFound("Booking not found"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Booking not found"}`, rec.Body.String())
}

func TestInputErrorFields(t *testing.T) {
	ie := NewInputError()
	require.NoError(t, ie.OrNil())

	ie.Add("email", "is required")
	ie.Add("code", "must not contain whitespace")
	err := ie.OrNil()
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, Status(err))
	assert.Equal(t, "code: must not contain whitespace, email: is required", err.Error())

	rec := httptest.NewRecorder()
	RespondWithErr(rec, err)
	assert.Contains(t, rec.Body.String(), `"errors"`)
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Aurora"}`))
	require.NoError(t, DecodeJSON(r, &dst))
	assert.Equal(t, "Aurora", dst.Name)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	assert.Equal(t, http.StatusBadRequest, Status(DecodeJSON(r, &dst)))
}

func TestParseClock(t *testing.T) {
	m, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, m)

	_, err = ParseClock("9h")
	assert.Error(t, err)
}

func TestLocalize(t *testing.T) {
	names := map[string]string{"en": "Athens", "ar": "أثينا"}
	assert.Equal(t, "أثينا", Localize(names, "ar"))
	assert.Equal(t, "Athens", Localize(names, "de"))
	assert.Equal(t, "Atene", Localize(map[string]string{"it": "Atene", "pl": "Ateny"}, "de"))
	assert.Equal(t, "", Localize(nil, "en"))
}

func TestGenerateRef(t *testing.T) {
	ref := GenerateRef(8)
	assert.Len(t, ref, 8)
	assert.NotContains(t, ref, "O")
	assert.NotContains(t, ref, "0")
}
