package common

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteErrorHonoursAppError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, NewAppError("UNAUTHORIZED", "invalid email or PIN", http.StatusUnauthorized, nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"error":{"code":"UNAUTHORIZED","message":"invalid email or PIN"}}`, rec.Body.String())
}

func TestWriteErrorHidesPlainErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("dial tcp 127.0.0.1:6379: connect: connection refused"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "dial tcp")
	require.JSONEq(t, `{"error":{"code":"INTERNAL","message":"internal error"}}`, rec.Body.String())
}

func TestWriteErrorNil(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, nil)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
