package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/salonflow/salon-api/pkg/errors"
)

func respond(t *testing.T, err error) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondWithError(c, err)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestRespondWithError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", apperrors.Validation("bad date", nil), http.StatusBadRequest, "validation_error"},
		{"not found", apperrors.NotFound("salon", nil), http.StatusNotFound, "not_found"},
		{"closed", apperrors.Closed("closed that day"), http.StatusConflict, "not_available"},
		{"conflict", apperrors.Conflict("slot taken", nil), http.StatusConflict, "slot_taken"},
		{"internal", apperrors.Internal(errors.New("boom")), http.StatusInternalServerError, "internal_error"},
		{"untyped", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := respond(t, tt.err)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantCode, body.Error.Code)
		})
	}
}

func TestUntypedErrorMessageNotLeaked(t *testing.T) {
	_, body := respond(t, errors.New("pq: connection refused"))
	require.NotNil(t, body.Error)
	assert.Equal(t, "internal server error", body.Error.Message)
}

func TestRespondWithSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondWithSuccess(c, gin.H{"hello": "world"})

	assert.Equal(t, http.StatusOK, w.Code)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Nil(t, body.Error)
}
