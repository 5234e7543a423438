package utils

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"telehealth-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuildPagination(t *testing.T) {
	tests := []struct {
		name                     string
		page, limit, total       int
		wantPages                int
		wantHasNext, wantHasPrev bool
	}{
		{"empty result", 1, 10, 0, 0, false, false},
		{"exact multiple", 1, 10, 30, 3, true, false},
		{"partial last page", 3, 10, 25, 3, false, true},
		{"middle page", 2, 10, 25, 3, true, true},
		{"single item per page", 5, 1, 5, 5, false, true},
		{"page beyond total", 7, 10, 25, 3, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pagination := BuildPagination(tt.page, tt.limit, tt.total)
			assert.Equal(t, tt.wantPages, pagination.TotalPages)
			assert.Equal(t, tt.wantHasNext, pagination.HasNext)
			assert.Equal(t, tt.wantHasPrev, pagination.HasPrev)
			assert.Equal(t, tt.total, pagination.Total)
		})
	}
}

func TestBuildErrorResponse(t *testing.T) {
	t.Run("custom errors keep their status and client message", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		BuildErrorResponse(zap.NewNop(), recorder, exceptions.ErrTokenMissing(nil))

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "access token required", body["message"])
	})

	t.Run("plain errors become 500", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		BuildErrorResponse(zap.NewNop(), recorder, errors.New("boom"))
		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	})

	t.Run("developer detail is hidden in production", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		recorder := httptest.NewRecorder()
		BuildErrorResponse(zap.NewNop(), recorder, exceptions.ErrServerProcess(errors.New("secret detail")))
		assert.NotContains(t, recorder.Body.String(), "secret detail")
	})
}
