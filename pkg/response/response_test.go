package response

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"OnDuty/pkg/errors"
)

func TestErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.InvalidCoordinates, http.StatusBadRequest},
		{errors.InvalidCredentials, http.StatusUnauthorized},
		{errors.IPNotAllowed, http.StatusForbidden},
		{errors.RequestNotFound, http.StatusNotFound},
		// 扫码锁冲突和限流是两种不同的情况
		{errors.ScanInProgress, http.StatusConflict},
		{errors.TooManyRequests, http.StatusTooManyRequests},
		{fmt.Errorf("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, errorToHTTPStatus(tt.err))
	}
}

func TestScanInProgressDistinctFromRateLimit(t *testing.T) {
	assert.NotEqual(t, errors.ScanInProgress.Code, errors.TooManyRequests.Code)
	assert.Equal(t, "SCAN_IN_PROGRESS", errors.ScanInProgress.Code)
}
