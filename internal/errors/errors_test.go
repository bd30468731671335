package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "password mismatch", err: ErrPasswordMismatch, wantStatus: http.StatusBadRequest, wantCode: "PASSWORD_MISMATCH"},
		{name: "user exists", err: ErrUserAlreadyExists, wantStatus: http.StatusBadRequest, wantCode: "USER_EXISTS"},
		{name: "wrapped invalid query", err: fmt.Errorf("%w: loggedInAfter", ErrInvalidQuery), wantStatus: http.StatusBadRequest, wantCode: "INVALID_QUERY"},
		{name: "password too long", err: ErrPasswordTooLong, wantStatus: http.StatusBadRequest, wantCode: "PASSWORD_TOO_LONG"},
		{name: "wrapped field too long", err: fmt.Errorf("%w: name", ErrFieldTooLong), wantStatus: http.StatusBadRequest, wantCode: "FIELD_TOO_LONG"},
		{name: "invalid id", err: ErrInvalidID, wantStatus: http.StatusBadRequest, wantCode: "INVALID_ID"},
		{name: "store fault", err: errors.New("connection refused"), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantCode, httpErr.ToErrorResponse().Code)
		})
	}
}

func TestMapErrorToHTTP_HidesInternalDetail(t *testing.T) {
	httpErr := MapErrorToHTTP(errors.New("dial tcp 10.0.0.3:3306: connection refused"))
	assert.Equal(t, "internal server error", httpErr.Error())
}
