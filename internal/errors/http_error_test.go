package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("date"), http.StatusBadRequest},
		{"conflict", NewConflictError("09:00", "2025-08-10", 1, 1), http.StatusConflict},
		{"not found", NewNotFoundError("doctor not found"), http.StatusNotFound},
		{"storage", NewStorageError("write bookings", io.ErrUnexpectedEOF), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("book: %w", NewConflictError("09:00", "2025-08-10", 1, 1)), http.StatusConflict},
		{"canceled", NewCanceledError(context.Canceled), StatusClientClosedRequest},
		{"plain", stderrors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}

func TestValidationErrorNamesFields(t *testing.T) {
	err := NewValidationError("doctorId", "patientName")
	assert.Contains(t, err.Error(), "doctorId")
	assert.Contains(t, err.Error(), "patientName")
	assert.True(t, IsValidation(err))
}

func TestConflictErrorStatesCapacity(t *testing.T) {
	err := NewConflictError("09:00", "2025-08-10", 1, 20)
	assert.Equal(t, "slot fully booked", err.Message)
	assert.Contains(t, err.Error(), "09:00")
	assert.Contains(t, err.Error(), "capacity of 20")
	assert.True(t, IsConflict(err))
	assert.False(t, IsStorage(err))
}

func TestStorageErrorUnwraps(t *testing.T) {
	err := NewStorageError("read bookings", io.ErrUnexpectedEOF)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.True(t, IsStorage(err))
	assert.False(t, IsStorage(stderrors.New("plain")))
}

func TestCanceledErrorIsNotStorage(t *testing.T) {
	err := NewCanceledError(context.DeadlineExceeded)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, IsCanceled(err))
	assert.False(t, IsStorage(err))
	assert.Equal(t, "request canceled: context deadline exceeded", err.Error())
}
