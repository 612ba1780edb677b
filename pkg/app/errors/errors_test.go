package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCategoryHelpers(t *testing.T) {
	base := errors.New("disk full")
	err := fmt.Errorf("failed to save token: %w", StorageError(base, "write failed"))

	if !Is(err, CategoryStorageFailure) {
		t.Fatalf("expected CategoryStorageFailure, got %v", err)
	}
	if !IsStorageError(err) {
		t.Fatal("expected IsStorageError to be true")
	}
	if !errors.Is(err, base) {
		t.Fatal("expected wrapped cause to be reachable")
	}
	if Is(err, CategoryDataConflict) {
		t.Fatal("unexpected CategoryDataConflict")
	}
}

func TestServiceError_IsMatchesMessage(t *testing.T) {
	sentinel := errors.New("address already exists")
	err := ConflictError(sentinel, "address already exists")

	if !errors.Is(err, sentinel) {
		t.Fatalf("expected errors.Is to match sentinel, got %v", err)
	}
	if err.Error() != "address already exists" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestServiceError_StatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{BadRequestError(nil, "bad"), http.StatusBadRequest},
		{ConflictError(nil, "dup"), http.StatusConflict},
		{ResourceNotFoundError(nil, "missing"), http.StatusNotFound},
		{DependencyFailureError(nil, "remote"), http.StatusBadGateway},
		{StorageError(nil, "store"), http.StatusServiceUnavailable},
		{GeneralError(nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		var svcErr *ServiceError
		if !errors.As(tt.err, &svcErr) {
			t.Fatalf("expected ServiceError, got %T", tt.err)
		}
		if got := svcErr.StatusCode(); got != tt.want {
			t.Errorf("%s: status %d, want %d", svcErr.Category, got, tt.want)
		}
	}
}

func TestIsServiceError(t *testing.T) {
	if IsServiceError(errors.New("plain")) {
		t.Fatal("plain error must not be a ServiceError")
	}
	if !IsServiceError(fmt.Errorf("wrapped: %w", BadRequestError(nil, "x"))) {
		t.Fatal("wrapped ServiceError not detected")
	}
}
