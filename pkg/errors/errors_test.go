package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorString(t *testing.T) {
	err := New(ErrCodeContainerNotFound, "container %q not found", "DC9")
	if got, want := err.Error(), `CONTAINER_NOT_FOUND: container "DC9" not found`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	cause := errors.New("yaml: line 3: mapping values are not allowed")
	wrapped := Wrap(ErrCodeInvalidInventory, cause, "parse %s", "inventory.yml")
	if got, want := wrapped.Error(), "INVALID_INVENTORY: parse inventory.yml: "+cause.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if errors.Unwrap(wrapped) != cause || !errors.Is(wrapped, cause) {
		t.Error("cause should be reachable through the standard errors package")
	}
	if New(ErrCodeInternal, "x").Cause != nil {
		t.Error("New should not set a cause")
	}
}

func TestInspect(t *testing.T) {
	inner := New(ErrCodeInvalidInput, "root must not be empty")
	tests := []struct {
		name    string
		err     error
		code    Code
		message string
		status  int
	}{
		{"coded", inner, ErrCodeInvalidInput, "root must not be empty", http.StatusBadRequest},
		{"outer code wins", Wrap(ErrCodeInvalidInventory, inner, "load"), ErrCodeInvalidInventory, "load", http.StatusBadRequest},
		{"fmt wrapped", fmt.Errorf("extract: %w", inner), ErrCodeInvalidInput, "root must not be empty", http.StatusBadRequest},
		{"missing container", New(ErrCodeContainerNotFound, "gone"), ErrCodeContainerNotFound, "gone", http.StatusNotFound},
		{"missing snapshot", New(ErrCodeSnapshotNotFound, "gone"), ErrCodeSnapshotNotFound, "gone", http.StatusNotFound},
		{"duplicate", New(ErrCodeDuplicateContainer, "twice"), ErrCodeDuplicateContainer, "twice", http.StatusConflict},
		{"unsupported", New(ErrCodeUnsupported, "no store"), ErrCodeUnsupported, "no store", http.StatusNotImplemented},
		{"media type", New(ErrCodeUnsupportedMediaType, "text/plain"), ErrCodeUnsupportedMediaType, "text/plain", http.StatusUnsupportedMediaType},
		{"unknown code", New(Code("TEAPOT"), "short"), Code("TEAPOT"), "short", http.StatusInternalServerError},
		{"plain", errors.New("boom"), "", "boom", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if tt.code != "" && !Is(tt.err, tt.code) {
				t.Errorf("Is(%q) = false", tt.code)
			}
			if Is(tt.err, ErrCodeFileNotFound) {
				t.Error("Is(FILE_NOT_FOUND) = true")
			}
			if got := UserMessage(tt.err); got != tt.message {
				t.Errorf("UserMessage() = %q, want %q", got, tt.message)
			}
			if got := HTTPStatus(tt.err); got != tt.status {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.status)
			}
		})
	}
}

func TestNilError(t *testing.T) {
	if Is(nil, ErrCodeInvalidInput) {
		t.Error("Is(nil) = true")
	}
	if GetCode(nil) != "" {
		t.Error("GetCode(nil) should be empty")
	}
}
