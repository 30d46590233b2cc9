package errors

import (
	"strings"
	"testing"
)

func TestValidateContainerName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "DC1", false},
		{"valid underscores", "DC1_L3LEAFS", false},
		{"valid dashes and dots", "pod-1.rack", false},
		{"valid unicode", "Zürich", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 257), true},
		{"control char", "DC\x011", true},
		{"newline", "DC1\n", true},
		{"leading space", " DC1", true},
		{"trailing space", "DC1 ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContainerName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateContainerName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateContainerName(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidatePrefix(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"", false},
		{"none", false},
		{"AVD", false},
		{"avd-2_x", false},

		{"AVD ", true},
		{"a/b", true},
		{"a.b", true},
		{strings.Repeat("x", 65), true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidatePrefix(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePrefix(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid relative", "inventory.yml", false},
		{"valid nested", "inventories/dc1/inventory.yml", false},
		{"valid absolute", "/etc/cvtopo/inventory.yml", false},
		{"valid parent", "../inventory.yml", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 5000), true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateSnapshotID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "0b8b2b5e-7f43-4d3e-9a51-2f3c4d5e6f70", false},
		{"empty", "", true},
		{"not a uuid", "snapshot-1", true},
		{"path traversal", "../../etc/passwd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSnapshotID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSnapshotID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	if err := ValidateFormat("yaml", "yaml", "json"); err != nil {
		t.Errorf("ValidateFormat(yaml) error = %v", err)
	}
	err := ValidateFormat("xml", "yaml", "json")
	if !Is(err, ErrCodeInvalidFormat) {
		t.Errorf("ValidateFormat(xml) error = %v, want %s", err, ErrCodeInvalidFormat)
	}
	if !strings.Contains(err.Error(), "yaml, json") {
		t.Errorf("error should list supported formats: %v", err)
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidInventory,
		ErrCodeInvalidFormat,
		ErrCodeInvalidPath,
		ErrCodeNotFound,
		ErrCodeContainerNotFound,
		ErrCodeFileNotFound,
		ErrCodeSnapshotNotFound,
		ErrCodeDuplicateContainer,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
