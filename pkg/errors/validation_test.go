package errors

import (
	"strings"
	"testing"
)

func TestValidateMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCode Code
	}{
		{"valid heading", "# Root\n- A\n- B", ""},
		{"valid unicode", "# 思维导图\n- 分支", ""},

		{"empty", "", ErrCodeEmptyMarkdown},
		{"whitespace only", "  \n\t\n", ErrCodeEmptyMarkdown},
		{"too large", "# x\n" + strings.Repeat("a", MaxMarkdownBytes), ErrCodeMarkdownTooLong},
		{"null byte", "# Root\x00", ErrCodeInvalidInput},
		{"invalid utf8", "# Root \xff\xfe", ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMarkdown(tt.input)
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("ValidateMarkdown() error = %v, want nil", err)
				}
				return
			}
			if GetCode(err) != tt.wantCode {
				t.Errorf("ValidateMarkdown() code = %v, want %v", GetCode(err), tt.wantCode)
			}
		})
	}
}

func TestValidateLayout(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty means free", "", false},
		{"free", "free", false},
		{"center", "center", false},
		{"horizontal", "horizontal", false},

		{"unknown", "diagonal", true},
		{"case sensitive", "Center", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLayout(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLayout(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
