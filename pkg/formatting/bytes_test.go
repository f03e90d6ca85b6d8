package formatting_test

import (
	"testing"

	"github.com/rmoura-dev/provisor/pkg/formatting"
)

func TestParseBytes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "bare number", input: "1024", want: 1024},
		{name: "bytes", input: "512B", want: 512},
		{name: "kilobytes", input: "4KB", want: 4096},
		{name: "megabytes", input: "10MB", want: 10 * 1024 * 1024},
		{name: "gigabytes", input: "2GB", want: 2 * 1024 * 1024 * 1024},
		{name: "fractional", input: "1.5KB", want: 1536},
		{name: "lowercase unit", input: "4mb", want: 4 * 1024 * 1024},
		{name: "whitespace", input: "  8 KB  ", want: 8192},
		{name: "empty", input: "", wantErr: true},
		{name: "unknown unit", input: "4XB", wantErr: true},
		{name: "not a number", input: "lots", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatting.ParseBytes(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseBytes(%q) = %d, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBytes(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseBytes(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}
