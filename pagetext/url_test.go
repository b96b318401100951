package pagetext

import (
	"testing"

	"github.com/vinayprograms/pagesum/errors"
)

func TestFindURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://example.com/a?b=c", "https://example.com/a?b=c"},
		{"  http://example.com  ", "http://example.com"},
		{"please summarize https://go.dev/blog/ thanks", "https://go.dev/blog/"},
		{"first https://a.example/x then https://b.example/y", "https://a.example/x"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := FindURL(tt.in)
			if err != nil || got != tt.want {
				t.Errorf("FindURL(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestFindURL_None(t *testing.T) {
	for _, in := range []string{"", "   ", "no link here", "ftp://example.com/file"} {
		if _, err := FindURL(in); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("FindURL(%q) err = %v, want INVALID_INPUT", in, err)
		}
	}
}
