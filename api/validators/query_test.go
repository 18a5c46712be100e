package validators

import (
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/mediafolio/catalog-backend/pkg/errors"
)

func TestParseQueryInt(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    int
		wantErr bool
	}{
		{name: "missing uses default", url: "/?other=1", want: 5},
		{name: "valid value", url: "/?page=3", want: 3},
		{name: "blank uses default", url: "/?page=", want: 5},
		{name: "non numeric", url: "/?page=abc", wantErr: true},
		{name: "below min", url: "/?page=0", wantErr: true},
		{name: "above max", url: "/?page=101", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			got, err := ParseQueryInt(r, "page", 5, 1, 100)
			if tt.wantErr {
				if pkgerrors.As(err) == nil {
					t.Fatalf("expected typed validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRequiredQuery(t *testing.T) {
	r := httptest.NewRequest("GET", "/?q=%20sunset%20", nil)
	got, err := RequiredQuery(r, "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "sunset" {
		t.Fatalf("expected trimmed value, got %q", got)
	}

	r = httptest.NewRequest("GET", "/?q=%20%20", nil)
	if _, err := RequiredQuery(r, "q"); pkgerrors.As(err) == nil {
		t.Fatalf("expected validation error for blank value, got %v", err)
	}
}
