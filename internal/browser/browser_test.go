package browser

import (
	"testing"
	"time"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if !opts.Headless {
		t.Error("Expected headless to be true by default")
	}

	if opts.Timeout != 60*time.Second {
		t.Errorf("Expected timeout to be 60s, got %v", opts.Timeout)
	}

	if opts.ViewportWidth != 1280 || opts.ViewportHeight != 800 {
		t.Errorf("Expected viewport to be 1280x800, got %dx%d", opts.ViewportWidth, opts.ViewportHeight)
	}

	want := map[string]bool{"--no-sandbox": false, "--disable-setuid-sandbox": false}
	for _, arg := range opts.Args {
		if _, ok := want[arg]; ok {
			want[arg] = true
		}
	}
	for arg, found := range want {
		if !found {
			t.Errorf("Expected launch flag %s", arg)
		}
	}
}

func TestToInt(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		want    int
		wantErr bool
	}{
		{"int", 1200, 1200, false},
		{"int64", int64(800), 800, false},
		{"float", 2400.0, 2400, false},
		{"string", "2400", 0, true},
		{"nil", nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := toInt(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("toInt(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("toInt(%v) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}
