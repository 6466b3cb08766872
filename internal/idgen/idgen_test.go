package idgen

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestV4_Generate(t *testing.T) {
	t.Run("generates valid UUID v4", func(t *testing.T) {
		id, err := NewV4().Generate()
		if err != nil {
			t.Fatalf("Generate() unexpected error: %v", err)
		}
		if id == uuid.Nil {
			t.Fatal("generated UUID is nil")
		}
		if id.Version() != 4 {
			t.Fatalf("UUID version = %d, want 4", id.Version())
		}
	})

	t.Run("generates distinct values (sanity check)", func(t *testing.T) {
		gen := NewV4()

		seen := make(map[uuid.UUID]struct{}, 50)
		for range 50 {
			id, err := gen.Generate()
			if err != nil {
				t.Fatalf("Generate() unexpected error: %v", err)
			}
			if _, ok := seen[id]; ok {
				t.Fatalf("generated duplicate UUID (extremely unlikely): %v", id)
			}
			seen[id] = struct{}{}
		}
	})
}

func TestV7_Generate(t *testing.T) {
	id, err := NewV7(WithRetries(0)).Generate()
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}
	if id.Version() != 7 {
		t.Fatalf("UUID version = %d, want 7", id.Version())
	}
}

func TestFactory_New(t *testing.T) {
	tests := []struct {
		name    string
		version Version
		want    uuid.Version
	}{
		{"unknown falls back to v4", 0, 4},
		{"v4", V4, 4},
		{"v7", V7, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := New(tt.version).Generate()
			if err != nil {
				t.Fatalf("Generate() unexpected error: %v", err)
			}
			if id.Version() != tt.want {
				t.Fatalf("UUID version = %d, want %d", id.Version(), tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	v4 := uuid.New()
	v7, err := uuid.NewV7()
	if err != nil {
		t.Fatalf("NewV7() unexpected error: %v", err)
	}

	tests := []struct {
		name    string
		in      string
		want    uuid.UUID
		wantErr bool
	}{
		{name: "canonical v4", in: v4.String(), want: v4},
		{name: "canonical v7", in: v7.String(), want: v7},
		{name: "upper case", in: strings.ToUpper(v4.String()), want: v4},
		{name: "nil uuid", in: uuid.Nil.String(), want: uuid.Nil},
		{name: "empty", in: "", wantErr: true},
		{name: "plain word", in: "123", wantErr: true},
		{name: "no hyphens", in: strings.ReplaceAll(v4.String(), "-", ""), wantErr: true},
		{name: "braced", in: "{" + v4.String() + "}", wantErr: true},
		{name: "urn prefix", in: "urn:uuid:" + v4.String(), wantErr: true},
		{name: "non-hex characters", in: "zzzzzzzz-zzzz-4zzz-8zzz-zzzzzzzzzzzz", wantErr: true},
		{name: "version zero", in: "6ba7b810-9dad-01d1-80b4-00c04fd430c8", wantErr: true},
		{name: "wrong variant", in: "6ba7b810-9dad-41d1-c0b4-00c04fd430c8", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) = %v, want error", tt.in, got)
				}
				if !errors.Is(err, ErrMalformed) {
					t.Errorf("Parse(%q) error = %v, want ErrMalformed", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
