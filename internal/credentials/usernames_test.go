package credentials

import (
	"strings"
	"testing"
)

func TestGenerateUsername(t *testing.T) {
	for i := 0; i < 50; i++ {
		name, err := GenerateUsername()
		if err != nil {
			t.Fatalf("GenerateUsername() error: %v", err)
		}
		parts := strings.Split(name, "-")
		if len(parts) != 2 {
			t.Fatalf("expected adjective-noun format, got %q", name)
		}
		if parts[0] == "" || parts[1] == "" {
			t.Errorf("empty component in %q", name)
		}
	}
}

func TestGenerateSuffix(t *testing.T) {
	tests := []struct {
		name       string
		iterations int
		length     int
	}{
		{
			name:       "generates suffix of correct length",
			iterations: 100,
			length:     4,
		},
		{
			name:       "generates mostly unique suffixes",
			iterations: 10,
			length:     4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen := make(map[string]int)
			for i := 0; i < tt.iterations; i++ {
				suffix, err := GenerateSuffix()
				if err != nil {
					t.Fatalf("GenerateSuffix() error: %v", err)
				}
				if len(suffix) != tt.length {
					t.Errorf("suffix length %d, want %d", len(suffix), tt.length)
				}
				seen[suffix]++
			}
			if len(seen) < tt.iterations/2 {
				t.Errorf("suffixes look non-random: %d unique out of %d", len(seen), tt.iterations)
			}
		})
	}
}
