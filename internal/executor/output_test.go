package executor

import (
	"strings"
	"testing"
)

func TestLimitedBuffer_Write(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		writes    []string
		want      string
		wantTrunc bool
	}{
		{
			name:      "No truncation",
			limit:     10,
			writes:    []string{"hello", "world"},
			want:      "helloworld",
			wantTrunc: false,
		},
		{
			name:      "Exact limit",
			limit:     11,
			writes:    []string{"hello", "world!"},
			want:      "helloworld!",
			wantTrunc: false,
		},
		{
			name:      "Truncation in single write",
			limit:     5,
			writes:    []string{"helloworld"},
			want:      truncatedPrefix + "world",
			wantTrunc: true,
		},
		{
			name:      "Truncation in second write",
			limit:     10,
			writes:    []string{"hello", " world! this is long"},
			want:      truncatedPrefix + "is is long",
			wantTrunc: true,
		},
		{
			name:      "Wrap across small writes",
			limit:     4,
			writes:    []string{"ab", "cd", "ef"},
			want:      truncatedPrefix + "cdef",
			wantTrunc: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lb := newLimitedBuffer(tt.limit)
			for _, w := range tt.writes {
				n, err := lb.Write([]byte(w))
				if err != nil {
					t.Errorf("Write() error = %v", err)
				}
				if n != len(w) {
					t.Errorf("Write() returned %v, want %v", n, len(w))
				}
			}

			if lb.Truncated() != tt.wantTrunc {
				t.Errorf("Truncated() = %v, want %v", lb.Truncated(), tt.wantTrunc)
			}

			if got := lb.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLimitedBuffer_DefaultLimit(t *testing.T) {
	lb := newLimitedBuffer(0)
	lb.WriteString(strings.Repeat("a", defaultMaxOutputSize))
	if lb.Truncated() {
		t.Fatal("buffer truncated at exactly the default limit")
	}
	lb.WriteString("b")
	if !lb.Truncated() {
		t.Fatal("expected truncation past the default limit")
	}
	if got := lb.String(); !strings.HasSuffix(got, "ab") {
		t.Errorf("expected newest byte at the end, got suffix %q", got[len(got)-2:])
	}
}

func BenchmarkLimitedBuffer_WriteString(b *testing.B) {
	lb := newLimitedBuffer(0)
	s := strings.Repeat("a", 1024)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		lb.WriteString(s)
	}
}
