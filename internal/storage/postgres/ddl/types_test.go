package ddl

import "testing"

func TestMapType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind string
		want string
	}{
		{"int", "BIGINT"},
		{"float", "DOUBLE PRECISION"},
		{" Float ", "DOUBLE PRECISION"},
		{"date", "DATE"},
		{"text", "TEXT"},
		{"empty", "TEXT"},
		{"", "TEXT"},
	}
	for _, tt := range tests {
		if got := MapType(tt.kind); got != tt.want {
			t.Errorf("MapType(%q) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
