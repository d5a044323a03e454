package service

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Chocolate Cake", "chocolate-cake"},
		{"  Sourdough  Bread  ", "sourdough-bread"},
		{"Croissant (3 pcs)", "croissant-3-pcs"},
		{"UPPER case", "upper-case"},
		{"---", ""},
	}

	for _, tt := range tests {
		if got := Slugify(tt.name); got != tt.want {
			t.Fatalf("Slugify(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
