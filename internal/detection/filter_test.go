package detection

import "testing"

func square(x, y, side int) Polygon {
	return Polygon{Vertices: []Point{{x, y}, {x, y + side}, {x + side, y + side}, {x + side, y}}}
}

func TestFilterOptions_Check(t *testing.T) {
	triangle := Polygon{Vertices: []Point{{0, 0}, {0, 40}, {40, 0}}}
	rect99 := Polygon{Vertices: []Point{{0, 0}, {0, 11}, {9, 11}, {9, 0}}}

	tests := []struct {
		name    string
		opts    FilterOptions
		polygon Polygon
		want    Verdict
	}{
		{"area equal to minimum", DefaultFilterOptions(), square(0, 0, 10), Accepted},
		{"area one below minimum", FilterOptions{MinArea: 101, AllowedVertices: DefaultAllowedVertices}, square(0, 0, 10), RejectedArea},
		{"area 99", DefaultFilterOptions(), rect99, RejectedArea},
		{"triangle vertex count", DefaultFilterOptions(), triangle, RejectedVertices},
		{"empty allowed set", FilterOptions{MinArea: DefaultMinArea}, triangle, Accepted},
		{"area checked before vertices", DefaultFilterOptions(), Polygon{Vertices: []Point{{0, 0}, {0, 2}, {2, 0}}}, RejectedArea},
		{"zero minimum", FilterOptions{AllowedVertices: []int{4}}, square(3, 3, 1), Accepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.Check(tt.polygon); got != tt.want {
				t.Errorf("Check() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultFilterOptions_Independent(t *testing.T) {
	opts := DefaultFilterOptions()
	opts.AllowedVertices[0] = 5

	if DefaultAllowedVertices[0] != 4 {
		t.Error("Modifying returned options should not change the package defaults")
	}
}

func TestVerdict_String(t *testing.T) {
	tests := map[Verdict]string{
		Accepted:         "accepted",
		RejectedArea:     "area",
		RejectedVertices: "vertices",
		Verdict(42):      "unknown",
	}
	for v, want := range tests {
		if got := v.String(); got != want {
			t.Errorf("Verdict(%d).String() = %q, want %q", int(v), got, want)
		}
	}
}
