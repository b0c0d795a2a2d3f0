package httputil

import "testing"

func TestParsePage(t *testing.T) {
	cases := map[string]int{
		"":    1,
		"0":   1,
		"-3":  1,
		"abc": 1,
		"7":   7,
	}
	for in, want := range cases {
		if got := ParsePage(in); got != want {
			t.Errorf("ParsePage(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestParsePageSize(t *testing.T) {
	cases := map[string]int{
		"":     50,
		"0":    50,
		"25":   25,
		"9999": 500, // capped
	}
	for in, want := range cases {
		if got := ParsePageSize(in); got != want {
			t.Errorf("ParsePageSize(%q) = %d, want %d", in, got, want)
		}
	}
}
