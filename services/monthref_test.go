package services

import "testing"

func TestRefMonth(t *testing.T) {
	cases := []struct {
		name string
		year int
		want string
	}{
		{"Janeiro", 2024, "2024-01"},
		{"março", 2024, "2024-03"},
		{"  Dezembro  ", 2023, "2023-12"},
	}
	for _, c := range cases {
		got, err := RefMonth(c.name, c.year)
		if err != nil {
			t.Fatalf("RefMonth(%q, %d): %v", c.name, c.year, err)
		}
		if got != c.want {
			t.Fatalf("RefMonth(%q, %d) = %q, want %q", c.name, c.year, got, c.want)
		}
	}

	if _, err := RefMonth("Smarch", 2024); err == nil {
		t.Fatalf("expected error for unknown month name")
	}
}

func TestMonthName(t *testing.T) {
	if got := MonthName("2024-03"); got != "Março/2024" {
		t.Fatalf("MonthName = %q", got)
	}
	if got := MonthName("not-a-label"); got != "not-a-label" {
		t.Fatalf("invalid labels must pass through, got %q", got)
	}
}

func TestValidMonth(t *testing.T) {
	for label, want := range map[string]bool{
		"2024-01":  true,
		"2024-12":  true,
		"2024-13":  false,
		"2024-00":  false,
		"24-01":    false,
		"2024/01":  false,
		"jan/2024": false,
	} {
		if got := ValidMonth(label); got != want {
			t.Fatalf("ValidMonth(%q) = %v, want %v", label, got, want)
		}
	}
}
