package service

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Earthquake Basics", "earthquake-basics"},
		{"  Fire Safety 101  ", "fire-safety-101"},
		{"Flood / Cyclone Response!", "flood-cyclone-response"},
		{"ALREADY-SLUGGED", "already-slugged"},
		{"---", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 25)
	if p.CurrentPage != 2 {
		t.Errorf("currentPage = %d, want 2", p.CurrentPage)
	}
	if p.TotalPages != 3 {
		t.Errorf("totalPages = %d, want 3", p.TotalPages)
	}
	if p.TotalItems != 25 {
		t.Errorf("totalItems = %d, want 25", p.TotalItems)
	}
	if p.ItemsPerPage != 10 {
		t.Errorf("itemsPerPage = %d, want 10", p.ItemsPerPage)
	}

	empty := NewPagination(1, 10, 0)
	if empty.TotalPages != 0 {
		t.Errorf("empty totalPages = %d, want 0", empty.TotalPages)
	}

	exact := NewPagination(1, 10, 30)
	if exact.TotalPages != 3 {
		t.Errorf("exact totalPages = %d, want 3", exact.TotalPages)
	}
}
