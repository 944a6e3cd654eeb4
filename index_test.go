package main

import "testing"

func TestPageTitle(t *testing.T) {
	tests := []struct {
		rel   string
		title string
		ns    int
		ok    bool
	}{
		{"Main_Page.wiki", "Main Page", 0, true},
		{"Apple_pie.txt", "Apple pie", 0, true},
		{"Help/Editing.wiki", "Help:Editing", 12, true},
		{"Template/Search_result.wiki", "Template:Search result", 10, true},
		{"Secret/Notes.wiki", "", 0, false},
	}

	for _, tt := range tests {
		title, ns, ok := pageTitle(tt.rel)
		if title != tt.title || ns != tt.ns || ok != tt.ok {
			t.Errorf("pageTitle(%q) = %q, %d, %v; want %q, %d, %v",
				tt.rel, title, ns, ok, tt.title, tt.ns, tt.ok)
		}
	}
}
