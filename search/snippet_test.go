package search

import "testing"

func TestSanitizeSnippet(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain text",
			in:   "nothing to do here",
			want: "nothing to do here",
		},
		{
			name: "entities without markup",
			in:   "fish &amp; chips",
			want: "fish & chips",
		},
		{
			name: "highlight becomes bold",
			in:   `an example of <span class="searchmatch">wiki</span> syntax`,
			want: "an example of '''wiki''' syntax",
		},
		{
			name: "multiple highlights",
			in:   `<span class="searchmatch">foo</span> or <span class="searchmatch">bar</span>`,
			want: "'''foo''' or '''bar'''",
		},
		{
			name: "other tags are stripped",
			in:   `a <b>bold</b> claim <script>alert(1)</script>`,
			want: "a bold claim ",
		},
		{
			name: "unrelated spans are stripped",
			in:   `a <span class="other">plain</span> span`,
			want: "a plain span",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeSnippet(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
