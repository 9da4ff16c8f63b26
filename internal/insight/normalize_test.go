package insight

import "testing"

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		opts NormalizeOptions
		want string
	}{
		{
			name: "empty input",
			raw:  "   ",
			want: "",
		},
		{
			name: "lowercases scheme and host",
			raw:  "HTTPS://Example.com/Foo",
			want: "https://example.com/Foo",
		},
		{
			name: "strips single trailing slash",
			raw:  "https://example.com/foo/",
			want: "https://example.com/foo",
		},
		{
			name: "empty path collapses to root",
			raw:  "https://example.com",
			want: "https://example.com/",
		},
		{
			name: "drops query and fragment by default",
			raw:  "https://example.com/foo?utm_source=x#section",
			want: "https://example.com/foo",
		},
		{
			name: "keeps query when requested",
			raw:  "https://example.com/foo?a=1",
			opts: NormalizeOptions{KeepQuery: true},
			want: "https://example.com/foo?a=1",
		},
		{
			name: "keeps fragment when requested",
			raw:  "https://example.com/foo#part",
			opts: NormalizeOptions{KeepFragment: true},
			want: "https://example.com/foo#part",
		},
		{
			name: "www kept by default",
			raw:  "https://www.example.com/foo",
			want: "https://www.example.com/foo",
		},
		{
			name: "www removed on request",
			raw:  "https://www.example.com/foo",
			opts: NormalizeOptions{RemoveWWW: true},
			want: "https://example.com/foo",
		},
		{
			name: "relative path resolves against base",
			raw:  "/pricing/",
			opts: NormalizeOptions{BaseURL: "https://example.com/"},
			want: "https://example.com/pricing",
		},
		{
			name: "absolute url ignores base",
			raw:  "https://other.example/foo",
			opts: NormalizeOptions{BaseURL: "https://example.com"},
			want: "https://other.example/foo",
		},
		{
			name: "uppercase-scheme absolute url ignores base",
			raw:  "HTTPS://Example.com/Foo",
			opts: NormalizeOptions{BaseURL: "https://base.example"},
			want: "https://example.com/Foo",
		},
		{
			name: "no host degrades to bare path",
			raw:  "/orphan/path",
			want: "/orphan/path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeURL(tt.raw, tt.opts)
			if got != tt.want {
				t.Fatalf("NormalizeURL(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeURLIdempotent(t *testing.T) {
	inputs := []string{
		"HTTPS://Example.com/Foo/",
		"https://example.com/foo?x=1#frag",
		"/bare/path",
		"example.com/page",
	}
	for _, raw := range inputs {
		once := NormalizeURL(raw, NormalizeOptions{})
		twice := NormalizeURL(once, NormalizeOptions{})
		if once != twice {
			t.Errorf("normalization not idempotent for %q: %q then %q", raw, once, twice)
		}
	}
}

func TestNormalizeURLHostCaseInsensitive(t *testing.T) {
	for _, opts := range []NormalizeOptions{
		{},
		{BaseURL: "https://base.example"},
	} {
		a := NormalizeURL("HTTPS://Example.com/Foo", opts)
		b := NormalizeURL("https://example.com/Foo", opts)
		if a != b {
			t.Fatalf("expected equal normal forms with %+v, got %q and %q", opts, a, b)
		}
	}
}
