package insight

import "testing"

func TestNormalizeSiteURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "domain property passes through", in: "sc-domain:example.com", want: "sc-domain:example.com"},
		{name: "domain property trims www and dots", in: "sc-domain: www.Example.com. ", want: "sc-domain:example.com"},
		{name: "plain url reduces to host", in: "https://www.example.com/path?x=1", want: "sc-domain:example.com"},
		{name: "scheme-less host", in: "example.com", want: "sc-domain:example.com"},
		{name: "host with port", in: "https://example.com:8080/", want: "sc-domain:example.com"},
		{name: "empty", in: "  ", wantErr: true},
		{name: "empty domain property", in: "sc-domain:www.", wantErr: true},
		{name: "hostless url", in: "https:///path", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeSiteURL(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NormalizeSiteURL(%q) = %q, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeSiteURL(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("NormalizeSiteURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
