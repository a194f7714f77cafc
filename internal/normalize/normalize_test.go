package normalize

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"plain host gets scheme", "example.com", "http://example.com"},
		{"https preserved", "https://example.com", "https://example.com"},
		{"upper-cased", "HTTPS://EXAMPLE.COM/Login", "https://example.com/login"},
		{"surrounding whitespace", "  http://example.com  ", "http://example.com"},
		{"fragment stripped", "http://example.com/page#section", "http://example.com/page"},
		{"trailing slash stripped", "http://example.com/", "http://example.com"},
		{"percent decoded", "http://example.com/a%20b", "http://example.com/a b"},
		{"plus kept literal", "http://example.com/p?q=a+b", "http://example.com/p?q=a+b"},
		{"query kept", "http://example.com/p?a=1&b=2", "http://example.com/p?a=1&b=2"},
		{"ftp scheme recognized", "ftp://example.com/file", "ftp://example.com/file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"example.com",
		"  HTTP://Example.com/Path/#frag",
		"https://sub.example.co.uk/a%20b?q=1",
		"http://192.168.1.1/admin/",
		"example.com//",
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}
