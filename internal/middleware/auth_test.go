package middleware_test

import (
	"testing"

	"storefront-service/internal/middleware"
)

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc.def.ghi", "abc.def.ghi", true},
		{`Bearer "abc.def.ghi"`, "abc.def.ghi", true},
		{"Bearer 'abc.def.ghi'", "abc.def.ghi", true},
		{"Bearer  abc ", "abc", true},
		{"Basic dXNlcjpwYXNz", "", false},
		{"abc.def.ghi", "", false},
		{"", "", false},
	}

	for _, c := range cases {
		got, ok := middleware.ExtractBearerToken(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("ExtractBearerToken(%q) = (%q, %v), want (%q, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}
