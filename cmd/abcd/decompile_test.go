package main

import "testing"

func TestSanitizeFileComponent(t *testing.T) {
	cases := map[string]string{
		"foo":       "foo",
		"foo.bar":   "foo.bar",
		"a/b\\c":    "a_b_c",
		"":          "_",
		"=#MyClass": "__MyClass",
	}
	for in, want := range cases {
		if got := sanitizeFileComponent(in); got != want {
			t.Errorf("sanitizeFileComponent(%q) = %q, want %q", in, got, want)
		}
	}
}
