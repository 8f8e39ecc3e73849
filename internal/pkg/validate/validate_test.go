package validate

import "testing"

func TestUsername(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"ab", false},
		{"  ab  ", false},
		{"abc", true},
		{"mahim_01", true},
		{"first.last-x", true},
		{"has space", false},
		{"émoji", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := Username(tc.value); got != tc.want {
			t.Errorf("Username(%q) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestEmail(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"user@campus.edu", true},
		{"user@sub.campus.edu", true},
		{"user@campus", false},
		{"@campus.edu", false},
		{"user@", false},
		{"user campus@x.y", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := Email(tc.value); got != tc.want {
			t.Errorf("Email(%q) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestPostContent(t *testing.T) {
	if PostContent("   ") {
		t.Error("blank post content should be rejected")
	}
	if !PostContent("hello campus") {
		t.Error("plain post content should be accepted")
	}
	long := make([]byte, MaxPostLen+1)
	for i := range long {
		long[i] = 'a'
	}
	if PostContent(string(long)) {
		t.Error("oversized post content should be rejected")
	}
}
