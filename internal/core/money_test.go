package core

import "testing"

func TestParseYen(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"300", 300, true},
		{" 300 ", 300, true},
		{"0", 0, true},
		{"2,500", 2500, true},
		{"2,500円", 2500, true},
		{"３００", 300, true},
		{"１，２００円", 1200, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"1.5", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"円", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseYen(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error, got %d", tc.in, got)
			}
		}
	}
}

func TestFormatYen(t *testing.T) {
	if got := FormatYen(300); got != "300 円" {
		t.Fatalf("FormatYen(300) = %q", got)
	}
	if got := FormatYen(-1200); got != "-1200 円" {
		t.Fatalf("FormatYen(-1200) = %q", got)
	}
}

func TestNormalizeDigits(t *testing.T) {
	if got := NormalizeDigits("１２，３４５"); got != "12345" {
		t.Fatalf("NormalizeDigits = %q", got)
	}
}
