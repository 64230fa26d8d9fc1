package build

import "testing"

func TestParseLabel_Absolute(t *testing.T) {
	l, err := ParseLabel("//tensorflow_probability/python/internal:dtype_util", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Package != "tensorflow_probability/python/internal" {
		t.Errorf("wrong package: %q", l.Package)
	}
	if l.Name != "dtype_util" {
		t.Errorf("wrong name: %q", l.Name)
	}
	if l.String() != "//tensorflow_probability/python/internal:dtype_util" {
		t.Errorf("wrong canonical form: %q", l.String())
	}
}

func TestParseLabel_Shorthand(t *testing.T) {
	l, err := ParseLabel("//a/b", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.String() != "//a/b:b" {
		t.Errorf("expected //a/b:b, got %q", l.String())
	}
}

func TestParseLabel_Relative(t *testing.T) {
	for _, in := range []string{":util", "util"} {
		l, err := ParseLabel(in, "a/b")
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", in, err)
		}
		if l.String() != "//a/b:util" {
			t.Errorf("expected //a/b:util for %q, got %q", in, l.String())
		}
	}
}

func TestParseLabel_External(t *testing.T) {
	l, err := ParseLabel("@six_archive//:six", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !l.IsExternal() {
		t.Error("expected external label")
	}
	if l.String() != "@six_archive//:six" {
		t.Errorf("wrong canonical form: %q", l.String())
	}
}

func TestParseLabel_RootPackage(t *testing.T) {
	l, err := ParseLabel("//:root_target", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Package != "" || l.Name != "root_target" {
		t.Errorf("unexpected label: %+v", l)
	}
}

func TestParseLabel_Invalid(t *testing.T) {
	for _, in := range []string{"", ":", "//a/b:", "/abs/path", "@repo:x", "@repo//a:", "//a//b:c"} {
		if _, err := ParseLabel(in, "pkg"); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestIsSourceRef(t *testing.T) {
	if IsSourceRef("harvest.py") {
		t.Error("plain file name should not be a source ref")
	}
	for _, in := range []string{"//a:b", ":gen_srcs", "@repo//:f"} {
		if !IsSourceRef(in) {
			t.Errorf("expected %q to be a source ref", in)
		}
	}
}

func TestTarget_IsTest(t *testing.T) {
	tests := []struct {
		kind string
		want bool
	}{
		{"py_test", true},
		{"cc_test", true},
		{"py_library", false},
		{"test_suite", false},
		{"_test", false},
	}
	for _, tc := range tests {
		tgt := &Target{Kind: tc.kind}
		if tgt.IsTest() != tc.want {
			t.Errorf("IsTest(%q) = %v, want %v", tc.kind, tgt.IsTest(), tc.want)
		}
	}
}
