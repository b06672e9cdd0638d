package strings

import "testing"

func TestSnakeFromCamel(t *testing.T) {
	cases := map[string]string{
		"":           "",
		"userId":     "user_id",
		"UserId":     "user_id",
		"user_id":    "user_id",
		"name":       "name",
		"HTTPStatus": "http_status",
		"parentUUID": "parent_uuid",
		"a":          "a",
		"AB":         "ab",
	}

	for in, want := range cases {
		if got := SnakeFromCamel(in); got != want {
			t.Errorf("SnakeFromCamel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEqualFold(t *testing.T) {
	if !EqualFold("NAME", "name") {
		t.Error("expected NAME to fold-equal name")
	}
	if EqualFold("name", "names") {
		t.Error("expected name and names to differ")
	}
}

func TestHasPrefixFold(t *testing.T) {
	if !HasPrefixFold("USER_id", "user_") {
		t.Error("expected case-insensitive prefix match")
	}
	if HasPrefixFold("id", "user_") {
		t.Error("expected no match for short string")
	}
}

func TestBuilder(t *testing.T) {
	builder := NewBuilder(8)

	builder.WriteString("hello")
	builder.WriteByte(' ')
	builder.WriteString("world")

	if got := builder.String(); got != "hello world" {
		t.Errorf("expected 'hello world', got %q", got)
	}
	if builder.Len() != 11 {
		t.Errorf("expected length 11, got %d", builder.Len())
	}

	builder.Reset()
	if builder.Len() != 0 {
		t.Errorf("expected empty builder after reset, got length %d", builder.Len())
	}
}

func TestSprintf(t *testing.T) {
	if got := Sprintf("no args"); got != "no args" {
		t.Errorf("expected passthrough, got %q", got)
	}
	if got := Sprintf("%s=%d", "value", 42); got != "value=42" {
		t.Errorf("expected 'value=42', got %q", got)
	}
}

func TestConcat(t *testing.T) {
	if got := Concat(); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
	if got := Concat("a", "b", "c"); got != "abc" {
		t.Errorf("expected 'abc', got %q", got)
	}
}
