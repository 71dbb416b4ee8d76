package combinator

import "testing"

func TestCharAdvancesByRuneWidth(t *testing.T) {
	ascii := Char(func(r rune) bool { return r == 'a' })
	kana := Char(func(r rune) bool { return r == 'あ' })

	if r, rest, ok := ascii("abc"); !ok || r != 'a' || rest != "bc" {
		t.Fatalf("Char(abc) = %q %q %v", r, rest, ok)
	}
	if _, _, ok := ascii("def"); ok {
		t.Fatalf("expected Char to reject d")
	}
	if r, rest, ok := kana("あいう"); !ok || r != 'あ' || rest != "いう" {
		t.Fatalf("Char(あいう) = %q %q %v", r, rest, ok)
	}
	if _, _, ok := kana("えおか"); ok {
		t.Fatalf("expected Char to reject え")
	}
}

func TestLiteral(t *testing.T) {
	cases := []struct {
		lit, input, rest string
		ok               bool
	}{
		{lit: "abc", input: "abcdef", rest: "def", ok: true},
		{lit: "abc", input: "def", ok: false},
		{lit: "あいう", input: "あいう", rest: "", ok: true},
		{lit: "あいう", input: "あいうえお", rest: "えお", ok: true},
	}
	for _, tc := range cases {
		got, rest, ok := Literal(tc.lit)(tc.input)
		if ok != tc.ok {
			t.Fatalf("Literal(%q)(%q) ok = %v, want %v", tc.lit, tc.input, ok, tc.ok)
		}
		if ok && (got != tc.lit || rest != tc.rest) {
			t.Fatalf("Literal(%q)(%q) = %q %q", tc.lit, tc.input, got, rest)
		}
	}
}

func TestUint(t *testing.T) {
	n, rest, ok := Uint()("42. item")
	if !ok || n != 42 || rest != ". item" {
		t.Fatalf("Uint = %d %q %v", n, rest, ok)
	}
	if _, _, ok := Uint()("x1"); ok {
		t.Fatalf("expected Uint to require a leading digit")
	}
}

func TestUintOverflowFailsInsteadOfPanicking(t *testing.T) {
	input := "99999999999999999999999999. item"
	_, rest, ok := Uint()(input)
	if ok {
		t.Fatalf("expected overflow to fail the match")
	}
	if rest != input {
		t.Fatalf("expected input to be left untouched, got %q", rest)
	}
}
