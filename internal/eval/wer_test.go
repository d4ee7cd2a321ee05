package eval

import (
	"math"
	"testing"
)

func TestNormalizeText(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Hola, ¿cómo está?", "hola como esta"},
		{"El Niño  ESTÁ aquí.", "el nino esta aqui"},
		{"  spaced   out  ", "spaced out"},
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizeText(c.in); got != c.want {
			t.Errorf("NormalizeText(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestWERIdentical(t *testing.T) {
	res, err := WER("hola buenos días", "Hola, buenos dias")
	if err != nil {
		t.Fatal(err)
	}
	if res.WER != 0 {
		t.Errorf("WER = %v, want 0", res.WER)
	}
	if res.Hits != 3 || res.RefWords != 3 {
		t.Errorf("hits=%d refWords=%d, want 3/3", res.Hits, res.RefWords)
	}
}

func TestWERSubstitution(t *testing.T) {
	res, err := WER("a b c", "a x c")
	if err != nil {
		t.Fatal(err)
	}
	if res.Substitutions != 1 || res.Deletions != 0 || res.Insertions != 0 {
		t.Fatalf("ops = S%d D%d I%d, want S1 D0 I0", res.Substitutions, res.Deletions, res.Insertions)
	}
	if want := 1.0 / 3.0; math.Abs(res.WER-want) > 1e-9 {
		t.Errorf("WER = %v, want %v", res.WER, want)
	}
}

func TestWERDeletionInsertion(t *testing.T) {
	res, err := WER("a b c", "a c")
	if err != nil {
		t.Fatal(err)
	}
	if res.Deletions != 1 || res.Substitutions != 0 || res.Insertions != 0 {
		t.Fatalf("ops = S%d D%d I%d, want S0 D1 I0", res.Substitutions, res.Deletions, res.Insertions)
	}

	res, err = WER("a c", "a b c")
	if err != nil {
		t.Fatal(err)
	}
	if res.Insertions != 1 || res.Substitutions != 0 || res.Deletions != 0 {
		t.Fatalf("ops = S%d D%d I%d, want S0 D0 I1", res.Substitutions, res.Deletions, res.Insertions)
	}
	if want := 0.5; math.Abs(res.WER-want) > 1e-9 {
		t.Errorf("WER = %v, want %v", res.WER, want)
	}
}

func TestWERDerivedRates(t *testing.T) {
	// ref "a b" vs hyp "a x": S=1, H=1, N=2, M=2
	res, err := WER("a b", "a x")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.WER-0.5) > 1e-9 {
		t.Errorf("WER = %v, want 0.5", res.WER)
	}
	if math.Abs(res.MER-0.5) > 1e-9 {
		t.Errorf("MER = %v, want 0.5", res.MER)
	}
	if math.Abs(res.WIL-0.75) > 1e-9 {
		t.Errorf("WIL = %v, want 0.75", res.WIL)
	}
}

func TestWEREmptyReference(t *testing.T) {
	if _, err := WER("...", "algo"); err == nil {
		t.Error("expected error for reference that normalizes to nothing")
	}
}
