package tree

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func dog() *Tree {
	return New("ROOT",
		New("S",
			New("NP", New("Det", Leaf("the")), New("N", Leaf("dog"))),
			New("VP", New("V", Leaf("barks")))))
}

func TestTree_String(t *testing.T) {
	want := "(ROOT (S (NP (Det the) (N dog)) (VP (V barks))))"
	if got := dog().String(); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestTree_Yield(t *testing.T) {
	if got := strings.Join(dog().Yield(), " "); got != "the dog barks" {
		t.Errorf("Yield() = %q", got)
	}
}

func TestTree_PreOrder(t *testing.T) {
	var labels []string
	for _, n := range dog().PreOrder() {
		labels = append(labels, n.Label)
	}
	want := "ROOT S NP Det the N dog VP V barks"
	if got := strings.Join(labels, " "); got != want {
		t.Errorf("PreOrder() = %s, want %s", got, want)
	}
}

func TestTree_CopyAndEqual(t *testing.T) {
	a := dog()
	b := a.Copy()
	if !a.Equal(b) {
		t.Fatal("copy differs from original")
	}
	b.Children[0].Label = "SINV"
	if a.Equal(b) {
		t.Error("copy shares nodes with original")
	}
	if a.Children[0].Label != "S" {
		t.Error("modifying the copy changed the original")
	}
}

func TestPenn(t *testing.T) {
	want := "(ROOT\n  (S\n    (NP (Det the) (N dog))\n    (VP (V barks))))\n"
	if got := Penn(dog()); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestPenn_Coordination(t *testing.T) {
	tr, err := Parse("(NP (NN cats) (CC and) (NN dogs))")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := "(NP (NN cats)\n  (CC and)\n  (NN dogs))\n"
	if got := Penn(tr); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"(S (NP (DT the) (NN dog)))", "(S (NP (DT the) (NN dog)))"},
		{"  (S\n\t(NP  (DT the)\n (NN dog) ) )", "(S (NP (DT the) (NN dog)))"},
		{"((S (VP (VB go))))", "(ROOT (S (VP (VB go))))"},
		{"(@VP->V_NP#0 (V saw))", "(@VP->V_NP#0 (V saw))"},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Errorf("Parse(%q): %v", tt.in, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("Parse(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{"", "S (NP x)", "(S (NP x)", "(S"} {
		if _, err := Parse(in); !errors.Is(err, ErrSyntax) {
			t.Errorf("Parse(%q): expected ErrSyntax, got %v", in, err)
		}
	}
}

func TestReader_ReadAll(t *testing.T) {
	rd := NewReader(strings.NewReader("(A (B x))\n(C y)\n\n(D (E z) (F w))"))
	trees, err := rd.ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(trees) != 3 {
		t.Fatalf("expected 3 trees, got %d", len(trees))
	}
	if trees[2].String() != "(D (E z) (F w))" {
		t.Errorf("third tree = %s", trees[2])
	}
	if _, err := rd.Read(); err != io.EOF {
		t.Errorf("expected io.EOF after the last tree, got %v", err)
	}
}

func TestSplice(t *testing.T) {
	tr, err := Parse("(A (@x (B b) (@y (C c) (D d))) (E e))")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := Splice(tr, func(label string) bool { return strings.HasPrefix(label, "@") })
	if got == nil || got.String() != "(A (B b) (C c) (D d) (E e))" {
		t.Errorf("got %v", got)
	}
	if tr.String() != "(A (@x (B b) (@y (C c) (D d))) (E e))" {
		t.Error("Splice modified its input")
	}

	top, _ := Parse("(@x (B b) (C c))")
	if Splice(top, func(label string) bool { return label == "@x" }) != nil {
		t.Error("splicing the root of a two-child tree should leave no single root")
	}
}
