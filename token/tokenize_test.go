package token

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func TestTokenizeDetokenizeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []byte
	}{
		{
			name: "print string literal",
			src:  `10 PRINT "HELLO"`,
			want: []byte{'1', '0', ' ', byte(PRINT), ' ', '"', 'H', 'E', 'L', 'L', 'O', '"'},
		},
		{
			name: "question mark is print",
			src:  `?"HI"`,
			want: []byte{byte(PRINT), '"', 'H', 'I', '"'},
		},
		{
			name: "go to coalesces with a space",
			src:  `GO TO 10`,
			want: []byte{byte(GOTO), ' ', '1', '0'},
		},
		{
			name: "goto contiguous matches directly",
			src:  `GOTO10`,
			want: []byte{byte(GOTO), '1', '0'},
		},
		{
			name: "rem consumes rest of line verbatim",
			src:  `10 REM this: has colons "and quotes`,
			want: append([]byte{'1', '0', ' ', byte(REM)}, []byte(" this: has colons \"and quotes")...),
		},
		{
			name: "data tail verbatim until colon",
			src:  `10 DATA 1,2,"X" :PRINT 1`,
			want: append(append([]byte{'1', '0', ' ', byte(DATA)}, []byte(` 1,2,"X" `)...),
				append([]byte{':', byte(PRINT)}, []byte(" 1")...)...),
		},
		{
			name: "keyword not matched as prefix of identifier",
			src:  `TOTAL=5`,
			// TO is a keyword ending in a letter; TOTAL's next char after
			// "TO" is a letter so TO must not match here.
			want: []byte{'T', 'O', 'T', 'A', 'L', byte(EQ), '5'},
		},
		{
			name: "comparison operators stay single tokens for pairwise lookahead",
			src:  `IF A<>B THEN 10`,
			want: []byte{byte(IF), ' ', 'A', byte(LT), byte(GT), 'B', ' ', byte(THEN), ' ', '1', '0'},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := TokenizeString(tc.src)
			if string(got) != string(tc.want) {
				t.Fatalf("Tokenize(%q) = %v, want %v\nfull dump: %s", tc.src, got, tc.want, spew.Sdump(got))
			}
		})
	}
}

func TestTokenizeDetokenizeInverse(t *testing.T) {
	srcs := []string{
		`10 PRINT "HELLO WORLD"`,
		`20 FOR I=1 TO 10 STEP 2:NEXT I`,
		`30 IF A=1 THEN GOTO 10`,
		`40 DATA 1,2,3,"FOUR"`,
		`50 DEF FNA(X)=X*X+1`,
	}
	for _, src := range srcs {
		toks := TokenizeString(src)
		back := DetokenizeString(toks)
		toks2 := TokenizeString(back)
		if string(toks) != string(toks2) {
			t.Fatalf("tokenize/detokenize not a stable round trip for %q:\n  toks1=%v\n  back=%q\n  toks2=%v", src, toks, back, toks2)
		}
	}
}

func TestSpellingAndLookup(t *testing.T) {
	for _, kw := range Keywords() {
		tok, ok := Lookup(kw.Name)
		if !ok {
			t.Fatalf("Lookup(%q) not found", kw.Name)
		}
		if got := Spelling(tok); got != kw.Name {
			t.Fatalf("Spelling(%v) = %q, want %q", tok, got, kw.Name)
		}
	}
}
