package prg_test

import (
	"bytes"
	"testing"

	"github.com/jmchacon/basic/prg"
	"github.com/jmchacon/basic/program"
	"github.com/jmchacon/basic/token"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p := program.New()
	p.Put(10, token.TokenizeString(`PRINT "HELLO"`))
	p.Put(20, token.TokenizeString(`FOR I=1 TO 10 : NEXT I`))
	p.Put(30, token.TokenizeString(`END`))

	encoded := prg.Encode(p, prg.DefaultLoadAddr)

	decoded, err := prg.Decode(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if got, want := decoded.Lines(), p.Lines(); !equalUint16(got, want) {
		t.Fatalf("Lines() = %v, want %v", got, want)
	}
	for _, n := range p.Lines() {
		want, _ := p.Get(n)
		got, ok := decoded.Get(n)
		if !ok || !bytes.Equal(got, want) {
			t.Errorf("line %d = %v, want %v", n, got, want)
		}
	}
}

func TestDecodeTerminatesOnZeroLink(t *testing.T) {
	p := program.New()
	encoded := prg.Encode(p, prg.DefaultLoadAddr)
	decoded, err := prg.Decode(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("Decode empty program: %v", err)
	}
	if decoded.Len() != 0 {
		t.Errorf("Len() = %d, want 0", decoded.Len())
	}
}

func equalUint16(a, b []uint16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
