package token

import (
	"sort"
	"strings"
)

// scanOrder lists keyword indices sorted by descending spelling length,
// so the longest-match rule (a keyword match must not be a prefix of a
// longer one) is satisfied by trying candidates in that order.
var scanOrder []int

func init() {
	scanOrder = make([]int, len(keywords))
	for i := range scanOrder {
		scanOrder[i] = i
	}
	sort.SliceStable(scanOrder, func(a, b int) bool {
		return len(keywords[scanOrder[a]].Name) > len(keywords[scanOrder[b]].Name)
	})
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

// matchKeyword tries to match the longest reserved word at src[pos:],
// honoring the rule that a match ending in a letter must not be directly
// followed by another letter (so it isn't a prefix of a longer
// identifier). FN is the exception: it matches even when a letter
// follows, since a user function name comes right after it (FNA).
// Returns the keyword index and the number of source bytes consumed, or
// ok=false.
func matchKeyword(src []byte, pos int) (idx int, n int, ok bool) {
	for _, ki := range scanOrder {
		name := keywords[ki].Name
		if len(name) == 0 || pos+len(name) > len(src) {
			continue
		}
		matched := true
		for j := 0; j < len(name); j++ {
			c := name[j]
			sc := src[pos+j]
			if isLetter(c) {
				if upper(sc) != c {
					matched = false
					break
				}
			} else {
				if sc != c {
					matched = false
					break
				}
			}
		}
		if !matched {
			continue
		}
		last := name[len(name)-1]
		if isLetter(last) && keywords[ki].Token != FN {
			next := pos + len(name)
			if next < len(src) && isLetter(src[next]) {
				continue
			}
		}
		return ki, len(name), true
	}
	return 0, 0, false
}

// Tokenize compresses a line of BASIC source into its token byte
// sequence, per the tokenizer rules: string literals pass through
// verbatim, REM/DATA tails pass through verbatim, GO+TO coalesces to a
// single GOTO token, and "?" stands for PRINT.
func Tokenize(src []byte) []byte {
	out := make([]byte, 0, len(src))
	i := 0
	n := len(src)
	for i < n {
		b := src[i]

		if b == '"' {
			out = append(out, b)
			i++
			for i < n {
				out = append(out, src[i])
				c := src[i]
				i++
				if c == '"' {
					break
				}
			}
			continue
		}

		if b == '?' {
			out = append(out, byte(PRINT))
			i++
			continue
		}

		if idx, consumed, ok := matchKeyword(src, i); ok {
			tok := keywords[idx].Token
			i += consumed

			if tok == GO {
				save := i
				j := i
				for j < n && src[j] == ' ' {
					j++
				}
				if tidx, tcons, matched := matchKeyword(src, j); matched && keywords[tidx].Token == TO {
					i = j + tcons
					out = append(out, byte(GOTO))
					continue
				}
				i = save
			}

			out = append(out, byte(tok))

			if tok == REM {
				out = append(out, src[i:]...)
				i = n
				continue
			}
			if tok == DATA {
				for i < n && src[i] != ':' {
					out = append(out, src[i])
					i++
				}
				continue
			}
			continue
		}

		out = append(out, b)
		i++
	}
	return out
}

// TokenizeString is a convenience wrapper for string input.
func TokenizeString(src string) []byte {
	return Tokenize([]byte(src))
}

// Detokenize is the exact inverse of Tokenize for bytes >= 128: each
// token byte expands to its canonical uppercase spelling; bytes < 128
// print as themselves.
func Detokenize(toks []byte) []byte {
	var b strings.Builder
	for _, t := range toks {
		if t >= byte(First) {
			b.WriteString(Spelling(Token(t)))
			continue
		}
		b.WriteByte(t)
	}
	return []byte(b.String())
}

// DetokenizeString is a convenience wrapper returning a string.
func DetokenizeString(toks []byte) string {
	return string(Detokenize(toks))
}
