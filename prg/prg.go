// Package prg implements the tokenized-program file codec of spec §6's
// SAVE/LOAD contract, grounded directly on the retrieval pack's
// creachadair-prgfile reader (confirming the field layout: a 2-byte
// origin address, then per-line records of a little-endian next-line
// address, a little-endian line number, raw token bytes, and a
// terminating 0x00, with a final all-zero address marking end of file)
// and on convertprg.go's load-address handling. Only the byte format is
// implemented here; reading and writing the bytes to a filesystem is
// cmd/basic's job.
package prg

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/jmchacon/basic/memimg"
	"github.com/jmchacon/basic/program"
	"github.com/jmchacon/basic/token"
)

// DefaultLoadAddr is the nominal BASIC program start address used when
// the caller has no more specific origin to record (reference: the
// Commodore 64's $0801).
const DefaultLoadAddr = 0x0801

// Encode renders prog as a tokenized PRG byte image starting at
// loadAddr. Each stored line becomes {next_link, line_number, tokens...,
// 0x00}; next_link is the address the following line's record would
// start at (an internal bookkeeping value, never an absolute target
// programs branch to — GOTO/GOSUB address by line number, not by this
// link), and the file ends with a single 0x0000 word.
func Encode(prog *program.Program, loadAddr uint16) []byte {
	out := make([]byte, 2)
	binary.LittleEndian.PutUint16(out, loadAddr)

	addr := loadAddr
	for _, n := range prog.Lines() {
		body, _ := prog.Get(n)
		recLen := 2 + 2 + len(body) + 1
		addr += uint16(recLen)

		rec := make([]byte, 0, recLen)
		var link [2]byte
		binary.LittleEndian.PutUint16(link[:], addr)
		rec = append(rec, link[:]...)
		var num [2]byte
		binary.LittleEndian.PutUint16(num[:], n)
		rec = append(rec, num[:]...)
		rec = append(rec, body...)
		rec = append(rec, 0)
		out = append(out, rec...)
	}
	out = append(out, 0, 0)
	return out
}

// Decode parses a PRG byte stream into a fresh *program.Program. The
// origin word and each line's next_link are read but not otherwise
// consulted — line order and content come entirely from the line_number
// fields and the token bytes between them, which is all Prog.Put needs.
func Decode(r io.Reader) (*program.Program, error) {
	br := bufio.NewReader(r)
	if _, err := readWord(br); err != nil {
		return nil, fmt.Errorf("prg: reading origin: %w", err)
	}

	prog := program.New()
	for {
		link, err := readWord(br)
		if err != nil {
			return nil, fmt.Errorf("prg: reading line link: %w", err)
		}
		if link == 0 {
			return prog, nil
		}
		lineNum, err := readWord(br)
		if err != nil {
			return nil, fmt.Errorf("prg: reading line number: %w", err)
		}
		var body []byte
		for {
			b, err := br.ReadByte()
			if err != nil {
				return nil, fmt.Errorf("prg: reading line %d body: %w", lineNum, err)
			}
			if b == 0 {
				break
			}
			body = append(body, b)
		}
		prog.Put(lineNum, body)
	}
}

// ListLine walks one line of a tokenized program directly out of a
// memimg.Image at addr, the way the teacher's c64basic.List walked a
// Commodore memory.Bank: read the next-line link, then the line number,
// then detokenize the body up to the terminating 0x00. It returns the
// rendered "NUM TEXT" line and the address of the next line's link; a
// next-line link of 0 marks end of program and returns an empty string.
// This exists alongside Decode for callers that already have a program
// resident in simulated memory (e.g. after a raw memory POKE-load) and
// want to list it without round-tripping through a *program.Program.
func ListLine(img *memimg.Image, addr uint16) (string, uint16, error) {
	next := img.ReadWord(addr)
	addr += 2
	if next == 0 {
		return "", 0, nil
	}
	lineNum := img.ReadWord(addr)
	addr += 2

	var body []byte
	for {
		b := img.ReadByte(addr)
		addr++
		if b == 0 {
			break
		}
		body = append(body, b)
	}
	return fmt.Sprintf("%d %s", lineNum, token.DetokenizeString(body)), next, nil
}

func readWord(br *bufio.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(br, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}
