package ast

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Format identifies the AST encoding.
type Format uint8

const (
	FormatAuto Format = iota
	FormatJSON
	FormatMsgpack
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	default:
		return FormatAuto, fmt.Errorf("unknown AST format %q", s)
	}
}

func DecodeJSON(r io.Reader) (*Program, error) {
	var p Program
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode json ast: %w", err)
	}
	return &p, nil
}

func DecodeMsgpack(r io.Reader) (*Program, error) {
	var p Program
	dec := msgpack.NewDecoder(r)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode msgpack ast: %w", err)
	}
	return &p, nil
}

// EncodeMsgpack writes p in the binary form accepted by DecodeMsgpack.
func EncodeMsgpack(w io.Writer, p *Program) error {
	enc := msgpack.NewEncoder(w)
	enc.SetOmitEmpty(true)
	return enc.Encode(p)
}

// Decode reads a program in the given format. FormatAuto sniffs the first
// non-blank byte: '{' means JSON, anything else msgpack.
func Decode(r io.Reader, format Format) (*Program, error) {
	br := bufio.NewReader(r)
	if format == FormatAuto {
		format = sniff(br)
	}
	switch format {
	case FormatJSON:
		return DecodeJSON(br)
	default:
		return DecodeMsgpack(br)
	}
}

// Load reads and validates a program from disk. The format follows the file
// extension (.json, .msgpack, .mp) and falls back to sniffing.
func Load(path string) (*Program, error) {
	// #nosec G304 -- path is provided by the caller
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	format := FormatAuto
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		format = FormatJSON
	case ".msgpack", ".mp":
		format = FormatMsgpack
	}
	p, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func sniff(br *bufio.Reader) Format {
	for n := 1; n <= 64; n++ {
		head, err := br.Peek(n)
		if len(head) < n {
			break
		}
		b := head[n-1]
		if bytes.IndexByte([]byte(" \t\r\n"), b) >= 0 {
			if err != nil {
				break
			}
			continue
		}
		if b == '{' {
			return FormatJSON
		}
		return FormatMsgpack
	}
	return FormatMsgpack
}
