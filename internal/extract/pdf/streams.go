package pdf

import (
	"bytes"
	"compress/zlib"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
)

var (
	kwStream    = []byte("stream")
	kwEndstream = []byte("endstream")
	kwObj       = []byte("obj")
)

// ScanStreams recovers text by scanning every content stream in the file
// for text-showing operators. It ignores the page tree, so it still works
// when cross references are broken, at the cost of page order guarantees.
func ScanStreams(path string) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Err: err}
	}
	if !bytes.HasPrefix(bytes.TrimLeft(data, " \r\n\t"), []byte("%PDF")) {
		return Result{Err: errors.New("missing %PDF header")}
	}

	var parts []string
	var firstErr error
	pos := 0
	for {
		i := bytes.Index(data[pos:], kwStream)
		if i < 0 {
			break
		}
		kw := pos + i
		pos = kw + len(kwStream)
		if kw >= 3 && string(data[kw-3:kw]) == "end" {
			continue
		}
		start := pos
		if start < len(data) && data[start] == '\r' {
			start++
		}
		if start < len(data) && data[start] == '\n' {
			start++
		}
		end := bytes.Index(data[start:], kwEndstream)
		if end < 0 {
			break
		}
		raw := data[start : start+end]
		pos = start + end + len(kwEndstream)

		dictStart := bytes.LastIndex(data[:kw], kwObj)
		if dictStart < 0 {
			dictStart = 0
		}
		dict := string(data[dictStart:kw])
		if skipStream(dict) {
			continue
		}
		content := raw
		if strings.Contains(dict, "/FlateDecode") {
			content, err = inflate(raw)
			if err != nil && len(content) == 0 {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
		}
		if text := strings.TrimSpace(showText(content)); text != "" {
			parts = append(parts, text)
		}
	}
	return Result{Text: strings.Join(parts, "\n"), Err: firstErr}
}

func skipStream(dict string) bool {
	for _, marker := range []string{"/Image", "/FontFile", "/Length1", "/XRef", "/ObjStm", "/Metadata"} {
		if strings.Contains(dict, marker) {
			return true
		}
	}
	return false
}

func inflate(raw []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return out, err
	}
	return out, nil
}

// showText interprets the text operators of a content stream.
func showText(content []byte) string {
	var (
		out      strings.Builder
		operands []string
		numbers  []float64
		inArray  bool
		array    strings.Builder
	)
	emit := func(s string) {
		out.WriteString(s)
	}
	newline := func() {
		if out.Len() > 0 && !strings.HasSuffix(out.String(), "\n") {
			out.WriteByte('\n')
		}
	}
	space := func() {
		s := out.String()
		if out.Len() > 0 && !strings.HasSuffix(s, " ") && !strings.HasSuffix(s, "\n") {
			out.WriteByte(' ')
		}
	}

	i := 0
	for i < len(content) {
		c := content[i]
		switch {
		case isSpace(c):
			i++
		case c == '%':
			for i < len(content) && content[i] != '\n' && content[i] != '\r' {
				i++
			}
		case c == '(':
			s, n := literalString(content[i:])
			i += n
			if inArray {
				array.WriteString(s)
			} else {
				operands = append(operands, s)
			}
		case c == '<' && i+1 < len(content) && content[i+1] == '<':
			i += 2
		case c == '>' && i+1 < len(content) && content[i+1] == '>':
			i += 2
		case c == '<':
			s, n := hexString(content[i:])
			i += n
			if inArray {
				array.WriteString(s)
			} else {
				operands = append(operands, s)
			}
		case c == '[':
			inArray = true
			array.Reset()
			i++
		case c == ']':
			inArray = false
			operands = append(operands, array.String())
			i++
		case c == '/':
			i++
			for i < len(content) && !isSpace(content[i]) && !isDelim(content[i]) {
				i++
			}
		default:
			j := i
			for j < len(content) && !isSpace(content[j]) && !isDelim(content[j]) {
				j++
			}
			if j == i {
				i++
				continue
			}
			tok := string(content[i:j])
			i = j
			if f, err := strconv.ParseFloat(tok, 64); err == nil {
				if inArray {
					// Large negative kerning inside TJ marks a word gap.
					if f < -250 {
						array.WriteByte(' ')
					}
					continue
				}
				numbers = append(numbers, f)
				continue
			}
			switch tok {
			case "Tj", "TJ":
				if len(operands) > 0 {
					emit(operands[len(operands)-1])
				}
			case "'", `"`:
				newline()
				if len(operands) > 0 {
					emit(operands[len(operands)-1])
				}
			case "T*", "ET":
				newline()
			case "Td", "TD":
				if len(numbers) >= 2 && numbers[len(numbers)-1] != 0 {
					newline()
				} else {
					space()
				}
			case "Tm":
				space()
			}
			operands = operands[:0]
			numbers = numbers[:0]
		}
	}
	return out.String()
}

// literalString parses a parenthesized string starting at b[0] == '('.
func literalString(b []byte) (string, int) {
	var sb strings.Builder
	depth := 0
	i := 0
	for i < len(b) {
		c := b[i]
		switch c {
		case '(':
			if depth > 0 {
				sb.WriteByte(c)
			}
			depth++
			i++
		case ')':
			depth--
			i++
			if depth == 0 {
				return latin1(sb.String()), i
			}
			sb.WriteByte(c)
		case '\\':
			i++
			if i >= len(b) {
				break
			}
			e := b[i]
			switch e {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case 'b', 'f':
			case '\r', '\n':
				// line continuation
			default:
				if e >= '0' && e <= '7' {
					v := 0
					k := 0
					for k < 3 && i < len(b) && b[i] >= '0' && b[i] <= '7' {
						v = v*8 + int(b[i]-'0')
						i++
						k++
					}
					sb.WriteByte(byte(v))
					continue
				}
				sb.WriteByte(e)
			}
			i++
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return latin1(sb.String()), i
}

// hexString parses <...> starting at b[0] == '<'.
func hexString(b []byte) (string, int) {
	end := bytes.IndexByte(b, '>')
	if end < 0 {
		return "", len(b)
	}
	var digits []byte
	for _, c := range b[1:end] {
		if !isSpace(c) {
			digits = append(digits, c)
		}
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	var sb strings.Builder
	for k := 0; k+1 < len(digits); k += 2 {
		v, err := strconv.ParseUint(string(digits[k:k+2]), 16, 8)
		if err != nil {
			return "", end + 1
		}
		sb.WriteByte(byte(v))
	}
	return latin1(sb.String()), end + 1
}

// latin1 maps single-byte text to runes, dropping control characters.
func latin1(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x20 && c != '\n' && c != '\t' {
			continue
		}
		sb.WriteRune(rune(c))
	}
	return sb.String()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f' || c == 0
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}
