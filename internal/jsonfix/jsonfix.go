// Package jsonfix parses malformed JSON and re-emits it normalized.
// The parser is tolerant: block comments are stripped, commas between
// elements are optional, unquoted object keys and unterminated strings are
// recovered, and containers left open at end of input are closed. What it
// cannot recover it reports with a typed error carrying the position and a
// snippet of the surrounding input.
package jsonfix

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"syskit/internal/logging"
)

// ErrorKind classifies unrecoverable parse failures.
type ErrorKind string

const (
	KindInvalidCharacter ErrorKind = "invalid character"
	KindMissingBracket   ErrorKind = "missing bracket"
	KindMissingQuote     ErrorKind = "missing quote"
	KindUnexpectedToken  ErrorKind = "unexpected token"
)

// ParseError describes where parsing failed and what the input looked like
// there.
type ParseError struct {
	Kind     ErrorKind
	Position int
	Context  string // input around the failure position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at position %d: %q", e.Kind, e.Position, e.Context)
}

// Result is a parsed document plus how many repairs tolerance required.
type Result struct {
	Value   any
	Repairs int
}

var blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)

// Parse reads one JSON value from input, repairing what it can.
func Parse(input string) (*Result, error) {
	p := &parser{src: strings.TrimSpace(blockComment.ReplaceAllString(input, ""))}
	p.skipWhitespace()
	if p.pos >= len(p.src) {
		return nil, p.errorAt(KindUnexpectedToken, p.pos)
	}
	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return &Result{Value: value, Repairs: p.repairs}, nil
}

type parser struct {
	src     string
	pos     int
	repairs int
}

func (p *parser) errorAt(kind ErrorKind, pos int) *ParseError {
	lo, hi := pos-10, pos+10
	if lo < 0 {
		lo = 0
	}
	if hi > len(p.src) {
		hi = len(p.src)
	}
	return &ParseError{Kind: kind, Position: pos, Context: p.src[lo:hi]}
}

func (p *parser) skipWhitespace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) peek() (byte, bool) {
	if p.pos >= len(p.src) {
		return 0, false
	}
	return p.src[p.pos], true
}

func (p *parser) parseValue() (any, error) {
	p.skipWhitespace()
	c, ok := p.peek()
	if !ok {
		return nil, p.errorAt(KindUnexpectedToken, p.pos)
	}
	switch {
	case c == '{':
		return p.parseObject()
	case c == '[':
		return p.parseArray()
	case c == '"' || c == '\'':
		return p.parseString(c)
	case c == 't' || c == 'f' || c == 'n':
		return p.parseLiteral()
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	default:
		return nil, p.errorAt(KindInvalidCharacter, p.pos)
	}
}

func (p *parser) parseObject() (map[string]any, error) {
	p.pos++ // {
	obj := make(map[string]any)
	for {
		p.skipWhitespace()
		c, ok := p.peek()
		if !ok {
			// Input ended with the object still open.
			p.repairs++
			return obj, nil
		}
		if c == '}' {
			p.pos++
			return obj, nil
		}

		key, err := p.parseKey(c)
		if err != nil {
			return nil, err
		}
		p.skipWhitespace()
		if c, ok := p.peek(); !ok || c != ':' {
			return nil, p.errorAt(KindUnexpectedToken, p.pos)
		}
		p.pos++
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		obj[key] = value
		p.skipComma('}')
	}
}

// parseKey accepts quoted keys and recovers bare ones.
func (p *parser) parseKey(c byte) (string, error) {
	if c == '"' || c == '\'' {
		return p.parseString(c)
	}
	start := p.pos
	for p.pos < len(p.src) && isBareKeyChar(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return "", p.errorAt(KindMissingQuote, p.pos)
	}
	p.repairs++
	return p.src[start:p.pos], nil
}

func isBareKeyChar(c byte) bool {
	return c == '_' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (p *parser) parseArray() ([]any, error) {
	p.pos++ // [
	arr := []any{}
	for {
		p.skipWhitespace()
		c, ok := p.peek()
		if !ok {
			p.repairs++
			return arr, nil
		}
		if c == ']' {
			p.pos++
			return arr, nil
		}
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		arr = append(arr, value)
		p.skipComma(']')
	}
}

// skipComma consumes an optional separating comma. Trailing commas before
// the closing bracket count as repairs.
func (p *parser) skipComma(closer byte) {
	p.skipWhitespace()
	if c, ok := p.peek(); ok && c == ',' {
		p.pos++
		p.skipWhitespace()
		if c, ok := p.peek(); ok && c == closer {
			p.repairs++
		}
	}
}

// parseString reads a string delimited by quote. A string still open at end
// of input is recovered as everything up to the end.
func (p *parser) parseString(quote byte) (string, error) {
	p.pos++ // opening quote
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case quote:
			p.pos++
			return b.String(), nil
		case '\\':
			decoded, width, err := p.decodeEscape()
			if err != nil {
				return "", err
			}
			b.WriteString(decoded)
			p.pos += width
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	p.repairs++
	return b.String(), nil
}

func (p *parser) decodeEscape() (string, int, error) {
	if p.pos+1 >= len(p.src) {
		return "", 0, p.errorAt(KindMissingQuote, p.pos)
	}
	switch p.src[p.pos+1] {
	case '"':
		return `"`, 2, nil
	case '\'':
		return `'`, 2, nil
	case '\\':
		return `\`, 2, nil
	case '/':
		return "/", 2, nil
	case 'n':
		return "\n", 2, nil
	case 't':
		return "\t", 2, nil
	case 'r':
		return "\r", 2, nil
	case 'b':
		return "\b", 2, nil
	case 'f':
		return "\f", 2, nil
	case 'u':
		if p.pos+6 > len(p.src) {
			return "", 0, p.errorAt(KindInvalidCharacter, p.pos)
		}
		n, err := strconv.ParseUint(p.src[p.pos+2:p.pos+6], 16, 32)
		if err != nil {
			return "", 0, p.errorAt(KindInvalidCharacter, p.pos)
		}
		return string(rune(n)), 6, nil
	default:
		return "", 0, p.errorAt(KindInvalidCharacter, p.pos)
	}
}

func (p *parser) parseLiteral() (any, error) {
	for literal, value := range map[string]any{"true": true, "false": false, "null": nil} {
		if strings.HasPrefix(p.src[p.pos:], literal) {
			p.pos += len(literal)
			return value, nil
		}
	}
	return nil, p.errorAt(KindUnexpectedToken, p.pos)
}

func (p *parser) parseNumber() (any, error) {
	start := p.pos
	for p.pos < len(p.src) && strings.IndexByte("0123456789+-.eE", p.src[p.pos]) >= 0 {
		p.pos++
	}
	text := p.src[start:p.pos]
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return n, nil
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f, nil
	}
	return nil, p.errorAt(KindInvalidCharacter, start)
}

// Options controls Emit output.
type Options struct {
	Indent  int  // defaults to 2
	Compact bool // single-line output
}

// Emit serializes a parsed value deterministically (sorted object keys).
func Emit(value any, opts Options) ([]byte, error) {
	if opts.Compact {
		out, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return append(out, '\n'), nil
	}
	indent := opts.Indent
	if indent <= 0 {
		indent = 2
	}
	out, err := json.MarshalIndent(value, "", strings.Repeat(" ", indent))
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return append(out, '\n'), nil
}

// Clean parses raw, possibly malformed JSON and re-emits it normalized,
// returning the output and the number of repairs applied.
func Clean(data []byte, opts Options) ([]byte, int, error) {
	res, err := Parse(string(data))
	if err != nil {
		return nil, 0, err
	}
	if res.Repairs > 0 {
		logging.Get(logging.CategoryConvert).Infof("repaired %d json defects", res.Repairs)
	}
	out, err := Emit(res.Value, opts)
	if err != nil {
		return nil, res.Repairs, err
	}
	return out, res.Repairs, nil
}
