package lexer

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/KimNorgaard/go-csvdoc/internal/token"
)

const (
	eof   = -1
	quote = '"'
)

// state is a position in the field state machine.
type state int

const (
	stateFieldStart state = iota
	stateUnquoted
	stateQuoted
	stateQuoteSeen
	stateRowEnd
)

// Lexer holds the state for tokenizing delimited text.
type Lexer struct {
	r     *bufio.Reader
	delim rune
	buf   bytes.Buffer

	ch    rune
	size  int
	raw   byte // original byte when ch is an invalid UTF-8 sequence
	isRaw bool
	err   error

	offset  int64
	line    int
	column  int
	afterCR bool

	inRecord bool
	pending  *token.Token
	halted   *token.Token
}

// New creates and returns a new Lexer splitting fields on delim.
func New(r io.Reader, delim rune) *Lexer {
	l := &Lexer{
		r:      bufio.NewReader(r),
		delim:  delim,
		line:   1,
		column: 1,
	}
	l.readRune()
	return l
}

// Err returns the first non-EOF error returned by the underlying reader.
func (l *Lexer) Err() error {
	return l.err
}

// NextToken scans the input and returns the next token.
//
// A record is a run of FIELD tokens closed by an EOR token. Blank lines
// between records produce no tokens at all, so empty input yields EOF
// straight away.
func (l *Lexer) NextToken() token.Token {
	if l.halted != nil {
		return *l.halted
	}
	if l.pending != nil {
		tok := *l.pending
		l.pending = nil
		return tok
	}
	if !l.inRecord {
		for isTerminator(l.ch) {
			l.consumeTerminator()
		}
		if l.ch == eof {
			if l.err != nil {
				return l.failure()
			}
			return l.newToken(token.EOF)
		}
		l.inRecord = true
	}
	return l.readField()
}

func (l *Lexer) readField() token.Token { //nolint:gocognit
	tok := l.newToken(token.FIELD)
	l.buf.Reset()

	st := stateFieldStart
	for {
		switch st {
		case stateFieldStart:
			if l.ch == quote {
				tok.Quoted = true
				l.advance()
				st = stateQuoted
				continue
			}
			st = stateUnquoted

		case stateUnquoted:
			switch {
			case l.ch == l.delim:
				l.advance()
				tok.Literal = l.buf.String()
				return tok
			case isTerminator(l.ch):
				l.endRecord()
				st = stateRowEnd
			case l.ch == eof:
				if l.err != nil {
					return l.failure()
				}
				l.endRecord()
				st = stateRowEnd
			default:
				// A bare quote inside an unquoted field is kept as text.
				l.writeCurrent()
				l.advance()
			}

		case stateQuoted:
			switch l.ch {
			case quote:
				l.advance()
				st = stateQuoteSeen
			case eof:
				if l.err != nil {
					return l.failure()
				}
				return l.illegal(tok, "unterminated quoted field")
			default:
				l.writeCurrent()
				l.advance()
			}

		case stateQuoteSeen:
			switch {
			case l.ch == quote:
				l.buf.WriteByte(quote)
				l.advance()
				st = stateQuoted
			case l.ch == l.delim:
				l.advance()
				tok.Literal = l.buf.String()
				return tok
			case isTerminator(l.ch):
				l.endRecord()
				st = stateRowEnd
			case l.ch == eof:
				if l.err != nil {
					return l.failure()
				}
				l.endRecord()
				st = stateRowEnd
			default:
				return l.illegal(l.newToken(token.ILLEGAL),
					fmt.Sprintf("extraneous %q after closing quote", l.current()))
			}

		case stateRowEnd:
			tok.Literal = l.buf.String()
			return tok
		}
	}
}

// endRecord consumes the record terminator, if any, and queues an EOR token
// to follow the field being finished.
func (l *Lexer) endRecord() {
	end := l.newToken(token.EOR)
	if isTerminator(l.ch) {
		l.consumeTerminator()
	}
	l.inRecord = false
	l.pending = &end
}

func (l *Lexer) newToken(typ token.Type) token.Token {
	return token.Token{Type: typ, Line: l.line, Column: l.column, Offset: l.offset}
}

func (l *Lexer) illegal(at token.Token, msg string) token.Token {
	at.Type = token.ILLEGAL
	at.Literal = msg
	at.Quoted = false
	l.halted = &at
	return at
}

func (l *Lexer) failure() token.Token {
	return l.illegal(l.newToken(token.ILLEGAL), l.err.Error())
}

func (l *Lexer) readRune() {
	if l.err != nil {
		l.ch, l.size = eof, 0
		return
	}
	r, size, err := l.r.ReadRune()
	if err != nil {
		if err != io.EOF {
			l.err = err
		}
		l.ch, l.size = eof, 0
		return
	}
	l.isRaw = false
	if r == utf8.RuneError && size == 1 {
		// Keep invalid bytes as they are instead of replacing them with U+FFFD.
		_ = l.r.UnreadRune()
		b, _ := l.r.ReadByte()
		l.raw, l.isRaw = b, true
	}
	l.ch, l.size = r, size
}

func (l *Lexer) advance() {
	if l.ch == eof {
		return
	}
	l.offset += int64(l.size)
	switch {
	case l.ch == '\r':
		l.line++
		l.column = 1
		l.afterCR = true
	case l.ch == '\n':
		if !l.afterCR {
			l.line++
		}
		l.column = 1
		l.afterCR = false
	default:
		l.column++
		l.afterCR = false
	}
	l.readRune()
}

// consumeTerminator skips a single CR, LF or CRLF sequence.
func (l *Lexer) consumeTerminator() {
	if l.ch == '\r' {
		l.advance()
		if l.ch == '\n' {
			l.advance()
		}
		return
	}
	l.advance()
}

func (l *Lexer) writeCurrent() {
	if l.isRaw {
		l.buf.WriteByte(l.raw)
		return
	}
	l.buf.WriteRune(l.ch)
}

func (l *Lexer) current() string {
	if l.isRaw {
		return string([]byte{l.raw})
	}
	return string(l.ch)
}

func isTerminator(ch rune) bool {
	return ch == '\n' || ch == '\r'
}
