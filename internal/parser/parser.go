package parser

import (
	"fmt"
	"io"

	"github.com/KimNorgaard/go-csvdoc/internal/lexer"
	"github.com/KimNorgaard/go-csvdoc/internal/token"
)

// SyntaxError describes a malformed record.
type SyntaxError struct {
	Record  int // 1-based record number, header included
	Line    int
	Column  int
	Offset  int64
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("record %d (line %d, column %d, offset %d): %s",
		e.Record, e.Line, e.Column, e.Offset, e.Message)
}

// ReadError wraps a failure of the underlying reader.
type ReadError struct {
	Record int
	Err    error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Record, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Parser assembles lexer tokens into records.
type Parser struct {
	l       *lexer.Lexer
	records int
	err     error
}

// New creates a new parser.
func New(l *lexer.Lexer) *Parser {
	return &Parser{l: l}
}

// Records returns the number of records returned so far.
func (p *Parser) Records() int {
	return p.records
}

// Err returns the error that stopped the parser, or nil if it is still
// running or reached the end of input cleanly.
func (p *Parser) Err() error {
	if p.err == io.EOF {
		return nil
	}
	return p.err
}

// Next returns the fields of the next record. It returns io.EOF once the
// input is exhausted. The first *SyntaxError or *ReadError stops the parser
// and is returned again from every later call.
func (p *Parser) Next() ([]string, error) {
	if p.err != nil {
		return nil, p.err
	}

	var fields []string
	for {
		tok := p.l.NextToken()
		if !tok.Type.Terminates() {
			fields = append(fields, tok.Literal)
			continue
		}
		switch tok.Type {
		case token.EOR:
			p.records++
			return fields, nil
		case token.EOF:
			p.err = io.EOF
			return nil, p.err
		default:
			p.err = p.failure(tok)
			return nil, p.err
		}
	}
}

// All collects every remaining record.
func (p *Parser) All() ([][]string, error) {
	var records [][]string
	for {
		rec, err := p.Next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
}

func (p *Parser) failure(tok token.Token) error {
	if err := p.l.Err(); err != nil {
		return &ReadError{Record: p.records + 1, Err: err}
	}
	return &SyntaxError{
		Record:  p.records + 1,
		Line:    tok.Line,
		Column:  tok.Column,
		Offset:  tok.Offset,
		Message: tok.Literal,
	}
}
