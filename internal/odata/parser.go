// Package odata implements the small $filter dialect accepted by the items
// endpoint: eq, ne, gt, ge, lt, le, and, or, parentheses and the
// startswith, endswith and contains functions.
package odata

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"contentdesk/internal/models"
)

// ErrInvalidFilter wraps every parse failure.
var ErrInvalidFilter = errors.New("invalid filter")

type FilterParser struct{}

type FilterExpression struct {
	Operator  string
	Field     string
	Value     string
	Left      *FilterExpression
	Right     *FilterExpression
	Function  string
	Arguments []string
}

func NewFilterParser() *FilterParser {
	return &FilterParser{}
}

// Parse returns nil for an empty filter.
func (p *FilterParser) Parse(filter string) (*FilterExpression, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return nil, nil
	}

	toks, err := tokenize(filter)
	if err != nil {
		return nil, err
	}
	st := &state{toks: toks}
	expr, err := st.parseOr()
	if err != nil {
		return nil, err
	}
	if !st.done() {
		return nil, fmt.Errorf("%w: unexpected %q", ErrInvalidFilter, st.peek().text)
	}
	return expr, nil
}

type tokenKind int

const (
	tokWord tokenKind = iota
	tokString
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
}

func tokenize(s string) ([]token, error) {
	var toks []token
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "("})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")"})
			i++
		case c == ',':
			toks = append(toks, token{tokComma, ","})
			i++
		case c == '\'' || c == '"':
			end := strings.IndexByte(s[i+1:], c)
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated string", ErrInvalidFilter)
			}
			toks = append(toks, token{tokString, s[i+1 : i+1+end]})
			i += end + 2
		default:
			start := i
			for i < len(s) && !strings.ContainsRune(" \t(),'\"", rune(s[i])) {
				i++
			}
			toks = append(toks, token{tokWord, s[start:i]})
		}
	}
	return toks, nil
}

type state struct {
	toks []token
	pos  int
}

func (s *state) done() bool { return s.pos >= len(s.toks) }

func (s *state) peek() token {
	if s.done() {
		return token{kind: -1}
	}
	return s.toks[s.pos]
}

func (s *state) next() token {
	t := s.peek()
	s.pos++
	return t
}

func (s *state) keyword(word string) bool {
	t := s.peek()
	if t.kind == tokWord && strings.EqualFold(t.text, word) {
		s.pos++
		return true
	}
	return false
}

func (s *state) parseOr() (*FilterExpression, error) {
	left, err := s.parseAnd()
	if err != nil {
		return nil, err
	}
	for s.keyword("or") {
		right, err := s.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &FilterExpression{Operator: "or", Left: left, Right: right}
	}
	return left, nil
}

func (s *state) parseAnd() (*FilterExpression, error) {
	left, err := s.parsePrimary()
	if err != nil {
		return nil, err
	}
	for s.keyword("and") {
		right, err := s.parsePrimary()
		if err != nil {
			return nil, err
		}
		left = &FilterExpression{Operator: "and", Left: left, Right: right}
	}
	return left, nil
}

var comparisons = map[string]bool{"eq": true, "ne": true, "gt": true, "ge": true, "lt": true, "le": true}

var functions = map[string]bool{"startswith": true, "endswith": true, "contains": true}

func (s *state) parsePrimary() (*FilterExpression, error) {
	t := s.next()
	switch {
	case t.kind == tokLParen:
		expr, err := s.parseOr()
		if err != nil {
			return nil, err
		}
		if s.next().kind != tokRParen {
			return nil, fmt.Errorf("%w: missing closing parenthesis", ErrInvalidFilter)
		}
		return expr, nil
	case t.kind == tokWord && functions[strings.ToLower(t.text)] && s.peek().kind == tokLParen:
		return s.parseFunction(strings.ToLower(t.text))
	case t.kind == tokWord:
		op := s.next()
		if op.kind != tokWord || !comparisons[strings.ToLower(op.text)] {
			return nil, fmt.Errorf("%w: expected comparison after %q", ErrInvalidFilter, t.text)
		}
		val := s.next()
		if val.kind != tokString && val.kind != tokWord {
			return nil, fmt.Errorf("%w: missing value for %q", ErrInvalidFilter, t.text)
		}
		return &FilterExpression{Operator: strings.ToLower(op.text), Field: t.text, Value: val.text}, nil
	default:
		return nil, fmt.Errorf("%w: unable to parse near %q", ErrInvalidFilter, t.text)
	}
}

func (s *state) parseFunction(name string) (*FilterExpression, error) {
	s.next() // (
	var args []string
	for {
		t := s.next()
		if t.kind != tokWord && t.kind != tokString {
			return nil, fmt.Errorf("%w: bad argument to %s", ErrInvalidFilter, name)
		}
		args = append(args, t.text)
		sep := s.next()
		if sep.kind == tokRParen {
			break
		}
		if sep.kind != tokComma {
			return nil, fmt.Errorf("%w: unterminated call to %s", ErrInvalidFilter, name)
		}
	}
	if len(args) != 2 {
		return nil, fmt.Errorf("%w: function %s expects 2 arguments, got %d", ErrInvalidFilter, name, len(args))
	}
	return &FilterExpression{Function: name, Field: args[0], Value: args[1], Arguments: args}, nil
}

func (p *FilterParser) Evaluate(expr *FilterExpression, item models.ContentItem) (bool, error) {
	if expr == nil {
		return true, nil
	}

	switch expr.Operator {
	case "and":
		left, err := p.Evaluate(expr.Left, item)
		if err != nil || !left {
			return false, err
		}
		return p.Evaluate(expr.Right, item)
	case "or":
		left, err := p.Evaluate(expr.Left, item)
		if err != nil {
			return false, err
		}
		if left {
			return true, nil
		}
		return p.Evaluate(expr.Right, item)
	}

	if expr.Function != "" {
		return p.evaluateFunction(expr, item)
	}
	if expr.Operator != "" && expr.Field != "" {
		return p.evaluateComparison(expr, item)
	}
	return false, fmt.Errorf("%w: empty expression", ErrInvalidFilter)
}

// Apply returns the items matching expr, keeping their order.
func (p *FilterParser) Apply(expr *FilterExpression, items []models.ContentItem) ([]models.ContentItem, error) {
	if expr == nil {
		return items, nil
	}
	out := make([]models.ContentItem, 0, len(items))
	for _, it := range items {
		ok, err := p.Evaluate(expr, it)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, it)
		}
	}
	return out, nil
}

func (p *FilterParser) evaluateComparison(expr *FilterExpression, item models.ContentItem) (bool, error) {
	fieldValue, ok := fieldValue(expr.Field, item)
	if !ok {
		return false, fmt.Errorf("%w: unknown field %q", ErrInvalidFilter, expr.Field)
	}

	switch expr.Operator {
	case "eq":
		return strings.EqualFold(fieldValue, expr.Value), nil
	case "ne":
		return !strings.EqualFold(fieldValue, expr.Value), nil
	case "gt":
		return compareValues(fieldValue, expr.Value) > 0, nil
	case "ge":
		return compareValues(fieldValue, expr.Value) >= 0, nil
	case "lt":
		return compareValues(fieldValue, expr.Value) < 0, nil
	case "le":
		return compareValues(fieldValue, expr.Value) <= 0, nil
	default:
		return false, fmt.Errorf("%w: unsupported operator %s", ErrInvalidFilter, expr.Operator)
	}
}

func (p *FilterParser) evaluateFunction(expr *FilterExpression, item models.ContentItem) (bool, error) {
	fieldValue, ok := fieldValue(expr.Field, item)
	if !ok {
		return false, fmt.Errorf("%w: unknown field %q", ErrInvalidFilter, expr.Field)
	}
	fieldValue = strings.ToLower(fieldValue)
	search := strings.ToLower(expr.Value)

	switch expr.Function {
	case "startswith":
		return strings.HasPrefix(fieldValue, search), nil
	case "endswith":
		return strings.HasSuffix(fieldValue, search), nil
	case "contains":
		return strings.Contains(fieldValue, search), nil
	default:
		return false, fmt.Errorf("%w: unsupported function %s", ErrInvalidFilter, expr.Function)
	}
}

func fieldValue(field string, item models.ContentItem) (string, bool) {
	switch strings.ToLower(field) {
	case "id":
		return item.ID, true
	case "title":
		return item.Title, true
	case "category":
		return item.Category, true
	case "subcategory":
		return item.Subcategory, true
	case "subsubcategory":
		return item.Subsubcategory, true
	case "author":
		return item.Author, true
	case "excerpt":
		return item.Excerpt, true
	case "content":
		return item.Content, true
	case "source":
		return item.Source, true
	case "language":
		return item.Language, true
	case "created_at":
		return item.CreatedAt, true
	default:
		return "", false
	}
}

// Backend timestamps arrive in MySQL style; feeds use RFC 3339.
var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func compareValues(a, b string) int {
	timeA, okA := parseTime(a)
	timeB, okB := parseTime(b)
	if okA && okB {
		return timeA.Compare(timeB)
	}
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
