package org

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	planningRE    = regexp.MustCompile(`^\s+(\w+):\s*(.+)$`)
	drawerOpenRE  = regexp.MustCompile(`^\s+:([\w-]+):`)
	drawerCloseRE = regexp.MustCompile(`(?i)^\s+:end:`)
	blockOpenRE   = regexp.MustCompile(`(?i)^#\+BEGIN(?:_([a-zA-Z]+))?:?\s*(.*)$`)
	blockCloseRE  = regexp.MustCompile(`(?i)^#\+END(?:_([a-zA-Z]+))?\b`)
	commentRE     = regexp.MustCompile(`^#\s+(.+)`)
	keywordRE     = regexp.MustCompile(`^#\+([a-zA-Z_]+):\s*(.+)$`)
	tagClusterRE  = regexp.MustCompile(`\s:(?:[A-Za-z0-9_@#%]+:)+$`)
	completionRE  = regexp.MustCompile(`^(?:\d+/\d+|[\d.]+%)$`)
)

// lesserTypes are the block types whose contents are near-literal text.
// Everything else typed is a greater block.
var lesserTypes = map[string]bool{
	"src":     true,
	"verse":   true,
	"example": true,
	"export":  true,
}

// BlockMismatchError reports a #+END tag whose type does not match the block
// it closes. The build treats it as fatal to the whole run, not just to the
// offending document.
type BlockMismatchError struct {
	Loc    Location // the closing line
	Opened string   // empty for a typeless block
	Closed string
}

func (e *BlockMismatchError) Error() string {
	return fmt.Sprintf("%s: closing a block of a different type: begin %q, end %q", e.Loc, e.Opened, e.Closed)
}

type lexState int

const (
	stateDefault lexState = iota
	stateDrawer
	stateBlock
)

// Lexer turns source text into a token sequence via an explicit state
// machine. Paragraph and table runs accumulate in a pending slot and are
// flushed to the output when a terminating line type shows up, so already
// emitted tokens are never edited in place. Single use; create one per
// input.
type Lexer struct {
	loc   Location
	state lexState

	// in-progress drawer or block
	name  string
	args  string
	lines []string
	start Location

	pending  *Token
	lastKind Kind
	tokens   []Token
}

// NewLexer returns a lexer for one source file. The filename is used only
// for location tagging.
func NewLexer(filename string) *Lexer {
	return &Lexer{
		loc:      Location{File: filename, Line: 1},
		lastKind: KindEmptyLine,
	}
}

// Lex consumes the whole input and returns the token sequence with empty
// lines filtered out. Input ending inside a drawer or block is an
// unexpected-end-of-input error.
func (l *Lexer) Lex(content string) ([]Token, error) {
	for _, line := range strings.Split(content, "\n") {
		if err := l.handleLine(line); err != nil {
			return nil, err
		}
		l.loc.Line++
	}
	if l.state != stateDefault {
		what := "block"
		if l.state == stateDrawer {
			what = "drawer"
		}
		return nil, fmt.Errorf("%s: unexpected end of input: %s opened at line %d is never closed",
			l.loc.File, what, l.start.Line)
	}
	l.flush()
	return l.tokens, nil
}

func (l *Lexer) handleLine(line string) error {
	switch l.state {
	case stateDrawer:
		l.handleDrawerLine(line)
		return nil
	case stateBlock:
		return l.handleBlockLine(line)
	default:
		l.handleDefaultLine(line)
		return nil
	}
}

func (l *Lexer) handleDrawerLine(line string) {
	if drawerCloseRE.MatchString(line) {
		l.emit(Token{Kind: KindDrawer, Loc: l.start, Name: l.name, Lines: l.lines})
		l.lines = nil
		l.state = stateDefault
		return
	}
	l.lines = append(l.lines, line)
}

func (l *Lexer) handleBlockLine(line string) error {
	m := blockCloseRE.FindStringSubmatch(line)
	if m == nil {
		l.lines = append(l.lines, line)
		return nil
	}
	if closed := strings.ToLower(m[1]); closed != l.name {
		return &BlockMismatchError{Loc: l.loc, Opened: l.name, Closed: closed}
	}
	l.emit(l.finishBlock())
	l.lines = nil
	l.state = stateDefault
	return nil
}

func (l *Lexer) finishBlock() Token {
	switch {
	case l.name == "":
		// A bare #+BEGIN: is a macro; the first word of its arguments
		// is the macro name.
		tok := Token{Kind: KindMacro, Loc: l.start}
		if fields := strings.Fields(l.args); len(fields) > 0 {
			tok.Name = fields[0]
			tok.Args = fields[1:]
		}
		return tok
	case l.name == "comment":
		return Token{Kind: KindComment, Loc: l.start, Text: strings.Join(l.lines, "\n")}
	case lesserTypes[l.name]:
		return Token{
			Kind:  KindLesserBlock,
			Loc:   l.start,
			Name:  l.name,
			Args:  strings.Fields(l.args),
			Lines: stripSharedIndent(l.lines),
		}
	default:
		return Token{
			Kind:  KindGreaterBlock,
			Loc:   l.start,
			Name:  l.name,
			Args:  strings.Fields(l.args),
			Lines: l.lines,
		}
	}
}

// handleDefaultLine classifies one line outside any drawer or block.
// First match wins; the order is load-bearing (block open before keyword,
// or "#+begin: x" would lex as a keyword named "begin").
func (l *Lexer) handleDefaultLine(line string) {
	switch {
	case strings.TrimSpace(line) == "":
		l.flush()
		l.lastKind = KindEmptyLine

	case isHeadingLine(line):
		h, _ := parseHeading(line)
		l.emit(Token{Kind: KindHeading, Loc: l.loc, Heading: h})

	case (l.lastKind == KindHeading || l.lastKind == KindPlanning) && planningRE.MatchString(line):
		m := planningRE.FindStringSubmatch(line)
		l.emit(Token{Kind: KindPlanning, Loc: l.loc, Name: m[1], Text: m[2]})

	case drawerOpenRE.MatchString(line):
		m := drawerOpenRE.FindStringSubmatch(line)
		l.name = m[1]
		l.lines = nil
		l.start = l.loc
		l.state = stateDrawer

	case blockOpenRE.MatchString(line):
		m := blockOpenRE.FindStringSubmatch(line)
		l.name = strings.ToLower(m[1])
		l.args = m[2]
		l.lines = nil
		l.start = l.loc
		l.state = stateBlock

	case commentRE.MatchString(line):
		m := commentRE.FindStringSubmatch(line)
		l.emit(Token{Kind: KindComment, Loc: l.loc, Text: strings.TrimSpace(m[1])})

	case keywordRE.MatchString(line):
		m := keywordRE.FindStringSubmatch(line)
		l.emit(Token{Kind: KindKeyword, Loc: l.loc, Name: strings.ToLower(m[1]), Text: m[2]})

	case isTableRow(line):
		row := splitTableRow(line)
		if l.pending != nil && l.pending.Kind == KindTable {
			l.pending.Rows = append(l.pending.Rows, row)
		} else {
			l.startPending(Token{Kind: KindTable, Loc: l.loc, Rows: [][]string{row}})
		}

	default:
		if l.pending != nil && l.pending.Kind == KindParagraph {
			// Indented continuations join with a space; unindented
			// lines keep a soft break.
			if isIndented(line) {
				l.pending.Text = strings.TrimRight(l.pending.Text, " \t") + " " + strings.TrimLeft(line, " \t")
			} else {
				l.pending.Text = strings.TrimRight(l.pending.Text, " \t") + "\n" + line
			}
		} else {
			l.startPending(Token{Kind: KindParagraph, Loc: l.loc, Text: strings.TrimLeft(line, " \t")})
		}
	}
}

// emit appends a completed token, flushing any pending paragraph or table
// ahead of it.
func (l *Lexer) emit(tok Token) {
	l.flush()
	l.tokens = append(l.tokens, tok)
	l.lastKind = tok.Kind
}

func (l *Lexer) startPending(tok Token) {
	l.flush()
	l.pending = &tok
	l.lastKind = tok.Kind
}

func (l *Lexer) flush() {
	if l.pending != nil {
		l.tokens = append(l.tokens, *l.pending)
		l.pending = nil
	}
}

func isHeadingLine(line string) bool {
	_, ok := parseHeading(line)
	return ok
}

// parseHeading dissects a star heading: level, optional all-caps todo word,
// optional #[x] priority cookie, title, optional trailing tag cluster and
// completion marker.
func parseHeading(line string) (Heading, bool) {
	level := 0
	for level < len(line) && line[level] == '*' {
		level++
	}
	if level == 0 || level >= len(line) || !isSpaceByte(line[level]) {
		return Heading{}, false
	}
	rest := strings.TrimSpace(line[level:])
	if rest == "" {
		return Heading{}, false
	}
	h := Heading{Level: level}

	// Trailing [n/m] or [n.n%] completion marker.
	if strings.HasSuffix(rest, "]") {
		if i := strings.LastIndex(rest, "["); i > 0 && isSpaceByte(rest[i-1]) {
			if inner := rest[i+1 : len(rest)-1]; completionRE.MatchString(inner) {
				h.Completion = inner
				rest = strings.TrimRight(rest[:i], " \t")
			}
		}
	}

	// Trailing :tag:tag: cluster.
	if loc := tagClusterRE.FindStringIndex(rest); loc != nil {
		for _, tag := range strings.Split(strings.TrimSpace(rest[loc[0]:]), ":") {
			if tag != "" {
				h.Tags = append(h.Tags, tag)
			}
		}
		rest = strings.TrimRight(rest[:loc[0]], " \t")
		if rest == "" {
			return Heading{}, false
		}
	}

	// An all-caps word is a todo state unless it starts the title: words
	// beginning with COMMENT stay in the title, and a heading that is
	// nothing but the word keeps it as its title.
	if word, tail := splitWord(rest); tail != "" && isTodoWord(word) && !strings.HasPrefix(word, "COMMENT") {
		h.TodoState = word
		rest = tail
	}

	if word, tail := splitWord(rest); tail != "" && isPriorityCookie(word) {
		h.Priority = word[2 : len(word)-1]
		rest = tail
	}

	h.Title = rest
	h.Commented = strings.HasPrefix(h.Title, "COMMENT")
	for _, tag := range h.Tags {
		if tag == "ARCHIVED" {
			h.Archived = true
			break
		}
	}
	return h, true
}

// splitWord cuts the first whitespace-separated word off a left-trimmed
// string, returning the word and the left-trimmed remainder.
func splitWord(s string) (word, tail string) {
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeft(s[i:], " \t")
}

func isTodoWord(word string) bool {
	if len(word) < 2 {
		return false
	}
	for i := 0; i < len(word); i++ {
		if word[i] < 'A' || word[i] > 'Z' {
			return false
		}
	}
	return true
}

// isPriorityCookie reports whether word is a #[x] marker with a single
// alphanumeric priority character.
func isPriorityCookie(word string) bool {
	if len(word) != 4 || word[0] != '#' || word[1] != '[' || word[3] != ']' {
		return false
	}
	c := word[2]
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func isTableRow(line string) bool {
	return len(line) >= 2 && line[0] == '|'
}

func splitTableRow(line string) []string {
	cells := strings.Split(strings.TrimSpace(line), "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}

// stripSharedIndent removes the minimum leading whitespace shared by all
// lines, preserving relative indentation.
func stripSharedIndent(lines []string) []string {
	if len(lines) == 0 {
		return lines
	}
	shared := -1
	for _, line := range lines {
		n := 0
		for n < len(line) && isSpaceByte(line[n]) {
			n++
		}
		if shared < 0 || n < shared {
			shared = n
		}
	}
	if shared <= 0 {
		return lines
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = line[shared:]
	}
	return out
}

func isIndented(line string) bool {
	return line != "" && isSpaceByte(line[0])
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t'
}
