package org

import "fmt"

// Kind classifies a lexed token.
type Kind int

const (
	// KindEmptyLine marks a blank line. Empty-line tokens never reach the
	// lexer output; they only break paragraph and table accumulation.
	KindEmptyLine Kind = iota
	// KindParagraph is plain text not claimed by any other line type.
	KindParagraph
	// KindTable is a run of |-delimited rows.
	KindTable
	// KindHeading is a star-prefixed outline heading.
	KindHeading
	// KindPlanning is an indented KEYWORD: value line directly below a
	// heading or another planning line.
	KindPlanning
	// KindLesserBlock is a src/verse/example/export BEGIN/END block.
	KindLesserBlock
	// KindGreaterBlock is any other typed BEGIN/END block.
	KindGreaterBlock
	// KindKeyword is a #+NAME: value line.
	KindKeyword
	// KindComment is a "# text" line or a comment block.
	KindComment
	// KindDrawer is a :NAME: ... :END: aside.
	KindDrawer
	// KindMacro is a typeless #+BEGIN: name args ... #+END block.
	KindMacro
)

func (k Kind) String() string {
	switch k {
	case KindEmptyLine:
		return "empty-line"
	case KindParagraph:
		return "paragraph"
	case KindTable:
		return "table"
	case KindHeading:
		return "heading"
	case KindPlanning:
		return "planning"
	case KindLesserBlock:
		return "lesser-block"
	case KindGreaterBlock:
		return "greater-block"
	case KindKeyword:
		return "keyword"
	case KindComment:
		return "comment"
	case KindDrawer:
		return "drawer"
	case KindMacro:
		return "macro"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Location points at a source line. Line numbers are 1-based.
type Location struct {
	File string
	Line int
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Heading carries the parsed pieces of a heading line.
type Heading struct {
	Level      int
	TodoState  string
	Priority   string
	Title      string
	Tags       []string
	Archived   bool
	Commented  bool
	Completion string
}

// Token is one lexed element with its source location. Which fields are
// meaningful depends on Kind:
//
//	Paragraph, Comment  Text
//	Keyword             Name, Text
//	Planning            Name, Text
//	Table               Rows
//	Heading             Heading
//	Drawer              Name, Lines
//	Lesser/GreaterBlock Name (type), Args, Lines
//	Macro               Name, Args
type Token struct {
	Kind Kind
	Loc  Location

	Text    string
	Name    string
	Args    []string
	Rows    [][]string
	Lines   []string
	Heading Heading
}
