package tmplsimp

import (
	"strings"
	"testing"
)

// cppKeywords is the subset of C/C++ keywords the tests feed through
// tokenize; classification only needs to separate them from plain
// identifiers the way FromLexerTokens does.
var cppKeywords = map[string]bool{
	"bool": true, "case": true, "catch": true, "char": true, "class": true,
	"const": true, "double": true, "else": true, "enum": true, "explicit": true,
	"float": true, "for": true, "if": true, "int": true, "long": true,
	"namespace": true, "new": true, "operator": true, "private": true,
	"protected": true, "public": true, "return": true, "short": true,
	"signed": true, "static": true, "struct": true, "template": true,
	"try": true, "typedef": true, "typename": true, "union": true,
	"unsigned": true, "void": true, "while": true,
}

var punctTokens = map[string]bool{
	"(": true, ")": true, "{": true, "}": true, "[": true, "]": true,
	";": true, ",": true, ":": true, ".": true,
}

func classifyWord(w string) Kind {
	switch {
	case w[0] >= '0' && w[0] <= '9':
		return KindNumber
	case w[0] == '\'':
		return KindChar
	case w[0] == '"':
		return KindString
	case cppKeywords[w]:
		return KindKeyword
	case w[0] == '_' || (w[0] >= 'a' && w[0] <= 'z') || (w[0] >= 'A' && w[0] <= 'Z'):
		return KindName
	case punctTokens[w]:
		return KindPunct
	default:
		return KindOp
	}
}

// tokenize builds a TokenList from a whitespace-separated token stream,
// the way the scenarios in these tests are written ("template < class T
// > ..."). Brackets are linked and the signedness/length keywords get
// their flags, mirroring FromLexerTokens.
func tokenize(code string) *TokenList {
	l := NewTokenList()
	var parens, braces, bracks []TokenID
	line := 1
	for _, w := range strings.Fields(code) {
		kind := classifyWord(w)
		id := l.PushBack(w, kind)
		t := l.Get(id)
		t.Linenr = line
		t.IsName = kind == KindName || kind == KindKeyword
		t.IsNumber = kind == KindNumber
		switch w {
		case "unsigned":
			t.IsUnsigned = true
		case "signed":
			t.IsSigned = true
		case "long":
			t.IsLong = true
		case "(":
			parens = append(parens, id)
		case ")":
			if n := len(parens); n > 0 {
				l.Link(parens[n-1], id)
				parens = parens[:n-1]
			}
		case "{":
			braces = append(braces, id)
		case "}":
			if n := len(braces); n > 0 {
				l.Link(braces[n-1], id)
				braces = braces[:n-1]
			}
		case "[":
			bracks = append(bracks, id)
		case "]":
			if n := len(bracks); n > 0 {
				l.Link(bracks[n-1], id)
				bracks = bracks[:n-1]
			}
		}
	}
	return l
}

// containsSeq reports whether the space-joined stream text contains the
// given token sequence on token boundaries.
func containsSeq(dump, seq string) bool {
	return strings.Contains(" "+dump+" ", " "+seq+" ")
}

// simplifyCode runs the full driver on a tokenized stream and returns
// the resulting space-joined text, asserting the bracket-link invariant
// held through the run.
func simplifyCode(t *testing.T, code string) string {
	t.Helper()
	l := tokenize(code)
	s := NewSimplifier(l, DefaultSettings(), nil)
	s.Simplify()
	if err := l.checkBracketIntegrity(); err != nil {
		t.Fatalf("bracket integrity after Simplify: %v", err)
	}
	return l.Dump()
}
