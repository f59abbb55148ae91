// Package tmplsimp implements the template simplification core: it locates
// template declarations and their instantiations in a token stream, clones
// and substitutes declaration bodies to synthesize one concrete definition
// per distinct instantiation, and removes the original generic declarations
// so later compiler stages never see template syntax.
//
// It runs as a pass between preprocessing and parsing (see cmd/ralph-cc),
// mirroring how pkg/linearize and pkg/cshmgen sit between other stages of
// the pipeline.
package tmplsimp

import "fmt"

// Kind classifies a Token the way the lexer's TokenType does, but coarser:
// the simplifier only needs to distinguish names from literals from
// punctuation, not individual C keywords.
type Kind int

const (
	KindName Kind = iota
	KindNumber
	KindChar
	KindString
	KindOp
	KindKeyword
	KindPunct
)

func (k Kind) String() string {
	switch k {
	case KindName:
		return "name"
	case KindNumber:
		return "number"
	case KindChar:
		return "char"
	case KindString:
		return "string"
	case KindOp:
		return "op"
	case KindKeyword:
		return "keyword"
	case KindPunct:
		return "punct"
	default:
		return "unknown"
	}
}

// TokenID identifies a Token inside a TokenList's arena. The zero value
// means "no token"; IDs are never reused within the lifetime of a list, so
// a TokenID captured before a mutation is still safe to look up afterward
// (it will simply be absent from the arena if its token was erased).
type TokenID int

// Token is an atomic lexeme: text, classification, source location, the
// handful of boolean flags the constant folder and mangler need, and the
// linear/bracket links that place it inside a TokenList.
type Token struct {
	id   TokenID
	Str  string
	Kind Kind

	FileIndex int
	Linenr    int

	IsUnsigned    bool
	IsSigned      bool
	IsLong        bool
	IsNumber      bool
	IsName        bool
	IsAssignmentOp bool
	IsConstOp     bool

	VarID int

	next, prev, link TokenID
}

// ID returns the token's stable identifier.
func (t *Token) ID() TokenID { return t.id }

// modifierPrefix returns the "unsigned"/"signed"/"long" text that
// canonicalization prefixes to a numeric token's text, in declared order.
// Mirrors how the original cppcheck core reassembles combined modifiers
// (e.g. "unsigned long") when mangling a non-type template argument.
func (t *Token) modifierPrefix() string {
	s := ""
	if t.IsUnsigned {
		s += "unsigned"
	} else if t.IsSigned {
		s += "signed"
	}
	if t.IsLong {
		if s != "" {
			s += " "
		}
		s += "long"
	}
	return s
}

// canonicalText is the token's contribution to a mangled name: its
// modifier prefix (if any) immediately followed by its literal text, with
// no space between the prefix and the text.
func (t *Token) canonicalText() string {
	if m := t.modifierPrefix(); m != "" {
		return m + t.Str
	}
	return t.Str
}

// TokenList is a doubly linked sequence of Tokens with O(1) splice,
// erase-range, and insert-after, plus a secondary "bracket link" graph
// overlaid on the linear order. Tokens live in an arena indexed by
// TokenID so that the expanded-name set and instantiation worklists can
// hold onto IDs across mutation without risking a dangling pointer.
type TokenList struct {
	arena  map[TokenID]*Token
	nextID TokenID
	front  TokenID
	back   TokenID
}

// NewTokenList returns an empty list.
func NewTokenList() *TokenList {
	return &TokenList{arena: make(map[TokenID]*Token)}
}

// Get returns the token for id, or nil if it has been erased or never
// existed.
func (l *TokenList) Get(id TokenID) *Token {
	if id == 0 {
		return nil
	}
	return l.arena[id]
}

// Front and Back return the IDs of the first and last tokens, or 0 if the
// list is empty.
func (l *TokenList) Front() TokenID { return l.front }
func (l *TokenList) Back() TokenID  { return l.back }

// Next and Prev walk the linear order. They return 0 past either end.
func (l *TokenList) Next(id TokenID) TokenID {
	if t := l.Get(id); t != nil {
		return t.next
	}
	return 0
}

func (l *TokenList) Prev(id TokenID) TokenID {
	if t := l.Get(id); t != nil {
		return t.prev
	}
	return 0
}

// Str and KindOf are convenience accessors that tolerate a zero/erased id by
// returning the empty string / KindPunct, so callers scanning near the
// ends of the list don't need a nil check at every step.
func (l *TokenList) Str(id TokenID) string {
	if t := l.Get(id); t != nil {
		return t.Str
	}
	return ""
}

func (l *TokenList) KindOf(id TokenID) Kind {
	if t := l.Get(id); t != nil {
		return t.Kind
	}
	return KindPunct
}

// alloc creates a detached token (not yet linked into the list) and
// returns its id.
func (l *TokenList) alloc(str string, kind Kind) TokenID {
	l.nextID++
	id := l.nextID
	l.arena[id] = &Token{id: id, Str: str, Kind: kind}
	return id
}

// PushBack appends a new token at the end of the list and returns its id.
func (l *TokenList) PushBack(str string, kind Kind) TokenID {
	id := l.alloc(str, kind)
	t := l.arena[id]
	if l.back == 0 {
		l.front = id
		l.back = id
		return id
	}
	tail := l.arena[l.back]
	tail.next = id
	t.prev = l.back
	l.back = id
	return id
}

// InsertAfter creates a new token with the given text/kind immediately
// after `after` and returns its id. If after is 0, the token is inserted
// at the front of the list.
func (l *TokenList) InsertAfter(after TokenID, str string, kind Kind) TokenID {
	id := l.alloc(str, kind)
	t := l.arena[id]
	if after == 0 {
		t.next = l.front
		if l.front != 0 {
			l.arena[l.front].prev = id
		} else {
			l.back = id
		}
		l.front = id
		return id
	}
	prevTok := l.arena[after]
	next := prevTok.next
	prevTok.next = id
	t.prev = after
	t.next = next
	if next != 0 {
		l.arena[next].prev = id
	} else {
		l.back = id
	}
	return id
}

// CloneToken appends a fresh copy of src's text/kind/flags (but not its
// links) to the end of the list.
func (l *TokenList) CloneToken(src TokenID) TokenID {
	s := l.Get(src)
	if s == nil {
		return 0
	}
	id := l.PushBack(s.Str, s.Kind)
	c := l.arena[id]
	c.IsUnsigned = s.IsUnsigned
	c.IsSigned = s.IsSigned
	c.IsLong = s.IsLong
	c.IsNumber = s.IsNumber
	c.IsName = s.IsName
	c.IsAssignmentOp = s.IsAssignmentOp
	c.IsConstOp = s.IsConstOp
	c.VarID = s.VarID
	c.FileIndex = s.FileIndex
	c.Linenr = s.Linenr
	return id
}

// Link records that a and b are a matched bracket pair: a.link = b and
// b.link = a. Both must already exist; a must be linearly before b.
func (l *TokenList) Link(a, b TokenID) {
	ta, tb := l.arena[a], l.arena[b]
	if ta == nil || tb == nil {
		return
	}
	ta.link = b
	tb.link = a
}

// LinkOf returns the id linked to id (the mate bracket), or 0.
func (l *TokenList) LinkOf(id TokenID) TokenID {
	if t := l.Get(id); t != nil {
		return t.link
	}
	return 0
}

// Unlink clears id's link without touching its mate. Used when an
// endpoint is about to be erased and the caller has already decided the
// pair is dissolving.
func (l *TokenList) Unlink(id TokenID) {
	if t := l.Get(id); t != nil {
		t.link = 0
	}
}

// DeleteOne removes a single token from the linear order. The caller must
// not call this on a token that is one endpoint of a still-valid bracket
// link whose mate survives — erasing a lone endpoint would violate the
// bracket integrity invariant; use DeleteRange for a balanced span
// instead.
func (l *TokenList) DeleteOne(id TokenID) {
	t := l.Get(id)
	if t == nil {
		return
	}
	prev, next := t.prev, t.next
	if prev != 0 {
		l.arena[prev].next = next
	} else {
		l.front = next
	}
	if next != 0 {
		l.arena[next].prev = prev
	} else {
		l.back = prev
	}
	if t.link != 0 {
		l.arena[t.link].link = 0
	}
	delete(l.arena, id)
}

// DeleteRange removes every token from `from` to `to` inclusive. Links
// that terminated inside the range are dropped on the outside endpoint
// too, so no dangling link survives the erase.
func (l *TokenList) DeleteRange(from, to TokenID) {
	if from == 0 || to == 0 {
		return
	}
	inRange := make(map[TokenID]bool)
	for id := from; id != 0; id = l.Next(id) {
		inRange[id] = true
		if id == to {
			break
		}
	}
	prev := l.Prev(from)
	next := l.Next(to)

	for id := range inRange {
		t := l.arena[id]
		if t.link != 0 && !inRange[t.link] {
			l.arena[t.link].link = 0
		}
	}
	for id := range inRange {
		delete(l.arena, id)
	}

	if prev != 0 {
		l.arena[prev].next = next
	} else {
		l.front = next
	}
	if next != 0 {
		l.arena[next].prev = prev
	} else {
		l.back = prev
	}
}

// Dump renders the list as space-joined text, for debug output
// (-dtemplates) and tests. It does not attempt to reproduce original
// whitespace.
func (l *TokenList) Dump() string {
	s := ""
	for id := l.front; id != 0; id = l.Next(id) {
		if s != "" {
			s += " "
		}
		s += l.Str(id)
	}
	return s
}

// checkBracketIntegrity walks the list and verifies every link is mutual
// and ordered; used by tests to assert the invariant from spec.md §8.
func (l *TokenList) checkBracketIntegrity() error {
	seen := make(map[TokenID]TokenID)
	order := make(map[TokenID]int)
	i := 0
	for id := l.front; id != 0; id = l.Next(id) {
		order[id] = i
		i++
		if lk := l.LinkOf(id); lk != 0 {
			seen[id] = lk
		}
	}
	for a, b := range seen {
		bt := l.Get(b)
		if bt == nil {
			return fmt.Errorf("token %d links to erased token %d", a, b)
		}
		if bt.link != a {
			return fmt.Errorf("link not mutual between %d and %d", a, b)
		}
		if order[a] >= order[b] {
			return fmt.Errorf("link %d -> %d is not forward in linear order", a, b)
		}
	}
	return nil
}
