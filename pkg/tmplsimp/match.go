package tmplsimp

// Small token-walking helpers shared by the simplification passes. The
// passes reason about token text ("template", "<", "::") rather than
// lexer types, so most matching is plain string comparison along the
// linear order.

// at returns the id n tokens after id, or 0 past the end.
func (l *TokenList) at(id TokenID, n int) TokenID {
	for ; n > 0 && id != 0; n-- {
		id = l.Next(id)
	}
	return id
}

// isName reports whether id is a name-like token (identifier or keyword).
func (l *TokenList) isName(id TokenID) bool {
	t := l.Get(id)
	return t != nil && t.IsName
}

// matchSeq reports whether the tokens starting at id read exactly as the
// given texts, one token per text.
func (l *TokenList) matchSeq(id TokenID, texts ...string) bool {
	for _, s := range texts {
		if id == 0 || l.Str(id) != s {
			return false
		}
		id = l.Next(id)
	}
	return true
}

// findSeq returns the first token at or after `from` where the given
// texts match in sequence, or 0.
func (l *TokenList) findSeq(from TokenID, texts []string) TokenID {
	for id := from; id != 0; id = l.Next(id) {
		if l.matchSeq(id, texts...) {
			return id
		}
	}
	return 0
}

// findStr returns the first token at or after `from` whose text is s,
// or 0.
func (l *TokenList) findStr(from TokenID, s string) TokenID {
	for id := from; id != 0; id = l.Next(id) {
		if l.Str(id) == s {
			return id
		}
	}
	return 0
}

// findClosingAngle returns the ">" (or ">>") token that closes the "<"
// at lt, or 0 if none is found before a ";" or brace. A ">>" closes two
// levels.
func (l *TokenList) findClosingAngle(lt TokenID) TokenID {
	if l.Str(lt) != "<" {
		return 0
	}
	depth := 0
	for id := lt; id != 0; id = l.Next(id) {
		switch l.Str(id) {
		case "<":
			depth++
		case ">":
			depth--
			if depth == 0 {
				return id
			}
		case ">>":
			depth -= 2
			if depth <= 0 {
				return id
			}
		case ";", "{", "}":
			return 0
		}
	}
	return 0
}

// eraseBetween deletes the tokens strictly between begin and end. An end
// of 0 erases through the back of the list.
func (l *TokenList) eraseBetween(begin, end TokenID) {
	first := l.Next(begin)
	if first == 0 || first == end {
		return
	}
	last := l.Back()
	if end != 0 {
		last = l.Prev(end)
	}
	l.DeleteRange(first, last)
}

// insertCopyAfter inserts a copy of src (text, kind, flags, location)
// immediately after `after` and returns the new token's id.
func (l *TokenList) insertCopyAfter(after, src TokenID) TokenID {
	s := l.Get(src)
	if s == nil {
		return after
	}
	id := l.InsertAfter(after, s.Str, s.Kind)
	c := l.Get(id)
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
