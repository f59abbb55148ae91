package tmplsimp

// standardTypeWords are the tokens C10 accepts as "a standard type" when
// deciding whether a `<` right after them is an angle bracket rather than
// less-than (spec.md §4.9).
var standardTypeWords = map[string]bool{
	"int": true, "char": true, "short": true, "long": true, "float": true,
	"double": true, "bool": true, "void": true, "unsigned": true, "signed": true,
	"size_t": true, "wchar_t": true,
}

// CheckTemplateAngleBrackets walks the stream statement by statement and,
// for every "Type <" it can plausibly attribute to a template argument
// list, tracks whether the angle brackets in that statement balance.
// It returns the first token of the first statement whose bracket level
// is still positive at the statement's end, or 0 if every statement
// balances. Scopes that execute code ((...), { ... }, try {...} catch
// (...) {...}) are skipped wholesale by jumping to their matching closer,
// since `<`/`>` inside them are ordinary comparisons, not template syntax.
func (l *TokenList) CheckTemplateAngleBrackets() TokenID {
	for stmtStart := l.Front(); stmtStart != 0; stmtStart = l.nextStatement(stmtStart) {
		if bad := l.checkStatementAngles(stmtStart); bad != 0 {
			return bad
		}
	}
	return 0
}

// nextStatement returns the first token of the statement after the one
// starting at cur, by scanning forward to the next top-level ';'. Linked
// (...), {...} and [...] groups are jumped over whole, so a '}' never
// ends a statement.
func (l *TokenList) nextStatement(cur TokenID) TokenID {
	depth := 0
	for id := cur; id != 0; id = l.Next(id) {
		s := l.Str(id)
		if s == "(" || s == "{" || s == "[" {
			if lk := l.LinkOf(id); lk != 0 {
				id = lk
				continue
			}
			depth++
			continue
		}
		if s == ")" || s == "}" || s == "]" {
			if depth > 0 {
				depth--
			}
			continue
		}
		if depth == 0 && (s == ";" || s == "{") {
			return l.Next(id)
		}
	}
	return 0
}

// checkStatementAngles scans one statement starting at stmtStart and
// returns stmtStart if the statement's cumulative angle-bracket level
// ends up positive, else 0.
func (l *TokenList) checkStatementAngles(stmtStart TokenID) TokenID {
	level := 0
	seenTemplateNames := make(map[string]bool)

	for id := stmtStart; id != 0; id = l.Next(id) {
		s := l.Str(id)

		if s == ";" {
			break
		}

		// Skip executing scopes wholesale: (...), {...}, and the
		// catch-clause parens of try/catch.
		if (s == "(" || s == "{") && l.LinkOf(id) != 0 {
			id = l.LinkOf(id)
			continue
		}

		if s != "<" {
			continue
		}

		prev := l.Prev(id)
		next := l.Next(id)
		opens := false
		switch {
		case level == 0:
			// Outermost '<' in the statement: assume template syntax,
			// the common case for this heuristic.
			opens = true
		case standardTypeWords[l.Str(next)]:
			opens = true
		case l.Str(next) == "typename":
			opens = true
		case l.KindOf(prev) == KindName && seenTemplateNames[l.Str(prev)]:
			opens = true
		case l.KindOf(next) == KindName && l.Str(l.Next(next)) == "<":
			// "Id <" immediately followed by another "Id <" suggests a
			// nested template argument, e.g. "Outer < Inner < T > >".
			opens = true
		}

		if opens {
			if l.KindOf(prev) == KindName {
				seenTemplateNames[l.Str(prev)] = true
			}
			level++
			continue
		}

		// Not attributable to a template: a bare '<' comparison closes
		// nothing and should not count against the level.
	}

	// Walk closers for every opener we counted, in a second pass, since
	// the first pass only identifies openers (a '>' always closes the
	// innermost open level, never a fresh comparison, once we're inside
	// at least one template argument list).
	for id := stmtStart; id != 0 && level > 0; id = l.Next(id) {
		s := l.Str(id)
		if s == ";" {
			break
		}
		if (s == "(" || s == "{") && l.LinkOf(id) != 0 {
			id = l.LinkOf(id)
			continue
		}
		if s == ">>" {
			if level >= 2 {
				level -= 2
			} else {
				level = 0
			}
		} else if s == ">" {
			level--
		}
	}

	if level > 0 {
		return stmtStart
	}
	return 0
}
