package tmplsimp

// countTemplateParameters counts the top-level comma-separated parameters
// of a template argument/parameter list opened by the `<` token at id. It
// returns 0 if the construct is not well-formed enough to trust (spec.md
// §4.1): encountering a token outside the tolerated grammar bails out
// rather than guessing.
func (l *TokenList) countTemplateParameters(lt TokenID) int {
	if l.Str(lt) != "<" {
		return 0
	}
	cur := l.Next(lt)
	count := 0
	depth := 0
	sawAtomSinceComma := false

	for cur != 0 {
		s := l.Str(cur)
		switch {
		case s == "<":
			depth++
			cur = l.Next(cur)
			continue
		case s == ">>":
			// Closes two levels: the nested list and, from depth <= 1,
			// the outer list as well.
			if depth <= 1 {
				if sawAtomSinceComma {
					count++
				}
				return count
			}
			depth -= 2
			cur = l.Next(cur)
			continue
		case s == ">":
			if depth == 0 {
				if sawAtomSinceComma {
					count++
				}
				return count
			}
			depth--
			cur = l.Next(cur)
			for l.Str(cur) == "*" || l.Str(cur) == "&" {
				cur = l.Next(cur)
			}
			continue
		case s == "," && depth == 0:
			if !sawAtomSinceComma {
				return 0
			}
			count++
			sawAtomSinceComma = false
			cur = l.Next(cur)
			continue
		}

		if depth > 0 {
			// Inside a nested <...>; any token is tolerated until the
			// matching closer, we only track depth.
			cur = l.Next(cur)
			continue
		}

		cur, sawAtomSinceComma = l.skipParamAtom(cur)
		if cur == 0 {
			return 0
		}
	}
	return 0
}

// skipParamAtom consumes one template-argument atom starting at cur:
// leading const/struct/union/&, an optional qualified-name prefix
// (`::` or `Id ::`), the atom itself (name/number/char literal), trailing
// *,&,const, and a trailing function-pointer suffix made of balanced
// (...) or [...] groups. It returns the token just past the atom (ready
// for a `,`, `>`, or `>>`) and whether an atom was actually consumed.
func (l *TokenList) skipParamAtom(cur TokenID) (TokenID, bool) {
	consumedAny := false

	for {
		s := l.Str(cur)
		if s == "const" || s == "struct" || s == "union" || s == "&" {
			consumedAny = true
			cur = l.Next(cur)
			continue
		}
		break
	}

	if l.Str(cur) == "::" {
		cur = l.Next(cur)
	}
	if l.KindOf(cur) == KindName && l.Str(l.Next(cur)) == "::" {
		cur = l.Next(cur)
		cur = l.Next(cur)
	}

	kind := l.KindOf(cur)
	if kind != KindName && kind != KindNumber && kind != KindChar && kind != KindKeyword {
		if consumedAny {
			return cur, true
		}
		return 0, false
	}
	consumedAny = true
	cur = l.Next(cur)

	for {
		s := l.Str(cur)
		if s == "*" || s == "&" || s == "const" {
			cur = l.Next(cur)
			continue
		}
		break
	}

	for {
		s := l.Str(cur)
		if s == "(" || s == "[" {
			closer := l.LinkOf(cur)
			if closer == 0 {
				return 0, false
			}
			cur = l.Next(closer)
			continue
		}
		break
	}

	return cur, consumedAny
}
