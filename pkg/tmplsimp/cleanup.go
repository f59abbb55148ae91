package tmplsimp

// CleanupAfterSimplify removes orphan "template < > Name ..." heads left
// behind where no concrete specialization was synthesized, and collapses
// "Type < t1 , ... , tn > (" into a single mangled identifier followed
// by "(" when every argument is a plain type or number. The collapse
// only triggers before "(", so downstream name-based checks see the
// mangled spelling at call sites; a following "*" or "&" leaves the
// stream unchanged.
func (l *TokenList) CleanupAfterSimplify() {
	for tok := l.Front(); tok != 0; {
		if l.Str(tok) == "(" {
			if lk := l.LinkOf(tok); lk != 0 {
				tok = lk
			}
			tok = l.Next(tok)
			continue
		}

		if l.matchSeq(tok, "template", "<", ">") && l.isName(l.at(tok, 3)) {
			// Orphan specialization head: erase up to the ";" (which
			// stays) or through the "{ ... }" body. Anything outside name/angle/comma
			// tokens means the head is something else entirely; leave it.
			end := tok
			for end != 0 {
				es := l.Str(end)
				if es == ";" {
					break
				}
				if es == "{" {
					if lk := l.LinkOf(end); lk != 0 {
						end = l.Next(lk)
					} else {
						end = 0
					}
					break
				}
				if !(l.isName(end) || es == "::" || es == "<" || es == ">" || es == ">>" || es == ",") {
					end = 0
					break
				}
				end = l.Next(end)
			}
			if end != 0 {
				l.eraseBetween(tok, end)
				l.DeleteOne(tok)
				tok = end
				continue
			}
			tok = l.Next(tok)
			continue
		}

		if l.isName(tok) && l.Str(l.Next(tok)) == "<" &&
			(l.Prev(tok) == 0 || l.Str(l.Prev(tok)) == ";") {
			tok2 := l.at(tok, 2)
			typ := ""
			for l.isTypeOrNumber(tok2) && l.Str(l.Next(tok2)) == "," {
				typ += l.Str(tok2) + ","
				tok2 = l.at(tok2, 2)
			}
			if l.isTypeOrNumber(tok2) && l.Str(l.Next(tok2)) == ">" && l.Str(l.at(tok2, 2)) == "(" {
				typ += l.Str(tok2)
				l.Get(tok).Str = l.Str(tok) + "<" + typ + ">"
				l.eraseBetween(tok, l.at(tok2, 2))
				continue
			}
		}

		tok = l.Next(tok)
	}
}

// isTypeOrNumber reports whether id is a plain type word / identifier or
// a number literal, the only argument atoms the collapse accepts.
func (l *TokenList) isTypeOrNumber(id TokenID) bool {
	return l.isName(id) || l.KindOf(id) == KindNumber
}
