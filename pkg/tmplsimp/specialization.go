package tmplsimp

import "strings"

// expandSpecialized locates explicit specializations such as
// "template < > void f < int > ( ... )", renames the function to its
// mangled form "f<int>", deletes the "template < >" prefix, and rewrites
// every other "f < int > (" call site to the same mangled identifier.
// Later passes then treat the specialization as a plain function. Each
// mangled name is recorded in the expanded set so the instantiation
// engine never synthesizes a second definition for it.
func (s *Simplifier) expandSpecialized() {
	l := s.List
	for tok := l.Front(); tok != 0; {
		if !l.matchSeq(tok, "template", "<", ">") {
			tok = l.Next(tok)
			continue
		}

		// Skip past the return-type words to the argument list.
		tok2 := l.at(tok, 3)
		for tok2 != 0 && (l.isName(tok2) || l.Str(tok2) == "*") {
			tok2 = l.Next(tok2)
		}
		if l.countTemplateParameters(tok2) == 0 || !l.isName(l.Prev(tok2)) {
			tok = l.Next(tok)
			continue
		}
		tok2 = l.Prev(tok2)

		// Collect "Name < args" up to the closing ">". Only function
		// specializations ("> (" follows) are handled here.
		var parts []string
		tok3 := tok2
		for ; tok3 != 0 && l.Str(tok3) != ">"; tok3 = l.Next(tok3) {
			parts = append(parts, l.Str(tok3))
		}
		if tok3 == 0 || l.Str(l.Next(tok3)) != "(" {
			tok = l.Next(tok)
			continue
		}

		name := strings.Join(parts, "") + ">"
		s.expanded[name] = true

		pattern := make([]string, 0, len(parts)+2)
		pattern = append(pattern, parts...)
		pattern = append(pattern, ">", "(")

		// Rename the specialization: erase "< args >", leave the mangled
		// identifier, then drop the "template < >" head.
		l.eraseBetween(tok2, l.findStr(tok2, "("))
		l.Get(tok2).Str = name
		l.DeleteRange(tok, l.at(tok, 2))

		// Rewrite the remaining call sites of this specialization.
		for site := l.findSeq(tok2, pattern); site != 0; site = l.findSeq(site, pattern) {
			l.eraseBetween(site, l.findStr(site, "("))
			l.Get(site).Str = name
		}

		tok = tok2
	}
}
