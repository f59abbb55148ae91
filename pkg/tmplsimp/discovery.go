package tmplsimp

// accessSpecifiers are the class-body access keywords that may precede a
// base-class instantiation in an inheritance list ("class D : public B < T >").
var accessSpecifiers = map[string]bool{"private": true, "protected": true, "public": true}

// getTemplateDeclarations walks the stream and returns the "template"
// token of every generic definition that has a body. Forward declarations
// (head followed by ";" before any "{") are ignored. Templates defined
// inside namespaces are not instantiated, so namespace bodies are skipped
// wholesale. Seeing any "template <" outside a namespace body sets
// CodeWithTemplates.
func (s *Simplifier) getTemplateDeclarations() []TokenID {
	l := s.List
	var decls []TokenID
	for tok := l.Front(); tok != 0; tok = l.Next(tok) {
		if l.Str(tok) == "namespace" && l.isName(l.Next(tok)) && l.Str(l.at(tok, 2)) == "{" {
			if lk := l.LinkOf(l.at(tok, 2)); lk != 0 {
				tok = lk
			}
		}

		if l.Str(tok) == "template" && l.Str(l.Next(tok)) == "<" {
			s.CodeWithTemplates = true
			for tok2 := tok; tok2 != 0; tok2 = l.Next(tok2) {
				if l.Str(tok2) == ";" {
					break
				}
				if l.Str(tok2) == "{" {
					decls = append(decls, tok)
					break
				}
			}
		}
	}
	return decls
}

// getTemplateInstantiations walks the stream and returns candidate
// instantiation sites: identifier tokens followed by "<" whose preceding
// context indicates a use rather than a declaration. Within one outer
// "Name < ... >" range, inner instantiations that follow a "," in its
// argument list are recorded before the outer one, so nested expansions
// happen bottom-up.
func (s *Simplifier) getTemplateInstantiations() []TokenID {
	l := s.List
	var used []TokenID

	for tok := l.Front(); tok != 0; tok = l.Next(tok) {
		if l.Str(tok) == "template" && l.Str(l.Next(tok)) == "<" {
			// Template definition head, not a use.
			tok = l.findClosingAngle(l.Next(tok))
			if tok == 0 {
				break
			}
			continue
		}

		if !l.isName(tok) || l.Str(l.Next(tok)) != "<" {
			continue
		}
		if !s.precedesInstantiation(tok) {
			continue
		}

		// Go to the ">" and parse backwards, adding inner instantiations
		// before the outer one.
		closer := l.findClosingAngle(l.Next(tok))
		for tok2 := closer; tok2 != 0 && tok2 != tok; tok2 = l.Prev(tok2) {
			if l.Str(tok2) == "," && l.isName(l.Next(tok2)) && l.Str(l.at(tok2, 2)) == "<" &&
				l.countTemplateParameters(l.at(tok2, 2)) > 0 {
				used = append(used, l.Next(tok2))
			}
		}

		if l.countTemplateParameters(l.Next(tok)) > 0 {
			used = append(used, tok)
		}
	}

	return used
}

// precedesInstantiation reports whether the token before the candidate
// identifier marks a use context: one of "( { } ; =", a type name
// ("Type name <"), or an access specifier in an inheritance list
// (", public Base <").
func (s *Simplifier) precedesInstantiation(tok TokenID) bool {
	l := s.List
	prev := l.Prev(tok)
	switch l.Str(prev) {
	case "(", "{", "}", ";", "=":
		return true
	}
	if accessSpecifiers[l.Str(prev)] {
		pp := l.Str(l.Prev(prev))
		return pp == "," || pp == ":"
	}
	return l.isName(prev)
}
