package tmplsimp

// Predicates for what must follow the closing ">" of a candidate
// instantiation before it is accepted as a match.

// afterCallParen: a function instantiation is invoked, "f < int > (".
func afterCallParen(l *TokenList, id TokenID) bool { return l.Str(id) == "(" }

// afterDeclaratorName: a class instantiation declares a variable,
// "A < int > a" or "A < int > * a".
func afterDeclaratorName(l *TokenList, id TokenID) bool {
	if l.Str(id) == "*" {
		id = l.Next(id)
	}
	return l.isName(id)
}

// afterMemberImpl: an out-of-class member definition,
// "A < T > :: f (" or "A < T > :: ~ A (".
func afterMemberImpl(l *TokenList, id TokenID) bool {
	if l.Str(id) != "::" {
		return false
	}
	id = l.Next(id)
	if l.Str(id) == "~" {
		id = l.Next(id)
	}
	return l.isName(id) && l.Str(l.Next(id)) == "("
}

// instantiateMatch reports whether the token at instance begins
// "name < ... >" with exactly nargs top-level arguments, optionally
// requiring `after` to hold just past the closing ">".
func (l *TokenList) instantiateMatch(instance TokenID, name string, nargs int, after func(*TokenList, TokenID) bool) bool {
	if l.Str(instance) != name || l.Str(l.Next(instance)) != "<" {
		return false
	}
	if nargs != l.countTemplateParameters(l.Next(instance)) {
		return false
	}
	if after == nil {
		return true
	}

	// Walk to the closing ">" of the outer argument list, tracking
	// nested template arguments.
	indent := 0
	tok := instance
	for tok != 0 {
		st := l.Str(tok)
		if st == ">" && indent == 0 {
			break
		}
		if st == ">>" && indent <= 1 {
			break
		}
		if (st == "<" || st == ",") && l.isName(l.Next(tok)) && l.Str(l.at(tok, 2)) == "<" &&
			l.countTemplateParameters(l.at(tok, 2)) > 0 {
			indent++
		}
		if indent > 0 && st == ">" {
			indent--
		}
		if indent > 0 && st == ">>" {
			if indent > 1 {
				indent -= 2
			} else {
				indent--
			}
		}
		tok = l.Next(tok)
	}
	if tok == 0 {
		return false
	}
	return after(l, l.Next(tok))
}

// templateNamePosition returns the offset, in tokens from the ">"
// closing a template head, of the declared name: "> class|struct Name {"
// and "> Type Name (" put it at 2, "> Type Type Name (" at 3, with a
// "*" or "&" before the name adding one. -1 means the shape is not
// recognized and the declaration must be bailed out.
func (l *TokenList) templateNamePosition(gt TokenID) int {
	next := l.Str(l.Next(gt))
	namepos := -1
	switch {
	case (next == "class" || next == "struct") && l.isName(l.at(gt, 2)) &&
		(l.Str(l.at(gt, 3)) == "{" || l.Str(l.at(gt, 3)) == ":"):
		return 2
	case l.isName(l.Next(gt)) && l.functionShapeAt(gt, 2):
		namepos = 2
	case l.isName(l.Next(gt)) && l.isName(l.at(gt, 2)) && l.functionShapeAt(gt, 3):
		namepos = 3
	default:
		return -1
	}
	if st := l.Str(l.at(gt, namepos)); st == "*" || st == "&" {
		namepos++
	}
	return namepos
}

// functionShapeAt reports whether the tokens at the given offset from gt
// read as an optional "*"/"&", a name, and "(".
func (l *TokenList) functionShapeAt(gt TokenID, offset int) bool {
	id := l.at(gt, offset)
	if l.Str(id) == "*" || l.Str(id) == "&" {
		id = l.Next(id)
	}
	return l.isName(id) && l.Str(l.Next(id)) == "("
}

// expandTemplate clones the declaration whose head closes at headEnd
// (the ">" of "template < ... >") into a concrete definition named
// newName, appended at the back of the stream. Parameter names are
// substituted by the argument token sequences rooted at args;
// occurrences of the template's own name (not followed by "<") become
// newName. Out-of-class member definitions for the same template are
// cloned too. Brackets emitted into the clone are linked as they close,
// and any "Id <" pair emitted is pushed onto the instantiation worklist
// so templates synthesized here are expanded in later passes.
func (s *Simplifier) expandTemplate(headEnd TokenID, name string, params []TokenID, newName string, args []TokenID, instantiations *[]TokenID) {
	l := s.List

	for tok3 := l.Front(); tok3 != 0; tok3 = l.Next(tok3) {
		if st := l.Str(tok3); st == "{" || st == "(" || st == "[" {
			if lk := l.LinkOf(tok3); lk != 0 {
				tok3 = lk
			}
		}

		if tok3 == headEnd {
			// End of the declaration head: clone from the first token of
			// the declared entity.
			tok3 = l.Next(tok3)
		} else if l.instantiateMatch(tok3, name, len(params), afterMemberImpl) {
			// Member function implemented outside the class definition.
			s.appendNameToken(newName, tok3)
			for tok3 != 0 && l.Str(tok3) != "::" {
				tok3 = l.Next(tok3)
			}
			if tok3 == 0 {
				break
			}
		} else {
			continue
		}

		indentlevel := 0
		var brackets []TokenID // emitted "(", "[" and "{" tokens

	cloneLoop:
		for ; tok3 != 0; tok3 = l.Next(tok3) {
			t3 := l.Get(tok3)

			if t3.IsName {
				if itype := paramIndex(l, params, t3.Str); itype >= 0 && itype < len(args) {
					// Replace the parameter with the argument tokens.
					typeindent := 0
					for typetok := args[itype]; typetok != 0; typetok = l.Next(typetok) {
						ts := l.Str(typetok)
						if typeindent == 0 && (ts == "," || ts == ">" || ts == ">>") {
							break
						}
						if l.isName(typetok) && l.Str(l.Next(typetok)) == "<" &&
							l.countTemplateParameters(l.Next(typetok)) > 0 {
							typeindent++
						} else if typeindent > 0 && ts == ">" {
							typeindent--
						} else if typeindent > 0 && ts == ">>" {
							if typeindent == 1 {
								break
							}
							typeindent -= 2
						}
						cl := l.CloneToken(typetok)
						ct := l.Get(cl)
						ct.Linenr = t3.Linenr
						ct.FileIndex = t3.FileIndex
					}
					continue
				}
			}

			// The template's own name, used without "<": rename it so the
			// definition refers to itself by the mangled name.
			if t3.Str == name && l.Str(l.Next(tok3)) != "<" {
				s.appendNameToken(newName, tok3)
				continue
			}

			// Ordinary token: copy it verbatim.
			cl := l.CloneToken(tok3)

			if t3.IsName && l.Str(l.Next(tok3)) == "<" {
				// The clone will be followed by a "<" clone; inner
				// templates synthesized here get expanded later.
				*instantiations = append(*instantiations, cl)
				continue
			}

			switch t3.Str {
			case "{":
				brackets = append(brackets, cl)
				indentlevel++
			case "(", "[":
				brackets = append(brackets, cl)
			case "}":
				n := len(brackets)
				if n == 0 || l.Str(brackets[n-1]) != "{" {
					break cloneLoop
				}
				l.Link(brackets[n-1], cl)
				brackets = brackets[:n-1]
				if indentlevel <= 1 && len(brackets) == 0 {
					break cloneLoop
				}
				indentlevel--
			case ")", "]":
				n := len(brackets)
				if n == 0 {
					break cloneLoop
				}
				l.Link(brackets[n-1], cl)
				brackets = brackets[:n-1]
			}
		}

		if len(brackets) != 0 && s.Settings.DebugWarnings {
			s.Log.ReportErr(SeverityDebug, "debug",
				"expandTemplate: unbalanced brackets in cloned definition", []*Token{l.Get(headEnd)})
		}
		if tok3 == 0 {
			break
		}
	}
}

// appendNameToken appends a fresh name token at the back of the list,
// stamped with loc's source position.
func (s *Simplifier) appendNameToken(text string, loc TokenID) TokenID {
	l := s.List
	id := l.PushBack(text, KindName)
	t := l.Get(id)
	t.IsName = true
	if src := l.Get(loc); src != nil {
		t.Linenr = src.Linenr
		t.FileIndex = src.FileIndex
	}
	return id
}

// paramIndex returns the index of the parameter whose name is text,
// or -1.
func paramIndex(l *TokenList, params []TokenID, text string) int {
	for i, p := range params {
		if l.Str(p) == text {
			return i
		}
	}
	return -1
}

// tokenRange is a pending erase of call-site argument tokens, inclusive
// on both ends.
type tokenRange struct {
	first, last TokenID
}

// simplifyTemplateInstantiations expands every recorded instantiation of
// the declaration beginning at decl: it forms the mangled name from the
// canonical argument text, synthesizes one definition per distinct name,
// and rewrites each matching call site to the single mangled identifier.
// It reports whether at least one expansion happened, so the driver
// knows the generic declaration can be removed. An unrecognizable
// declaration shape yields ErrBailOut; hitting the expansion cap yields
// ErrRecursionLimit with whatever was expanded so far still counted.
//
// Every time the worklist grows (inner templates emitted during an
// expansion), the whole stream is re-folded so non-type arguments reduce
// to literals before mangling; the recursion counter bounds how often
// that can happen for one declaration.
func (s *Simplifier) simplifyTemplateInstantiations(decl TokenID, instantiations *[]TokenID) (bool, error) {
	l := s.List

	// Parameter names "T" between "template <" and the matching ">".
	var params []TokenID
	tok := l.at(decl, 2)
	for ; tok != 0 && l.Str(tok) != ">"; tok = l.Next(tok) {
		if l.isName(tok) && (l.Str(l.Next(tok)) == "," || l.Str(l.Next(tok)) == ">") {
			params = append(params, tok)
		}
	}
	if tok == 0 {
		return false, ErrBailOut
	}

	namepos := l.templateNamePosition(tok)
	if namepos == -1 {
		if s.Settings.DebugWarnings {
			s.Log.ReportErr(SeverityDebug, "debug", "simplifyTemplates: bailing out", []*Token{l.Get(decl)})
		}
		return false, ErrBailOut
	}
	name := l.Str(l.at(tok, namepos))
	isfunc := l.Str(l.at(tok, namepos+1)) == "("

	after := afterDeclaratorName
	if isfunc {
		after = afterCallParen
	}

	amount := len(*instantiations)
	recursiveCount := 0
	instantiated := false

	for idx := 0; idx < len(*instantiations); idx++ {
		if amount != len(*instantiations) {
			amount = len(*instantiations)
			if _, err := l.SimplifyCalculations(); err != nil {
				// The fold aborts; the expansion continues (spec §7).
				s.reportMathError(err)
			}
			recursiveCount++
			if recursiveCount >= s.Settings.MaxExpansionRecursion {
				if s.Settings.DebugWarnings {
					s.Log.ReportErr(SeverityDebug, "debug",
						"simplifyTemplates: recursion limit reached", []*Token{l.Get(decl)})
				}
				return instantiated, ErrRecursionLimit
			}
		}

		tok2 := (*instantiations)[idx]
		if l.Get(tok2) == nil || l.Str(tok2) != name {
			continue
		}
		if prevStr := l.Str(l.Prev(tok2)); (prevStr == ";" || prevStr == "{" || prevStr == "}" || prevStr == "=") &&
			!l.instantiateMatch(tok2, name, len(params), after) {
			continue
		}

		// Parse the argument tokens, remembering each top-level
		// argument's first token and building the canonical text for the
		// mangled name. The site's textual pattern is kept for the
		// call-site rewrite below.
		var args []TokenID
		pattern := []string{name, "<"}
		typeForNewName := ""
		indentlevel := 0
		for tok3 := l.at(tok2, 2); tok3 != 0 && (indentlevel > 0 || l.Str(tok3) != ">"); tok3 = l.Next(tok3) {
			st := l.Str(tok3)
			// Unparenthesized "(" or "[" in an argument: bail for this
			// site.
			if st == "(" || st == "[" || l.Next(tok3) == 0 {
				typeForNewName = ""
				break
			}
			if tb := l.Str(l.Prev(l.Prev(tok3))); (tb == "<" || tb == ",") && l.isName(l.Prev(tok3)) &&
				st == "<" && l.countTemplateParameters(tok3) > 0 {
				indentlevel++
			} else if indentlevel > 0 && st == ">" && (l.Str(l.Next(tok3)) == "," || l.Str(l.Next(tok3)) == ">") {
				indentlevel--
			} else if indentlevel > 0 && st == ">>" {
				if indentlevel == 1 {
					pattern = append(pattern, ">")
					typeForNewName += ">"
					break
				}
				indentlevel -= 2
			}
			pattern = append(pattern, st)
			if prevStr := l.Str(l.Prev(tok3)); indentlevel == 0 && (prevStr == "<" || prevStr == ",") {
				args = append(args, tok3)
			}
			if st != "class" {
				typeForNewName += l.Get(tok3).canonicalText()
			}
		}
		pattern = append(pattern, ">")

		if typeForNewName == "" || len(params) != len(args) {
			if s.Settings.DebugWarnings {
				s.Log.ReportErr(SeverityDebug, "debug",
					"Failed to instantiate template. The checking continues anyway.", []*Token{l.Get(decl)})
			}
			if typeForNewName == "" {
				continue
			}
			break
		}

		// A site whose arguments still name the declaration's own
		// parameters is a dependent use inside the template's body (e.g.
		// "S < T >" inside "struct S"), not a concrete instantiation:
		// expanding it would mangle a parameter name into the type. It is
		// handled when the enclosing body is cloned.
		if s.argumentsDependOnParameters(args, params) {
			continue
		}

		newName := name + "<" + typeForNewName + ">"
		if !s.expanded[newName] {
			s.expanded[newName] = true
			s.expandTemplate(tok, name, params, newName, args, instantiations)
			instantiated = true
		}

		// Replace every call site matching this exact argument sequence
		// by the single mangled identifier.
		var remove []tokenRange
		for tok4 := tok2; tok4 != 0; tok4 = l.Next(tok4) {
			if !l.matchSeq(tok4, pattern...) {
				continue
			}
			tok5, matched := s.matchSiteArguments(tok4, args)
			if matched {
				l.Get(tok4).Str = newName
				remove = append(remove, tokenRange{l.Next(tok4), tok5})
			}
			tok4 = tok5
			if tok4 == 0 {
				break
			}
		}
		for i := len(remove) - 1; i >= 0; i-- {
			l.DeleteRange(remove[i].first, remove[i].last)
		}
	}

	return instantiated, nil
}

// argumentsDependOnParameters reports whether any token of the
// argument sequences rooted at args has the text of one of the
// declaration's parameter names.
func (s *Simplifier) argumentsDependOnParameters(args, params []TokenID) bool {
	l := s.List
	for _, arg := range args {
		indent := 0
		for tok := arg; tok != 0; tok = l.Next(tok) {
			st := l.Str(tok)
			if indent == 0 && (st == "," || st == ">" || st == ">>") {
				break
			}
			if st == "<" {
				indent++
			} else if indent > 0 && st == ">" {
				indent--
			} else if indent > 0 && st == ">>" {
				if indent == 1 {
					break
				}
				indent -= 2
			}
			if l.isName(tok) && paramIndex(l, params, l.Str(tok)) >= 0 {
				return true
			}
		}
	}
	return false
}

// matchSiteArguments walks the "< ... >" range at a textual pattern
// match and verifies each top-level argument token also agrees on the
// signedness/length flags with the corresponding argument of the
// instantiation being processed. It returns the closing ">" (or the
// token the walk stopped at) and whether the site is equivalent.
func (s *Simplifier) matchSiteArguments(tok4 TokenID, args []TokenID) (TokenID, bool) {
	l := s.List
	tok5 := l.at(tok4, 2)
	typeCount := 1 // there is always at least one argument
	var typetok TokenID
	if len(args) > 0 {
		typetok = args[0]
	}
	indent := 0

	for tok5 != 0 && (indent > 0 || l.Str(tok5) != ">") {
		st := l.Str(tok5)
		if st == "<" && l.countTemplateParameters(tok5) > 0 {
			indent++
		} else if indent > 0 && st == ">" && (l.Str(l.Next(tok5)) == "," || l.Str(l.Next(tok5)) == ">") {
			indent--
		} else if indent == 0 {
			if st != "," {
				tt := l.Get(typetok)
				t5 := l.Get(tok5)
				if tt == nil || t5.IsUnsigned != tt.IsUnsigned || t5.IsSigned != tt.IsSigned || t5.IsLong != tt.IsLong {
					break
				}
				typetok = l.Next(typetok)
			} else {
				if typeCount < len(args) {
					typetok = args[typeCount]
				} else {
					typetok = 0
				}
				typeCount++
			}
		}
		tok5 = l.Next(tok5)
	}

	return tok5, tok5 != 0 && l.Str(tok5) == ">" && typeCount == len(args)
}

// reportMathError routes a propagated MathError (with its offending
// token attached) to the logger as a debug entry.
func (s *Simplifier) reportMathError(err error) {
	var callstack []*Token
	if me, ok := err.(*MathError); ok && me.Tok != nil {
		callstack = []*Token{me.Tok}
	}
	s.Log.ReportErr(SeverityDebug, "debug", err.Error(), callstack)
}
