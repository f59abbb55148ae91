package tmplsimp

// useDefaultArgumentValues propagates defaulted template parameters of
// class templates into instantiation sites that supply fewer arguments
// than declared. The defaulted expressions are cloned after the last
// supplied argument (with "," separators), then stripped from the
// declaration. Instantiation references that live inside a default
// expression are dropped from the worklist together with the expression
// itself, since expanding them there would bind the wrong parameters.
func (s *Simplifier) useDefaultArgumentValues(templates []TokenID, instantiations *[]TokenID) {
	l := s.List

	for _, decl := range templates {
		// The "=" tokens of defaulted parameters, the declared parameter
		// count, and the class name (empty for function templates, which
		// are skipped: a function template's defaults live in its call
		// arguments, not its template parameters).
		var eq []TokenID
		templatepar := 1
		classname := ""

		depth := 0
		for tok := decl; tok != 0; tok = l.Next(tok) {
			st := l.Str(tok)
			if st == "<" {
				depth++
			} else if st == ">" {
				depth--
				if depth == 0 {
					if (l.Str(l.Next(tok)) == "class" || l.Str(l.Next(tok)) == "struct") && l.isName(l.at(tok, 2)) {
						classname = l.Str(l.at(tok, 2))
					}
					break
				}
			} else if st == ">>" {
				depth -= 2
				if depth <= 0 {
					break
				}
			} else if st == "," && depth == 1 {
				templatepar++
			} else if st == "=" && depth == 1 {
				eq = append(eq, tok)
			}
		}
		if len(eq) == 0 || classname == "" {
			continue
		}

		for _, inst := range *instantiations {
			if l.Get(inst) == nil || l.Str(inst) != classname ||
				l.Str(l.Next(inst)) != "<" || l.at(inst, 2) == 0 {
				continue
			}

			// Count the supplied arguments; the site must read as
			// single-token arguments separated by commas.
			usedpar := 1
			tok := l.at(inst, 3)
			for tok != 0 {
				if l.Str(tok) == ">" {
					break
				}
				if l.Str(tok) != "," {
					tok = 0
					break
				}
				usedpar++
				tok = l.at(tok, 2)
			}
			if tok == 0 || l.Str(tok) != ">" {
				continue
			}
			tok = l.Prev(tok)

			// Skip the defaults already covered by supplied arguments,
			// then splice the remaining default expressions.
			idx := 0
			for i := templatepar - len(eq); idx < len(eq) && i < usedpar; i++ {
				idx++
			}
			for ; idx < len(eq); idx++ {
				tok = l.InsertAfter(tok, ",", KindPunct)
				var links []TokenID
				angles := 0
				for from := l.Next(eq[idx]); from != 0; from = l.Next(from) {
					st := l.Str(from)
					if len(links) == 0 {
						// Stop at the next "," or ">" at angle level 0;
						// ">>" downgrades two levels.
						if st == "," && angles == 0 {
							break
						}
						if st == "<" {
							angles++
						} else if st == ">" {
							if angles == 0 {
								break
							}
							angles--
						} else if st == ">>" {
							if angles < 2 {
								break
							}
							angles -= 2
						}
					}
					tok = l.insertCopyAfter(tok, from)
					switch st {
					case "(", "[":
						links = append(links, tok)
					case ")", "]":
						if n := len(links); n > 0 {
							l.Link(links[n-1], tok)
							links = links[:n-1]
						}
					}
				}
			}
		}

		// Strip the default expressions from the declaration.
		for _, eqtok := range eq {
			indent := 0
			tok2 := l.Next(eqtok)
			for ; tok2 != 0; tok2 = l.Next(tok2) {
				st := l.Str(tok2)
				if st == "(" {
					if lk := l.LinkOf(tok2); lk != 0 {
						tok2 = lk
						continue
					}
				}
				if l.isName(tok2) && l.Str(l.Next(tok2)) == "<" && l.countTemplateParameters(l.Next(tok2)) > 0 {
					// An instantiation inside a default expression would
					// be expanded with wrong bindings; retract it.
					dropInstantiation(instantiations, tok2)
					indent++
				} else if indent > 0 && st == ">" {
					indent--
				} else if indent > 0 && st == ">>" {
					indent -= 2
					if indent < 0 {
						l.Get(tok2).Str = ">"
					}
				} else if indent == 0 && (st == "," || st == ">" || st == ">>") {
					break
				}
				if indent < 0 {
					break
				}
			}
			l.eraseBetween(eqtok, tok2)
			l.DeleteOne(eqtok)
		}
	}
}

// dropInstantiation removes id from the instantiation worklist.
func dropInstantiation(list *[]TokenID, id TokenID) {
	for i, v := range *list {
		if v == id {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return
		}
	}
}
