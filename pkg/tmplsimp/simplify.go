package tmplsimp

import "errors"

// Simplifier drives the template simplification pipeline over one token
// list. The passes are free procedures over the list (none keeps state
// between runs); the Simplifier only carries the collaborators from the
// external contract — settings and logger — plus the expanded-name set
// and the CodeWithTemplates flag observable by callers.
type Simplifier struct {
	List     *TokenList
	Settings Settings
	Log      Logger

	// CodeWithTemplates is set if any "template <" was observed, even
	// one that could not be instantiated. cmd/ralph-cc reads it to
	// decide whether the stage did anything.
	CodeWithTemplates bool

	// expanded holds the mangled names already synthesized during this
	// run, so equal instantiations share a single definition.
	expanded map[string]bool
}

// NewSimplifier returns a Simplifier over list. A nil logger is replaced
// by NopLogger.
func NewSimplifier(list *TokenList, settings Settings, log Logger) *Simplifier {
	if log == nil {
		log = NopLogger{}
	}
	return &Simplifier{
		List:     list,
		Settings: settings,
		Log:      log,
		expanded: make(map[string]bool),
	}
}

// Simplify runs the full pipeline: specialization rewriting, declaration
// and instantiation discovery, default-argument materialization, the
// instantiation fixed point interleaved with constant folding,
// declaration removal, and the final cleanup. The list is mutated in
// place; after a run, no generic declaration with an expanded mangled
// name remains in the stream. Running Simplify again on the result is a
// no-op apart from re-deriving CodeWithTemplates.
func (s *Simplifier) Simplify() {
	l := s.List

	s.expandSpecialized()

	// Fold constant expressions up front so non-type arguments such as
	// "A < 1 + 2 >" are literal by the time discovery looks for
	// argument lists; the engine re-folds whenever expansion produces
	// new instantiations. A math error aborts only the fold (spec §7).
	if _, err := l.SimplifyCalculations(); err != nil {
		s.reportMathError(err)
	}

	templates := s.getTemplateDeclarations()
	if len(templates) != 0 {
		s.removeTypename()

		instantiations := s.getTemplateInstantiations()
		if len(instantiations) != 0 {
			s.useDefaultArgumentValues(templates, &instantiations)

			// Reverse discovery order: nested declarations expand before
			// the declarations enclosing them.
			var done []TokenID
			for i := len(templates) - 1; i >= 0; i-- {
				instantiated, err := s.simplifyTemplateInstantiations(templates[i], &instantiations)
				if errors.Is(err, ErrBailOut) {
					// Unrecognizable declaration: it stays in the stream
					// and the remaining declarations are still processed.
					continue
				}
				// ErrRecursionLimit aborts only the remainder of that
				// declaration's site list; what was already expanded still
				// counts.
				if instantiated {
					done = append(done, templates[i])
				}
			}
			for _, decl := range done {
				declTok := l.Get(decl)
				if _, err := l.removeTemplate(decl); errors.Is(err, ErrGarbageToken) && s.Settings.DebugWarnings {
					s.Log.ReportErr(SeverityDebug, "debug",
						"removeTemplate: garbage code in template head", []*Token{declTok})
				}
			}
		}
	}

	l.CleanupAfterSimplify()
}

// removeTypename deletes "typename" tokens everywhere except inside
// template heads, where the word is part of the parameter syntax.
func (s *Simplifier) removeTypename() {
	l := s.List
	for tok := l.Front(); tok != 0; {
		if l.Str(tok) == "typename" {
			next := l.Next(tok)
			l.DeleteOne(tok)
			tok = next
			continue
		}
		if l.Str(tok) == "template" && l.Str(l.Next(tok)) == "<" {
			for tok != 0 && l.Str(tok) != ">" {
				tok = l.Next(tok)
			}
			if tok == 0 {
				break
			}
		}
		tok = l.Next(tok)
	}
}
