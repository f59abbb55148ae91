package tmplsimp

import (
	"errors"
	"fmt"
)

// Local, recoverable conditions (spec.md §7). The instantiation engine
// and the declaration remover return these sentinels, tested with
// errors.Is; a BailOut or GarbageToken never aborts the overall driver,
// only the construct being examined.
var (
	// ErrBailOut means a construct could not be recognized and was left
	// untouched.
	ErrBailOut = errors.New("tmplsimp: bailing out")
	// ErrGarbageToken means a stray ')' or '}' was found where a
	// template head was expected.
	ErrGarbageToken = errors.New("tmplsimp: garbage token in template head")
	// ErrRecursionLimit means the 100-iteration expansion cap (§4.6) was
	// hit while processing one declaration.
	ErrRecursionLimit = errors.New("tmplsimp: recursion limit reached")
)

// MathError is the one error kind that propagates out of the constant
// folder (§4.5, §7): it carries the token at which MathLib-equivalent
// arithmetic failed (e.g. an internal overflow) so the caller can log it
// with full context before aborting just that fold.
type MathError struct {
	Tok *Token
	Err error
}

func (e *MathError) Error() string {
	if e.Tok != nil {
		return fmt.Sprintf("tmplsimp: math error at %q (line %d): %v", e.Tok.Str, e.Tok.Linenr, e.Err)
	}
	return fmt.Sprintf("tmplsimp: math error: %v", e.Err)
}

func (e *MathError) Unwrap() error { return e.Err }
