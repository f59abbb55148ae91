package tmplsimp

import "github.com/raymyers/ralph-cc/pkg/lexer"

// kindFromLexer maps the C lexer's fine-grained TokenType onto the coarser
// Kind this package reasons about. The simplifier works on text ("class",
// "template", "<") rather than lexer.TokenType, so most keywords collapse
// to KindKeyword; punctuation/operators collapse to KindOp/KindPunct by
// the same split the lexer itself uses for compound-assignment detection.
func kindFromLexer(tt lexer.TokenType) Kind {
	switch tt {
	case lexer.TokenIdent:
		return KindName
	case lexer.TokenInt:
		return KindNumber
	case lexer.TokenString:
		return KindString
	case lexer.TokenLParen, lexer.TokenRParen, lexer.TokenLBrace, lexer.TokenRBrace,
		lexer.TokenLBracket, lexer.TokenRBracket, lexer.TokenSemicolon, lexer.TokenComma,
		lexer.TokenDot, lexer.TokenArrow, lexer.TokenColon:
		return KindPunct
	case lexer.TokenInt_, lexer.TokenVoid, lexer.TokenReturn, lexer.TokenIf, lexer.TokenElse,
		lexer.TokenWhile, lexer.TokenDo, lexer.TokenFor, lexer.TokenBreak, lexer.TokenContinue,
		lexer.TokenSwitch, lexer.TokenCase, lexer.TokenDefault, lexer.TokenGoto, lexer.TokenTypedef,
		lexer.TokenStruct, lexer.TokenSizeof, lexer.TokenUnion, lexer.TokenEnum, lexer.TokenStatic,
		lexer.TokenExtern, lexer.TokenAuto, lexer.TokenRegister, lexer.TokenConst, lexer.TokenVolatile,
		lexer.TokenRestrict, lexer.TokenChar, lexer.TokenShort, lexer.TokenLong, lexer.TokenFloat,
		lexer.TokenDouble, lexer.TokenSigned, lexer.TokenUnsigned:
		return KindKeyword
	default:
		return KindOp
	}
}

// assignmentLexerTypes are the lexer token types the simplifier treats as
// assignment operators for the IsAssignmentOp flag (matching spec.md §3).
var assignmentLexerTypes = map[lexer.TokenType]bool{
	lexer.TokenAssign: true, lexer.TokenPlusAssign: true, lexer.TokenMinusAssign: true,
	lexer.TokenStarAssign: true, lexer.TokenSlashAssign: true, lexer.TokenPercentAssign: true,
	lexer.TokenAndAssign: true, lexer.TokenOrAssign: true, lexer.TokenXorAssign: true,
	lexer.TokenShlAssign: true, lexer.TokenShrAssign: true,
}

// FromLexerTokens builds a TokenList from a flat slice of lexer tokens
// (the output of the C lexer/preprocessor pipeline, before pkg/parser ever
// runs), linking every (), {}, [] pair along the way. fileIndex is stamped
// onto every token for later diagnostics (multi-file support is handled
// by the caller assigning distinct indices per translation unit).
func FromLexerTokens(toks []lexer.Token, fileIndex int) *TokenList {
	l := NewTokenList()
	var parenStack, braceStack, bracketStack []TokenID

	for _, tok := range toks {
		if tok.Type == lexer.TokenEOF {
			continue
		}
		kind := kindFromLexer(tok.Type)
		id := l.PushBack(tok.Literal, kind)
		t := l.Get(id)
		t.FileIndex = fileIndex
		t.Linenr = tok.Line
		t.IsName = kind == KindName || kind == KindKeyword
		t.IsNumber = kind == KindNumber
		t.IsAssignmentOp = assignmentLexerTypes[tok.Type]
		t.IsConstOp = tok.Type == lexer.TokenConst

		switch tok.Type {
		case lexer.TokenUnsigned:
			t.IsUnsigned = true
		case lexer.TokenSigned:
			t.IsSigned = true
		case lexer.TokenLong:
			t.IsLong = true
		case lexer.TokenLParen:
			parenStack = append(parenStack, id)
		case lexer.TokenRParen:
			if n := len(parenStack); n > 0 {
				l.Link(parenStack[n-1], id)
				parenStack = parenStack[:n-1]
			}
		case lexer.TokenLBrace:
			braceStack = append(braceStack, id)
		case lexer.TokenRBrace:
			if n := len(braceStack); n > 0 {
				l.Link(braceStack[n-1], id)
				braceStack = braceStack[:n-1]
			}
		case lexer.TokenLBracket:
			bracketStack = append(bracketStack, id)
		case lexer.TokenRBracket:
			if n := len(bracketStack); n > 0 {
				l.Link(bracketStack[n-1], id)
				bracketStack = bracketStack[:n-1]
			}
		}
	}
	return l
}
