package tmplsimp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSimplifyFunctionTemplate(t *testing.T) {
	got := simplifyCode(t,
		"template < class T > T f ( T x ) { return x ; } int a = f < int > ( 3 ) ;")

	require.Equal(t,
		"int a = f<int> ( 3 ) ; int f<int> ( int x ) { return x ; }",
		got)
}

func TestSimplifyDefaultArgument(t *testing.T) {
	got := simplifyCode(t,
		"template < class T , class U = int > struct P { } ; P < char > p ;")

	require.Equal(t, "P<char,int> p ; struct P<char,int> { }", got)
}

func TestSimplifyNonTypeArgumentFolds(t *testing.T) {
	got := simplifyCode(t,
		"template < int N > struct A { } ; A < 1 + 2 > a ;")

	require.Contains(t, got, "A<3>")
	require.NotContains(t, got, "1 + 2")
	require.NotContains(t, got, "A<1+2>")
	require.Equal(t, "A<3> a ; struct A<3> { }", got)
}

func TestSimplifyExplicitSpecialization(t *testing.T) {
	got := simplifyCode(t,
		"template < > void g < int > ( ) { } g < int > ( ) ;")

	require.Equal(t, "void g<int> ( ) { } g<int> ( ) ;", got)
}

func TestSimplifyRecursiveTemplate(t *testing.T) {
	got := simplifyCode(t,
		"template < class T > struct S { S < T > * next ; } ; S < int > s ;")

	require.Equal(t, "S<int> s ; struct S<int> { S<int> * next ; }", got)
}

func TestSimplifyConstantFoldScenarios(t *testing.T) {
	require.Equal(t, "a = 7 ;", simplifyCode(t, "a = 1 + 2 * 3 ;"))
	require.Equal(t, "if ( 0 ) ;", simplifyCode(t, "if ( 0 && foo ( ) ) ;"))
}

func TestSimplifyInstantiationUniqueness(t *testing.T) {
	// Two instantiations with equal canonical arguments share one
	// synthesized definition; every call site refers to it.
	got := simplifyCode(t,
		"template < class T > struct A { } ; A < int > a ; A < int > b ;")

	require.Equal(t, 1, strings.Count(got, "struct A<int>"))
	require.Equal(t, "A<int> a ; A<int> b ; struct A<int> { }", got)
}

func TestSimplifyDistinctInstantiations(t *testing.T) {
	got := simplifyCode(t,
		"template < class T > struct A { } ; A < int > a ; A < char > b ;")

	require.Contains(t, got, "struct A<int>")
	require.Contains(t, got, "struct A<char>")
}

func TestSimplifyIdempotent(t *testing.T) {
	first := simplifyCode(t,
		"template < class T > T f ( T x ) { return x ; } int a = f < int > ( 3 ) ;")
	second := simplifyCode(t, first)
	require.Equal(t, first, second)
}

func TestSimplifyCodeWithTemplatesFlag(t *testing.T) {
	l := tokenize("template < class T > struct A { } ; A < int > a ;")
	s := NewSimplifier(l, DefaultSettings(), nil)
	s.Simplify()
	require.True(t, s.CodeWithTemplates)

	l2 := tokenize("int main ( ) { return 0 ; }")
	s2 := NewSimplifier(l2, DefaultSettings(), nil)
	s2.Simplify()
	require.False(t, s2.CodeWithTemplates)
}

func TestSimplifyArgumentCountMismatchSkipsSite(t *testing.T) {
	// A site with the wrong number of arguments is skipped with a debug
	// diagnostic; the declaration survives untouched for it.
	var rec recordingLogger
	l := tokenize("template < class T > struct A { } ; static A < int , char > a ;")
	s := NewSimplifier(l, Settings{DebugWarnings: true, MaxExpansionRecursion: 100}, &rec)
	s.Simplify()

	require.NotEmpty(t, rec.messages)
	require.Contains(t, l.Dump(), "A < int , char >")
}

func TestSimplifyBailOutEmitsDebugMessage(t *testing.T) {
	var rec recordingLogger
	l := tokenize("template < class T > x = 3 { } A < int > a ;")
	s := NewSimplifier(l, Settings{DebugWarnings: true, MaxExpansionRecursion: 100}, &rec)
	s.Simplify()

	found := false
	for _, m := range rec.messages {
		if strings.Contains(m, "bailing out") {
			found = true
		}
	}
	require.True(t, found, "expected a bailing-out debug message, got %v", rec.messages)
}

func TestSimplifyNoGenericSurvivors(t *testing.T) {
	// After the driver runs, no "template <" head whose template was
	// expanded remains.
	got := simplifyCode(t,
		"template < class T > struct A { } ; template < class U > struct B { } ; A < int > a ; B < char > b ;")

	require.NotContains(t, got, "template")
	require.Contains(t, got, "struct A<int>")
	require.Contains(t, got, "struct B<char>")
}

// recordingLogger captures every message for assertions.
type recordingLogger struct {
	messages []string
}

func (r *recordingLogger) ReportErr(severity Severity, id, message string, callstack []*Token) {
	r.messages = append(r.messages, message)
}
