package report

import "fmt"

// LocalError is a resolution error that occurs in a context in which the
// file is known by the error handler and thus doesn't need to be passed
// along with the error.
type LocalError struct {
	// The error message.
	Message string

	// The span over which the error occurs.
	Span *TextSpan
}

func (le *LocalError) Error() string {
	return le.Message
}

// Raise creates a new local resolution error.
func Raise(span *TextSpan, msg string, args ...interface{}) *LocalError {
	return &LocalError{Message: fmt.Sprintf(msg, args...), Span: span}
}

// -----------------------------------------------------------------------------

// StructuralError is a tree-contract violation: the resolver encountered a
// node shape it does not recognize for a given kind.  It indicates a bug in
// the producing parser rather than erroneous input, and it aborts resolution
// of the containing unit only.
type StructuralError struct {
	LocalError
}

// RaiseStructural creates a new structural error.
func RaiseStructural(span *TextSpan, msg string, args ...interface{}) *StructuralError {
	return &StructuralError{LocalError{Message: fmt.Sprintf(msg, args...), Span: span}}
}

// -----------------------------------------------------------------------------

// CatchErrors catches any errors thrown by a `panic` during a stage of unit
// analysis.  In effect, this handler determines when any errors
// "unrecoverable" within a given subsection of the resolver should stop
// bubbling.  It recovers both local and structural errors, so it belongs at
// a unit boundary; handlers inside a unit should re-panic structural errors
// themselves.
// NB: This function must ALWAYS be deferred.
func CatchErrors(absPath, reprPath string) {
	if x := recover(); x != nil {
		switch err := x.(type) {
		case *StructuralError:
			ReportResolveError(absPath, reprPath, err.Span, err.Message)
		case *LocalError:
			ReportResolveError(absPath, reprPath, err.Span, err.Message)
		case error:
			ReportStdError(reprPath, err)
		default:
			ReportFatal("%s", x)
		}
	}
}
