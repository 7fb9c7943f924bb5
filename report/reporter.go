package report

import (
	"fmt"
	"os"
	"sync"
)

// Reporter is responsible for reporting errors, warnings, and other kinds of
// messages to the user during analysis.  The reporter respects the set log
// level and is synchronized: its methods can be safely called from multiple
// goroutines.
type Reporter struct {
	// The mutex used to synchronize different report method calls.
	m *sync.Mutex

	// The selected log level of the reporter.  This must be one of the
	// enumerated log levels below.
	logLevel int

	// The running counts of errors and warnings reported so far.  These are
	// updated regardless of log level so callers can test for failure even
	// when display is suppressed.
	errorCount   int
	warningCount int
}

// Enumeration of the different possible log levels.
const (
	LogLevelSilent  = iota // Displays no output.
	LogLevelError          // Displays only errors to the user.
	LogLevelWarn           // Displays only warnings and errors to the user.
	LogLevelVerbose        // Displays all analysis messages to the user (default).
)

// rep is the global reporter instance.  It starts silent so the library can
// be embedded without any explicit setup.
var rep = &Reporter{m: &sync.Mutex{}, logLevel: LogLevelSilent}

// InitReporter initializes the global reporter to the given log level.
func InitReporter(logLevel int) {
	rep = &Reporter{m: &sync.Mutex{}, logLevel: logLevel}
}

// -----------------------------------------------------------------------------

// ReportResolveError reports a resolution error: ie. erroneous input code.
// The absPath is the absolute path to the erroneous source file.  The
// reprPath is the representative path to the source file: the one displayed
// to the user.  The span may be nil in which case no position information is
// printed.
func ReportResolveError(absPath, reprPath string, span *TextSpan, message string, args ...interface{}) {
	rep.m.Lock()
	defer rep.m.Unlock()

	rep.errorCount++

	if rep.logLevel > LogLevelSilent {
		displayResolveMessage("error", absPath, reprPath, span, fmt.Sprintf(message, args...))
	}
}

// ReportResolveWarning reports a resolution warning.  The arguments are of
// the same form as those to ReportResolveError.
func ReportResolveWarning(absPath, reprPath string, span *TextSpan, message string, args ...interface{}) {
	rep.m.Lock()
	defer rep.m.Unlock()

	rep.warningCount++

	if rep.logLevel > LogLevelWarn {
		displayResolveMessage("warning", absPath, reprPath, span, fmt.Sprintf(message, args...))
	}
}

// ReportUnitError reports an error loading or populating a unit that is not
// tied to a particular source position.
func ReportUnitError(unitName string, message string, args ...interface{}) {
	rep.m.Lock()
	defer rep.m.Unlock()

	rep.errorCount++

	if rep.logLevel > LogLevelSilent {
		displayUnitMessage("error", unitName, fmt.Sprintf(message, args...))
	}
}

// ReportUnitWarning reports a warning about a unit, such as an import that
// could not be resolved.
func ReportUnitWarning(unitName string, message string, args ...interface{}) {
	rep.m.Lock()
	defer rep.m.Unlock()

	rep.warningCount++

	if rep.logLevel > LogLevelWarn {
		displayUnitMessage("warning", unitName, fmt.Sprintf(message, args...))
	}
}

// ReportStdError reports a non-fatal, standard Go error.
func ReportStdError(reprPath string, err error) {
	rep.m.Lock()
	defer rep.m.Unlock()

	rep.errorCount++

	if rep.logLevel > LogLevelError {
		displayStdError(reprPath, err)
	}
}

// ReportICE reports an internal analyzer error.  These are errors that
// specifically result from a bug or unexpected condition occurring within
// the resolver itself: they are not intended to ever happen.  These errors
// are always displayed regardless of log level.
func ReportICE(message string, args ...interface{}) {
	rep.m.Lock()
	defer rep.m.Unlock()

	displayICE(fmt.Sprintf(message, args...))

	os.Exit(-1)
}

// ReportFatal reports a fatal error.  These are errors that should cause all
// analysis to stop immediately.  They are expected errors that generally
// result from invalid configuration: a malformed manifest, unreadable
// source roots, etc.
func ReportFatal(message string, args ...interface{}) {
	if rep.logLevel > LogLevelSilent {
		rep.m.Lock()
		defer rep.m.Unlock()

		displayFatal(fmt.Sprintf(message, args...))
	}

	os.Exit(1)
}

// -----------------------------------------------------------------------------

// AnyErrors returns whether or not any errors were reported.
func AnyErrors() bool {
	rep.m.Lock()
	defer rep.m.Unlock()

	return rep.errorCount > 0
}

// ShouldProceed indicates whether or not there have been any non-fatal
// errors that should cause analysis to stop at the current phase.
func ShouldProceed() bool {
	return !AnyErrors()
}

// ErrorCount returns the number of errors reported so far.
func ErrorCount() int {
	rep.m.Lock()
	defer rep.m.Unlock()

	return rep.errorCount
}

// WarningCount returns the number of warnings reported so far.
func WarningCount() int {
	rep.m.Lock()
	defer rep.m.Unlock()

	return rep.warningCount
}

// DisplaySummary displays the concluding message for a full analysis run:
// a colored tally of errors and warnings.  It only prints at the verbose
// log level.
func DisplaySummary() {
	rep.m.Lock()
	defer rep.m.Unlock()

	if rep.logLevel == LogLevelVerbose {
		displaySummary(rep.errorCount == 0, rep.errorCount, rep.warningCount)
	}
}
