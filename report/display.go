package report

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = SuccessColorFG
	InfoStyleBG    = SuccessStyleBG
)

// labelColor maps a message label to the foreground color it is printed in.
func labelColor(label string) pterm.Color {
	if label == "warning" {
		return WarnColorFG
	}

	return ErrorColorFG
}

// displayICE displays an internal analyzer error message.
func displayICE(message string) {
	ErrorStyleBG.Print("internal error")
	fmt.Printf(" %s\n", message)
	fmt.Print("This error was not supposed to happen: please open an issue\n\n")
}

// displayFatal displays a fatal error message.
func displayFatal(message string) {
	ErrorStyleBG.Print("fatal error")
	fmt.Printf(" %s\n\n", message)
}

// displayResolveMessage displays a resolution error or warning.  The label
// is the string to prefix the message with: eg. if we want to display an
// error, the label is "error".
func displayResolveMessage(label, absPath, reprPath string, span *TextSpan, message string) {
	if span == nil {
		fmt.Printf("%s: ", reprPath)
		labelColor(label).Print(label)
		fmt.Printf(": %s\n\n", message)
		return
	}

	fmt.Printf("%s:%d:%d: ", reprPath, span.StartLine+1, span.StartCol+1)
	labelColor(label).Print(label)
	fmt.Printf(": %s\n\n", message)
	displaySourceText(absPath, span)
}

// displayUnitMessage displays an error or warning concerning a whole unit.
func displayUnitMessage(label, unitName, message string) {
	fmt.Printf("unit %s: ", unitName)
	labelColor(label).Print(label)
	fmt.Printf(": %s\n\n", message)
}

// displayStdError displays a standard Go error.
func displayStdError(reprPath string, err error) {
	fmt.Printf("%s: ", reprPath)
	ErrorColorFG.Print("error")
	fmt.Printf(": %s\n\n", err)
}

// displaySummary displays the closing tally of a full analysis run.
func displaySummary(success bool, errorCount, warningCount int) {
	fmt.Print("\n")

	if success {
		SuccessColorFG.Print("All done! ")
	} else {
		ErrorColorFG.Print("Oh no! ")
	}

	fmt.Print("(")

	switch errorCount {
	case 0:
		SuccessColorFG.Print(0)
		fmt.Print(" errors, ")
	case 1:
		ErrorColorFG.Print(1)
		fmt.Print(" error, ")
	default:
		ErrorColorFG.Print(errorCount)
		fmt.Print(" errors, ")
	}

	switch warningCount {
	case 0:
		SuccessColorFG.Print(0)
		fmt.Println(" warnings)")
	case 1:
		WarnColorFG.Print(1)
		fmt.Println(" warning)")
	default:
		WarnColorFG.Print(warningCount)
		fmt.Println(" warnings)")
	}
}

// -----------------------------------------------------------------------------

// displaySourceText displays a segment of source text defined by a text
// span.  Units are not required to exist on disk (tests and embedders may
// build trees in memory), so an unreadable file simply suppresses the
// excerpt.
func displaySourceText(absPath string, span *TextSpan) {
	file, err := os.Open(absPath)
	if err != nil {
		return
	}
	defer file.Close()

	// Collect all the source lines containing the given source text.
	var lines []string
	sc := bufio.NewScanner(file)
	for ln := 0; sc.Scan(); ln++ {
		if span.StartLine <= ln && ln <= span.EndLine {
			lines = append(lines, strings.ReplaceAll(sc.Text(), "\t", "    "))
		}
	}

	if sc.Err() != nil || len(lines) == 0 {
		return
	}

	// Calculate the minimum line indentation.
	minIndent := math.MaxInt
	for _, line := range lines {
		lineIndent := 0
		for _, c := range line {
			if c == ' ' {
				lineIndent++
			} else {
				break
			}
		}

		if lineIndent < minIndent {
			minIndent = lineIndent
		}
	}

	// Calculate the maximum line number length.
	maxLineNumLen := len(strconv.Itoa(span.EndLine + 1))

	// Generate the format string for line numbers.
	lineNumFmtStr := "%-" + strconv.Itoa(maxLineNumLen) + "v | "

	for i, line := range lines {
		// Print the line number and separator bar.
		InfoColorFG.Printf(lineNumFmtStr, i+span.StartLine+1)

		// Print the source text with the leading indent trimmed off.
		fmt.Println(line[minIndent:])

		// Print the line and bar used for the line for caret underlining.
		fmt.Print(strings.Repeat(" ", maxLineNumLen), " | ")

		// The number of spaces before caret underlining begins.  For any
		// line which is not the starting line, this is always zero since the
		// underlining is continuing from the previous line.
		var caretPrefixCount int
		if i == 0 {
			caretPrefixCount = span.StartCol - minIndent
		}

		// The number of characters at the end of the source line that should
		// not be underlined.  For all lines except the last, this is zero,
		// since underlining spans onto the next line.
		var caretSuffixCount int
		if i == len(lines)-1 {
			caretSuffixCount = len(line) - span.EndCol
		}

		fmt.Print(strings.Repeat(" ", caretPrefixCount))

		// The carets for this line cover whatever remains after the skipped
		// prefix and suffix, with the trimmed indent cancelled back out of
		// the prefix.
		caretCount := len(line) - caretSuffixCount - caretPrefixCount - minIndent
		if caretCount < 1 {
			caretCount = 1
		}
		ErrorColorFG.Println(strings.Repeat("^", caretCount))
	}

	fmt.Println()
}
