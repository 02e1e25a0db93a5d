package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

type styles struct {
	err     lipgloss.Style
	detail  lipgloss.Style
	success lipgloss.Style
	fail    lipgloss.Style
}

// newStyles binds the styles to w so colour is dropped when w is not a
// terminal.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		err:     r.NewStyle().Foreground(lipgloss.Color("#FF4C4C")).Bold(true),
		detail:  r.NewStyle().Faint(true),
		success: r.NewStyle().Foreground(lipgloss.Color("#00FA9A")),
		fail:    r.NewStyle().Foreground(lipgloss.Color("#FF4C4C")),
	}
}

// printError writes the first line of err in red and any captured tool
// output below it.
func printError(w io.Writer, err error) {
	st := newStyles(w)
	head, rest, _ := strings.Cut(err.Error(), "\n")
	fmt.Fprintln(w, st.err.Render("An error occurred: "+head))
	if rest = strings.TrimSpace(rest); rest != "" {
		for _, line := range strings.Split(rest, "\n") {
			fmt.Fprintln(w, st.detail.Render(line))
		}
	}
}

func successLine(w io.Writer, msg string) string {
	return newStyles(w).success.Render(msg)
}

// statusLine renders a doctor check result.
func statusLine(w io.Writer, ok bool, msg string) string {
	st := newStyles(w)
	if ok {
		return "  " + st.success.Render("[ OK ]") + " " + msg
	}
	return "  " + st.fail.Render("[FAIL]") + " " + msg
}

func countLine(noun string, n int) string {
	if n != 1 {
		noun += "s"
	}
	return printer.Sprintf("%d %s:", n, noun)
}
