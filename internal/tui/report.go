package tui

import (
	"fmt"
	"strings"

	"github.com/metaws/metaws/internal/metaxml"
)

// RenderValidation formats validation reports, one line per file plus
// indented details for every issue, followed by a summary line.
func RenderValidation(reports []metaxml.FileReport) string {
	var b strings.Builder

	for _, r := range reports {
		if r.Valid() {
			fmt.Fprintf(&b, "%s %s\n", SuccessStyle.Render(SymbolCheck), r.Path)
		} else {
			fmt.Fprintf(&b, "%s %s\n", ErrorStyle.Render(SymbolCross), PathStyle.Render(r.Path))
		}
		for _, issue := range r.AllIssues() {
			renderIssue(&b, issue)
		}
	}

	invalid := metaxml.CountInvalid(reports)
	summary := fmt.Sprintf("%d file(s) checked, %d invalid", len(reports), invalid)
	if invalid > 0 {
		b.WriteString(WarningStyle.Render(summary))
	} else {
		b.WriteString(SuccessStyle.Render(summary))
	}
	b.WriteString("\n")

	return b.String()
}

func renderIssue(b *strings.Builder, issue *metaxml.ValidationError) {
	location := ""
	if issue.Line > 0 {
		location = fmt.Sprintf("line %d: ", issue.Line)
	}
	message := location + issue.Message
	if issue.IsWarning() {
		message = WarningStyle.Render("warning: ") + message
	}
	fmt.Fprintf(b, "    %s\n", message)
	if issue.Hint != "" {
		fmt.Fprintf(b, "    %s\n", HintStyle.Render(SymbolArrowRight+" "+issue.Hint))
	}
}
