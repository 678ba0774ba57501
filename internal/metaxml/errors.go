package metaxml

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/metaws/metaws/pkg/metaws"
)

// ValidationError represents a well-formedness error with location and a hint.
type ValidationError struct {
	FilePath string // Path to the file with the error
	Line     int    // Line number (0 if unknown)
	Column   int    // Column number (0 if unknown)
	Message  string // Primary error message
	Hint     string // Actionable suggestion for fixing

	Severity Severity          // Empty means SeverityError
	Fix      QuickFix          // Editor action that repairs the issue, if any
	FixData  map[string]string // Arguments for Fix, e.g. the tag to close
	Context  string            // Trimmed source line, clipped to 80 bytes
}

// IsWarning reports whether the issue leaves the document well-formed.
func (e *ValidationError) IsWarning() bool { return e.Severity == SeverityWarning }

// Error implements the error interface with rich formatting.
func (e *ValidationError) Error() string {
	var location string
	if e.Line > 0 {
		if e.Column > 0 {
			location = fmt.Sprintf("%s (line %d, col %d)", e.FilePath, e.Line, e.Column)
		} else {
			location = fmt.Sprintf("%s (line %d)", e.FilePath, e.Line)
		}
	} else {
		location = e.FilePath
	}

	kind := "error"
	if e.IsWarning() {
		kind = "warning"
	}
	msg := fmt.Sprintf("xml %s in %s: %s", kind, location, e.Message)

	if e.Hint != "" {
		msg += "\n\nHint: " + e.Hint
	}

	return msg
}

// Unwrap lets errors.Is match metaws.ErrInvalidXML.
func (e *ValidationError) Unwrap() error { return metaws.ErrInvalidXML }

// wrapXMLError converts xml package errors to ValidationError.
func wrapXMLError(err error, filePath string, line, column int) *ValidationError {
	if syntaxErr, ok := err.(*xml.SyntaxError); ok {
		return &ValidationError{
			FilePath: filePath,
			Line:     int(syntaxErr.Line),
			Column:   column,
			Message:  syntaxErr.Msg,
			Hint:     hintFor(syntaxErr.Msg),
			Severity: SeverityError,
			Fix:      fixFor(syntaxErr.Msg),
		}
	}

	return &ValidationError{
		FilePath: filePath,
		Line:     line,
		Column:   column,
		Message:  err.Error(),
		Severity: SeverityError,
	}
}

func fixFor(msg string) QuickFix {
	switch {
	case strings.Contains(msg, "closed by"):
		return FixClosingTag
	case strings.Contains(msg, "entity"):
		return FixEscapeAmpersand
	case strings.Contains(msg, "attribute value"):
		return FixQuoteAttribute
	case strings.Contains(msg, "comment"):
		return FixCloseComment
	case strings.Contains(msg, "unexpected end element"):
		return FixRemoveStrayText
	}
	return ""
}

func hintForFix(fix QuickFix) string {
	switch fix {
	case FixCloseComment:
		return "Close every comment with -->."
	case FixEscapeAmpersand:
		return "Escape a literal '&' as &amp;."
	case FixQuoteAttribute:
		return "Quote every attribute value, e.g. value=\"1.0\"."
	case FixCloseTag:
		return "Add the closing tag before the end of its parent."
	case FixClosingTag:
		return "Closing tags must match the most recently opened element."
	case FixRemoveStrayText:
		return "Remove the text or move it inside an element."
	case FixRemoveDuplicateAttr:
		return "Keep one value per attribute name."
	}
	return ""
}

func hintFor(msg string) string {
	switch {
	case strings.Contains(msg, "closed by"):
		return "Closing tags must match the most recently opened element. Fix or reorder the closing tag."
	case strings.Contains(msg, "entity"):
		return "Escape a literal '&' as &amp; (and '<' as &lt;)."
	case strings.Contains(msg, "attribute value"):
		return "Quote every attribute value, e.g. value=\"1.0\"."
	case strings.Contains(msg, "comment"):
		return "Close every comment with -->."
	case strings.Contains(msg, "unexpected end element"):
		return "Remove the closing tag or add the matching opening tag."
	default:
		return "Check that all XML tags are properly closed and attributes are quoted."
	}
}
