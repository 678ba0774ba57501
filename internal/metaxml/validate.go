package metaxml

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/metaws/metaws/pkg/metaws"
)

type openTag struct {
	name string
	line int
}

// Validate checks that content is a well-formed XML document.
// It returns nil or a *ValidationError; path is only used in messages.
// A leading byte order mark is ignored.
func Validate(content, path string) error {
	dec := xml.NewDecoder(strings.NewReader(strings.TrimPrefix(content, "\uFEFF")))

	var stack []openTag
	rootSeen := false

	for {
		tok, err := dec.Token()
		line, column := dec.InputPos()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if len(stack) > 0 && isUnexpectedEOF(err) {
				top := stack[len(stack)-1]
				return &ValidationError{
					FilePath: path,
					Line:     top.line,
					Message:  fmt.Sprintf("unclosed tag <%s>", top.name),
					Hint:     fmt.Sprintf("Add </%s> before the end of the file.", top.name),
					Severity: SeverityError,
					Fix:      FixCloseTag,
					FixData:  map[string]string{"tag": top.name},
				}
			}
			return wrapXMLError(err, path, line, column)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 && rootSeen {
				return &ValidationError{
					FilePath: path,
					Line:     line,
					Column:   column,
					Message:  fmt.Sprintf("multiple root elements: <%s> follows the document root", t.Name.Local),
					Hint:     "A meta file has exactly one top-level element. Wrap the elements or remove the extra one.",
					Severity: SeverityError,
				}
			}
			rootSeen = true
			stack = append(stack, openTag{name: t.Name.Local, line: line})
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 && len(bytes.TrimSpace(t)) > 0 {
				return &ValidationError{
					FilePath: path,
					Line:     line,
					Column:   column,
					Message:  "stray text outside of any XML element",
					Hint:     "Remove the text or move it inside an element.",
					Severity: SeverityError,
					Fix:      FixRemoveStrayText,
				}
			}
		}
	}

	if !rootSeen {
		return &ValidationError{
			FilePath: path,
			Line:     1,
			Message:  "document has no root element",
			Hint:     "A meta file needs one top-level element, e.g. <CVehicleModelInfo__InitDataList>.",
			Severity: SeverityError,
		}
	}

	return nil
}

func isUnexpectedEOF(err error) bool {
	var syntaxErr *xml.SyntaxError
	return errors.As(err, &syntaxErr) && syntaxErr.Msg == "unexpected EOF"
}

// FileReport is the validation outcome of one workspace file.
// Err is the first well-formedness error, nil when the file is valid.
// Issues lists every problem found, ordered by line, including warnings on
// valid files.
type FileReport struct {
	Path   string             `json:"path"`
	Err    *ValidationError   `json:"-"`
	Issues []*ValidationError `json:"-"`
}

// Valid reports whether the file is well-formed.
func (r FileReport) Valid() bool { return r.Err == nil }

// AllIssues returns Issues, or Err alone for reports built without a lint pass.
func (r FileReport) AllIssues() []*ValidationError {
	if len(r.Issues) == 0 && r.Err != nil {
		return []*ValidationError{r.Err}
	}
	return r.Issues
}

type issueJSON struct {
	Line     int               `json:"line,omitempty"`
	Column   int               `json:"column,omitempty"`
	Severity Severity          `json:"severity,omitempty"`
	Message  string            `json:"message"`
	Hint     string            `json:"hint,omitempty"`
	Context  string            `json:"context,omitempty"`
	Fix      QuickFix          `json:"fixId,omitempty"`
	FixData  map[string]string `json:"fixData,omitempty"`
}

func toIssueJSON(e *ValidationError) *issueJSON {
	return &issueJSON{
		Line:     e.Line,
		Column:   e.Column,
		Severity: e.Severity,
		Message:  e.Message,
		Hint:     e.Hint,
		Context:  e.Context,
		Fix:      e.Fix,
		FixData:  e.FixData,
	}
}

// MarshalJSON renders the report with its error details flattened.
func (r FileReport) MarshalJSON() ([]byte, error) {
	out := struct {
		Path   string       `json:"path"`
		Valid  bool         `json:"valid"`
		Issue  *issueJSON   `json:"issue,omitempty"`
		Issues []*issueJSON `json:"issues,omitempty"`
	}{Path: r.Path, Valid: r.Valid()}
	if r.Err != nil {
		out.Issue = toIssueJSON(r.Err)
	}
	for _, e := range r.Issues {
		out.Issues = append(out.Issues, toIssueJSON(e))
	}
	return json.Marshal(out)
}

// Inspect validates content and collects every issue Lint finds alongside
// the well-formedness verdict. Lint errors are only kept when the document is
// malformed; on a well-formed document they are false positives. A lint
// error on the same line as the well-formedness error is dropped.
func Inspect(content, path string) FileReport {
	report := FileReport{Path: path}
	if err := Validate(content, path); err != nil {
		report.Err = err.(*ValidationError)
		report.Issues = append(report.Issues, report.Err)
	}

	for _, issue := range Lint(content, path) {
		if !issue.IsWarning() && (report.Err == nil || issue.Line == report.Err.Line) {
			continue
		}
		report.Issues = append(report.Issues, issue)
	}

	sort.SliceStable(report.Issues, func(a, b int) bool { return report.Issues[a].Line < report.Issues[b].Line })
	return report
}

// ValidateWorkspace scans root and validates every file it finds, in scan order.
// Scan and read failures abort; malformed files are reported, not returned as errors.
func ValidateWorkspace(scanner metaws.WorkspaceScanner, store metaws.TextStore, root string) ([]FileReport, error) {
	paths, err := scanner.ScanWorkspace(root)
	if err != nil {
		return nil, err
	}

	reports := make([]FileReport, 0, len(paths))
	for _, p := range paths {
		content, err := store.ReadText(p)
		if err != nil {
			return nil, err
		}

		reports = append(reports, Inspect(content, p))
	}

	return reports, nil
}

// CountInvalid returns the number of reports with errors.
func CountInvalid(reports []FileReport) int {
	n := 0
	for _, r := range reports {
		if !r.Valid() {
			n++
		}
	}
	return n
}
