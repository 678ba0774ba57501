package metaxml

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Severity ranks an issue. Only errors make a file invalid.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// QuickFix names the editor action that repairs an issue.
type QuickFix string

const (
	FixCloseComment        QuickFix = "close-comment"
	FixEscapeAmpersand     QuickFix = "escape-ampersand"
	FixQuoteAttribute      QuickFix = "quote-attribute"
	FixCloseTag            QuickFix = "close-tag"
	FixClosingTag          QuickFix = "fix-closing-tag"
	FixRemoveStrayText     QuickFix = "remove-stray-text"
	FixRemoveDuplicateAttr QuickFix = "remove-duplicate-attr"
)

const contextWidth = 80

var (
	tagPattern        = regexp.MustCompile(`<(/?)([a-zA-Z_][\w:.-]*)[^>]*?(/?)>`)
	emptyTagPattern   = regexp.MustCompile(`<\s+>|</\s*>`)
	attrTagPattern    = regexp.MustCompile(`<[a-zA-Z_][\w:.-]*\s+([^>]+?)>`)
	attrNamePattern   = regexp.MustCompile(`([a-zA-Z_][\w:.-]*)\s*=`)
	unquotedPattern   = regexp.MustCompile(`\s([a-zA-Z_][\w:.-]*)=([^"'\s/>][^\s/>]*)`)
	entityPattern     = regexp.MustCompile(`^&(amp|lt|gt|quot|apos|#[0-9]+|#x[0-9a-fA-F]+);`)
	controlCharacters = regexp.MustCompile("[\x00-\x08\x0B\x0C\x0E-\x1F]")
)

type lintTag struct {
	name string
	line int
}

// Lint scans content line by line and reports every suspicious construct it
// recognises, recovering after each one. It is a heuristic companion to
// Validate: it keeps going past the first problem but may flag constructs
// that are legal XML, such as a '>' in text.
func Lint(content, path string) []*ValidationError {
	content = strings.TrimPrefix(content, "\uFEFF")
	lines := strings.Split(content, "\n")

	var (
		issues []*ValidationError
		stack  []lintTag
	)
	add := func(line int, sev Severity, fix QuickFix, data map[string]string, msg string) {
		issues = append(issues, &ValidationError{
			FilePath: path,
			Line:     line,
			Message:  msg,
			Hint:     hintForFix(fix),
			Severity: sev,
			Fix:      fix,
			FixData:  data,
			Context:  clip(strings.TrimSpace(lines[line-1])),
		})
	}

	for i := 0; i < len(lines); i++ {
		lineNum := i + 1
		line := strings.TrimSuffix(lines[i], "\r")
		trimmed := strings.TrimSpace(line)

		if trimmed == "" || strings.HasPrefix(trimmed, "<?xml") {
			continue
		}

		if strings.HasPrefix(trimmed, "<!--") {
			if !strings.Contains(trimmed, "-->") {
				end := -1
				for j := i + 1; j < len(lines); j++ {
					if strings.Contains(lines[j], "-->") {
						end = j
						break
					}
				}
				if end < 0 {
					add(lineNum, SeverityError, FixCloseComment, nil, "unclosed comment block")
					break
				}
				i = end
			}
			continue
		}

		if !strings.HasPrefix(trimmed, "<") && !strings.HasSuffix(trimmed, ">") {
			if len(stack) == 0 {
				add(lineNum, SeverityError, FixRemoveStrayText, nil, "stray text outside of any XML element")
			}
			continue
		}

		if emptyTagPattern.MatchString(line) {
			add(lineNum, SeverityError, "", nil, "empty or whitespace-only tag name")
			continue
		}

		for _, m := range tagPattern.FindAllStringSubmatch(line, -1) {
			closing, name, selfClosing := m[1] == "/", m[2], m[3] == "/"
			switch {
			case closing && len(stack) == 0:
				add(lineNum, SeverityError, FixRemoveStrayText, map[string]string{"tag": name},
					fmt.Sprintf("closing tag </%s> without matching opening tag", name))
			case closing && stack[len(stack)-1].name != name:
				top := stack[len(stack)-1]
				add(lineNum, SeverityError, FixClosingTag, map[string]string{"expected": top.name, "found": name},
					fmt.Sprintf("mismatched closing tag: expected </%s> (opened at line %d) but found </%s>", top.name, top.line, name))
				stack = recoverStack(stack, name)
			case closing:
				stack = stack[:len(stack)-1]
			case selfClosing:
			default:
				stack = append(stack, lintTag{name: name, line: lineNum})
			}
		}

		for _, m := range attrTagPattern.FindAllStringSubmatch(line, -1) {
			seen := map[string]bool{}
			for _, a := range attrNamePattern.FindAllStringSubmatch(m[1], -1) {
				if seen[a[1]] {
					add(lineNum, SeverityWarning, FixRemoveDuplicateAttr, map[string]string{"attr": a[1]},
						fmt.Sprintf("duplicate attribute %q on element", a[1]))
				}
				seen[a[1]] = true
			}
		}

		if !strings.Contains(line, "<?") {
			for _, m := range unquotedPattern.FindAllStringSubmatch(line, -1) {
				add(lineNum, SeverityWarning, FixQuoteAttribute, map[string]string{"attr": m[1], "value": m[2]},
					fmt.Sprintf("unquoted attribute value for %q: %s", m[1], m[2]))
			}
		}

		if controlCharacters.MatchString(line) {
			add(lineNum, SeverityError, "", nil, "line contains invalid control characters")
		}

		if hasBareAmpersand(line) {
			add(lineNum, SeverityWarning, FixEscapeAmpersand, nil, "unescaped '&' character (should be &amp;)")
		}
	}

	for _, open := range stack {
		add(open.line, SeverityError, FixCloseTag, map[string]string{"tag": open.name},
			fmt.Sprintf("unclosed tag <%s>", open.name))
	}

	sort.SliceStable(issues, func(a, b int) bool { return issues[a].Line < issues[b].Line })
	return issues
}

// recoverStack pops back to the nearest open tag called name, or drops the
// innermost tag when none matches.
func recoverStack(stack []lintTag, name string) []lintTag {
	for i := len(stack) - 2; i >= 0; i-- {
		if stack[i].name == name {
			return stack[:i]
		}
	}
	return stack[:len(stack)-1]
}

func hasBareAmpersand(line string) bool {
	for i := strings.IndexByte(line, '&'); i >= 0; {
		if !entityPattern.MatchString(line[i:]) {
			return true
		}
		next := strings.IndexByte(line[i+1:], '&')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return false
}

func clip(s string) string {
	if len(s) <= contextWidth {
		return s
	}
	return s[:contextWidth]
}
