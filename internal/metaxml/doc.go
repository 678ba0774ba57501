// Package metaxml checks that workspace files are well-formed XML.
//
// Validate is the structural verdict: the document must tokenize cleanly, have
// exactly one root element, and carry no text outside it. It stops at the
// first failure, reported as *ValidationError with the line (and column when
// known) and a hint.
//
// Lint is a line-oriented pass that keeps going after each problem and tags
// every issue with a Severity and, where an editor can repair it, a QuickFix
// id such as "close-tag" or "escape-ampersand". Inspect combines the two into
// a FileReport: validity comes from Validate, the issue list from both.
package metaxml
