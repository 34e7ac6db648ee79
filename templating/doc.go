// Package templating renders text templates with
// valyala/fasttemplate. Placeholders use configurable delimiters
// (default "{{" and "}}"); placeholders without a value are left
// in the output unchanged.
package templating
