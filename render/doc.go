// Package render turns provider output into what a surface displays.
//
// Providers are asked for HTML (FormatHTML) or for markdown
// (FormatMarkdown). The choice is made once per deployment; Render then
// either passes HTML through or converts markdown to HTML, and PlainText
// flattens either into terminal-friendly text.
package render
