package templates

import "embed"

// EmailFS holds the HTML bodies of outgoing mail.
//
//go:embed email/*.html
var EmailFS embed.FS
