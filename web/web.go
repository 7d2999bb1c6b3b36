// Package web holds the embedded client page served at the root route.
package web

import _ "embed"

//go:embed index.html
var IndexHTML []byte
