// Package monitoring carries run-level diagnostics: the replaceable package
// logger and the phase timers behind the end-of-run summary.
package monitoring

import "log"

// Logf prints run diagnostics. It defaults to log.Printf; SetLogger
// redirects or mutes it.
var Logf func(format string, v ...any) = log.Printf

// SetLogger replaces Logf. A nil f installs a no-op logger.
func SetLogger(f func(format string, v ...any)) {
	if f == nil {
		Logf = func(string, ...any) {}
		return
	}
	Logf = f
}
