// Package monitoring holds the diagnostic logger shared by the splat
// pipeline packages.
package monitoring

import "log"

// Logf is the package-level diagnostic logger used by the catalog and the
// report writer. It defaults to log.Printf; tools may redirect or mute it with
// SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces Logf. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Quiet mutes Logf and returns a function restoring the previous logger.
func Quiet() (restore func()) {
	prev := Logf
	SetLogger(nil)
	return func() { Logf = prev }
}
