// Package testutil holds helpers shared by the package tests.
package testutil

import (
	"testing"

	"go.uber.org/goleak"
)

// IgnoreGlog returns goleak options for the goroutine glog starts in its
// init. Every package that logs through glog carries it.
func IgnoreGlog() []goleak.Option {
	return []goleak.Option{
		goleak.IgnoreAnyFunction("github.com/golang/glog.(*loggingT).flushDaemon"),
	}
}

// VerifyTestMain runs the package tests and fails them if any goroutine
// besides glog's is still alive afterwards.
func VerifyTestMain(m *testing.M, opts ...goleak.Option) {
	goleak.VerifyTestMain(m, append(IgnoreGlog(), opts...)...)
}

// VerifyNoLeaks should be deferred at the start of tests that spawn goroutines.
func VerifyNoLeaks(t *testing.T, opts ...goleak.Option) {
	t.Helper()
	goleak.VerifyNone(t, append(IgnoreGlog(), opts...)...)
}
