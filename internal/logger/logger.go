// Package logger provides the controller-facing logging interface used
// throughout finitd. It wraps logrus the way enkit's machine.Machine and
// mserver types thread a logger.Logger field through their constructors,
// so call sites depend on an interface rather than on logrus directly.
package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Logger is the minimal surface finitd's commands need.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type logrusLogger struct {
	info  *logrus.Entry
	error *logrus.Entry
}

func newEntry(out io.Writer, progname, configPath string) *logrus.Entry {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l.WithField("prog", progname).WithField("config", configPath)
}

// New returns a Logger that writes every level to out, tagged with the
// given program name and config path. Used by the CLI dispatcher, where
// diagnostics and errors share one stream (os.Stderr).
func New(out io.Writer, progname, configPath string) Logger {
	entry := newEntry(out, progname, configPath)
	return &logrusLogger{info: entry, error: entry}
}

// NewSplit is like New, but routes Errorf to a distinct writer. The
// watcher uses this to keep its own diagnostics on two independent
// syslog priorities (LOG_INFO/LOG_ERR), mirroring commands.py's
// sys.stdout/sys.stderr replacement with two separate SyslogFile
// instances before the fork in start.run().
func NewSplit(out, errOut io.Writer, progname, configPath string) Logger {
	return &logrusLogger{
		info:  newEntry(out, progname, configPath),
		error: newEntry(errOut, progname, configPath),
	}
}

func (l *logrusLogger) Infof(format string, args ...interface{})  { l.info.Infof(format, args...) }
func (l *logrusLogger) Warnf(format string, args ...interface{})  { l.info.Warnf(format, args...) }
func (l *logrusLogger) Errorf(format string, args ...interface{}) { l.error.Errorf(format, args...) }

// Nop returns a Logger that discards everything, useful in tests.
func Nop() Logger {
	return New(io.Discard, "finitd", "")
}
