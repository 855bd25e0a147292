//go:build !windows

package procutil

import (
	"log/syslog"
	"strings"
)

// SyslogSink is a line-oriented io.Writer usable as the watcher's stdout or
// stderr, per §4.1. Each non-empty, stripped line becomes one syslog
// record at the sink's configured priority.
//
// Syslog delivery is an OS-level protocol with no third-party client in
// the retrieval pack; log/syslog is the justified stdlib exception (see
// SPEC_FULL.md §10).
type SyslogSink struct {
	writer *syslog.Writer
	record func(string) error
}

// NewSyslogSink opens a connection to the system logger tagged with the
// given identification string (program name + absolute config path, per
// §4.7 and §6), at the given priority.
func NewSyslogSink(tag string, priority syslog.Priority) (*SyslogSink, error) {
	w, err := syslog.New(priority, tag)
	if err != nil {
		return nil, err
	}
	sink := &SyslogSink{writer: w}
	if priority == syslog.LOG_ERR {
		sink.record = w.Err
	} else {
		sink.record = w.Info
	}
	return sink, nil
}

// NewInfoSink opens a sink at INFO priority, for the watcher's stdout.
func NewInfoSink(tag string) (*SyslogSink, error) {
	return NewSyslogSink(tag, syslog.LOG_INFO)
}

// NewErrSink opens a sink at ERR priority, for the watcher's stderr.
func NewErrSink(tag string) (*SyslogSink, error) {
	return NewSyslogSink(tag, syslog.LOG_ERR)
}

// Write implements io.Writer. p may contain multiple newline-terminated
// lines; each is stripped and, if non-empty, forwarded as its own syslog
// record.
func (s *SyslogSink) Write(p []byte) (int, error) {
	for _, line := range strings.Split(string(p), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := s.record(line); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// Close releases the underlying syslog connection.
func (s *SyslogSink) Close() error {
	return s.writer.Close()
}
