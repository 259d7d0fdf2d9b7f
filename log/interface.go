package log

import (
	"github.com/sirupsen/logrus"
)

// Logger is the logger every component receives at construction.
type Logger = logrus.Logger

// Entry is a logger with attached fields.
type Entry = logrus.Entry

// Fields is the structured key/value set attached to a log line.
type Fields = logrus.Fields

// TerminalStringer is implemented by values that have a compact form for
// console output, such as hashes.
type TerminalStringer interface {
	TerminalString() string
}
