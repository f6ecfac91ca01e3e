// Package logutil holds the loggers shared by hxview packages.
package logutil

import (
	"io"
	"log"
)

// Discard is a Logger that ignores all loggings.
var Discard = log.New(io.Discard, "", 0)

// New returns a Logger writing to w with the given prefix. A nil writer
// yields Discard.
func New(w io.Writer, prefix string) *log.Logger {
	if w == nil {
		return Discard
	}
	return log.New(w, prefix, log.LstdFlags|log.Lmsgprefix)
}
