package hxview

import (
	"log"

	"github.com/pthm/hxview/lib/logutil"
)

var logger = logutil.Discard

// SetLogger sets the logger used for errors that cannot be returned to a
// caller, such as failures during disposal. A nil logger restores the
// default, which discards everything.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = logutil.Discard
	}
	logger = l
}
