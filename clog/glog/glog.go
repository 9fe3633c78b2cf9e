// Package glog registers github.com/golang/glog as the clog backend.
package glog

import (
	"flag"
	"fmt"
	"strconv"

	"github.com/cayleygraph/traverse/clog"
	"github.com/golang/glog"
)

func init() {
	clog.SetLogger(Logger{})
}

var _ clog.Verbosity = Logger{}

type Logger struct{}

func (Logger) Infof(format string, args ...interface{}) {
	glog.InfoDepth(3, fmt.Sprintf(format, args...))
}
func (Logger) Warningf(format string, args ...interface{}) {
	glog.WarningDepth(3, fmt.Sprintf(format, args...))
}
func (Logger) Errorf(format string, args ...interface{}) {
	glog.ErrorDepth(3, fmt.Sprintf(format, args...))
}
func (Logger) Fatalf(format string, args ...interface{}) {
	glog.FatalDepth(3, fmt.Sprintf(format, args...))
}

func (Logger) V(level int) bool {
	return bool(glog.V(glog.Level(level)))
}

// SetV changes glog verbosity through its "v" command line flag.
func (Logger) SetV(v int) {
	if err := flag.Set("v", strconv.Itoa(v)); err != nil {
		glog.Warningf("cannot change log level; run command with '-v %d' flag", v)
	}
}
