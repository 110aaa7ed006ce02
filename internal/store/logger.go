package store

import (
	"k8s.io/klog/v2"
)

// klogLogger adapts Badger's internal logging to klog, so store-level
// messages land in the same lifecycle-scoped log stream as the rest of the
// command instead of Badger's own stderr writer.
type klogLogger struct{}

func (klogLogger) Errorf(format string, args ...interface{})   { klog.Errorf(format, args...) }
func (klogLogger) Warningf(format string, args ...interface{}) { klog.Warningf(format, args...) }
func (klogLogger) Infof(format string, args ...interface{})    { klog.V(2).Infof(format, args...) }
func (klogLogger) Debugf(format string, args ...interface{})   { klog.V(4).Infof(format, args...) }
