// Package progress defines the callback shape used to surface coarse-grained
// progress from long-running operations to whatever front end is driving them.
package progress

// Func receives progress updates as (percent, message) pairs. A nil Func is
// valid and reports nothing.
type Func func(percent int, message string)

// Report invokes the callback when one is set.
func (f Func) Report(percent int, message string) {
	if f != nil {
		f(percent, message)
	}
}
