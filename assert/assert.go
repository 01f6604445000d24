package assert

import "github.com/oomph-ac/pmove/oerror"

// IsTrue panics with an oerror.Error if ok is false. It guards programmer
// invariants, never input validation.
func IsTrue(ok bool, message string, args ...any) {
	if !ok {
		panic(oerror.New(message, args...))
	}
}
