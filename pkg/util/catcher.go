package util

import (
	"fmt"

	"github.com/pkg/errors"
)

// CatchErrs runs fn and turns a panic raised inside it into a returned error.
// The HCI stack panics on some transport failures instead of returning them.
func CatchErrs(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = errors.Wrap(e, "recovered panic")
				return
			}
			err = errors.New(fmt.Sprint("recovered panic: ", r))
		}
	}()
	return fn()
}
