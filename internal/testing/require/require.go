// Package require adapts testify/assert's assertions to TestingT, failing
// the test immediately through Fatal on the first failed assertion. TestingT is this
// module's own minimal logging interface, so test helpers in internal
// packages don't need to import *testing.T directly (avoiding import
// cycles with packages testify itself might otherwise pull in).
package require

import (
	"fmt"

	"github.com/stretchr/testify/assert"
)

// TestingT is the subset of *testing.T these helpers need.
type TestingT interface {
	Fatal(args ...interface{})
}

type tHelper struct {
	t TestingT
}

func (h tHelper) Errorf(format string, args ...interface{}) {
	h.t.Fatal(fmt.Sprintf(format, args...))
}

func adapt(t TestingT) assert.TestingT { return tHelper{t: t} }

func NoError(t TestingT, err error, msgAndArgs ...interface{}) {
	assert.NoError(adapt(t), err, msgAndArgs...)
}

func Error(t TestingT, err error, msgAndArgs ...interface{}) {
	assert.Error(adapt(t), err, msgAndArgs...)
}

func EqualError(t TestingT, err error, msg string, msgAndArgs ...interface{}) {
	assert.EqualError(adapt(t), err, msg, msgAndArgs...)
}

func ErrorIs(t TestingT, err, target error, msgAndArgs ...interface{}) {
	assert.ErrorIs(adapt(t), err, target, msgAndArgs...)
}

func Equal(t TestingT, expected, actual interface{}, msgAndArgs ...interface{}) {
	assert.Equal(adapt(t), expected, actual, msgAndArgs...)
}

func NotEqual(t TestingT, expected, actual interface{}, msgAndArgs ...interface{}) {
	assert.NotEqual(adapt(t), expected, actual, msgAndArgs...)
}

func Same(t TestingT, expected, actual interface{}, msgAndArgs ...interface{}) {
	assert.Same(adapt(t), expected, actual, msgAndArgs...)
}

func NotSame(t TestingT, expected, actual interface{}, msgAndArgs ...interface{}) {
	assert.NotSame(adapt(t), expected, actual, msgAndArgs...)
}

func Nil(t TestingT, v interface{}, msgAndArgs ...interface{}) {
	assert.Nil(adapt(t), v, msgAndArgs...)
}

func NotNil(t TestingT, v interface{}, msgAndArgs ...interface{}) {
	assert.NotNil(adapt(t), v, msgAndArgs...)
}

func True(t TestingT, v bool, msgAndArgs ...interface{}) {
	assert.True(adapt(t), v, msgAndArgs...)
}

func False(t TestingT, v bool, msgAndArgs ...interface{}) {
	assert.False(adapt(t), v, msgAndArgs...)
}

func Zero(t TestingT, v interface{}, msgAndArgs ...interface{}) {
	assert.Zero(adapt(t), v, msgAndArgs...)
}

func Contains(t TestingT, s, contains interface{}, msgAndArgs ...interface{}) {
	assert.Contains(adapt(t), s, contains, msgAndArgs...)
}

func Len(t TestingT, v interface{}, length int, msgAndArgs ...interface{}) {
	assert.Len(adapt(t), v, length, msgAndArgs...)
}

// CapturePanic runs fn and, if it panics, returns the recovered value as
// an error (wrapping it if it wasn't one already). Used to assert on a
// trap raised via panic (§4.10) without a full Call harness.
func CapturePanic(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("%v", r)
			}
		}
	}()
	fn()
	return
}
