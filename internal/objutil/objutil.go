/*
 * Copyright (c) 2020-present unTill Pro, Ltd.
 */

// Package objutil holds the one helper ObjectUtil.java contributed: a
// not-nil assertion used at API boundaries.
package objutil

import (
	"reflect"

	"github.com/cockroachdb/errors"
)

// CheckNotNil panics with an annotated error if arg is nil. It is meant for
// programmer-error guards at public API boundaries (a nil listener, a nil
// factory), not for validating user data.
func CheckNotNil[T any](arg *T, name string) *T {
	if arg == nil {
		panic(errors.Newf("%s must not be nil", name))
	}
	return arg
}

// CheckNotNilIface is the interface-typed counterpart of CheckNotNil, for
// values that are themselves already pointer-like (func, chan, interface).
func CheckNotNilIface(arg any, name string) any {
	if arg == nil {
		panic(errors.Newf("%s must not be nil", name))
	}
	if v := reflect.ValueOf(arg); (v.Kind() == reflect.Func || v.Kind() == reflect.Chan) && v.IsNil() {
		panic(errors.Newf("%s must not be nil", name))
	}
	return arg
}
