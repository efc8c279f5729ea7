// Package xdebug provides lightweight, build-tag-gated assertions for
// invariants that must never be reached in correct code; the schema
// package is currently its only user.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package xdebug

import (
	"bytes"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/golang/glog"
)

// Enabled is flipped on by the `debug` build tag via debug_on.go; a
// release build never sets it, so every call below stays a no-op.
var Enabled = false

func Assert(cond bool, a ...interface{}) {
	if !Enabled || cond {
		return
	}
	_panic(a...)
}

func Assertf(cond bool, f string, a ...interface{}) {
	if !Enabled || cond {
		return
	}
	_panic(fmt.Sprintf(f, a...))
}

func AssertNoErr(err error) {
	if !Enabled || err == nil {
		return
	}
	_panic(err)
}

func _panic(a ...interface{}) {
	msg := "DEBUG PANIC: "
	if len(a) > 0 {
		msg += fmt.Sprint(a...)
	}
	buffer := bytes.NewBuffer(make([]byte, 0, 256))
	fmt.Fprint(buffer, msg)
	for i := 2; i < 9; i++ {
		_, file, line, ok := runtime.Caller(i)
		if !ok || !strings.Contains(file, "xapiand") {
			break
		}
		f := filepath.Base(file)
		if buffer.Len() > len(msg) {
			buffer.WriteString(" <- ")
		}
		fmt.Fprintf(buffer, "%s:%d", f, line)
	}
	glog.Errorf("%s", buffer.Bytes())
	glog.Flush()
	panic(msg)
}
