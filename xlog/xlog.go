// Package xlog is a thin convenience wrapper around glog used by the
// indexing pipeline and schema service for the handful of warnings the
// spec calls out: CAS retries, foreign-schema fetch failures, prepare
// failures on the ready queue.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package xlog

import (
	"fmt"

	"github.com/golang/glog"
)

func Infof(f string, a ...interface{})    { glog.InfoDepth(1, fmt.Sprintf(f, a...)) }
func Warningf(f string, a ...interface{}) { glog.WarningDepth(1, fmt.Sprintf(f, a...)) }
func Errorf(f string, a ...interface{})   { glog.ErrorDepth(1, fmt.Sprintf(f, a...)) }
