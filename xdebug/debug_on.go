//go:build debug

/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package xdebug

func init() { Enabled = true }
