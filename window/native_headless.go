// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build headless

package window

// Open always fails in headless builds.
func Open(Config) (Window, error) {
	return nil, ErrUnavailable
}
