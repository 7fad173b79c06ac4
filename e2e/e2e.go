// Package e2e is the API e2e test files are written against.
//
// A test file is a Go file in package main, named with the configured suffix
// (default _e2e.go), that exposes a Setup function:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//
//		"e2erun/e2e"
//	)
//
//	func Setup(f *e2e.File) {
//		f.Run(e2e.RunOptions{Flaky: true})
//
//		f.Test("shows the cart", func(ctx context.Context) error {
//			if err := f.Page().Navigate(f.BaseURL() + "/cart"); err != nil {
//				return err
//			}
//			title, err := f.Page().Eval(`() => document.title`)
//			if err != nil {
//				return err
//			}
//			if title != "Cart" {
//				return fmt.Errorf("unexpected title %q", title)
//			}
//			return nil
//		})
//	}
//
// Files are interpreted, not compiled into the runner; this package lets editors
// and the Go toolchain type-check them.
package e2e

import "e2erun/internal/harness"

type (
	// File is the execution context of one attempt of a test file
	File = harness.File
	// RunOptions declares how a running file is executed
	RunOptions = harness.RunOptions
	// Case is a registered test case
	Case = harness.Case
	// Page is the browser page of a running file
	Page = harness.Page
	// CaseFunc is the body of a test case
	CaseFunc = harness.CaseFunc
	// HookFunc starts or stops the server under test
	HookFunc = harness.HookFunc
	// AfterEachFunc runs after every case
	AfterEachFunc = harness.AfterEachFunc
	// UsageError reports misuse of the declaration API
	UsageError = harness.UsageError
)
