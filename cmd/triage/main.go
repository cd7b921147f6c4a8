// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command triage scores patient urgency with the Mamdani fuzzy model.
//
// Usage:
//
//	triage assess --input age=40 --input headache=5 --input temperature=30
//	triage interval --input age=30:50 --input headache=4:6 --input temperature=30:37
//	triage batch patients.csv --workers 8
//	triage curve --format csv > curves.csv
//	triage model verify
package main

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/AleutianAI/AleutianTriage/pkg/ux"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes one CLI invocation and returns its exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	restore := ux.SetOutput(stdout, stderr)
	defer restore()

	a := newApp(stdin, stdout, stderr)
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	a.close()
	return a.report(err)
}
