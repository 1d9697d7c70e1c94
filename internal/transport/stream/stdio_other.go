//go:build !unix

package stream

import "os"

func pollable(f *os.File) *os.File { return f }
