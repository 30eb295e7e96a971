package cmd

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const licenseLine = "// Licensed under the MIT License. See LICENSE file in the project root for details."

// Files that carry the license header must name this project in it.
func TestLicenseHeadersNameProject(t *testing.T) {
	root := ".."
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && strings.HasPrefix(d.Name(), "_") {
			return filepath.SkipDir
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		sc := bufio.NewScanner(f)
		var first string
		if sc.Scan() {
			first = sc.Text()
		}
		if sc.Scan() && sc.Text() == licenseLine && first != "// Copyright (c) 2025 neonrpc" {
			t.Errorf("%s: header %q", path, first)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
