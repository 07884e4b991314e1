//go:build mage

// Package main contains Mage build targets for research-digest developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "research-digest"
	cmdPkg  = "./cmd/research-digest"

	// sqliteTags enables FTS5 in mattn/go-sqlite3 for the archive.
	sqliteTags = "sqlite_fts5"
)

// projectDirs lists the working directories a run expects.
var projectDirs = []string{
	"data",
	".secrets",
}

// Init creates the data and secrets directories.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-tags", sqliteTags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "-tags", sqliteTags, "./...")
}

// Update builds the CLI and runs one refresh.
func Update() error {
	mg.Deps(Init, Build)
	return sh.RunV(filepath.Join(binDir, binName), "update")
}

// DryRun builds the CLI and runs a refresh without writing files.
func DryRun() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "update", "--dry-run")
}

// Clean removes build output.
func Clean() error {
	return sh.Rm(binDir)
}
