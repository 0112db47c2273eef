//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Archive groups targets for the local envelope archive.
type Archive mg.Namespace

// List prints the most recent archived articles.
func (Archive) List() error {
	mg.Deps(Build)
	return sh.RunV(binary(), "archive", "list")
}

// Search runs a full-text query against the archive.
func (Archive) Search(query string) error {
	mg.Deps(Build)
	return sh.RunV(binary(), "archive", "search", query)
}

// Export writes the whole archive to output/archive.yaml.
func (Archive) Export() error {
	mg.Deps(Build, Init)
	out, err := sh.Output(binary(), "archive", "export", "--format", "yaml")
	if err != nil {
		return err
	}
	return writeFile("output/archive.yaml", out+"\n")
}
