//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Run groups targets that build the binary and start one of its front ends.
type Run mg.Namespace

func binary() string { return filepath.Join(binDir, binName) }

// Generate builds the CLI and generates an article for topic as JSON into output/.
func (Run) Generate(topic string) error {
	mg.Deps(Build, Init)
	return sh.RunV(binary(), "generate", topic, "--format", "json", "--archive",
		"--output", filepath.Join("output", slug(topic)+".json"))
}

// Bot builds the CLI and starts the Telegram bot.
func (Run) Bot() error {
	mg.Deps(Build)
	return sh.RunV(binary(), "bot")
}

// Worker builds the CLI and starts the SQS worker.
func (Run) Worker() error {
	mg.Deps(Build)
	return sh.RunV(binary(), "worker", "--archive")
}

// slug turns a topic into a file name.
func slug(topic string) string {
	out := make([]rune, 0, len(topic))
	dash := false
	for _, r := range topic {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
			dash = false
		case r >= 'A' && r <= 'Z':
			out = append(out, r+'a'-'A')
			dash = false
		case !dash && len(out) > 0:
			out = append(out, '-')
			dash = true
		}
	}
	if dash {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return "article"
	}
	return string(out)
}
