// Package config resolves the instruction table targets and environment
// defaults used by the srctools commands.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"

	"github.com/joho/godotenv"

	"github.com/FocuswithJustin/srctools/core/errors"
	"github.com/FocuswithJustin/srctools/core/insttable"
	"github.com/FocuswithJustin/srctools/internal/fileutil"
)

// DefaultRoot is the directory normalized when none is given: the parent of
// the tools directory the commands are run from.
const DefaultRoot = ".."

var archPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// DefaultTargets returns the built-in generator targets. Paths are relative
// to the tools directory.
func DefaultTargets() []insttable.Target {
	return []insttable.Target{
		{Path: "../src/asmjit/x86/x86defs.cpp", Arch: "x86"},
	}
}

// File is the JSON layout of a targets file:
//
//	{"targets": [{"file": "../src/asmjit/x86/x86defs.cpp", "arch": "x86"}]}
type File struct {
	Targets []insttable.Target `json:"targets"`
}

// LoadTargets reads a targets file. Relative target paths are resolved
// against the directory containing the file.
func LoadTargets(path string) ([]insttable.Target, error) {
	data, err := fileutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "parse %s: %v", path, err)
	}

	base := filepath.Dir(path)
	for i := range f.Targets {
		if f.Targets[i].Path != "" && !filepath.IsAbs(f.Targets[i].Path) {
			f.Targets[i].Path = filepath.Join(base, f.Targets[i].Path)
		}
	}
	if err := Validate(f.Targets); err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return f.Targets, nil
}

// Validate checks that every target names a file and a plain architecture tag.
func Validate(targets []insttable.Target) error {
	if len(targets) == 0 {
		return errors.NewValidation("targets", "at least one target is required")
	}
	for i, t := range targets {
		if t.Path == "" {
			return errors.NewValidation(fmt.Sprintf("targets[%d].file", i), "must not be empty")
		}
		if !archPattern.MatchString(t.Arch) {
			return errors.NewValidation(fmt.Sprintf("targets[%d].arch", i), fmt.Sprintf("invalid architecture tag %q", t.Arch))
		}
	}
	return nil
}

// LoadEnv loads KEY=VALUE pairs from the given dotenv files (default ".env")
// into the process environment. Missing files are ignored and variables
// already set are kept.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return errors.NewIO("load", f, err)
		}
	}
	return nil
}
