// Package fileutil provides whole-file read and rewrite helpers whose file
// handles never outlive a single call.
package fileutil

import (
	"io"
	"os"

	"github.com/FocuswithJustin/srctools/core/errors"
)

// Injectable for testing.
var (
	openFile = os.OpenFile
	readAll  = io.ReadAll
)

// ReadFile reads the full content of path.
func ReadFile(path string) (data []byte, err error) {
	f, err := openFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.NewIO("close", path, cerr)
		}
	}()

	data, err = readAll(f)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	return data, nil
}

// Rewrite truncates an existing file and writes data in full. The file keeps
// its permission bits; no backup is made.
func Rewrite(path string, data []byte) (err error) {
	info, err := os.Stat(path)
	if err != nil {
		return errors.NewIO("stat", path, err)
	}
	if !info.Mode().IsRegular() {
		return errors.NewIO("write", path, os.ErrInvalid)
	}

	f, err := openFile(path, os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return errors.NewIO("write", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.NewIO("close", path, cerr)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return errors.NewIO("write", path, err)
	}
	return nil
}
