package launcher

import (
	"fmt"
	"strings"
)

// Location is a script path split into the directory to run in and the
// file name handed to the interpreter.
type Location struct {
	Dir  string
	File string
}

// ParseLocation splits path on its last '/'. Everything before it is the
// directory (possibly empty), everything after it the file name, which must
// not be empty. A path without any '/' is rejected rather than treated as
// the current directory.
func ParseLocation(path string) (Location, error) {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return Location{}, stepError(ErrParse, "script path", fmt.Errorf("%q has no directory component", path))
	}
	loc := Location{Dir: path[:i], File: path[i+1:]}
	if loc.File == "" {
		return Location{}, stepError(ErrParse, "script path", fmt.Errorf("%q has no file name", path))
	}
	return loc, nil
}
