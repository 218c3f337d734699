package value

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// path to a file that may not exist yet. It must not be a directory.

type FilePath string

func NewFilePath(p *string, val string) *FilePath {
	*p = val

	return (*FilePath)(p)
}

func (u *FilePath) Set(val string) error {
	*u = FilePath(strings.TrimSpace(val))
	return nil
}

func (u *FilePath) String() string {
	return string(*u)
}

func (u *FilePath) Validate() error {
	val := string(*u)

	if len(val) == 0 {
		return fmt.Errorf("path name must not be empty")
	}

	finfo, err := os.Stat(filepath.Clean(val))
	if err != nil {
		return nil
	}

	if finfo.IsDir() {
		return fmt.Errorf("%s is a directory", val)
	}

	return nil
}

func (u *FilePath) IsEmpty() bool {
	return len(string(*u)) == 0
}
