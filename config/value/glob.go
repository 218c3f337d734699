package value

import (
	"fmt"

	"github.com/datarhei/foldwatch/glob"
)

// glob pattern, empty for none

type Glob string

func NewGlob(p *string, val string) *Glob {
	*p = val

	return (*Glob)(p)
}

func (g *Glob) Set(val string) error {
	*g = Glob(val)
	return nil
}

func (g *Glob) String() string {
	return string(*g)
}

func (g *Glob) Validate() error {
	val := string(*g)

	if len(val) == 0 {
		return nil
	}

	if _, err := glob.Compile(val); err != nil {
		return fmt.Errorf("'%s' is not a valid pattern: %w", val, err)
	}

	return nil
}

func (g *Glob) IsEmpty() bool {
	return len(string(*g)) == 0
}
