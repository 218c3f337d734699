package value

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
)

// optional address

type Address string

func NewAddress(p *string, val string) *Address {
	*p = val

	return (*Address)(p)
}

func (s *Address) Set(val string) error {
	if len(val) == 0 {
		*s = Address(val)
		return nil
	}

	// Check if the new value is only a port number
	re := regexp.MustCompile("^[0-9]+$")
	if re.MatchString(val) {
		val = ":" + val
	}

	*s = Address(val)
	return nil
}

func (s *Address) String() string {
	return string(*s)
}

func (s *Address) Validate() error {
	if len(string(*s)) == 0 {
		return nil
	}

	_, port, err := net.SplitHostPort(string(*s))
	if err != nil {
		return err
	}

	re := regexp.MustCompile("^[0-9]+$")
	if !re.MatchString(port) {
		return fmt.Errorf("the port must be numerical")
	}

	return nil
}

func (s *Address) IsEmpty() bool {
	return s.Validate() != nil
}

// url

type URL struct {
	p       *string
	schemes []string
}

// NewURL returns a URL value. If schemes are given, the URL must use one of them.
func NewURL(p *string, val string, schemes ...string) *URL {
	v := &URL{
		p:       p,
		schemes: schemes,
	}

	*p = val

	return v
}

func (u *URL) Set(val string) error {
	*u.p = val
	return nil
}

func (u *URL) String() string {
	return *u.p
}

func (u *URL) Validate() error {
	val := *u.p

	if len(val) == 0 {
		return nil
	}

	URL, err := url.Parse(val)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL", val)
	}

	if len(URL.Scheme) == 0 || len(URL.Host) == 0 {
		return fmt.Errorf("%s is not a valid URL", val)
	}

	if len(u.schemes) == 0 {
		return nil
	}

	for _, scheme := range u.schemes {
		if strings.EqualFold(URL.Scheme, scheme) {
			return nil
		}
	}

	return fmt.Errorf("%s must use one of the schemes %s", val, strings.Join(u.schemes, ", "))
}

func (u *URL) IsEmpty() bool {
	return len(*u.p) == 0
}
