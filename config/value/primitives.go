package value

import (
	"fmt"
	"strconv"
	"strings"
)

// string

type String string

func NewString(p *string, val string) *String {
	*p = val

	return (*String)(p)
}

func (s *String) Set(val string) error {
	*s = String(val)
	return nil
}

func (s *String) String() string {
	return string(*s)
}

func (s *String) Validate() error {
	return nil
}

func (s *String) IsEmpty() bool {
	return len(string(*s)) == 0
}

// string from a fixed set of choices

type Enum struct {
	p       *string
	choices []string
}

func NewEnum(p *string, val string, choices []string) *Enum {
	v := &Enum{
		p:       p,
		choices: choices,
	}

	*p = val

	return v
}

func (s *Enum) Set(val string) error {
	*s.p = strings.ToLower(strings.TrimSpace(val))
	return nil
}

func (s *Enum) String() string {
	return *s.p
}

func (s *Enum) Validate() error {
	for _, c := range s.choices {
		if c == *s.p {
			return nil
		}
	}

	return fmt.Errorf("'%s' is not one of %s", *s.p, strings.Join(s.choices, ", "))
}

func (s *Enum) IsEmpty() bool {
	return len(*s.p) == 0
}

// array of strings

type StringList struct {
	p         *[]string
	separator string
}

func NewStringList(p *[]string, val []string, separator string) *StringList {
	v := &StringList{
		p:         p,
		separator: separator,
	}

	*p = val

	return v
}

func (s *StringList) Set(val string) error {
	list := []string{}

	for _, elm := range strings.Split(val, s.separator) {
		elm = strings.TrimSpace(elm)
		if len(elm) != 0 {
			list = append(list, elm)
		}
	}

	*s.p = list

	return nil
}

func (s *StringList) String() string {
	if s.IsEmpty() {
		return "(empty)"
	}

	return strings.Join(*s.p, s.separator)
}

func (s *StringList) Validate() error {
	return nil
}

func (s *StringList) IsEmpty() bool {
	return len(*s.p) == 0
}

// boolean

type Bool bool

func NewBool(p *bool, val bool) *Bool {
	*p = val

	return (*Bool)(p)
}

func (b *Bool) Set(val string) error {
	v, err := strconv.ParseBool(val)
	if err != nil {
		return err
	}
	*b = Bool(v)
	return nil
}

func (b *Bool) String() string {
	return strconv.FormatBool(bool(*b))
}

func (b *Bool) Validate() error {
	return nil
}

func (b *Bool) IsEmpty() bool {
	return !bool(*b)
}

// int

type Int int

func NewInt(p *int, val int) *Int {
	*p = val

	return (*Int)(p)
}

func (i *Int) Set(val string) error {
	v, err := strconv.Atoi(val)
	if err != nil {
		return err
	}
	*i = Int(v)
	return nil
}

func (i *Int) String() string {
	return strconv.Itoa(int(*i))
}

func (i *Int) Validate() error {
	return nil
}

func (i *Int) IsEmpty() bool {
	return int(*i) == 0
}

// positive int

type PositiveInt int

func NewPositiveInt(p *int, val int) *PositiveInt {
	*p = val

	return (*PositiveInt)(p)
}

func (i *PositiveInt) Set(val string) error {
	v, err := strconv.Atoi(val)
	if err != nil {
		return err
	}
	*i = PositiveInt(v)
	return nil
}

func (i *PositiveInt) String() string {
	return strconv.Itoa(int(*i))
}

func (i *PositiveInt) Validate() error {
	if int(*i) <= 0 {
		return fmt.Errorf("%d must be greater than 0", int(*i))
	}

	return nil
}

func (i *PositiveInt) IsEmpty() bool {
	return int(*i) == 0
}

// int64

type Int64 int64

func NewInt64(p *int64, val int64) *Int64 {
	*p = val

	return (*Int64)(p)
}

func (u *Int64) Set(val string) error {
	v, err := strconv.ParseInt(val, 0, 64)
	if err != nil {
		return err
	}
	*u = Int64(v)
	return nil
}

func (u *Int64) String() string {
	return strconv.FormatInt(int64(*u), 10)
}

func (u *Int64) Validate() error {
	if int64(*u) < 0 {
		return fmt.Errorf("%d must not be negative", int64(*u))
	}

	return nil
}

func (u *Int64) IsEmpty() bool {
	return int64(*u) == 0
}
