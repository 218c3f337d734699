package json

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatSyntaxError(t *testing.T) {
	input := []byte("{\n\"a\": 1,\n\"b\" 2\n}")

	var v map[string]int
	err := Unmarshal(input, &v)
	require.Error(t, err)

	err = FormatError(input, err)
	require.ErrorContains(t, err, "syntax error at line 3, character 5")
}

func TestFormatSyntaxErrorFirstLine(t *testing.T) {
	input := []byte("{\"a\" 1}\n")

	var v map[string]int
	err := Unmarshal(input, &v)
	require.Error(t, err)

	err = FormatError(input, err)
	require.ErrorContains(t, err, "syntax error at line 1, character 6")
}

func TestFormatTypeError(t *testing.T) {
	input := []byte("{\"a\": \"x\"}")

	var v struct {
		A int `json:"a"`
	}
	err := Unmarshal(input, &v)
	require.Error(t, err)

	err = FormatError(input, err)
	require.ErrorContains(t, err, "expect type 'int' for 'a' at line 1")
}
