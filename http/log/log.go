package log

import (
	"io"
	"strings"

	"github.com/datarhei/foldwatch/encoding/json"
)

type logwrapper struct {
	writer io.Writer
}

type logentry struct {
	Message string `json:"message"`
}

// NewWrapper returns a writer for the echo logger that extracts the
// message of its JSON lines and writes it line by line to writer.
func NewWrapper(writer io.Writer) io.Writer {
	return &logwrapper{
		writer: writer,
	}
}

func (b *logwrapper) Write(p []byte) (int, error) {
	log := logentry{}
	if err := json.Unmarshal(p, &log); err == nil {
		if len(log.Message) != 0 {
			lines := strings.Split(log.Message, "\n")

			for _, line := range lines {
				b.writer.Write([]byte(line))
			}

			return len(p), nil
		}
	}

	return b.writer.Write(p)
}
