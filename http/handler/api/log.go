package api

import (
	"net/http"
	"strings"

	"github.com/datarhei/foldwatch/http/api"
	"github.com/datarhei/foldwatch/http/handler/util"
	"github.com/datarhei/foldwatch/log"

	"github.com/labstack/echo/v4"
)

// The LogHandler type provides handler functions for reading the application log
type LogHandler struct {
	buffer log.BufferWriter
}

// NewLog return a new Log type. You have to provide log buffer.
func NewLog(buffer log.BufferWriter) *LogHandler {
	l := &LogHandler{
		buffer: buffer,
	}

	if l.buffer == nil {
		l.buffer = log.NewBufferWriter(log.Lsilent, 1)
	}

	return l
}

// Log returns the last log lines of the application, either as
// formatted lines (format=console) or as events (format=raw)
func (p *LogHandler) Log(c echo.Context) error {
	format := util.DefaultQuery(c, "format", "console")

	events := p.buffer.Events()

	if format == "raw" {
		log := make([]api.LogEvent, len(events))

		for i, e := range events {
			entry := api.LogEvent{}

			for k, v := range e.Data {
				if err, ok := v.(error); ok {
					v = err.Error()
				}

				entry[k] = v
			}

			entry["ts"] = e.Time
			entry["level"] = e.Level.String()
			entry["component"] = e.Component

			if len(e.Caller) != 0 {
				entry["caller"] = e.Caller
			}

			if len(e.Message) != 0 {
				entry["message"] = e.Message
			}

			log[i] = entry
		}

		return c.JSON(http.StatusOK, log)
	}

	if format != "console" {
		return api.Err(http.StatusBadRequest, "", "unknown format '%s'", format)
	}

	formatter := log.NewConsoleFormatter(false)

	log := make([]string, len(events))

	for i, e := range events {
		log[i] = strings.TrimSpace(formatter.String(e))
	}

	return c.JSON(http.StatusOK, log)
}
