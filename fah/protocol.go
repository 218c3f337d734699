// Package fah talks to the websocket API of FAHClient.
package fah

import (
	"time"

	"github.com/datarhei/foldwatch/activity"
	"github.com/datarhei/foldwatch/encoding/json"
)

// TimeLayout is the format of the time field of an envelope.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Envelope is the message that asks FAHClient to enter a state.
type Envelope struct {
	State string `json:"state"`
	Cmd   string `json:"cmd"`
	Time  string `json:"time"`
}

func NewEnvelope(cmd activity.Command, now time.Time) Envelope {
	return Envelope{
		State: cmd.String(),
		Cmd:   "state",
		Time:  now.UTC().Format(TimeLayout),
	}
}

func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// IsAck returns whether raw is the update FAHClient sends after it applied
// a state, i.e. ["groups", <any>, "config", "paused", true].
func IsAck(raw []byte) bool {
	msg := []json.RawMessage{}

	if err := json.Unmarshal(raw, &msg); err != nil {
		return false
	}

	if len(msg) != 5 {
		return false
	}

	expect := []struct {
		index int
		value interface{}
	}{
		{0, "groups"},
		{2, "config"},
		{3, "paused"},
		{4, true},
	}

	for _, e := range expect {
		var v interface{}

		if err := json.Unmarshal(msg[e.index], &v); err != nil {
			return false
		}

		if v != e.value {
			return false
		}
	}

	return true
}
