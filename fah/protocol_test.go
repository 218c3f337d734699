package fah

import (
	"testing"
	"time"

	"github.com/datarhei/foldwatch/activity"

	"github.com/stretchr/testify/require"
)

func TestEnvelope(t *testing.T) {
	now := time.Date(2025, time.July, 16, 20, 10, 0, 123456789, time.FixedZone("", 2*60*60))

	data, err := NewEnvelope(activity.Pause, now).Marshal()
	require.NoError(t, err)
	require.Equal(t, `{"state":"pause","cmd":"state","time":"2025-07-16T18:10:00.123Z"}`, string(data))

	data, err = NewEnvelope(activity.Fold, now.Truncate(time.Second)).Marshal()
	require.NoError(t, err)
	require.Equal(t, `{"state":"fold","cmd":"state","time":"2025-07-16T18:10:00.000Z"}`, string(data))
}

func TestIsAck(t *testing.T) {
	tests := []struct {
		msg string
		ack bool
	}{
		{`["groups","x","config","paused",true]`, true},
		{`["groups",{"a":[1,2]},"config","paused",true]`, true},
		{`["groups",null,"config","paused",true]`, true},
		{` [ "groups" , 1 , "config" , "paused" , true ] `, true},
		{`["groups","x","config","other",true]`, false},
		{`["groups","x","config","paused",false]`, false},
		{`["groups","x","config","paused","true"]`, false},
		{`["groups","x","config","paused",1]`, false},
		{`["groups","x","config","paused"]`, false},
		{`["groups","x","config","paused",true,1]`, false},
		{`["units","x","config","paused",true]`, false},
		{`{"groups":"x"}`, false},
		{`"groups"`, false},
		{`not json`, false},
		{``, false},
	}

	for _, tc := range tests {
		require.Equal(t, tc.ack, IsAck([]byte(tc.msg)), tc.msg)
	}
}
