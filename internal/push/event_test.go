package push

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"event":"task:created","data":{"_id":"7","title":"Write docs","tags":["docs"]}}`))
	require.NoError(t, err)
	assert.Equal(t, EventCreated, ev.Kind)
	assert.Equal(t, "7", ev.Task.ID)
	assert.Equal(t, []string{"docs"}, ev.Task.Tags)

	ev, err = DecodeEvent([]byte(`{"event":"task:updated","data":{"_id":"7","status":"done"}}`))
	require.NoError(t, err)
	assert.Equal(t, EventUpdated, ev.Kind)
	assert.Equal(t, "done", ev.Task.Status)

	ev, err = DecodeEvent([]byte(`{"event":"task:deleted","data":{"task_id":"7"}}`))
	require.NoError(t, err)
	assert.Equal(t, EventDeleted, ev.Kind)
	assert.Equal(t, "7", ev.TaskID)
}

func TestDecodeEventRejects(t *testing.T) {
	bad := []string{
		`not json`,
		`{"event":"task:created","data":{"title":"no id"}}`,
		`{"event":"task:deleted","data":{}}`,
		`{"event":"task:updated","data":"str"}`,
		`{"event":"auth_rejected","data":{}}`,
		`{"event":"presence","data":{}}`,
	}
	for _, raw := range bad {
		_, err := DecodeEvent([]byte(raw))
		var decErr *DecodeError
		assert.ErrorAs(t, err, &decErr, raw)
	}
}
