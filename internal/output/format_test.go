package output_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"rtask/internal/output"
	"rtask/internal/service"
)

var sample = []service.Task{
	{ID: 1, Title: "Buy milk", CreatedAt: "2024-01-02T03:04:05Z", UpdatedAt: "2024-01-02T03:04:05Z"},
	{ID: 12, Title: "Walk dog", Completed: true, CreatedAt: "2024-01-02T03:04:05Z", UpdatedAt: "2024-01-03T00:00:00Z"},
}

func TestFormatTask(t *testing.T) {
	tests := []struct {
		name string
		task service.Task
		want string
	}{
		{name: "open", task: service.Task{ID: 1, Title: "Buy milk"}, want: "   1  [ ] Buy milk\n"},
		{name: "done", task: service.Task{ID: 42, Title: "Walk dog", Completed: true}, want: "  42  [x] Walk dog\n"},
		{name: "blank title", task: service.Task{ID: 3, Title: "  "}, want: "   3  [ ] (untitled)\n"},
		{name: "newlines", task: service.Task{ID: 4, Title: "a\nb\r\nc"}, want: "   4  [ ] a b  c\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			output.FormatTask(&buf, tt.task)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestFormatTaskDetail(t *testing.T) {
	var buf bytes.Buffer
	output.FormatTaskDetail(&buf, sample[1])

	want := "id:       12\n" +
		"title:    Walk dog\n" +
		"status:   done\n" +
		"created:  2024-01-02T03:04:05Z\n" +
		"updated:  2024-01-03T00:00:00Z\n"
	assert.Equal(t, want, buf.String())
}

func TestFormatTasks_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.FormatTasks(&buf, sample, output.FormatText))
	assert.Equal(t, "   1  [ ] Buy milk\n  12  [x] Walk dog\n", buf.String())
}

func TestFormatTasks_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.FormatTasks(&buf, sample, output.FormatJSON))

	var got []service.Task
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sample, got)
	assert.Contains(t, buf.String(), `"created_at": "2024-01-02T03:04:05Z"`)
}

func TestFormatTasks_JSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.FormatTasks(&buf, nil, output.FormatJSON))
	assert.Equal(t, "[]\n", buf.String())
}

func TestFormatTasks_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.FormatTasks(&buf, sample, output.FormatYAML))

	var got []service.Task
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sample, got)
	assert.Contains(t, buf.String(), "title: Walk dog")
}

func TestFormatTasks_Unknown(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, output.FormatTasks(&buf, sample, "xml"))
	assert.False(t, output.ValidFormat("xml"))
	assert.True(t, output.ValidFormat(output.FormatYAML))
}
