// Package output provides formatters for CLI output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"rtask/internal/service"
)

// Supported list formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

const (
	markDone = "[x]"
	markOpen = "[ ]"
)

// Formats lists the accepted values of --format.
var Formats = []string{FormatText, FormatJSON, FormatYAML}

// ValidFormat reports whether f is a supported list format.
func ValidFormat(f string) bool {
	for _, v := range Formats {
		if v == f {
			return true
		}
	}
	return false
}

// FormatTask formats a task line.
// Format: "{ID:>4}  {MARK} {TITLE}\n" where MARK is [x] or [ ].
// The mark is coloured only when w is a terminal.
func FormatTask(w io.Writer, task service.Task) {
	fmt.Fprintf(w, "%4d  %s %s\n", task.ID, mark(w, task.Completed), normalizeTitle(task.Title))
}

// FormatTaskDetail prints every field of a task, one per line.
func FormatTaskDetail(w io.Writer, task service.Task) {
	status := "open"
	if task.Completed {
		status = "done"
	}
	fmt.Fprintf(w, "id:       %d\n", task.ID)
	fmt.Fprintf(w, "title:    %s\n", normalizeTitle(task.Title))
	fmt.Fprintf(w, "status:   %s\n", status)
	fmt.Fprintf(w, "created:  %s\n", orDash(task.CreatedAt))
	fmt.Fprintf(w, "updated:  %s\n", orDash(task.UpdatedAt))
}

// FormatTasks writes tasks in the requested format. Text output prints
// one FormatTask line per task.
func FormatTasks(w io.Writer, tasks []service.Task, format string) error {
	if tasks == nil {
		tasks = []service.Task{}
	}
	switch format {
	case FormatText, "":
		for _, t := range tasks {
			FormatTask(w, t)
		}
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tasks)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tasks); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func mark(w io.Writer, done bool) string {
	r := lipgloss.NewRenderer(w)
	if done {
		return r.NewStyle().Foreground(lipgloss.Color("10")).Render(markDone)
	}
	return r.NewStyle().Faint(true).Render(markOpen)
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
