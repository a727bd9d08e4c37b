package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ldi/taskboard/pkg/models"
)

var (
	completedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("42")).
			Padding(0, 1)

	openStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("214")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	subTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	placeholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Italic(true).
				Padding(0, 1)
)

// Board renders tasks grouped into open and completed boxes.
type Board struct {
	Open      []*models.Task
	Completed []*models.Task
	Analytics *models.Analytics
	Width     int
	Title     string
}

func NewBoard(width int) *Board {
	return &Board{
		Open:      make([]*models.Task, 0),
		Completed: make([]*models.Task, 0),
		Width:     width,
		Title:     "Taskboard",
	}
}

// Add places a task in the completed box when its status is completed and
// in the open box otherwise. Tasks keep insertion order.
func (b *Board) Add(tasks ...*models.Task) {
	for _, t := range tasks {
		if t.Status == models.TaskStatusCompleted {
			b.Completed = append(b.Completed, t)
		} else {
			b.Open = append(b.Open, t)
		}
	}
}

func (b *Board) View() string {
	var boxes []string

	if len(b.Open) > 0 {
		boxes = append(boxes, b.renderBox("Open", b.Open, openStyle, "○"))
	}

	if len(b.Completed) > 0 {
		boxes = append(boxes, b.renderBox("Completed", b.Completed, completedStyle, "✓"))
	}

	var content string
	if len(boxes) == 0 {
		content = placeholderStyle.Render("No tasks yet")
	} else {
		content = strings.Join(boxes, "\n")
	}

	if summary := b.summary(); summary != "" {
		content = placeholderStyle.Render(summary) + "\n" + content
	}

	if b.Title != "" {
		return headerStyle.Render(b.Title) + "\n" + content
	}
	return content
}

func (b *Board) summary() string {
	if b.Analytics == nil {
		return ""
	}

	s := fmt.Sprintf("%d/%d completed", b.Analytics.CompletedTasks, b.Analytics.TotalTasks)
	if b.Analytics.AverageCompletionSeconds != nil {
		s += fmt.Sprintf(", avg %.1fs", *b.Analytics.AverageCompletionSeconds)
	}
	return s
}

func (b *Board) renderBox(title string, tasks []*models.Task, style lipgloss.Style, icon string) string {
	subTitle := subTitleStyle.Foreground(style.GetForeground()).Render(fmt.Sprintf("%s (%d)", title, len(tasks)))

	innerWidth := b.Width - 4
	if innerWidth < 0 {
		innerWidth = 0
	}

	var lines []string
	for _, t := range tasks {
		prefix := fmt.Sprintf("%s #%d ", icon, t.ID)
		nameWidth := innerWidth - lipgloss.Width(prefix)
		if nameWidth < 1 {
			nameWidth = 1
		}

		wrapped := lipgloss.NewStyle().Width(nameWidth).Render(t.Title)
		indent := strings.Repeat(" ", lipgloss.Width(prefix))
		for i, line := range strings.Split(wrapped, "\n") {
			if i == 0 {
				lines = append(lines, prefix+line)
			} else {
				lines = append(lines, indent+line)
			}
		}
	}

	body := strings.Join(lines, "\n")
	// Width excludes the border.
	return style.Width(b.Width - 2).Render(subTitle + "\n" + body)
}
