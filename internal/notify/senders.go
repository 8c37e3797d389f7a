package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// LogSender writes notifications to a structured logger.
type LogSender struct {
	log *slog.Logger
}

// NewLogSender returns a sender logging at info level. nil uses slog.Default().
func NewLogSender(log *slog.Logger) *LogSender {
	if log == nil {
		log = slog.Default()
	}
	return &LogSender{log: log}
}

func (s *LogSender) Name() string { return "log" }

func (s *LogSender) Send(ctx context.Context, n *Notification) error {
	s.log.InfoContext(ctx, "notification", "title", n.Title, "body", n.Body, "tag", n.Tag)
	return nil
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#fa3452"))
	bodyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// WriterSender prints notifications, one per line, to an io.Writer such as a
// terminal.
type WriterSender struct {
	mu     sync.Mutex
	w      io.Writer
	styled bool
}

// NewWriterSender returns a sender writing to w. styled adds terminal colors.
func NewWriterSender(w io.Writer, styled bool) *WriterSender {
	return &WriterSender{w: w, styled: styled}
}

func (s *WriterSender) Name() string { return "writer" }

func (s *WriterSender) Send(ctx context.Context, n *Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	title, body := n.Title, n.Body
	if s.styled {
		title = titleStyle.Render(title)
		body = bodyStyle.Render(body)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if body == "" {
		_, err := fmt.Fprintf(s.w, "[%s] %s\n", n.Timestamp.Format("15:04"), title)
		return err
	}
	_, err := fmt.Fprintf(s.w, "[%s] %s: %s\n", n.Timestamp.Format("15:04"), title, body)
	return err
}
