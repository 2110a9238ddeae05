package viz

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/chaoslab/internal/sweep"
)

type (
	// ProgressMsg reports done of total points evaluated.
	ProgressMsg struct{ Done, Total int }
	// DoneMsg ends the progress display.
	DoneMsg struct{ Err error }
	tickMsg time.Time
)

// ProgressModel is a spinner and bar shown while a sweep runs.
type ProgressModel struct {
	title    string
	done     int
	total    int
	frame    int
	start    time.Time
	elapsed  time.Duration
	finished bool
	aborted  bool
	err      error
	cancel   context.CancelFunc
}

func NewProgressModel(title string, cancel context.CancelFunc) ProgressModel {
	return ProgressModel{title: title, cancel: cancel, start: time.Now()}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/15, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m ProgressModel) Init() tea.Cmd {
	return tick()
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.aborted = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case ProgressMsg:
		m.done, m.total = msg.Done, msg.Total
	case DoneMsg:
		m.finished = true
		m.err = msg.Err
		m.elapsed = time.Since(m.start)
		return m, tea.Quit
	case tickMsg:
		m.frame++
		return m, tick()
	}
	return m, nil
}

// Fraction is the completed share in [0, 1].
func (m ProgressModel) Fraction() float64 {
	if m.total <= 0 {
		return 0
	}
	return float64(m.done) / float64(m.total)
}

func (m ProgressModel) Aborted() bool { return m.aborted }

func (m ProgressModel) View() string {
	var b strings.Builder
	switch {
	case m.aborted:
		b.WriteString(Diverged.Render("aborted"))
	case m.finished && m.err != nil:
		b.WriteString(Positive.Render("failed: " + m.err.Error()))
	case m.finished:
		fmt.Fprintf(&b, "%s %s %s",
			Negative.Render("done"), Title.Render(m.title),
			Subtle.Render(fmt.Sprintf("%d points in %s", m.total, m.elapsed.Round(time.Millisecond))))
	default:
		fmt.Fprintf(&b, "%s %s %s %s",
			Spinner(m.frame), Title.Render(m.title),
			ProgressBar(m.Fraction(), 30),
			MetricLabel.Render(fmt.Sprintf("%d/%d", m.done, m.total)))
	}
	b.WriteByte('\n')
	return b.String()
}

// reporter forwards sweep progress into a running program.
type reporter struct {
	p *tea.Program
}

func (r reporter) Update(done, total int) {
	r.p.Send(ProgressMsg{Done: done, Total: total})
}

// RunWithProgress runs fn while drawing a progress line on out. Pressing
// ctrl+c cancels the context handed to fn.
func RunWithProgress(ctx context.Context, out io.Writer, title string, fn func(ctx context.Context, progress sweep.Progress) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	prog := tea.NewProgram(NewProgressModel(title, cancel), tea.WithOutput(out))

	errCh := make(chan error, 1)
	go func() {
		err := fn(ctx, reporter{p: prog})
		prog.Send(DoneMsg{Err: err})
		errCh <- err
	}()

	if _, err := prog.Run(); err != nil {
		cancel()
		<-errCh
		return fmt.Errorf("progress display: %w", err)
	}
	return <-errCh
}
