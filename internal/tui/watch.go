// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/toeirei/chainmaster/internal/i18n"
	"github.com/toeirei/chainmaster/internal/model"
)

const (
	padding  = 2
	maxWidth = 60
)

// ProgressSource reports chain progress. Implemented by *chain.Service.
type ProgressSource interface {
	GetChain(ctx context.Context, chainID int) (*model.Chain, error)
	Progress(ctx context.Context, c *model.Chain) int
}

// progressMsg carries the result of one poll.
type progressMsg struct {
	chain   *model.Chain
	percent int
	err     error
}

type tickMsg struct{}

// WatchModel polls a chain's progress and renders it as a bar until the
// chain finishes, fails or the user quits.
type WatchModel struct {
	ctx      context.Context
	src      ProgressSource
	chainID  int
	interval time.Duration

	bar     progress.Model
	chain   *model.Chain
	percent int
	err     error
	done    bool
}

// NewWatchModel returns a model polling every interval.
func NewWatchModel(ctx context.Context, src ProgressSource, chainID int, interval time.Duration) WatchModel {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return WatchModel{
		ctx:      ctx,
		src:      src,
		chainID:  chainID,
		interval: interval,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(maxWidth)),
	}
}

func (m WatchModel) Init() tea.Cmd {
	return m.poll
}

func (m WatchModel) poll() tea.Msg {
	c, err := m.src.GetChain(m.ctx, m.chainID)
	if err != nil {
		return progressMsg{err: err}
	}
	return progressMsg{chain: c, percent: m.src.Progress(m.ctx, c)}
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.bar.Width = msg.Width - padding*2 - 4
		if m.bar.Width > maxWidth {
			m.bar.Width = maxWidth
		}
		return m, nil

	case progressMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.chain = msg.chain
		m.percent = msg.percent
		setCmd := m.bar.SetPercent(float64(m.percent) / 100)
		if m.finished() {
			m.done = true
			return m, tea.Sequence(setCmd, tea.Quit)
		}
		return m, tea.Batch(setCmd, tea.Tick(m.interval, func(time.Time) tea.Msg { return tickMsg{} }))

	case tickMsg:
		return m, m.poll

	case progress.FrameMsg:
		pm, cmd := m.bar.Update(msg)
		m.bar = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m WatchModel) finished() bool {
	if m.chain == nil {
		return false
	}
	return m.percent >= 100 || m.chain.Status.Failed()
}

func (m WatchModel) View() string {
	var b strings.Builder
	name := fmt.Sprintf("#%d", m.chainID)
	if m.chain != nil {
		name = m.chain.String()
	}
	b.WriteString(titleStyle.Render(i18n.T("watch.title", name)))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		return docStyle.Render(b.String()) + "\n"
	}

	b.WriteString(m.bar.ViewAs(float64(m.percent) / 100))

	status := ""
	if m.chain != nil {
		status = m.chain.Status.String()
	}
	switch {
	case m.done && m.chain != nil && m.chain.Status.Failed():
		status = errorStyle.Render(i18n.T("watch.failed"))
	case m.done:
		status = successStyle.Render(i18n.T("watch.finished"))
	}
	b.WriteString(statusStyle.Render(status))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(i18n.T("watch.quit_hint")))
	return docStyle.Render(b.String()) + "\n"
}

// Percent returns the last polled progress.
func (m WatchModel) Percent() int { return m.percent }

// Err returns the error that ended the watch, if any.
func (m WatchModel) Err() error { return m.err }

// RunWatch runs the watch view on the terminal until it ends.
func RunWatch(ctx context.Context, src ProgressSource, chainID int, interval time.Duration) error {
	p := tea.NewProgram(NewWatchModel(ctx, src, chainID, interval), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if wm, ok := final.(WatchModel); ok {
		return wm.Err()
	}
	return nil
}
