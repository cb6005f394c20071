package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"qubic/internal/engine"
	"qubic/internal/qubic"
	"qubic/internal/train"
)

type trialMsg train.TrialResult

type checkpointMsg struct {
	trial   int
	weights string
}

type doneMsg struct{ err error }

type model struct {
	total       int
	played      int
	learnerWins int
	draws       int
	last        train.TrialResult
	checkpoints []checkpointMsg
	startTime   time.Time
	updates     chan tea.Msg
	cancel      context.CancelFunc
}

func waitForUpdate(updates chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-updates
	}
}

func (m model) Init() tea.Cmd {
	return waitForUpdate(m.updates)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			m.cancel()
			return m, tea.Quit
		}
	case trialMsg:
		m.played++
		m.last = train.TrialResult(msg)
		switch {
		case msg.Outcome == qubic.Draw:
			m.draws++
		case msg.Outcome.Winner() == msg.Learner:
			m.learnerWins++
		}
		return m, waitForUpdate(m.updates)
	case checkpointMsg:
		m.checkpoints = append(m.checkpoints, msg)
		return m, waitForUpdate(m.updates)
	case doneMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	var sb strings.Builder
	elapsed := time.Since(m.startTime)
	rate := 0.0
	if elapsed.Seconds() >= 1 {
		rate = float64(m.played) / elapsed.Seconds()
	}
	fmt.Fprintf(&sb, "Trials:        %d / %d\n", m.played, m.total)
	fmt.Fprintf(&sb, "Learner wins:  %d\n", m.learnerWins)
	fmt.Fprintf(&sb, "Draws:         %d\n", m.draws)
	fmt.Fprintf(&sb, "Games/Sec:     %.1f\n", rate)
	if m.played > 0 {
		fmt.Fprintf(&sb, "Learning rate: %.4f\n", m.last.LearningRate)
		fmt.Fprintf(&sb, "Exploitation:  %.3f\n\n", m.last.Exploitation)
		for _, t := range qubic.AllSquareTypes() {
			fmt.Fprintf(&sb, "  %-7s %+.3f\n", t, m.last.Weights[t])
		}
	}
	for _, c := range m.checkpoints {
		fmt.Fprintf(&sb, "\nAfter %d trials:\n%s", c.trial, c.weights)
	}
	sb.WriteString("\nPress q to quit.\n")
	return sb.String()
}

// runWithTUI trains in the background while the progress view runs, then
// prints the checkpoints once the view has closed.
func runWithTUI(ctx context.Context, tr *train.Trainer, n1, n2, n3 int, onTrial func(train.TrialResult)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(chan tea.Msg)
	send := func(msg tea.Msg) {
		select {
		case updates <- msg:
		case <-ctx.Done():
		}
	}
	var checkpoints []string
	tr.OnTrial = func(r train.TrialResult) {
		onTrial(r)
		send(trialMsg(r))
	}
	tr.OnCheckpoint = func(trial int, u *engine.UtilityFunction) {
		line := fmt.Sprintf("After %d trials:\n%s", trial, u)
		checkpoints = append(checkpoints, line)
		send(checkpointMsg{trial: trial, weights: u.String()})
	}

	errCh := make(chan error, 1)
	go func() {
		err := tr.RunCheckpointed(ctx, n1, n2, n3)
		errCh <- err
		send(doneMsg{err: err})
	}()

	p := tea.NewProgram(model{
		total:     n3,
		startTime: time.Now(),
		updates:   updates,
		cancel:    cancel,
	})
	if _, err := p.Run(); err != nil {
		cancel()
		<-errCh
		return err
	}
	cancel()
	err := <-errCh
	for _, c := range checkpoints {
		fmt.Print(c)
	}
	return err
}
