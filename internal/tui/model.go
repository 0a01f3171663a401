// Package tui is the terminal rendition of the studio: enter keys, pick a headline, watch
// the production and read the results.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mohammad-safakhou/newsreel/internal/render"
	"github.com/mohammad-safakhou/newsreel/internal/studio"
	"github.com/mohammad-safakhou/newsreel/models"
	"github.com/mohammad-safakhou/newsreel/news"
)

// Studio is the part of *studio.Session the TUI drives.
type Studio interface {
	SetCredentials(c studio.Credentials)
	FetchHeadlines(ctx context.Context) (news.Result, error)
	Select(title string) (models.Headline, error)
	Produce(ctx context.Context, obs render.Observer) (*models.Production, error)
}

type state int

const (
	stateKeys state = iota
	stateFetching
	stateHeadlines
	stateProducing
	stateResult
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#C0392B")).Padding(0, 1)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#7BD88F"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	scriptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

type model struct {
	ctx    context.Context
	studio Studio
	state  state

	inputs  []textinput.Model
	focus   int
	spinner spinner.Model
	list    list.Model
	bar     progress.Model

	progress render.Progress
	events   chan tea.Msg
	prod     *models.Production
	status   string
	failed   bool
	width    int
	quitting bool
}

// New builds the program model. Keys found in creds are pre-filled.
func New(ctx context.Context, s Studio, creds studio.Credentials) tea.Model {
	newsIn := textinput.New()
	newsIn.Placeholder = "NewsAPI key"
	newsIn.EchoMode = textinput.EchoPassword
	newsIn.SetValue(creds.NewsAPIKey)
	newsIn.Focus()

	llm := textinput.New()
	llm.Placeholder = "OpenAI key"
	llm.EchoMode = textinput.EchoPassword
	llm.SetValue(creds.LLMKey)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	l := list.New(nil, list.NewDefaultDelegate(), 80, 20)
	l.Title = "Trending headlines"
	l.SetShowStatusBar(false)

	return model{
		ctx:     ctx,
		studio:  s,
		inputs:  []textinput.Model{newsIn, llm},
		spinner: sp,
		list:    l,
		bar:     progress.New(progress.WithDefaultGradient()),
		width:   80,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m model) credentials() studio.Credentials {
	return studio.Credentials{NewsAPIKey: m.inputs[0].Value(), LLMKey: m.inputs[1].Value()}
}

func (m model) fetch() tea.Cmd {
	return func() tea.Msg {
		res, err := m.studio.FetchHeadlines(m.ctx)
		return headlinesMsg{res: res, err: err}
	}
}

// produce runs the production in the background and feeds its progress back through events.
func (m model) produce(events chan tea.Msg) tea.Cmd {
	go func() {
		prod, err := m.studio.Produce(m.ctx, render.ObserverFunc(func(p render.Progress) {
			events <- progressMsg{progress: p}
		}))
		events <- producedMsg{prod: prod, err: err}
		close(events)
	}()
	return waitFor(events)
}

func waitFor(events chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.list.SetSize(msg.Width, msg.Height-4)
		m.bar.Width = min(msg.Width-4, 80)
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case headlinesMsg:
		if msg.err != nil {
			m.state = stateKeys
			m.failed = true
			m.status = models.OperatorMessage(msg.err)
			if m.status != models.MissingNewsKeyMessage && m.status != models.NoNewsMessage {
				m.status = models.NoNewsMessage + " (" + msg.err.Error() + ")"
			}
			return m, nil
		}
		items := make([]list.Item, len(msg.res.Headlines))
		for i, h := range msg.res.Headlines {
			items[i] = item{headline: h}
		}
		cmd := m.list.SetItems(items)
		m.list.ResetSelected()
		m.state = stateHeadlines
		m.failed = false
		m.status = fmt.Sprintf("Found %d trending stories!", len(items))
		return m, cmd

	case progressMsg:
		m.progress = msg.progress
		return m, waitFor(m.events)

	case producedMsg:
		m.events = nil
		if msg.err != nil {
			m.state = stateHeadlines
			m.failed = true
			m.status = models.OperatorMessage(msg.err)
			return m, nil
		}
		m.prod = msg.prod
		m.state = stateResult
		m.failed = false
		m.status = render.LabelDone
		if msg.prod.ImageSkip != "" {
			m.status += " (lead image skipped: " + msg.prod.ImageSkip + ")"
		}
		return m, nil
	}

	switch m.state {
	case stateKeys:
		return m.updateKeys(msg)
	case stateHeadlines:
		return m.updateHeadlines(msg)
	case stateResult:
		return m.updateResult(msg)
	}
	return m, nil
}

func (m model) updateKeys(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
			m.inputs[m.focus].Blur()
			m.focus = (m.focus + 1) % len(m.inputs)
			return m, m.inputs[m.focus].Focus()
		case tea.KeyEnter:
			m.studio.SetCredentials(m.credentials())
			if strings.TrimSpace(m.inputs[0].Value()) == "" {
				m.failed = true
				m.status = models.MissingNewsKeyMessage
				return m, nil
			}
			m.state = stateFetching
			m.status = ""
			return m, m.fetch()
		case tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m model) updateHeadlines(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch key.String() {
		case "enter":
			if strings.TrimSpace(m.inputs[1].Value()) == "" {
				m.failed = true
				m.status = models.MissingLLMKeyMessage
				return m, nil
			}
			// the list index counts only the items left by a filter
			it, ok := m.list.SelectedItem().(item)
			if !ok {
				m.failed = true
				m.status = models.ErrNoSelection.Error()
				return m, nil
			}
			if _, err := m.studio.Select(it.headline.Title); err != nil {
				m.failed = true
				m.status = models.OperatorMessage(err)
				return m, nil
			}
			m.state = stateProducing
			m.status = ""
			m.progress = render.Progress{Label: render.LabelInit}
			m.events = make(chan tea.Msg, 16)
			return m, m.produce(m.events)
		case "r":
			m.state = stateFetching
			return m, m.fetch()
		case "k":
			m.state = stateKeys
			return m, nil
		case "q":
			m.quitting = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "n", "enter":
			m.state = stateHeadlines
			m.status = ""
			return m, nil
		case "q", "esc":
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("AI NEWS STUDIO") + "\n\n")

	switch m.state {
	case stateKeys:
		b.WriteString("API keys (kept in memory for this session only)\n\n")
		for _, in := range m.inputs {
			b.WriteString(in.View() + "\n")
		}
		b.WriteString(dimStyle.Render("\ntab: switch field · enter: fetch trending news · esc: quit") + "\n")
	case stateFetching:
		b.WriteString(m.spinner.View() + " Fetching trending news...\n")
	case stateHeadlines:
		b.WriteString(m.list.View() + "\n")
		b.WriteString(dimStyle.Render("enter: produce video · r: refresh · k: keys · q: quit") + "\n")
	case stateProducing:
		b.WriteString(m.spinner.View() + " " + m.progress.Label + "\n\n")
		b.WriteString(m.bar.ViewAs(float64(m.progress.Percent)/100) + "\n")
	case stateResult:
		b.WriteString(m.resultView())
	}

	if m.status != "" {
		style := okStyle
		if m.failed {
			style = errStyle
		}
		b.WriteString("\n" + style.Render(m.status) + "\n")
	}
	return b.String()
}

func (m model) resultView() string {
	p := m.prod
	width := min(m.width-4, 76)
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(p.Headline.Title) + "\n\n")
	b.WriteString(scriptStyle.Width(width).Render(p.Script) + "\n")
	fmt.Fprintf(&b, "Words: %d · Length: %s · Image: %v\n", p.Words, p.LengthLabel(), p.ImageUsed)
	fmt.Fprintf(&b, "Video: %s\n", p.VideoPath)
	b.WriteString(dimStyle.Render("\nn: another story · q: quit") + "\n")
	return b.String()
}
