package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"paperlens/internal/domain"
)

// PaperSearcher is the TUI-facing subset of the paper service.
type PaperSearcher interface {
	Search(ctx context.Context, query string, topK int) ([]domain.PaperResult, error)
}

// ImageSearcher is the TUI-facing subset of the image service.
type ImageSearcher interface {
	Search(ctx context.Context, query string, topK int) ([]domain.ImageResult, error)
}

// Collection selects what the query runs against.
type Collection int

const (
	Papers Collection = iota
	Images
)

func (c Collection) String() string {
	if c == Images {
		return "images"
	}
	return "papers"
}

// entry is one result in display form.
type entry struct {
	title    string
	path     string
	detail   string
	distance *float64
	body     string
}

// Model is the Bubble Tea model for the interactive search screen.
type Model struct {
	ctx        context.Context
	papers     PaperSearcher
	images     ImageSearcher
	topK       int
	collection Collection
	input      textinput.Model
	viewport   viewport.Model
	results    []entry
	status     string
	cursor     int
	ready      bool
	lastQuery  string
}

// New creates a new TUI model instance.
func New(ctx context.Context, papers PaperSearcher, images ImageSearcher, topK int) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type query and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	if topK <= 0 {
		topK = 10
	}
	return Model{
		ctx:      ctx,
		papers:   papers,
		images:   images,
		topK:     topK,
		input:    ti,
		viewport: vp,
		status:   "Type to search. Tab switches between papers and images.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around result and query boxes
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 1                                    // header
		totalFooterLines := 1                                    // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1 // 1 spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrentResult())
		return m, nil
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "tab":
			if m.collection == Papers {
				m.collection = Images
			} else {
				m.collection = Papers
			}
			m.results = nil
			m.cursor = 0
			m.status = "Searching " + m.collection.String()
			m.viewport.SetContent(m.renderCurrentResult())
			return m, nil
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				res, err := m.search(q)
				if err != nil {
					m.status = "Error: " + err.Error()
					m.results = nil
				} else {
					m.status = fmt.Sprintf("%d %s for %q", len(res), m.collection, q)
					m.results = res
					m.cursor = 0
					m.lastQuery = q
				}
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		case "down":
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		case "up":
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) search(q string) ([]entry, error) {
	if m.collection == Images {
		res, err := m.images.Search(m.ctx, q, m.topK)
		if err != nil {
			return nil, err
		}
		out := make([]entry, len(res))
		for i, r := range res {
			out[i] = entry{title: r.FileName, path: r.FilePath, detail: fmt.Sprintf("%d bytes", r.FileSize), distance: r.Distance}
		}
		return out, nil
	}
	res, err := m.papers.Search(m.ctx, q, m.topK)
	if err != nil {
		return nil, err
	}
	out := make([]entry, len(res))
	for i, r := range res {
		detail := ""
		if r.Topics != "" {
			detail = "topics: " + r.Topics
		}
		out[i] = entry{title: r.FileName, path: r.FilePath, detail: detail, distance: r.Distance, body: r.Snippet}
	}
	return out, nil
}

// View renders the TUI layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("paperlens") + "  " +
		tabStyle.Render("["+m.collection.String()+"]")
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderCurrentResult() string {
	if len(m.results) == 0 {
		return "No results yet."
	}
	r := m.results[m.cursor]
	title := fmt.Sprintf("Result %d/%d  %s", m.cursor+1, len(m.results), r.title)
	if sim, ok := domain.Similarity(r.distance); ok {
		title += fmt.Sprintf("  similarity=%.3f", sim)
	}
	lines := []string{title, pathStyle.Render(r.path)}
	if r.detail != "" {
		lines = append(lines, r.detail)
	}
	if r.body != "" {
		lines = append(lines, "", highlightBestSentence(r.body, m.lastQuery))
	}
	return strings.Join(lines, "\n")
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	pathStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	unicodeWordRe  = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe     = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{strings.TrimSpace(text)}
	}
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 {
		return strings.Join(sentences, " ")
	}
	bestIdx := 0
	bestScore := -1
	for i, s := range sentences {
		score := tokenOverlapScore(qTokens, s)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	for i := range sentences {
		sent := strings.TrimSpace(sentences[i])
		if i == bestIdx {
			sentences[i] = highlightStyle.Render(sent)
		} else {
			sentences[i] = sent
		}
	}
	return strings.Join(sentences, " ")
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	tokens := unicodeWordRe.FindAllString(strings.ToLower(sentence), -1)
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}
