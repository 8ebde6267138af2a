// Package tui is an interactive browser over the final feature table: a
// filter input, a scrolling record list, and a detail preview panel.
package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/bashv/wa-pipeline/internal/feature"
)

// linesPerItem is the number of terminal lines each record occupies.
const linesPerItem = 2

type model struct {
	records  []feature.Record
	filtered []int // indices into records matching the current filter
	cursor   int
	listOff  int

	filterInput textinput.Model
	preview     viewport.Model
	previewIdx  int // record index currently rendered, -1 for none

	width    int
	height   int
	ready    bool
	quitting bool
	copied   *feature.Record
}

// Run starts the browser and blocks until it exits. If the user selects a
// record, its body is copied to the clipboard.
func Run(records []feature.Record) error {
	ti := textinput.New()
	ti.Placeholder = "Filter author or text..."
	ti.Focus()
	ti.Prompt = "> "
	ti.PromptStyle = styleInputPrompt
	ti.TextStyle = styleInput
	ti.CharLimit = 256

	m := model{
		records:     records,
		filterInput: ti,
		preview:     viewport.New(0, 0),
		previewIdx:  -1,
	}
	m.applyFilter("")

	p := tea.NewProgram(m, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	fm := finalModel.(model)
	if fm.copied != nil {
		if err := clipboard.WriteAll(fm.copied.Body); err != nil {
			fmt.Println(fm.copied.Body)
			return nil
		}
		fmt.Printf("Copied message from %s to clipboard.\n", fm.copied.Author)
	}
	return nil
}

func (m *model) applyFilter(q string) {
	q = strings.ToLower(strings.TrimSpace(q))
	m.filtered = m.filtered[:0]
	for i, r := range m.records {
		if q == "" ||
			strings.Contains(strings.ToLower(r.Author), q) ||
			strings.Contains(strings.ToLower(r.Body), q) {
			m.filtered = append(m.filtered, i)
		}
	}
	m.cursor = 0
	m.listOff = 0
	m.previewIdx = -1
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.preview = viewport.New(m.previewWidth(), m.panelHeight())
		m.previewIdx = -1
		m.refreshPreview()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Enter):
			if len(m.filtered) > 0 && m.cursor < len(m.filtered) {
				r := m.records[m.filtered[m.cursor]]
				m.copied = &r
				m.quitting = true
				return m, tea.Quit
			}

		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.adjustListScroll()
				m.refreshPreview()
			}
			return m, nil

		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
				m.adjustListScroll()
				m.refreshPreview()
			}
			return m, nil

		case key.Matches(msg, keys.PreviewUp):
			m.preview.LineUp(m.panelHeight() / 2)
			return m, nil

		case key.Matches(msg, keys.PreviewDn):
			m.preview.LineDown(m.panelHeight() / 2)
			return m, nil

		case key.Matches(msg, keys.PageUp):
			m.preview.LineUp(m.panelHeight())
			return m, nil

		case key.Matches(msg, keys.PageDown):
			m.preview.LineDown(m.panelHeight())
			return m, nil
		}

		var tiCmd tea.Cmd
		before := m.filterInput.Value()
		m.filterInput, tiCmd = m.filterInput.Update(msg)
		if v := m.filterInput.Value(); v != before {
			m.applyFilter(v)
			m.refreshPreview()
		}
		return m, tiCmd
	}

	return m, nil
}

func (m model) View() string {
	if m.quitting || !m.ready {
		return ""
	}

	listW := m.listWidth()
	previewW := m.previewWidth()
	panelH := m.panelHeight()

	inputRow := m.filterInput.View()

	listPanel := stylePanelBorder.
		Width(listW).
		Height(panelH).
		Render(m.renderList(listW, panelH))

	m.preview.Width = previewW
	m.preview.Height = panelH
	previewPanel := styleActiveBorder.
		Width(previewW).
		Height(panelH).
		Render(m.preview.View())

	panels := lipgloss.JoinHorizontal(lipgloss.Top, listPanel, previewPanel)

	return lipgloss.JoinVertical(lipgloss.Left, inputRow, panels, m.statusBar())
}

// renderList renders the left panel: two lines per record with scrolling.
func (m model) renderList(width, height int) string {
	if len(m.filtered) == 0 {
		return lipgloss.NewStyle().
			Foreground(colorDim).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No matching messages")
	}

	var lines []string
	for pos, ri := range m.filtered {
		if pos < m.listOff {
			continue
		}
		if len(lines)+linesPerItem > height {
			break
		}
		lines = append(lines, m.formatItem(m.records[ri], width, pos == m.cursor)...)
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

// formatItem formats one record as two lines:
//
//	line 1: [>] author  MM-DD HH:MM
//	line 2:     body snippet (dimmed)
func (m model) formatItem(r feature.Record, width int, selected bool) []string {
	ts := r.Timestamp.Format("01-02 15:04")

	author := r.Author
	authorMax := width - 2 - len(ts) - 3
	if authorMax < 4 {
		authorMax = 4
	}
	if runewidth.StringWidth(author) > authorMax {
		author = runewidth.Truncate(author, authorMax, "…")
	}

	line1 := fmt.Sprintf("%s  %s", styleAuthor.Render(author), ts)
	if selected {
		line1 = styleListSelected.Render("> ") + line1
	} else {
		line1 = "  " + line1
	}

	snippet := strings.ReplaceAll(r.Body, "\n", " ")
	snippetMax := width - 4
	if snippetMax < 0 {
		snippetMax = 0
	}
	if runewidth.StringWidth(snippet) > snippetMax {
		snippet = runewidth.Truncate(snippet, snippetMax, "")
	}
	line2 := "    " + lipgloss.NewStyle().Foreground(colorDim).Render(snippet)

	return []string{line1, line2}
}

func (m *model) adjustListScroll() {
	visible := m.panelHeight() / linesPerItem
	if visible < 1 {
		visible = 1
	}
	if m.cursor < m.listOff {
		m.listOff = m.cursor
	}
	if m.cursor >= m.listOff+visible {
		m.listOff = m.cursor - visible + 1
	}
}

// refreshPreview re-renders the detail panel for the selected record.
func (m *model) refreshPreview() {
	if len(m.filtered) == 0 || m.cursor >= len(m.filtered) {
		m.preview.SetContent("")
		m.previewIdx = -1
		return
	}
	ri := m.filtered[m.cursor]
	if ri == m.previewIdx {
		return
	}
	m.preview.SetContent(renderDetail(m.records[ri]))
	m.preview.GotoTop()
	m.previewIdx = ri
}

// renderDetail renders the full record: header, derived columns, body.
func renderDetail(r feature.Record) string {
	dim := lipgloss.NewStyle().Foreground(colorDim)

	var flags []string
	if r.IsQuestion {
		flags = append(flags, styleQuestion.Render("question"))
	}
	if r.IsMeetup {
		flags = append(flags, "meetup-intent")
	}
	if r.IsMedia {
		flags = append(flags, "media")
	}
	if r.HasEmoji {
		flags = append(flags, fmt.Sprintf("emoji×%d", r.EmojiCount))
	}

	resp := "-"
	if r.ResponseSec != nil {
		resp = fmt.Sprintf("%.0fs", *r.ResponseSec)
	}

	var b strings.Builder
	b.WriteString(styleAuthor.Render(r.Author) + "  " + dim.Render(r.Timestamp.Format("2006-01-02 15:04")) + "\n")
	b.WriteString(dim.Render(fmt.Sprintf("chars=%d words=%d response=%s", r.Length, r.WordCount, resp)) + "\n")
	if len(flags) > 0 {
		b.WriteString(strings.Join(flags, " ") + "\n")
	}
	b.WriteString("\n")
	b.WriteString(r.Body)
	return b.String()
}

func (m model) listWidth() int {
	if m.width <= 0 {
		return 40
	}
	w := m.width*40/100 - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m model) previewWidth() int {
	if m.width <= 0 {
		return 60
	}
	w := m.width*60/100 - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m model) panelHeight() int {
	if m.height <= 0 {
		return 20
	}
	h := m.height - 6
	if h < 5 {
		h = 5
	}
	return h
}

func (m model) statusBar() string {
	parts := []string{
		fmt.Sprintf("%d/%d messages", len(m.filtered), len(m.records)),
		"up/dn navigate",
		"C-u/C-d preview",
		"Enter copy body",
		"Esc quit",
	}
	return styleStatusBar.Render(strings.Join(parts, " | "))
}
