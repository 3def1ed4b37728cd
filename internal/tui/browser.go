// Package tui is a terminal browser over the conversation archive.
package tui

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jasperwreed/chat2html/internal/convert"
	"github.com/jasperwreed/chat2html/internal/models"
	"github.com/jasperwreed/chat2html/internal/output"
	"github.com/jasperwreed/chat2html/internal/search"
	"github.com/jasperwreed/chat2html/internal/storage"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#075E54"))

	paneStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#075E54"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	meStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#25D366"))

	otherStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#34B7F1"))

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A0A0A0")).
			Italic(true)
)

const listLimit = 100

type Browser struct {
	store    *storage.SQLiteStore
	dbPath   string
	selfName string
}

func NewBrowser(store *storage.SQLiteStore, dbPath, selfName string) *Browser {
	return &Browser{store: store, dbPath: dbPath, selfName: selfName}
}

func (b *Browser) Run() error {
	m := newModel(b.store, b.dbPath, b.selfName)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

type listItem struct {
	conversation models.Conversation
}

func (i listItem) FilterValue() string {
	return i.conversation.Title
}

func (i listItem) Title() string {
	return i.conversation.Title
}

func (i listItem) Description() string {
	desc := humanize.Time(i.conversation.CreatedAt)
	if len(i.conversation.Tags) > 0 {
		desc = fmt.Sprintf("%s | %s", strings.Join(i.conversation.Tags, ","), desc)
	}
	return desc
}

type inputMode int

const (
	modeNormal inputMode = iota
	modeCommand
	modeFilter
)

// Results of background commands.
type (
	searchDoneMsg struct {
		query         string
		conversations []models.Conversation
		err           error
	}
	deleteDoneMsg struct {
		id  int64
		err error
	}
	exportDoneMsg struct {
		path string
		err  error
	}
	statsMsg struct {
		stats *models.ConversationStats
		err   error
	}
)

type model struct {
	store        *storage.SQLiteStore
	dbPath       string
	selfName     string
	list         list.Model
	viewport     viewport.Model
	commandInput textinput.Model
	selectedConv *models.Conversation
	width        int
	height       int
	ready        bool
	err          error
	mode         inputMode
	status       string
}

func newModel(store *storage.SQLiteStore, dbPath, selfName string) model {
	conversations, err := store.ListConversations(listLimit, 0, nil)

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New(toItems(conversations), delegate, 0, 0)
	l.Title = "Chats"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	vp := viewport.New(0, 0)
	vp.SetContent("Select a chat to view")

	cmdInput := textinput.New()
	cmdInput.Prompt = ":"
	cmdInput.CharLimit = 256
	cmdInput.Width = 50

	return model{
		store:        store,
		dbPath:       dbPath,
		selfName:     selfName,
		list:         l,
		viewport:     vp,
		commandInput: cmdInput,
		err:          err,
	}
}

func toItems(conversations []models.Conversation) []list.Item {
	items := make([]list.Item, 0, len(conversations))
	for _, conv := range conversations {
		items = append(items, listItem{conversation: conv})
	}
	return items
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		listWidth := m.width / 3
		m.list.SetSize(listWidth, m.height-3)

		m.viewport.Width = m.width - listWidth - 4
		m.viewport.Height = m.height - 5
		m.commandInput.Width = m.width - 4

	case searchDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Search failed: %v", msg.err)
			return m, nil
		}
		m.list.SetItems(toItems(msg.conversations))
		m.status = fmt.Sprintf("%d chats match %q", len(msg.conversations), msg.query)
		return m, nil

	case deleteDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Delete failed: %v", msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("Deleted chat %d", msg.id)
		m.selectedConv = nil
		m.updateViewport()
		m.refreshList()
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Export failed: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Exported to %s", msg.path)
		}
		return m, nil

	case statsMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Stats failed: %v", msg.err)
			return m, nil
		}
		m.viewport.SetContent(renderStats(msg.stats))
		m.viewport.GotoTop()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.mode {
		case modeNormal:
			switch msg.String() {
			case "q":
				return m, tea.Quit

			case ":":
				m.mode = modeCommand
				m.commandInput.SetValue("")
				m.commandInput.Focus()
				return m, textinput.Blink

			case "/":
				m.mode = modeFilter
				m.status = ""

			case "enter":
				m.selectCurrent()
				return m, nil

			case "?":
				m.showHelp()
				return m, nil
			}

		case modeCommand:
			switch msg.String() {
			case "enter":
				cmd = m.executeCommand(m.commandInput.Value())
				m.mode = modeNormal
				m.commandInput.Blur()
				m.commandInput.SetValue("")
				return m, cmd

			case "esc":
				m.mode = modeNormal
				m.commandInput.Blur()
				m.commandInput.SetValue("")
				m.status = ""
				return m, nil
			}

		case modeFilter:
			if msg.String() == "esc" || msg.String() == "enter" {
				m.mode = modeNormal
			}
		}
	}

	switch m.mode {
	case modeNormal, modeFilter:
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)

	case modeCommand:
		m.commandInput, cmd = m.commandInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *model) selectCurrent() {
	item, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return
	}
	conv, err := m.store.GetConversation(item.conversation.ID)
	if err != nil {
		m.status = fmt.Sprintf("Load failed: %v", err)
		return
	}
	m.selectedConv = conv
	m.updateViewport()
}

func (m *model) executeCommand(input string) tea.Cmd {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}

	command, args := parts[0], parts[1:]

	switch command {
	case "search", "s":
		if len(args) == 0 {
			m.status = "Usage: :search <query>"
			return nil
		}
		query := strings.Join(args, " ")
		m.status = fmt.Sprintf("Searching for: %s", query)
		return searchCmd(m.store, query)

	case "all":
		m.refreshList()
		m.status = ""
		return nil

	case "stats":
		return statsCmd(m.store)

	case "export":
		if m.selectedConv == nil {
			m.status = "No chat selected"
			return nil
		}
		if len(args) == 0 {
			m.status = "Usage: :export <file.html>"
			return nil
		}
		return exportCmd(m.selectedConv, args[0], m.selfName)

	case "delete":
		if m.selectedConv == nil {
			m.status = "No chat selected"
			return nil
		}
		return deleteCmd(m.store, m.selectedConv.ID)

	case "help", "h":
		m.showHelp()
		return nil

	case "quit", "q":
		return tea.Quit

	default:
		m.status = fmt.Sprintf("Unknown command: %s", command)
		return nil
	}
}

func searchCmd(store *storage.SQLiteStore, query string) tea.Cmd {
	return func() tea.Msg {
		results, err := search.NewSearcher(store).Search(query, listLimit)
		if err != nil {
			return searchDoneMsg{query: query, err: err}
		}

		seen := make(map[int64]bool)
		var conversations []models.Conversation
		for _, r := range results {
			if seen[r.Conversation.ID] {
				continue
			}
			seen[r.Conversation.ID] = true
			conversations = append(conversations, r.Conversation)
		}
		return searchDoneMsg{query: query, conversations: conversations}
	}
}

func deleteCmd(store *storage.SQLiteStore, id int64) tea.Cmd {
	return func() tea.Msg {
		return deleteDoneMsg{id: id, err: store.DeleteConversation(id)}
	}
}

func statsCmd(store *storage.SQLiteStore) tea.Cmd {
	return func() tea.Msg {
		stats, err := store.GetStats()
		return statsMsg{stats: stats, err: err}
	}
}

func exportCmd(conv *models.Conversation, path, selfName string) tea.Cmd {
	return func() tea.Msg {
		page := convert.Render(conv, filepath.Dir(path), selfName)
		return exportDoneMsg{path: path, err: output.WriteNew(path, []byte(page))}
	}
}

func (m *model) refreshList() {
	conversations, err := m.store.ListConversations(listLimit, 0, nil)
	if err != nil {
		m.status = fmt.Sprintf("Refresh failed: %v", err)
		return
	}
	m.list.SetItems(toItems(conversations))
}

func (m *model) showHelp() {
	help := `
Commands (press : to enter command mode):

  :search <query> - Full-text search message bodies
  :all            - Show all chats again
  :stats          - Show archive statistics
  :export <file>  - Write the selected chat as HTML
  :delete         - Delete the selected chat
  :help           - Show this help

Keys:
  j/k or ↑/↓     - Navigate list
  enter          - View chat
  /              - Filter list by title
  :              - Command mode
  ?              - Show help
  q              - Quit
`
	m.viewport.SetContent(help)
	m.viewport.GotoTop()
}

func (m *model) updateViewport() {
	if m.selectedConv == nil {
		m.viewport.SetContent("Select a chat to view")
		return
	}
	m.viewport.SetContent(renderConversation(m.selectedConv))
	m.viewport.GotoTop()
}

// renderConversation lays a chat out as "[timestamp] sender: body" lines
// under a date heading per calendar day.
func renderConversation(conv *models.Conversation) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render(conv.Title))
	content.WriteString("\n\n")
	fmt.Fprintf(&content, "Source: %s\n", conv.SourceDir)
	if conv.OutputPath != "" {
		fmt.Fprintf(&content, "Output: %s\n", conv.OutputPath)
	}
	if len(conv.Tags) > 0 {
		fmt.Fprintf(&content, "Tags: %s\n", strings.Join(conv.Tags, ", "))
	}
	fmt.Fprintf(&content, "Converted: %s (%s)\n", conv.CreatedAt.Format("2006-01-02 15:04:05"), humanize.Time(conv.CreatedAt))
	fmt.Fprintf(&content, "Messages: %s\n", humanize.Comma(int64(len(conv.Messages))))
	content.WriteString("\n" + strings.Repeat("─", 40) + "\n")

	lastDay := ""
	for _, msg := range conv.Messages {
		day := msg.Timestamp.Format("02 January 2006")
		if day != lastDay {
			content.WriteString("\n" + dateStyle.Render(day) + "\n")
			lastDay = day
		}

		style := otherStyle
		if msg.SenderClass == models.SenderMe {
			style = meStyle
		}
		fmt.Fprintf(&content, "[%s] %s %s\n", msg.TimestampDisplay, style.Render(msg.Sender+":"), msg.Body)
	}

	return content.String()
}

func renderStats(stats *models.ConversationStats) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("Statistics"))
	content.WriteString("\n\n")
	fmt.Fprintf(&content, "Chats:       %s\n", humanize.Comma(int64(stats.TotalConversations)))
	fmt.Fprintf(&content, "Messages:    %s\n", humanize.Comma(int64(stats.TotalMessages)))
	fmt.Fprintf(&content, "Attachments: %s\n", humanize.Comma(int64(stats.TotalAttachments)))

	writeBreakdown(&content, "By sender", stats.SenderBreakdown)
	writeBreakdown(&content, "By kind", stats.KindBreakdown)
	return content.String()
}

func writeBreakdown(b *strings.Builder, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	fmt.Fprintf(b, "\n%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(b, "  %-20s %s\n", k, humanize.Comma(int64(counts[k])))
	}
}

func (m model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	if m.err != nil {
		return fmt.Sprintf("\n  Error: %v\n", m.err)
	}

	listView := paneStyle.
		Width(m.width/3 - 2).
		Height(m.height - 3).
		Render(m.list.View())

	contentView := paneStyle.
		Width(m.width - m.width/3 - 2).
		Height(m.height - 3).
		Render(m.viewport.View())

	var bottomBar string
	switch {
	case m.mode == modeCommand:
		bottomBar = m.commandInput.View()
	case m.mode == modeFilter:
		bottomBar = helpStyle.Render("  Filter mode - Type to filter • ESC: done")
	case m.status != "":
		bottomBar = helpStyle.Render("  " + m.status)
	default:
		bottomBar = helpStyle.Render("  j/k: navigate • enter: view • /: filter • :: command • ?: help • q: quit")
	}

	dbInfo := "DB: default"
	if m.dbPath != "" {
		dbInfo = fmt.Sprintf("DB: %s", filepath.Base(m.dbPath))
	}

	topBar := lipgloss.JoinHorizontal(
		lipgloss.Left,
		titleStyle.Render("chat2html"),
		helpStyle.Render("  "+dbInfo),
	)

	return topBar + "\n" +
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			listView,
			contentView,
		) + "\n" + bottomBar
}
