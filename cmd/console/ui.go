package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/mythos-client/internal/config"
	"github.com/jwebster45206/mythos-client/internal/services/queue"
	"github.com/jwebster45206/mythos-client/internal/session"
	"github.com/jwebster45206/mythos-client/pkg/chat"
	"github.com/jwebster45206/mythos-client/pkg/state"
	"github.com/jwebster45206/mythos-client/pkg/textfilter"
)

const PlaceHolderText = "Type a command..."

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *config.Config
	session      *session.Session
	queue        *queue.CommandQueue
	filter       *textfilter.ChatFilter
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	statusText   string

	// Quit confirmation state
	showQuitModal bool
}

// feedEventMsg signals that a new event landed in the session log and
// the projection should be re-read.
type feedEventMsg struct{}

// feedErrorMsg signals that the event feed died.
type feedErrorMsg struct {
	err error
}

type commandSentMsg struct {
	command string
	err     error
}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	chatStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	whisperStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")) // purple

	shoutStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")). // yellow
			Bold(true)

	combatStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")) // red

	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")) // light grey

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(cfg *config.Config, sess *session.Session, q *queue.CommandQueue) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	var filter *textfilter.ChatFilter
	if cfg.FamilySafe {
		filter = textfilter.NewChatFilter()
	}

	return ConsoleUI{
		config:       cfg,
		session:      sess,
		queue:        q,
		filter:       filter,
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: metaVp,
		ready:        false,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		chatWidth := int(float64(m.width)*0.75) - 4
		metaWidth := m.width - chatWidth - 6

		m.chatViewport.Width = chatWidth - 2
		m.chatViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(chatWidth - 4)

		m.ready = true
		m.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()

			if strings.HasPrefix(input, "/") {
				return m.handleLocalCommand(input)
			}

			m.session.RecordCommand(input)
			m.refresh()
			return m, m.sendCommand(input)
		}

	case feedEventMsg:
		m.refresh()

	case feedErrorMsg:
		m.err = msg.err
		m.statusText = errorStyle.Render("Event feed lost: " + msg.err.Error())
		m.refresh()

	case commandSentMsg:
		if msg.err != nil {
			m.statusText = errorStyle.Render(fmt.Sprintf("Failed to send %q: %v", msg.command, msg.err))
			m.refresh()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// refresh re-reads the session projection into both panels.
func (m *ConsoleUI) refresh() {
	if !m.ready {
		return
	}
	gs := m.session.State()
	m.writeChatContent(gs)
	m.metaViewport.SetContent(m.writeMetadata(gs))
}

func (m *ConsoleUI) writeChatContent(gs *state.GameState) {
	chatWidth := m.chatViewport.Width - 6

	var content strings.Builder
	content.WriteString(titleStyle.Render("MYTHOS") + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-6, 1))) + "\n\n")

	for _, msg := range gs.Messages {
		content.WriteString(m.formatMessage(msg, chatWidth) + "\n")
	}

	if m.statusText != "" {
		content.WriteString("\n" + m.statusText + "\n")
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

// formatMessage renders one transcript line, wrapped to the panel and
// colored by message type.
func (m *ConsoleUI) formatMessage(msg chat.ChatMessage, width int) string {
	text := msg.Text
	if m.filter != nil {
		text = m.filter.Clean(text)
	}
	wrapped := wordwrap.String(text, max(width-2, 10))

	switch msg.MessageType {
	case chat.MessageTypeCombat:
		return combatStyle.Render(wrapped)
	case chat.MessageTypeWhisper:
		return whisperStyle.Render(wrapped)
	case chat.MessageTypeShout:
		return shoutStyle.Render(wrapped)
	case chat.MessageTypeChat, chat.MessageTypeEmote:
		return chatStyle.Render(wrapped)
	default:
		return systemStyle.Render(wrapped)
	}
}

func (m *ConsoleUI) writeMetadata(gs *state.GameState) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("DREAMER") + "\n\n")

	if gs.Player != nil {
		content.WriteString(labelStyle.Render(gs.Player.Name) + "\n")
		if cur, maxV, ok := gs.Player.Vitality(); ok {
			content.WriteString(fmt.Sprintf("Vitality: %d/%d\n", cur, maxV))
		}
		if cur, maxL, ok := gs.Player.Lucidity(); ok {
			content.WriteString(fmt.Sprintf("Lucidity: %d/%d\n", cur, maxL))
		}
		if posture := gs.Player.Posture(); posture != "" {
			content.WriteString("Posture: " + posture + "\n")
		}
		if gs.Player.InCombat {
			content.WriteString(combatStyle.Render("IN COMBAT") + "\n")
		}
		if gs.Player.Dead {
			content.WriteString(errorStyle.Render("DEAD") + "\n")
		}
		content.WriteString("\n")
	} else if m.config.PlayerName != "" {
		content.WriteString(fmt.Sprintf("Waiting for login as %s...\n\n", m.config.PlayerName))
	} else {
		content.WriteString("Waiting for login...\n\n")
	}

	if gs.LoginGracePeriodActive {
		content.WriteString(fmt.Sprintf("Grace period: %.0fs\n\n", gs.LoginGracePeriodRemaining))
	}

	if gs.Room != nil {
		content.WriteString(labelStyle.Render(gs.Room.Name) + "\n")
		exits := make([]string, 0, len(gs.Room.Exits))
		for dir := range gs.Room.Exits {
			exits = append(exits, dir)
		}
		sort.Strings(exits)
		if len(exits) > 0 {
			content.WriteString("Exits: " + strings.Join(exits, ", ") + "\n")
		}
		content.WriteString(fmt.Sprintf("Occupants (%d):\n", gs.Room.OccupantCount))
		for _, name := range gs.Room.Occupants {
			content.WriteString("• " + name + "\n")
		}
		content.WriteString("\n")
	}

	if gs.MythosTime != nil {
		content.WriteString(gs.MythosTime.String() + "\n\n")
	}

	if gs.FollowingTarget != "" {
		content.WriteString("Following: " + gs.FollowingTarget + "\n\n")
	}
	if gs.PendingFollowRequest != nil {
		content.WriteString(fmt.Sprintf("%s wants you to follow them.\n\n", gs.PendingFollowRequest.From))
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• /copy: Copy transcript\n")
	content.WriteString("• /logout: End session\n")

	return content.String()
}

func (m ConsoleUI) handleLocalCommand(input string) (tea.Model, tea.Cmd) {
	switch strings.ToLower(input) {
	case "/help":
		helpText := `
Commands:
• /help - Show this help
• /copy - Copy the transcript to the clipboard
• /logout - End the session and clear its log
• Ctrl+C - Quit

Anything else you type is sent to the game server.
`
		m.statusText = titleStyle.Render("Help:") + helpText
		m.refresh()

	case "/copy":
		if err := clipboard.WriteAll(m.transcript()); err != nil {
			m.statusText = errorStyle.Render("Copy failed: " + err.Error())
		} else {
			m.statusText = systemStyle.Render("Transcript copied to clipboard.")
		}
		m.refresh()

	case "/logout":
		return m, m.logout()

	default:
		m.statusText = errorStyle.Render("Unknown command: " + input)
		m.refresh()
	}

	return m, nil
}

// transcript renders the message history as plain text for the clipboard.
func (m ConsoleUI) transcript() string {
	gs := m.session.State()
	var b strings.Builder
	for _, msg := range gs.Messages {
		text := msg.Text
		if m.filter != nil {
			text = m.filter.Clean(text)
		}
		b.WriteString(text + "\n")
	}
	return b.String()
}

func (m ConsoleUI) sendCommand(command string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := m.queue.Enqueue(ctx, m.session.ID, command)
		return commandSentMsg{command: command, err: err}
	}
}

func (m ConsoleUI) logout() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = m.queue.Clear(ctx, m.session.ID)
		m.session.Logout(ctx)
		return tea.Quit()
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Leave the Dreamlands?"))
	content.WriteString("\n\n")
	content.WriteString("Your session snapshot will be saved for reconnect.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(54).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}
