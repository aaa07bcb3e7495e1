package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/questkit/quest-engine/internal/handlers"
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	interaction  *handlers.InteractionResponse
	missions     []handlers.MissionView
	energy       *handlers.EnergyResponse
	transcript   []string
	chatViewport viewport.Model
	metaViewport viewport.Model
	ready        bool
	width        int
	height       int
	err          error

	// NPC selection state
	showNPCModal bool
	npcs         []handlers.NPCView
	selectedNPC  int
	loadingNPCs  bool

	// Quit confirmation state
	showQuitModal bool
}

type npcsLoadedMsg struct {
	npcs []handlers.NPCView
	err  error
}

type interactionMsg struct {
	interaction *handlers.InteractionResponse
	err         error
}

type ledgerMsg struct {
	missions []handlers.MissionView
	energy   *handlers.EnergyResponse
	err      error
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

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	optionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	reactionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

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

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)
)

// speakerTitle renders authored speaker ids ("village elder") as display
// names ("Village Elder").
var speakerTitle = cases.Title(language.English)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) ConsoleUI {
	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:       cfg,
		client:       client,
		chatViewport: chatVp,
		metaViewport: metaVp,
		showNPCModal: true,
		loadingNPCs:  true,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(m.loadNPCs(), m.refreshLedger())
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}
	if m.showNPCModal {
		return m.updateNPCModal(msg)
	}

	var (
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true

	case tea.KeyMsg:
		return m.handleKey(msg)

	case interactionMsg:
		return m.applyInteraction(msg)

	case ledgerMsg:
		if msg.err == nil {
			m.missions = msg.missions
			m.energy = msg.energy
			m.metaViewport.SetContent(m.writeMetadata())
		}
	}

	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)
	return m, tea.Batch(vpCmd, mvCmd)
}

func (m ConsoleUI) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.showQuitModal = true
		return m, nil

	case tea.KeyEnter:
		if m.interaction == nil || m.interaction.State == "ended" {
			m.showNPCModal = true
			return m, m.loadNPCs()
		}
		if m.interaction.State == "awaiting_advance" {
			return m, m.advance()
		}
		return m, nil
	}

	key := msg.String()
	if m.interaction != nil && m.interaction.State == "awaiting_choice" && key >= "1" && key <= "9" {
		option := int(key[0] - '1')
		if m.interaction.Node != nil && option < len(m.interaction.Node.Options) {
			return m, m.choose(option)
		}
		return m, nil
	}
	if key == "c" && m.interaction != nil && m.interaction.State != "ended" {
		return m, m.cancel()
	}
	return m, nil
}

func (m ConsoleUI) applyInteraction(msg interactionMsg) (tea.Model, tea.Cmd) {
	m.err = msg.err
	if msg.err != nil {
		m.writeChatContent()
		return m, nil
	}

	m.interaction = msg.interaction
	if node := msg.interaction.Node; node != nil {
		line := speakerStyle.Render(speakerTitle.String(node.Speaker)+": ") + node.Text
		m.transcript = append(m.transcript, line)
	}
	if msg.interaction.State == "ended" {
		switch msg.interaction.Reaction {
		case "assigned":
			m.transcript = append(m.transcript, reactionStyle.Render("New mission: "+msg.interaction.MissionID))
		case "turned_in":
			m.transcript = append(m.transcript, reactionStyle.Render("Mission complete: "+msg.interaction.MissionID))
		}
		m.transcript = append(m.transcript, "")
	}
	m.writeChatContent()

	if msg.interaction.State == "ended" {
		return m, m.refreshLedger()
	}
	return m, nil
}

func (m *ConsoleUI) resize() {
	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 5
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4

	m.writeChatContent()
	m.metaViewport.SetContent(m.writeMetadata())
}

// writeChatContent rebuilds the transcript view for the current width.
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6
	if chatWidth < 20 {
		chatWidth = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("QUEST ENGINE") + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", chatWidth)) + "\n\n")

	for _, line := range m.transcript {
		content.WriteString(wordwrap.String(line, chatWidth) + "\n")
	}

	if m.interaction != nil && m.interaction.Node != nil {
		if opts := m.interaction.Node.Options; len(opts) > 0 {
			content.WriteString("\n")
			for i, label := range opts {
				content.WriteString(optionStyle.Render(fmt.Sprintf("  %d - %s", i+1, label)) + "\n")
			}
			content.WriteString(promptStyle.Render("\nPress a number to choose") + "\n")
		} else {
			content.WriteString(promptStyle.Render("\nPress Enter to continue") + "\n")
		}
	} else {
		content.WriteString(promptStyle.Render("\nPress Enter to talk to someone") + "\n")
	}

	if m.err != nil {
		content.WriteString("\n" + errorStyle.Render("Error: "+m.err.Error()) + "\n")
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m *ConsoleUI) writeMetadata() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("JOURNAL") + "\n\n")

	content.WriteString("Actor:\n")
	content.WriteString(m.config.ActorID + "\n\n")

	content.WriteString("Missions:\n")
	if len(m.missions) == 0 {
		content.WriteString("None yet\n")
	}
	for _, mv := range m.missions {
		content.WriteString(fmt.Sprintf("• %s\n  %s %d/%d\n", mv.DisplayName, mv.Status, mv.Current, mv.Required))
	}
	content.WriteString("\n")

	if m.energy != nil {
		content.WriteString("Energy:\n")
		content.WriteString(fmt.Sprintf("%d/%d\n\n", m.energy.Current, m.energy.Max))
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Enter: Continue\n")
	content.WriteString("• 1-9: Choose\n")
	content.WriteString("• c: Walk away\n")
	content.WriteString("• Ctrl+C: Quit\n")

	return content.String()
}

func (m ConsoleUI) loadNPCs() tea.Cmd {
	return func() tea.Msg {
		npcs, err := listNPCs(m.client, m.config.APIBaseURL)
		return npcsLoadedMsg{npcs, err}
	}
}

func (m ConsoleUI) refreshLedger() tea.Cmd {
	return func() tea.Msg {
		missions, err := listMissions(m.client, m.config.APIBaseURL, m.config.ActorID)
		if err != nil {
			return ledgerMsg{err: err}
		}
		pool, err := getEnergy(m.client, m.config.APIBaseURL, m.config.ActorID)
		return ledgerMsg{missions: missions, energy: pool, err: err}
	}
}

func (m ConsoleUI) start(npcID string) tea.Cmd {
	return func() tea.Msg {
		resp, err := startInteraction(m.client, m.config.APIBaseURL, m.config.ActorID, npcID)
		return interactionMsg{resp, err}
	}
}

func (m ConsoleUI) advance() tea.Cmd {
	return func() tea.Msg {
		resp, err := advanceInteraction(m.client, m.config.APIBaseURL, m.config.ActorID)
		return interactionMsg{resp, err}
	}
}

func (m ConsoleUI) choose(option int) tea.Cmd {
	return func() tea.Msg {
		resp, err := chooseOption(m.client, m.config.APIBaseURL, m.config.ActorID, option)
		return interactionMsg{resp, err}
	}
}

func (m ConsoleUI) cancel() tea.Cmd {
	return func() tea.Msg {
		resp, err := cancelInteraction(m.client, m.config.APIBaseURL, m.config.ActorID)
		return interactionMsg{resp, err}
	}
}

func (m ConsoleUI) updateNPCModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true

	case npcsLoadedMsg:
		m.loadingNPCs = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.npcs = msg.npcs
			if m.selectedNPC >= len(m.npcs) {
				m.selectedNPC = 0
			}
		}

	case ledgerMsg:
		if msg.err == nil {
			m.missions = msg.missions
			m.energy = msg.energy
			m.metaViewport.SetContent(m.writeMetadata())
		}

	case interactionMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.showNPCModal = false
		return m.applyInteraction(msg)

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyUp:
			if m.selectedNPC > 0 {
				m.selectedNPC--
			}
		case tea.KeyDown:
			if m.selectedNPC < len(m.npcs)-1 {
				m.selectedNPC++
			}
		case tea.KeyEnter:
			if len(m.npcs) > 0 {
				m.err = nil
				return m, m.start(m.npcs[m.selectedNPC].ID)
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				return m, nil
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
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Leave the village and quit?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderNPCModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	if m.loadingNPCs {
		content.WriteString(modalTitleStyle.Render("Loading..."))
	} else if m.err != nil {
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(m.err.Error()))
		content.WriteString("\n\n")
		content.WriteString(promptStyle.Render("Press Ctrl+C to exit"))
	} else {
		content.WriteString(modalTitleStyle.Render("Who do you talk to?"))
		content.WriteString("\n\n")

		for i, n := range m.npcs {
			name := speakerTitle.String(n.DisplayName)
			if i == m.selectedNPC {
				content.WriteString(modalSelectedItemStyle.Render("▶ " + name))
			} else {
				content.WriteString(modalItemStyle.Render("  " + name))
			}
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if m.showNPCModal {
		return m.renderNPCModal()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		m.chatViewport.View(),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}
