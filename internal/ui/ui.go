// package ui implements grit's interactive track browser: a bubbletea
// program over the working playlist's head snapshot, used by `grit
// browse` as an alternative to paging through `grit status`/`grit log`
// JSON output by hand.
package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/grit-vcs/grit/internal/models"
)

// keyMap defines the key.Binding mapping for the browser.
type keyMap struct {
	up    key.Binding
	down  key.Binding
	enter key.Binding
	quit  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding { return []key.Binding{k.enter, k.quit} }

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.up, k.down, k.enter, k.quit}}
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

// trackItem wraps models.Track to implement list.Item.
type trackItem struct {
	track models.Track
}

func (i trackItem) FilterValue() string { return i.track.Name }
func (i trackItem) Title() string       { return i.track.Name }
func (i trackItem) Description() string {
	artists := "unknown artist"
	if len(i.track.Artists) > 0 {
		artists = i.track.Artists[0]
		for _, a := range i.track.Artists[1:] {
			artists += ", " + a
		}
	}
	return fmt.Sprintf("%s • %s", artists, i.track.ID)
}

// Model is the browser's bubbletea model: a single scrollable list of
// the playlist's current track order plus a status line reporting the
// last selection.
type Model struct {
	playlistName string
	trackList    list.Model
	help         help.Model
	keys         keyMap
	selected     *models.Track
	width        int
	height       int
}

// NewModel builds a browser Model over snap's track list.
func NewModel(snap models.PlaylistSnapshot) *Model {
	items := make([]list.Item, len(snap.Tracks))
	for i, t := range snap.Tracks {
		items[i] = trackItem{track: t}
	}

	trackList := list.New(items, list.NewDefaultDelegate(), 0, 0)
	trackList.Title = fmt.Sprintf("%s (%d tracks)", snap.Name, len(snap.Tracks))

	return &Model{
		playlistName: snap.Name,
		trackList:    trackList,
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// Init satisfies tea.Model; the list is already populated at construction.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update satisfies tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.trackList.SetSize(msg.Width-4, msg.Height-6)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "enter":
			if item, ok := m.trackList.SelectedItem().(trackItem); ok {
				track := item.track
				m.selected = &track
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

// View satisfies tea.Model.
func (m *Model) View() string {
	body := m.trackList.View()

	status := "press enter to select a track, q to quit"
	if m.selected != nil {
		status = fmt.Sprintf("selected: %s", selectedStyle.Render(m.selected.Name))
	}

	return titleStyle.Render(m.playlistName) + "\n" + body + "\n" + statusStyle.Render(status) + "\n" + m.help.View(m.keys)
}
