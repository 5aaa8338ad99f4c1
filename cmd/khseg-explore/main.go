// khseg-explore is an interactive segmentation explorer: it re-segments
// what you type on every keystroke and shows each segment as a chip with
// its dictionary cost. Useful for debugging dictionary coverage and the
// post-processing passes.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/openkhmer/khseg/internal/logger"
	"github.com/openkhmer/khseg/khmer"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1)

	knownStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("82")).
			Padding(0, 1)

	unknownStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("196")).
			Padding(0, 1)

	tokenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("241")).
			Padding(0, 1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

type model struct {
	input    textinput.Model
	seg      *khmer.Segmenter
	dict     *khmer.Dictionary
	segments []string
}

func newModel(dict *khmer.Dictionary) model {
	ti := textinput.New()
	ti.Placeholder = "type Khmer text"
	ti.Focus()
	ti.CharLimit = 512
	return model{
		input: ti,
		seg:   khmer.NewSegmenter(dict),
		dict:  dict,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.segments = m.seg.Segment(m.input.Value())
	return m, cmd
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("khseg explorer"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if len(m.segments) == 0 {
		b.WriteString(dimStyle.Render("segments appear here"))
	}
	chips := make([]string, 0, len(m.segments))
	details := make([]string, 0, len(m.segments))
	for _, seg := range m.segments {
		switch {
		case m.dict.Contains(seg):
			chips = append(chips, knownStyle.Render(seg))
			details = append(details, fmt.Sprintf("%s %.2f", seg, m.dict.WordCost(seg)))
		case isTokenSegment(seg):
			chips = append(chips, tokenStyle.Render(seg))
		default:
			chips = append(chips, unknownStyle.Render(seg))
			details = append(details, seg+" ?")
		}
	}
	b.WriteString(strings.Join(chips, " "))
	if len(details) > 0 {
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render(strings.Join(details, "  ")))
	}

	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("esc to quit"))
	b.WriteString("\n")
	return b.String()
}

// isTokenSegment marks segments explained by a non-dictionary rule:
// numbers, separators, acronyms.
func isTokenSegment(seg string) bool {
	runes := []rune(seg)
	if len(runes) == 0 {
		return false
	}
	if khmer.IsDigit(runes[0]) || khmer.IsSeparator(runes[0]) {
		return true
	}
	return len(runes) >= 2 && strings.ContainsRune(seg, '.')
}

func main() {
	if err := mainE(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func mainE() error {
	_ = godotenv.Load()

	fs := ff.NewFlagSet("khseg-explore")
	var (
		dictPath = fs.StringLong("dict", "data/khmer_words.txt", "newline-delimited word list")
		freqPath = fs.StringLong("freq", "data/khmer_word_frequencies.json", "JSON word frequency table")
	)

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVars()); err != nil {
		fmt.Printf("%s\n", ffhelp.Flags(fs))
		return fmt.Errorf("parsing flags: %w", err)
	}

	logger.New()

	dict := khmer.NewDictionary()
	dict.Load(*dictPath, *freqPath)

	p := tea.NewProgram(newModel(dict))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running explorer: %w", err)
	}
	return nil
}
