package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/composeviz/pkg/validate"
)

// inspectCommand creates the inspect command, an interactive browser over a
// validation report.
func (c *CLI) inspectCommand() *cobra.Command {
	var flags pipelineFlags

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Browse the validation report of a compose document",
		Long: `Open an interactive list of every issue and security warning in a compose
document. Use tab to filter by severity and enter to show the other issues
of the selected service.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts, err := flags.options(cmd, c.Config.Layout)
			if err != nil {
				return err
			}
			text, name, err := c.readDocument(cmd, args[0])
			if err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			report, _, err := runner.ValidateWithCacheInfo(ctx, text, opts)
			if err != nil {
				return err
			}
			if len(report.All()) == 0 {
				printSuccess(cmd.OutOrStdout(), "%s has no issues", name)
				return nil
			}

			p := tea.NewProgram(NewIssueListModel(name, report),
				tea.WithContext(ctx),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()))
			_, err = p.Run()
			return err
		},
	}

	flags.registerCache(cmd)
	return cmd
}

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// severityFilters is the order tab cycles through; "" shows everything.
var severityFilters = []validate.Severity{"", validate.SeverityError, validate.SeverityWarning, validate.SeverityInfo}

// =============================================================================
// IssueListModel - Interactive report browser
// =============================================================================

// IssueListModel is the bubbletea model behind "composeviz inspect".
type IssueListModel struct {
	Name   string
	Report validate.Report

	// Issues is the filtered view of Report.All().
	Issues []validate.Issue
	Filter int // index into severityFilters

	Cursor  int
	Offset  int
	Height  int
	Details bool
}

// NewIssueListModel creates a model showing every issue of report.
func NewIssueListModel(name string, report validate.Report) IssueListModel {
	m := IssueListModel{Name: name, Report: report, Height: 15}
	m.applyFilter()
	return m
}

func (m *IssueListModel) applyFilter() {
	want := severityFilters[m.Filter]
	m.Issues = m.Issues[:0:0]
	for _, is := range m.Report.All() {
		if want == "" || is.Severity == want {
			m.Issues = append(m.Issues, is)
		}
	}
	m.Cursor, m.Offset = 0, 0
}

// Selected returns the issue under the cursor.
func (m IssueListModel) Selected() (validate.Issue, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Issues) {
		return validate.Issue{}, false
	}
	return m.Issues[m.Cursor], true
}

func (m IssueListModel) Init() tea.Cmd {
	return nil
}

func (m IssueListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Issues)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "tab":
			m.Filter = (m.Filter + 1) % len(severityFilters)
			m.applyFilter()
		case "enter":
			m.Details = !m.Details
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 10
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m IssueListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Name))
	if m.Report.IsValid {
		b.WriteString("  " + StyleSuccess.Render("valid"))
	} else {
		b.WriteString("  " + StyleError.Render("invalid"))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⇥ filter  ⏎ details  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Issues))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		is := m.Issues[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := "—"
		if is.Line > 0 {
			line = strconv.Itoa(is.Line)
		}
		rows = append(rows, []string{cursor, string(is.Severity), line, dash(is.Service), dash(is.Field), is.Message})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Severity", "Line", "Service", "Field", "Message").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Issues) {
				return lipgloss.NewStyle()
			}
			if idx == m.Cursor {
				return listSelectedStyle
			}
			if col == 1 {
				return severityStyle(m.Issues[idx].Severity)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n")

	filter := "all"
	if f := severityFilters[m.Filter]; f != "" {
		filter = string(f)
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d] filter: %s", min(m.Cursor+1, len(m.Issues)), len(m.Issues), filter)))

	if m.Details {
		if is, ok := m.Selected(); ok && is.Service != "" {
			b.WriteString("\n\n")
			b.WriteString(StyleTitle.Render("Service " + is.Service))
			b.WriteString("\n")
			for _, other := range m.Report.ForService(is.Service) {
				b.WriteString(severityIcon(other.Severity) + " " + other.Message + "\n")
			}
		}
	}

	return b.String()
}

func severityStyle(sev validate.Severity) lipgloss.Style {
	switch sev {
	case validate.SeverityError:
		return StyleError
	case validate.SeverityWarning:
		return StyleWarning
	}
	return listDimStyle
}

func dash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
