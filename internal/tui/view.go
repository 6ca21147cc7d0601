// internal/tui/view.go
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/tigerwatch/internal/progress"
	"github.com/user/tigerwatch/internal/render"
	"github.com/user/tigerwatch/internal/session"
	"github.com/user/tigerwatch/internal/types"
)

// toolResultTokenBudget bounds how much of a tool result is shown inline.
const toolResultTokenBudget = 200

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	systemStyle    = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("178"))
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	approvalStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("203")).
			Padding(1, 2)
	stepDoneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	stepRunningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	stepErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	stepPendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

func (m Model) View() string {
	if !m.ready {
		return "Starting session…"
	}

	if m.mode == modeTools {
		return m.renderToolPicker()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.view.View())
	b.WriteString("\n")

	if pending := m.ctrl.PendingApproval(); pending != nil {
		b.WriteString(m.renderApproval(pending))
	} else {
		b.WriteString(m.renderFooter())
	}
	return b.String()
}

func (m Model) renderHeader() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("tigerwatch — investigation session"))
	b.WriteString("\n")

	conn := "offline"
	if m.ctrl.Connected() {
		conn = "live"
	}
	phase := string(m.ctrl.Phase())
	b.WriteString(statusStyle.Render(fmt.Sprintf("phase: %s · stream: %s", phase, conn)))
	b.WriteString("\n")
	b.WriteString(m.renderSteps())
	b.WriteString("\n")
	b.WriteString(m.renderActivity())
	return b.String()
}

// iconGlyphs maps the role table's icon keys to terminal glyphs.
var iconGlyphs = map[string]string{
	"search": "🔍",
	"chart":  "📊",
	"check":  "✓",
	"doc":    "📄",
	"agent":  "•",
}

// phaseColors maps the role table's color keys to the terminal palette.
var phaseColors = map[string]lipgloss.Color{
	"blue":   lipgloss.Color("39"),
	"purple": lipgloss.Color("135"),
	"amber":  lipgloss.Color("178"),
	"green":  lipgloss.Color("42"),
	"gray":   lipgloss.Color("241"),
}

// renderActivity shows the most recent agent activity with the role's
// display tuple.
func (m Model) renderActivity() string {
	recent := m.ctrl.Recent()
	if len(recent) == 0 {
		return ""
	}

	a := recent[0]
	d, known := progress.Lookup(a.Agent)
	label := d.Label
	if !known {
		label = a.Action
	}
	line := fmt.Sprintf("%s %s — %s", iconGlyphs[d.Icon], label, a.Status)
	if a.Progress != nil {
		line += fmt.Sprintf(" (%d%%)", *a.Progress)
	}
	return lipgloss.NewStyle().Foreground(phaseColors[d.Color]).Render(line)
}

func (m Model) renderSteps() string {
	steps := m.ctrl.Steps()
	if len(steps) == 0 {
		return statusStyle.Render("no agent activity yet")
	}

	parts := make([]string, 0, len(steps))
	for _, s := range steps {
		switch s.Status {
		case types.StepCompleted:
			parts = append(parts, stepDoneStyle.Render("● "+s.Step))
		case types.StepRunning:
			parts = append(parts, stepRunningStyle.Render(m.spin.View()+s.Step))
		case types.StepError:
			parts = append(parts, stepErrorStyle.Render("✗ "+s.Step))
		default:
			parts = append(parts, stepPendingStyle.Render("○ "+s.Step))
		}
	}
	return strings.Join(parts, statusStyle.Render("  →  "))
}

func (m Model) renderTranscript() string {
	var b strings.Builder
	for _, msg := range m.ctrl.Messages() {
		b.WriteString(renderMessage(msg))
		b.WriteString("\n\n")
	}
	return b.String()
}

func renderMessage(msg *types.Message) string {
	content := render.ToMarkdown(msg.Content)
	var header string
	switch msg.Role {
	case types.RoleUser:
		header = userStyle.Render("you")
	case types.RoleAssistant:
		header = assistantStyle.Render("agents")
	default:
		return systemStyle.Render("• " + content)
	}

	body := content
	if msg.ToolUsed != "" {
		body += "\n" + statusStyle.Render("tool: "+msg.ToolUsed)
	}
	if len(msg.ToolResult) > 0 {
		excerpt := render.Excerpt(string(msg.ToolResult), toolResultTokenBudget)
		body += "\n" + statusStyle.Render(excerpt)
	}
	return header + "\n" + body
}

func (m Model) renderApproval(pending *types.PendingApproval) string {
	var b strings.Builder
	b.WriteString("Approval required: " + pending.Type + "\n")
	if len(pending.Data) > 0 {
		b.WriteString(render.Excerpt(string(pending.Data), toolResultTokenBudget) + "\n")
	}
	b.WriteString("\n[y] approve   [n] reject   [esc] dismiss")
	return approvalStyle.Render(b.String())
}

func (m Model) renderFooter() string {
	var b strings.Builder
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}
	if m.ctrl.Phase() == session.PhaseCompleting {
		b.WriteString(systemStyle.Render("Investigation complete — opening workspace…"))
		return b.String()
	}

	selected := len(m.ctrl.Tools().Snapshot())
	hint := "ctrl+t: tools"
	if selected > 0 {
		hint = fmt.Sprintf("ctrl+t: tools (%d selected)", selected)
	}
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(hint + " · esc: quit"))
	return b.String()
}

func (m Model) renderToolPicker() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Select tools for the agent pool"))
	b.WriteString("\n")
	b.WriteString(statusStyle.Render("empty selection means no restriction"))
	b.WriteString("\n\n")

	catalog := m.ctrl.Tools().Catalog()
	if len(catalog) == 0 {
		b.WriteString(statusStyle.Render("no tools discovered"))
	}

	lastServer := ""
	for i, tool := range catalog {
		if tool.Server != lastServer {
			b.WriteString(statusStyle.Render(tool.Server))
			b.WriteString("\n")
			lastServer = tool.Server
		}

		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		check := "[ ]"
		line := fmt.Sprintf("%s%s %s — %s", cursor, check, tool.Name, tool.Description)
		if m.ctrl.Tools().Selected(tool.Name) {
			line = fmt.Sprintf("%s[x] %s — %s", cursor, tool.Name, tool.Description)
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(statusStyle.Render("space: toggle · esc: back"))
	return b.String()
}
