// Package tui renders a live terminal view of a running simulation. The
// engine pushes history views into the bubbletea program; the program never
// touches engine internals.
package tui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/roversim/internal/rover"
	"github.com/san-kum/roversim/internal/sim"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

// TickMsg carries a fresh history view from the engine loop.
type TickMsg rover.View

// FinishMsg carries the final outcome.
type FinishMsg sim.Outcome

// Model is the bubbletea model for one live run.
type Model struct {
	eng      *sim.Engine
	variant  string
	duration float64

	view    rover.View
	outcome *sim.Outcome
	paused  bool

	power []float64

	width  int
	height int
}

func NewModel(eng *sim.Engine, variant string, duration float64) Model {
	return Model{
		eng:      eng,
		variant:  variant,
		duration: duration,
		power:    make([]float64, 0, 120),
		width:    80,
		height:   24,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "escape":
			m.eng.Stop()
			if m.paused {
				m.eng.Resume()
			}
			return m, tea.Quit
		case " ", "p":
			if m.outcome == nil {
				m.paused = !m.paused
				if m.paused {
					m.eng.Pause()
				} else {
					m.eng.Resume()
				}
			}
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case TickMsg:
		m.view = rover.View(msg)
		if last, ok := m.view.Last(); ok {
			m.power = append(m.power, last.TotalPower)
			if len(m.power) > 120 {
				m.power = m.power[1:]
			}
		}
	case FinishMsg:
		o := sim.Outcome(msg)
		m.outcome = &o
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	last, ok := m.view.Last()
	if m.outcome != nil {
		if l, o := m.outcome.History.Last(); o {
			last, ok = l, true
		}
	}

	b.WriteString("\n   " + cyan.Render(m.variant))
	switch {
	case m.outcome != nil && m.outcome.Success:
		b.WriteString("  " + green.Render("● completed"))
	case m.outcome != nil:
		b.WriteString("  " + red.Render("● "+m.outcome.Reason))
	case m.paused:
		b.WriteString("  " + yellow.Render("○ paused"))
	default:
		b.WriteString("  " + green.Render("● running"))
	}
	b.WriteString("\n")

	if ok && m.duration > 0 {
		progress := last.T / m.duration
		if progress > 1 {
			progress = 1
		}
		barWidth := 36
		filled := int(progress * float64(barWidth))
		bar := cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", barWidth-filled))
		b.WriteString(fmt.Sprintf("   %s %s\n\n", bar, dim.Render(fmt.Sprintf("%.1fs/%.0fs", last.T, m.duration))))
	} else {
		b.WriteString("\n")
	}

	for _, row := range m.trajectory() {
		b.WriteString("   " + row + "\n")
	}

	if !ok {
		b.WriteString("\n" + dim.Render("   waiting for first tick") + "\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("\n   %s%s  %s%s  %s%s  %s%s\n",
		dim.Render("x="), white.Render(fmt.Sprintf("%.2f", last.Pose.X)),
		dim.Render("y="), white.Render(fmt.Sprintf("%.2f", last.Pose.Y)),
		dim.Render("θ="), white.Render(fmt.Sprintf("%.2f", last.Pose.Theta)),
		dim.Render("v="), white.Render(fmt.Sprintf("%.2f", last.Kin.V))))

	b.WriteString(fmt.Sprintf("   %s%s  %s%s  %s%s\n",
		dim.Render("pitch="), white.Render(fmt.Sprintf("%.1f°", last.Pitch*180/math.Pi)),
		dim.Render("roll="), white.Render(fmt.Sprintf("%.1f°", last.Roll*180/math.Pi)),
		dim.Render("P="), magenta.Render(fmt.Sprintf("%.1fW", last.TotalPower))))

	b.WriteString("\n")
	for _, w := range last.Wheels {
		slip := dim.Render("grip")
		if !w.Contact {
			slip = red.Render("lift")
		} else if w.Slip {
			slip = yellow.Render("slip")
		}
		b.WriteString(fmt.Sprintf("   %s %s N=%s F=%s τ=%s %s\n",
			cyan.Render(fmt.Sprintf("%-3s", w.Name)),
			adherenceBar(w.Adherence),
			white.Render(fmt.Sprintf("%6.1f", w.Normal)),
			white.Render(fmt.Sprintf("%6.2f", w.Tangential)),
			white.Render(fmt.Sprintf("%6.3f", w.Torque)),
			slip))
	}

	marginStyle := green
	if last.Margin < 0.3 {
		marginStyle = red
	} else if last.Margin < 0.6 {
		marginStyle = yellow
	}
	b.WriteString(fmt.Sprintf("\n   %s %s", dim.Render("margin"), marginStyle.Render(fmt.Sprintf("%3.0f%%", last.Margin*100))))
	if last.TipOverRisk {
		b.WriteString("  " + red.Render("tip-over risk"))
	}
	b.WriteString("\n")

	if len(m.power) > 1 {
		b.WriteString(fmt.Sprintf("   %s %s\n", dim.Render("power"), cyan.Render(sparkline(m.power, 32))))
	}

	if m.outcome != nil {
		b.WriteString("\n" + dim.Render("   q quit") + "\n")
	} else {
		b.WriteString("\n" + dim.Render("   space pause  q stop") + "\n")
	}
	return b.String()
}

// trajectory draws the pose trail on a fixed-scale canvas centered on the
// robot's current position.
func (m Model) trajectory() []string {
	cw := m.width - 8
	ch := m.height - 16
	if cw < 40 {
		cw = 40
	}
	if ch < 8 {
		ch = 8
	}
	if ch > 14 {
		ch = 14
	}

	canvas := make([][]rune, ch)
	for i := range canvas {
		canvas[i] = make([]rune, cw)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	snaps := m.view.Snapshots
	if m.outcome != nil {
		snaps = m.outcome.History.Snapshots
	}
	if len(snaps) == 0 {
		rows := make([]string, ch)
		for i := range rows {
			rows[i] = dimmer.Render(string(canvas[i]))
		}
		return rows
	}

	cur := snaps[len(snaps)-1].Pose
	// 2 columns per meter horizontally, 1 row per meter vertically.
	place := func(p rover.Pose) (int, int, bool) {
		x := cw/2 + int((p.X-cur.X)*2)
		y := ch/2 - int(p.Y-cur.Y)
		return x, y, x >= 0 && x < cw && y >= 0 && y < ch
	}

	for _, s := range snaps {
		if x, y, in := place(s.Pose); in {
			canvas[y][x] = '·'
		}
	}
	if x, y, in := place(cur); in {
		canvas[y][x] = headingRune(cur.Theta)
	}

	rows := make([]string, ch)
	for i := range rows {
		rows[i] = dimmer.Render(string(canvas[i]))
	}
	return rows
}

func headingRune(theta float64) rune {
	// Snap the heading to the nearest of eight arrows.
	arrows := []rune{'→', '↗', '↑', '↖', '←', '↙', '↓', '↘'}
	sector := int(math.Round(theta/(math.Pi/4))) % 8
	if sector < 0 {
		sector += 8
	}
	return arrows[sector]
}

func adherenceBar(a float64) string {
	const width = 8
	filled := int(a * width)
	if filled > width {
		filled = width
	}
	style := green
	if a > 0.95 {
		style = red
	} else if a > 0.7 {
		style = yellow
	}
	return style.Render(strings.Repeat("█", filled)) + dimmer.Render(strings.Repeat("░", width-filled))
}

func sparkline(data []float64, width int) string {
	if len(data) == 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	rang := maxVal - minVal
	if rang == 0 {
		rang = 1
	}
	step := len(data) / width
	if step < 1 {
		step = 1
	}
	var sb strings.Builder
	for i := 0; i < width && i*step < len(data); i++ {
		idx := int((data[i*step] - minVal) / rang * 7)
		if idx > 7 {
			idx = 7
		}
		if idx < 0 {
			idx = 0
		}
		sb.WriteRune(chars[idx])
	}
	return sb.String()
}
