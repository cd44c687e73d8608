package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("250"))
	linkStyle = lipgloss.NewStyle().
			Padding(0, 1)
	activeLinkStyle = linkStyle.
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Underline(true)
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 2)
	sectionStyles = []lipgloss.Style{
		lipgloss.NewStyle().Background(lipgloss.Color("234")),
		lipgloss.NewStyle().Background(lipgloss.Color("235")),
	}
)

const linkGap = " "

func (m *model) View() string {
	var b strings.Builder
	b.WriteString(m.header())

	for row := range m.bodyHeight() {
		b.WriteByte('\n')
		b.WriteString(m.bodyRow(row))
	}
	return b.String()
}

func (m *model) links() []string {
	links := make([]string, len(m.cfg.Sections))
	for i, s := range m.cfg.Sections {
		style := linkStyle
		if s.ID == m.active {
			style = activeLinkStyle
		}
		links[i] = style.Render(title(s.ID, s.Title))
	}
	return links
}

func (m *model) header() string {
	return headerStyle.Width(m.width).Render(strings.Join(m.links(), linkGap))
}

// linkAt returns the index of the header link covering column x, or -1.
func (m *model) linkAt(x int) int {
	left := 0
	for i, link := range m.links() {
		w := lipgloss.Width(link)
		if x >= left && x < left+w {
			return i
		}
		left += w + lipgloss.Width(linkGap)
	}
	return -1
}

func (m *model) bodyRow(row int) string {
	s, offset := m.page.RowAt(row)
	if s == nil {
		return strings.Repeat(" ", m.width)
	}
	i := m.sectionIndex(s.ID())
	style := sectionStyles[max(0, i)%len(sectionStyles)].Width(m.width)
	if offset != 0 || i < 0 {
		return style.Render("")
	}
	sec := m.cfg.Sections[i]
	return style.Render(titleStyle.Render(title(sec.ID, sec.Title)))
}

func title(id, t string) string {
	if t == "" {
		return id
	}
	return t
}
