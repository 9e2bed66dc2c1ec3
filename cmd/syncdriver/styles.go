package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/entrhq/syncdriver/pkg/cookie"
)

// Color palette shared by every command's output.
var (
	salmonPink = lipgloss.Color("#FFB3BA") // Primary accent
	mintGreen  = lipgloss.Color("#A8E6CF") // Success
	mutedGray  = lipgloss.Color("#6B7280") // Secondary text
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Bold(true)

	okStyle = lipgloss.NewStyle().
		Foreground(mintGreen)

	hintStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	errorStyle = lipgloss.NewStyle().
			Foreground(salmonPink)

	cellStyle = lipgloss.NewStyle().
			Padding(0, 1)
)

// cookieTable renders cookies as a bordered table.
func cookieTable(cookies []*cookie.Cookie) string {
	rows := make([][]string, 0, len(cookies))
	for _, c := range cookies {
		expiry := "session"
		if t, ok := c.Expiry(); ok {
			expiry = t.UTC().Format("2006-01-02T15:04:05Z")
		}
		secure := ""
		if c.IsSecure() {
			secure = "yes"
		}
		rows = append(rows, []string{c.Name(), c.Value(), c.Domain(), c.Path(), expiry, secure})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(hintStyle).
		Headers("NAME", "VALUE", "DOMAIN", "PATH", "EXPIRES", "SECURE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return cellStyle
		})
	return t.Render()
}
