package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
)

// View renders the screen
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Header.Render("Blackjack"))
	b.WriteString("\n\n")

	if m.phase == phaseName {
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		if m.err != nil {
			b.WriteString(m.styles.Error.Render(m.err.Error()))
			b.WriteString("\n")
		}
		b.WriteString(m.styles.Info.Render("enter to join • esc to quit"))
		return b.String()
	}

	b.WriteString(m.styles.Pane.Render(m.renderTable()))
	b.WriteString("\n")
	b.WriteString(m.styles.Pane.Render(m.logVP.View()))
	b.WriteString("\n")
	b.WriteString(m.renderStats())
	b.WriteString("\n")
	b.WriteString(m.styles.Info.Render(m.help()))
	return b.String()
}

func (m *Model) renderTable() string {
	if m.game.ID == "" {
		return m.styles.Info.Render("Dealing...")
	}
	dealer := lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.Label.Width(8).Render("Dealer"),
		m.renderCards(m.game.DealerCards),
		"  ",
		m.styles.Score.Render(fmt.Sprintf("(%d)", m.game.DealerScore)),
	)
	player := lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.Label.Width(8).Render("You"),
		m.renderCards(m.game.PlayerCards),
		"  ",
		m.styles.Score.Render(fmt.Sprintf("(%d)", m.game.PlayerScore)),
	)
	return lipgloss.JoinVertical(lipgloss.Left, dealer, player)
}

func (m *Model) renderCards(cards []deck.Card) string {
	parts := make([]string, 0, len(cards))
	for _, c := range cards {
		style := m.styles.BlackCard
		if c.IsRed() {
			style = m.styles.RedCard
		}
		parts = append(parts, style.Render(c.String()))
	}
	return strings.Join(parts, " ")
}

func (m *Model) renderStats() string {
	p := m.player
	if p.Name == "" {
		return ""
	}
	return m.styles.Info.Render(fmt.Sprintf("%s • played %d • won %d • win rate %.0f%% • total score %d",
		p.Name, p.GamesPlayed, p.GamesWon, p.WinRate*100, p.TotalScore))
}

func (m *Model) help() string {
	switch {
	case m.busy:
		return "waiting for the dealer..."
	case m.phase == phasePlaying:
		return "h hit • s stand • q quit"
	default:
		return "n new round • q quit"
	}
}

func (m *Model) describe(action string, v game.View) string {
	switch action {
	case "deal":
		return fmt.Sprintf("Dealt you %s (%d), dealer shows %s (%d)",
			m.renderCards(v.PlayerCards), v.PlayerScore, m.renderCards(v.DealerCards), v.DealerScore)
	case "hit":
		last := v.PlayerCards[len(v.PlayerCards)-1]
		return fmt.Sprintf("You drew %s (%d)", m.renderCards([]deck.Card{last}), v.PlayerScore)
	default:
		return fmt.Sprintf("You stand on %d, dealer finishes with %s (%d)",
			v.PlayerScore, m.renderCards(v.DealerCards), v.DealerScore)
	}
}

func (m *Model) outcome(v game.View) string {
	switch v.Status {
	case game.FinishedPlayerWon:
		return m.styles.Success.Render("You win!")
	case game.FinishedDealerWon:
		if v.PlayerScore > 21 {
			return m.styles.Error.Render("Bust. Dealer wins.")
		}
		return m.styles.Error.Render("Dealer wins.")
	default:
		return m.styles.Warning.Render("Push.")
	}
}
