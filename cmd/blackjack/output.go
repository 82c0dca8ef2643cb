package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/lox/blackjack/internal/client"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/player"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func cards(cs []deck.Card) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func printGame(w io.Writer, v game.View) {
	fmt.Fprintf(w, "Game %s (%s)\n", v.ID, v.Status)
	fmt.Fprintf(w, "  Dealer: %-20s (%d)\n", cards(v.DealerCards), v.DealerScore)
	fmt.Fprintf(w, "  Player: %-20s (%d)\n", cards(v.PlayerCards), v.PlayerScore)
}

func printGames(w io.Writer, views []game.View) {
	t := newTable("ID", "Player", "Status", "Player Score", "Dealer Score", "Created")
	for _, v := range views {
		t.Row(v.ID, v.PlayerID, string(v.Status),
			strconv.Itoa(v.PlayerScore), strconv.Itoa(v.DealerScore),
			v.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintln(w, t)
}

func printPlayer(w io.Writer, p client.Player) {
	fmt.Fprintf(w, "%s (%s)\n", p.Name, p.ID)
	fmt.Fprintf(w, "  Played: %d  Won: %d  Win rate: %.1f%%  Total score: %d\n",
		p.GamesPlayed, p.GamesWon, p.WinRate*100, p.TotalScore)
}

func printPlayers(w io.Writer, players []client.Player) {
	t := newTable("ID", "Name", "Played", "Won", "Total Score")
	for _, p := range players {
		t.Row(p.ID, p.Name, strconv.Itoa(p.GamesPlayed), strconv.Itoa(p.GamesWon), strconv.Itoa(p.TotalScore))
	}
	fmt.Fprintln(w, t)
}

func printRanking(w io.Writer, standings []player.Standing) {
	t := newTable("#", "Name", "Win Rate", "Played", "Won", "Total Score")
	for i, s := range standings {
		t.Row(strconv.Itoa(i+1), s.Name, fmt.Sprintf("%.1f%%", s.WinRate*100),
			strconv.Itoa(s.GamesPlayed), strconv.Itoa(s.GamesWon), strconv.Itoa(s.TotalScore))
	}
	fmt.Fprintln(w, t)
}
