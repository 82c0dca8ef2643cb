package main

import (
	"context"
	"fmt"
	"os"

	"github.com/lox/blackjack/internal/game"
)

// GameCmd groups the game commands
type GameCmd struct {
	New    GameNewCmd    `cmd:"" help:"Start a game for a registered player"`
	Show   GameShowCmd   `cmd:"" help:"Show a game"`
	List   GameListCmd   `cmd:"" help:"List all games"`
	Hit    GameHitCmd    `cmd:"" help:"Draw a card"`
	Stand  GameStandCmd  `cmd:"" help:"Stand and let the dealer play"`
	Delete GameDeleteCmd `cmd:"" help:"Delete a game"`
}

type GameNewCmd struct {
	Player string `arg:"" help:"Player name"`
}

func (c *GameNewCmd) Run(g *Globals) error {
	cl, err := g.client()
	if err != nil {
		return err
	}
	return showGame(cl.NewGame(context.Background(), c.Player))
}

type GameShowCmd struct {
	ID string `arg:"" help:"Game id"`
}

func (c *GameShowCmd) Run(g *Globals) error {
	cl, err := g.client()
	if err != nil {
		return err
	}
	return showGame(cl.Game(context.Background(), c.ID))
}

type GameListCmd struct{}

func (c *GameListCmd) Run(g *Globals) error {
	cl, err := g.client()
	if err != nil {
		return err
	}
	views, err := cl.Games(context.Background())
	if err != nil {
		return err
	}
	printGames(os.Stdout, views)
	return nil
}

type GameHitCmd struct {
	ID string `arg:"" help:"Game id"`
}

func (c *GameHitCmd) Run(g *Globals) error {
	cl, err := g.client()
	if err != nil {
		return err
	}
	return showGame(cl.Hit(context.Background(), c.ID))
}

type GameStandCmd struct {
	ID string `arg:"" help:"Game id"`
}

func (c *GameStandCmd) Run(g *Globals) error {
	cl, err := g.client()
	if err != nil {
		return err
	}
	return showGame(cl.Stand(context.Background(), c.ID))
}

type GameDeleteCmd struct {
	ID string `arg:"" help:"Game id"`
}

func (c *GameDeleteCmd) Run(g *Globals) error {
	cl, err := g.client()
	if err != nil {
		return err
	}
	if err := cl.DeleteGame(context.Background(), c.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted game %s\n", c.ID)
	return nil
}

func showGame(v game.View, err error) error {
	if err != nil {
		return err
	}
	printGame(os.Stdout, v)
	return nil
}
