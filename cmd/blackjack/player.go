package main

import (
	"context"
	"fmt"
	"os"
)

// PlayerCmd groups the player registry commands
type PlayerCmd struct {
	Register PlayerRegisterCmd `cmd:"" help:"Register a new player"`
	Show     PlayerShowCmd     `cmd:"" help:"Show a player by name (or id with --id)"`
	List     PlayerListCmd     `cmd:"" help:"List all players"`
	Ranking  PlayerRankingCmd  `cmd:"" help:"Show the leaderboard"`
	Rename   PlayerRenameCmd   `cmd:"" help:"Rename a player"`
	Delete   PlayerDeleteCmd   `cmd:"" help:"Delete a player"`
}

type PlayerRegisterCmd struct {
	Name string `arg:"" help:"Player name"`
}

func (c *PlayerRegisterCmd) Run(g *Globals) error {
	cl, err := g.client()
	if err != nil {
		return err
	}
	p, err := cl.RegisterPlayer(context.Background(), c.Name)
	if err != nil {
		return err
	}
	printPlayer(os.Stdout, p)
	return nil
}

type PlayerShowCmd struct {
	Key  string `arg:"" help:"Player name or id"`
	ByID bool   `name:"id" help:"Treat the argument as a player id"`
}

func (c *PlayerShowCmd) Run(g *Globals) error {
	cl, err := g.client()
	if err != nil {
		return err
	}
	lookup := cl.PlayerByName
	if c.ByID {
		lookup = cl.PlayerByID
	}
	p, err := lookup(context.Background(), c.Key)
	if err != nil {
		return err
	}
	printPlayer(os.Stdout, p)
	return nil
}

type PlayerListCmd struct{}

func (c *PlayerListCmd) Run(g *Globals) error {
	cl, err := g.client()
	if err != nil {
		return err
	}
	players, err := cl.Players(context.Background())
	if err != nil {
		return err
	}
	printPlayers(os.Stdout, players)
	return nil
}

type PlayerRankingCmd struct{}

func (c *PlayerRankingCmd) Run(g *Globals) error {
	cl, err := g.client()
	if err != nil {
		return err
	}
	standings, err := cl.Ranking(context.Background())
	if err != nil {
		return err
	}
	printRanking(os.Stdout, standings)
	return nil
}

type PlayerRenameCmd struct {
	ID      string `arg:"" help:"Player id"`
	NewName string `arg:"" help:"New name"`
}

func (c *PlayerRenameCmd) Run(g *Globals) error {
	cl, err := g.client()
	if err != nil {
		return err
	}
	p, err := cl.RenamePlayer(context.Background(), c.ID, c.NewName)
	if err != nil {
		return err
	}
	printPlayer(os.Stdout, p)
	return nil
}

type PlayerDeleteCmd struct {
	ID string `arg:"" help:"Player id"`
}

func (c *PlayerDeleteCmd) Run(g *Globals) error {
	cl, err := g.client()
	if err != nil {
		return err
	}
	if err := cl.DeletePlayer(context.Background(), c.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted player %s\n", c.ID)
	return nil
}
