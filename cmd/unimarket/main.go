package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"gitlab.com/ranfdev/unimarket/internal/db"
	"gitlab.com/ranfdev/unimarket/internal/models"
	"gitlab.com/ranfdev/unimarket/internal/moderation"
	"gitlab.com/ranfdev/unimarket/internal/routes"
)

type configKey struct{}

func getConfig(c *cli.Context) *models.EnvConfig {
	return c.Context.Value(configKey{}).(*models.EnvConfig)
}

func main() {
	app := &cli.App{
		Name:  "unimarket",
		Usage: "content moderation service for the campus marketplace",
		Before: func(c *cli.Context) error {
			envConfig := models.ReadEnvConfig()
			c.Context = context.WithValue(c.Context, configKey{}, &envConfig)
			return nil
		},
		Commands: []*cli.Command{
			startCommand,
			migrateCommand,
			moderateCommand,
			scoreCommand,
			tokenCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var startCommand = &cli.Command{
	Name:  "start",
	Usage: "Run migrations and serve the HTTP API",
	Action: func(c *cli.Context) error {
		server := UnimarketServer{EnvConfig: *getConfig(c)}
		server.Setup(c.Context)
		server.Run(c.Context)
		return nil
	},
}

func migrateAction(name string, fn func(dbURL string) error) *cli.Command {
	return &cli.Command{
		Name: name,
		Action: func(c *cli.Context) error {
			if err := fn(getConfig(c).DatabaseURL); err != nil {
				return err
			}
			fmt.Println("Done")
			return nil
		},
	}
}

var migrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "Manage the database schema",
	Subcommands: []*cli.Command{
		migrateAction("up", db.MigrateUp),
		migrateAction("down", db.MigrateDown),
		migrateAction("drop", db.Drop),
		{
			Name: "version",
			Action: func(c *cli.Context) error {
				v, dirty, err := db.Version(getConfig(c).DatabaseURL)
				if err != nil {
					return err
				}
				fmt.Printf("version %d (dirty: %t)\n", v, dirty)
				return nil
			},
		},
	},
}

var moderateCommand = &cli.Command{
	Name:      "moderate",
	Usage:     "Run the built-in checks on some text and print the decision",
	ArgsUsage: "<text>",
	Action: func(c *cli.Context) error {
		text := strings.Join(c.Args().Slice(), " ")
		if text == "" {
			return cli.Exit("missing text", 2)
		}
		res := moderation.ModerateText(text)
		fmt.Printf("decision:   %s\n", moderation.Decide(res))
		fmt.Printf("confidence: %s\n", res.Confidence)
		fmt.Printf("flags:      %s\n", strings.Join(res.Flags, ", "))
		for _, r := range res.Reasons {
			fmt.Printf("  - %s\n", r)
		}
		return nil
	},
}

var scoreCommand = &cli.Command{
	Name:  "score",
	Usage: "Compute the spam score of a listing",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "title", Required: true},
		&cli.StringFlag{Name: "description"},
		&cli.Int64Flag{Name: "price", Usage: "price in cents"},
	},
	Action: func(c *cli.Context) error {
		if c.Int64("price") < 0 {
			return cli.Exit("price can't be negative", 2)
		}
		score := moderation.CalculateSpamScore(c.String("title"), c.String("description"), c.Int64("price"))
		fmt.Printf("%d/%d\n", score, moderation.MaxSpamScore)
		return nil
	},
}

var tokenCommand = &cli.Command{
	Name:      "token",
	Usage:     "Sign a bearer token for a user, for local testing",
	ArgsUsage: "<user-id>",
	Flags: []cli.Flag{
		&cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour},
	},
	Action: func(c *cli.Context) error {
		config := getConfig(c)
		if len(config.JWTSecret) == 0 {
			return cli.Exit("UNIMARKET_JWT_SECRET is not set", 1)
		}
		userID, err := uuid.Parse(c.Args().First())
		if err != nil {
			return cli.Exit("invalid user id", 2)
		}
		tok, err := routes.SignToken(config.JWTSecret, userID, c.Duration("ttl"), time.Now())
		if err != nil {
			return err
		}
		fmt.Println(tok)
		return nil
	},
}
