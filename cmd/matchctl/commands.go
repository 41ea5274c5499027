package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gdugdh24/bookswap-backend/internal/config"
	"github.com/gdugdh24/bookswap-backend/internal/domain"
	"github.com/gdugdh24/bookswap-backend/internal/infrastructure/container"
	"github.com/gdugdh24/bookswap-backend/internal/infrastructure/database"
	"github.com/gdugdh24/bookswap-backend/internal/infrastructure/logger"
	redisrepo "github.com/gdugdh24/bookswap-backend/internal/repository/redis"
	"github.com/gdugdh24/bookswap-backend/internal/usecase/auth"
	"github.com/gdugdh24/bookswap-backend/internal/usecase/match"
	"github.com/urfave/cli/v2"
)

// Pools is the offline input of the plan command.
type Pools struct {
	Senders   []domain.MatchableUser `json:"senders"`
	Receivers []domain.MatchableUser `json:"receivers"`
}

var planCmd = &cli.Command{
	Name:  "plan",
	Usage: "Run the finder and the scheduler over pools from a file, without touching any store",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "pools",
			Required: true,
			Usage:    "specify the input pools.json",
		},
		&cli.StringFlag{
			Name:     "spec",
			Required: true,
			Usage:    "specify the generation specification json",
		},
		&cli.StringFlag{
			Name:  "out",
			Usage: "specify the output file (stdout when empty)",
		},
	},
	Action: func(ctx *cli.Context) error {
		var pools Pools
		if err := loadJSON(ctx.String("pools"), &pools); err != nil {
			return fmt.Errorf("load pools file failed: %w", err)
		}
		req, err := loadSpec(ctx.String("spec"))
		if err != nil {
			return err
		}
		if err := match.ValidateRequest(req, time.Now()); err != nil {
			return err
		}

		planned, err := match.Plan(pools.Senders, pools.Receivers, req)
		if err != nil {
			return err
		}
		return writeJSON(ctx.String("out"), planned)
	},
}

var generateCmd = &cli.Command{
	Name:  "generate",
	Usage: "Generate and store matches using the configured database",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "spec",
			Required: true,
			Usage:    "specify the generation specification json",
		},
	},
	Action: func(ctx *cli.Context) error {
		req, err := loadSpec(ctx.String("spec"))
		if err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config failed: %w", err)
		}
		app, err := container.NewContainer(cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		result, err := app.Matches.Generate(ctx.Context, req)
		if err != nil {
			return err
		}
		fmt.Printf("user matches: %d, stand matches: %d\n", result.UserMatches, result.StandMatches)
		return nil
	},
}

var tokenCmd = &cli.Command{
	Name:  "token",
	Usage: "Issue a session token for a user",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "user",
			Required: true,
			Usage:    "specify the user id",
		},
		&cli.StringFlag{
			Name:  "permission",
			Value: string(domain.PermissionEmployee),
			Usage: "specify the permission (customer, employee, manager, admin)",
		},
	},
	Action: func(ctx *cli.Context) error {
		permission := domain.Permission(ctx.String("permission"))
		if !permission.Valid() {
			return errors.New("invalid permission")
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config failed: %w", err)
		}
		client, err := database.NewRedisClient(&cfg.Redis, logger.Discard())
		if err != nil {
			return err
		}
		defer client.Close()

		uc := auth.NewSessionAuthUseCase(
			redisrepo.NewSessionStore(client),
			cfg.JWT.AccessSecret,
			time.Duration(cfg.JWT.AccessExpiryMin)*time.Minute,
		)
		resp, err := uc.IssueToken(ctx.Context, ctx.String("user"), permission)
		if err != nil {
			return err
		}
		fmt.Println(resp.Token)
		return nil
	},
}

func loadSpec(path string) (*match.GenerateRequest, error) {
	var req match.GenerateRequest
	if err := loadJSON(path, &req); err != nil {
		return nil, fmt.Errorf("load spec file failed: %w", err)
	}
	return &req, nil
}

func loadJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if path == "" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
