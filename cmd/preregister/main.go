package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/YasminCastro/malucas-awards-v2/internal/config"
	"github.com/YasminCastro/malucas-awards-v2/internal/logging"
	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	mongorepo "github.com/YasminCastro/malucas-awards-v2/internal/repositories/mongodb"
	"github.com/YasminCastro/malucas-awards-v2/internal/services"
	"github.com/YasminCastro/malucas-awards-v2/internal/utils"
	"github.com/YasminCastro/malucas-awards-v2/pkg/cache"
	"github.com/YasminCastro/malucas-awards-v2/pkg/mongodb"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	// A missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "preregister",
		Usage: "bulk pre-registration of contest users",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "mongo-uri",
				Usage: "MongoDB connection string",
				Value: config.GetEnv("MONGODB_URI", "mongodb://localhost:27017"),
			},
			&cli.StringFlag{
				Name:  "database",
				Usage: "MongoDB database name",
				Value: config.GetEnv("MONGODB_DATABASE", "malucas-awards"),
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "connection timeout",
				Value: config.GetEnvAsDuration("MONGODB_CONNECTTIMEOUT", 10*time.Second),
			},
		},
		Commands: []*cli.Command{
			newUsersCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newUsersCommand() *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "create users from a YAML or CSV roster; existing handles are skipped",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "roster file (.yaml or .csv)",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "parse the roster and print it without writing",
				Value: config.GetEnvAsBool("PREREGISTER_DRY_RUN", false),
			},
		},
		Action: func(c *cli.Context) error {
			requests, err := readRoster(c.String("file"))
			if err != nil {
				return err
			}
			if c.Bool("dry-run") {
				for _, r := range requests {
					fmt.Fprintf(c.App.Writer, "would create @%s (%s) admin=%t\n", r.Handle, r.Name, r.IsAdmin)
				}
				return nil
			}

			client, err := mongodb.NewClient(c.Context, c.String("mongo-uri"), c.Duration("timeout"))
			if err != nil {
				return fmt.Errorf("failed to connect to MongoDB: %w", err)
			}
			defer client.Disconnect(context.Background())

			db := client.Database(c.String("database"))
			if err := mongorepo.EnsureIndexes(c.Context, db); err != nil {
				return err
			}
			users := services.NewUserService(mongorepo.NewUserRepository(db), cache.New(), time.Minute, logging.Discard())

			report, err := preregister(c.Context, users, requests, c.App.Writer)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "created %d, skipped %d\n", report.Created, report.Skipped)
			return nil
		},
	}
}

func readRoster(path string) ([]models.CreateUserRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return utils.ParseRoster(path, f)
}

type report struct {
	Created int
	Skipped int
}

// preregister creates every user in requests, reporting and skipping handles that already exist
func preregister(ctx context.Context, users *services.UserService, requests []models.CreateUserRequest, out io.Writer) (report, error) {
	var r report
	for _, req := range requests {
		user, err := users.CreatePreRegistered(ctx, req)
		if errors.Is(err, services.ErrConflict) {
			fmt.Fprintf(out, "skipped @%s: already registered\n", req.Handle)
			r.Skipped++
			continue
		}
		if err != nil {
			return r, fmt.Errorf("failed to create @%s: %w", req.Handle, err)
		}
		fmt.Fprintf(out, "created @%s (%s)\n", user.Handle, user.Name)
		r.Created++
	}
	return r, nil
}
