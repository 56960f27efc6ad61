package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"quizbox/internal/config"
	"quizbox/internal/database"
	"quizbox/internal/logger"

	"go.uber.org/zap"
)

const usage = `usage: migrate <command>

commands:
  up              apply all pending migrations
  down [N|--all]  roll back N migrations (default 1), or all of them
  version         print the current schema version
`

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	l := logger.Get()
	defer logger.Sync()

	ctx := context.Background()
	db, err := database.Open(ctx, cfg)
	if err != nil {
		l.Fatal("Failed to connect to database", zap.Error(err))
	}

	migrator, err := database.NewMigrator(db, cfg.DB.Driver)
	if err != nil {
		db.Close()
		l.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer migrator.Close()

	if err := runCommand(ctx, migrator, flag.Args()); err != nil {
		l.Error("Migration command failed", zap.Strings("args", flag.Args()), zap.Error(err))
		_ = migrator.Close()
		_ = logger.Sync()
		os.Exit(1)
	}
}

func runCommand(ctx context.Context, m database.Migrator, args []string) error {
	switch args[0] {
	case "up":
		if err := m.Up(ctx); err != nil {
			return err
		}
		fmt.Println("Migrations applied successfully!")
	case "down":
		steps := 1
		if len(args) > 1 {
			if args[1] == "--all" {
				steps = 0
			} else {
				n, err := strconv.Atoi(args[1])
				if err != nil || n <= 0 {
					return fmt.Errorf("invalid number of steps %q", args[1])
				}
				steps = n
			}
		}
		if err := m.Down(ctx, steps); err != nil {
			return err
		}
		if steps == 0 {
			fmt.Println("Successfully rolled back all migrations")
		} else {
			fmt.Printf("Successfully rolled back %d migration(s)\n", steps)
		}
	case "version":
		version, dirty, err := m.Version(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("version=%d dirty=%t\n", version, dirty)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
	return nil
}
