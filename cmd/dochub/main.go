// Copyright 2025 Calyptra Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	dochub "github.com/calyptra/dochub"
	"github.com/calyptra/dochub/remote/graph"
)

func main() {
	app := &cli.App{
		Name:  "dochub",
		Usage: "Keep searchable document hubs in sync with their remote sources",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"DOCHUB_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file",
				EnvVars: []string{"DOCHUB_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "persist-dir",
				Usage:   "Root directory for persisted hub data (overrides config)",
				EnvVars: []string{"DOCHUB_PERSIST_DIR"},
			},
			&cli.StringFlag{
				Name:    "tenant-id",
				Usage:   "Azure AD tenant id (overrides config)",
				EnvVars: []string{"DOCHUB_TENANT_ID"},
			},
			&cli.StringFlag{
				Name:    "client-id",
				Usage:   "Azure AD application id (overrides config)",
				EnvVars: []string{"DOCHUB_CLIENT_ID"},
			},
			&cli.StringFlag{
				Name:    "client-secret",
				Usage:   "Azure AD application secret (overrides config)",
				EnvVars: []string{"DOCHUB_CLIENT_SECRET"},
			},
			&cli.StringFlag{
				Name:    "api-token",
				Usage:   "AI service API token (overrides config)",
				EnvVars: []string{"DOCHUB_API_TOKEN"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Create a hub from a remote source and index everything it lists",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "hub",
						Usage:    "Hub name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "source",
						Usage:    "Share link of the remote folder or file",
						Required: true,
					},
				},
			},
			{
				Name:   "sync",
				Usage:  "Reconcile a hub against its recorded source",
				Action: syncCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "hub",
						Usage:    "Hub name",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Re-fetch and re-index every file regardless of fingerprints",
					},
				},
			},
			{
				Name:      "query",
				Usage:     "Ask a question against a hub's indexed documents",
				ArgsUsage: "<question>",
				Action:    queryCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "hub",
						Usage:    "Hub name",
						Required: true,
					},
				},
			},
			{
				Name:   "hubs",
				Usage:  "List hubs with persisted state",
				Action: hubsCommand,
			},
			{
				Name:   "delete",
				Usage:  "Remove a hub and all of its persisted data",
				Action: deleteCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "hub",
						Usage:    "Hub name",
						Required: true,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// newService builds a Service from the config file and flag overrides.
func newService(c *cli.Context) (*dochub.Service, error) {
	cfg, err := dochub.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if dir := c.String("persist-dir"); dir != "" {
		cfg.PersistDir = dir
	}
	if tenant := c.String("tenant-id"); tenant != "" {
		cfg.Graph.TenantID = tenant
	}
	if client := c.String("client-id"); client != "" {
		cfg.Graph.ClientID = client
	}
	if secret := c.String("client-secret"); secret != "" {
		cfg.Graph.ClientSecret = secret
	}
	if token := c.String("api-token"); token != "" {
		cfg.AI.Token = token
	}

	remote, err := graph.NewClient(cfg.Graph.TenantID, cfg.Graph.ClientID, cfg.Graph.ClientSecret)
	if err != nil {
		return nil, fmt.Errorf("configure remote store: %w", err)
	}

	return dochub.NewService(cfg, remote)
}

func ingestCommand(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	hubName := c.String("hub")
	outcome, err := svc.Ingest(context.Background(), hubName, c.String("source"))
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	fmt.Printf("Hub %s ingested: %d files indexed, %d failed\n",
		hubName, outcome.FilesUpdated, outcome.FilesFailed)
	return nil
}

func syncCommand(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	hubName := c.String("hub")
	outcome, err := svc.Sync(context.Background(), hubName, c.Bool("force"))
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	if !outcome.ChangesDetected {
		fmt.Printf("Hub %s is up to date\n", hubName)
		return nil
	}
	fmt.Printf("Hub %s synced: %d updated, %d removed, %d failed\n",
		hubName, outcome.FilesUpdated, outcome.FilesRemoved, outcome.FilesFailed)
	return nil
}

func queryCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("a question is required")
	}

	svc, err := newService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx := context.Background()
	hubName := c.String("hub")
	if err := svc.LoadHub(ctx, hubName); err != nil {
		return fmt.Errorf("load hub: %w", err)
	}

	answer, err := svc.Query(ctx, hubName, question)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	fmt.Println(answer.Text)
	if len(answer.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, src := range answer.Sources {
			fmt.Printf("  - %s\n", src.FileName)
		}
	}
	return nil
}

func hubsCommand(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	hubs, err := svc.ListHubs()
	if err != nil {
		return err
	}
	if len(hubs) == 0 {
		fmt.Println("No hubs")
		return nil
	}
	for _, hubName := range hubs {
		fmt.Println(hubName)
	}
	return nil
}

func deleteCommand(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	hubName := c.String("hub")
	if err := svc.DeleteHub(hubName); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	fmt.Printf("Hub %s deleted\n", hubName)
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
