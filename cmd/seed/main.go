// cmd/seed/main.go
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Fetch and load product-performance datasets",
		Commands: []*cli.Command{
			{
				Name:  "fetch",
				Usage: "Download dataset CSV exports from a Google Drive folder",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "credentials-file",
						Usage:   "Path to the service-account credentials JSON",
						EnvVars: []string{"DRIVE_CREDENTIALS_FILE"},
					},
					&cli.StringFlag{
						Name:    "folder",
						Usage:   "Drive folder path holding the exports",
						EnvVars: []string{"DRIVE_FOLDER_PATH"},
					},
					&cli.StringFlag{
						Name:    "out-dir",
						Usage:   "Directory to download CSV files into",
						Value:   "./data/exports",
						EnvVars: []string{"SEED_OUT_DIR"},
					},
				},
				Action: runFetch,
			},
			{
				Name:  "load",
				Usage: "Parse local CSV files and upload the merged dataset to a running server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "data-dir",
						Usage:   "Directory containing dataset CSV files",
						Value:   "./data/exports",
						EnvVars: []string{"SEED_DATA_DIR"},
					},
					&cli.StringFlag{
						Name:    "server-url",
						Usage:   "Base URL of the analytics server",
						Value:   "http://localhost:8080",
						EnvVars: []string{"SERVER_URL"},
					},
					&cli.IntFlag{
						Name:    "workers",
						Usage:   "Concurrent file parsers",
						Value:   4,
						EnvVars: []string{"SEED_WORKERS"},
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Parse and summarize without uploading",
						Value: false,
					},
				},
				Action: runLoad,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
