// cmd/seed/fetch.go
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"

	"github.com/perfdash/backend-go/internal/drive"
)

// runFetch downloads every CSV export from the configured Drive folder.
func runFetch(c *cli.Context) error {
	credentialsFile := c.String("credentials-file")
	if credentialsFile == "" {
		return fmt.Errorf("credentials file must be provided")
	}

	credentials, err := os.ReadFile(credentialsFile)
	if err != nil {
		return fmt.Errorf("failed to read credentials: %w", err)
	}

	svc, err := drive.NewService(string(credentials))
	if err != nil {
		return err
	}

	folderID, err := svc.FindFolderByPath(c.String("folder"))
	if err != nil {
		return err
	}

	files, err := svc.ListCSVFiles(folderID)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		log.Printf("no CSV exports found in folder %q", c.String("folder"))
		return nil
	}

	outDir := c.String("out-dir")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	bar := progressbar.Default(int64(len(files)), "downloading")
	for _, file := range files {
		destPath := filepath.Join(outDir, file.Name)
		out, err := os.Create(destPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", destPath, err)
		}
		if err := svc.DownloadFile(file.ID, out); err != nil {
			out.Close()
			return fmt.Errorf("failed to download %s: %w", file.Name, err)
		}
		out.Close()
		_ = bar.Add(1)
	}

	log.Printf("downloaded %d file(s) to %s", len(files), outDir)
	return nil
}
