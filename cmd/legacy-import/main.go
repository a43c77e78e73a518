// Package main is the entry point for the legacy-import CLI tool.
//
// legacy-import copies documents from the flat per-user layout used by older
// deployments into the tenant-prefixed layout, rebuilding index documents and
// offloading embedded node payloads along the way. The source is never
// modified, so the tool can be re-run safely.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/slateview/slateview/internal/migrate"
	"github.com/slateview/slateview/internal/objstore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "legacy-import: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	sourceDir := flag.String("source", "", "Directory holding the legacy layout (required)")
	destDir := flag.String("dest", "", "Destination directory for the new layout")
	natsURL := flag.String("nats-url", "", "NATS server URL to import into instead of -dest")
	natsBucket := flag.String("nats-bucket", "slateview", "NATS ObjectStore bucket (with -nats-url)")
	dryRun := flag.Bool("dry-run", false, "Report what would be imported without writing")
	flag.Parse()
	if len(flag.Args()) > 0 {
		return fmt.Errorf("unknown arguments: %v", flag.Args())
	}

	if *sourceDir == "" {
		return errors.New("-source is required")
	}
	if (*destDir == "") == (*natsURL == "") {
		return errors.New("exactly one of -dest or -nats-url is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	src, err := objstore.NewFSStore(*sourceDir)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}

	var dst objstore.Store
	if *natsURL != "" {
		ns, err := objstore.NewNATSStore(ctx, *natsURL, *natsBucket)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer ns.Close()
		dst = ns
	} else {
		fs, err := objstore.NewFSStore(*destDir)
		if err != nil {
			return fmt.Errorf("failed to open destination: %w", err)
		}
		dst = fs
	}

	fmt.Println("Legacy Import")
	fmt.Println("=============")
	if *dryRun {
		fmt.Println("Dry run: nothing will be written.")
	}
	fmt.Println()

	if _, err := migrate.New(src, dst, os.Stdout, *dryRun).Run(ctx); err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	return nil
}
