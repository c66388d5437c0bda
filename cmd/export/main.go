package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/chargedocs/chargedocs/internal/bootstrap"
	"github.com/chargedocs/chargedocs/internal/config"
	"github.com/chargedocs/chargedocs/internal/observability/logging"
)

// export pulls the charge-form data for a date range into an xlsx file
// without going through the gateway. It authenticates with the token or
// credentials from the configuration.
func main() {
	var (
		startFlag = flag.String("start", "", "range start, YYYY-MM-DD (required)")
		endFlag   = flag.String("end", "", "range end, YYYY-MM-DD (required)")
		outFlag   = flag.String("out", "", "output directory (default: config export_dir)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	slog.SetDefault(logging.NewJSONLogger("chargedocs-export", cfg.LogLevel))

	if *startFlag == "" || *endFlag == "" {
		flag.Usage()
		os.Exit(2)
	}
	start, err := time.Parse("2006-01-02", *startFlag)
	if err != nil {
		log.Fatalf("invalid -start: %v", err)
	}
	end, err := time.Parse("2006-01-02", *endFlag)
	if err != nil {
		log.Fatalf("invalid -end: %v", err)
	}
	if *outFlag != "" {
		cfg.ExportDir = *outFlag
	}

	app := bootstrap.New(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if !app.Session.Authenticated() {
		if cfg.Username == "" || cfg.Password == "" {
			log.Fatal("no token and no credentials configured; set CHARGEDOCS_TOKEN or CHARGEDOCS_USERNAME/CHARGEDOCS_PASSWORD")
		}
		if err := app.Auth.Login(ctx, cfg.Username, cfg.Password); err != nil {
			log.Fatalf("login failed: %v", err)
		}
	}

	result, err := app.Exporter.Export(ctx, start, end)
	if err != nil {
		log.Fatalf("export failed: %v", err)
	}

	fmt.Printf("wrote %s (%d rows, sheet %q)\n", result.Path, result.RowCount, result.Sheet)
}
