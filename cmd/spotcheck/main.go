package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"travel-planner/internal/overpass"
	"travel-planner/internal/service"
)

const (
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
	colorReset = "\033[0m"
)

func main() {
	_ = godotenv.Load()

	endpoint := flag.String("endpoint", envOr("OVERPASS_URL", overpass.DefaultEndpoint), "Overpass interpreter URL")
	timeout := flag.Duration("timeout", 60*time.Second, "timeout per request")
	categories := flag.String("categories", "castle,buddhist,museum", "comma-separated category keys")
	search := flag.String("search", "寺", "name keyword to search, empty to skip")
	sample := flag.Int("sample", 3, "spots printed per scenario")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	client := overpass.NewHTTPClient(*endpoint, *timeout, logger)
	svc := service.NewSpotService(logger, client, nil, 0)

	ctx := context.Background()
	failed := 0
	for _, sc := range defaultScenarios(splitKeys(*categories), *search) {
		fmt.Printf("%s[%s]%s\n", colorCyan, sc.Name, colorReset)
		res := runScenario(ctx, svc, sc, *sample)
		if !res.Passed(sc.MinSpots) {
			failed++
			fmt.Printf("%sFAIL%s count=%d err=%v (%s)\n\n", colorRed, colorReset, res.Count, res.Err, res.Elapsed.Round(time.Millisecond))
			continue
		}
		fmt.Printf("%sOK%s count=%d (%s)\n", colorGreen, colorReset, res.Count, res.Elapsed.Round(time.Millisecond))
		for _, s := range res.Sample {
			fmt.Printf("  - %s\n", s)
		}
		fmt.Println()
	}

	if failed > 0 {
		fmt.Printf("%d scenario(s) failed\n", failed)
		os.Exit(1)
	}
}

func splitKeys(s string) []string {
	var out []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
