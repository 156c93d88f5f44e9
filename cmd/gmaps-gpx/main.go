package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	lib "github.com/mcilvena/gmaps-gpx"
)

func main() {
	mode := flag.String("mode", "convert", "convert|serve")
	output := flag.String("output", "", "output file path (default: derived from the route name)")
	name := flag.String("name", "", "route name override")
	timeout := flag.Int("timeout", 10000, "short-link resolution timeout in milliseconds")
	flag.Parse()

	lib.InitLogging()

	switch *mode {
	case "serve":
		// Config file plus .env/PORT override, for container deployments.
		_ = godotenv.Load()
		if err := lib.LoadAppConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
		if p := os.Getenv("PORT"); p != "" {
			if port, err := strconv.Atoi(p); err == nil {
				lib.Config.Server.Port = port
			}
		}
		lib.StartServer()
		lib.HandleGracefulShutdown()
	case "convert":
		if flag.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "usage: gmaps-gpx [flags] <google-maps-url>")
			flag.PrintDefaults()
			os.Exit(2)
		}
		if err := run(flag.Arg(0), *output, *name, *timeout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", *mode)
		os.Exit(2)
	}
}

// run converts one URL to one GPX file. Nothing is written when
// extraction fails.
func run(rawURL, output, name string, timeoutMS int) error {
	target := rawURL
	if lib.IsShortenedURL(rawURL) {
		d := time.Duration(timeoutMS) * time.Millisecond
		ctx, cancel := context.WithTimeout(context.Background(), d)
		defer cancel()
		resolved, err := lib.NewResolver(d).Resolve(ctx, rawURL)
		if err != nil {
			return err
		}
		target = resolved
	}

	route, err := lib.ExtractRoute(target)
	if err != nil {
		return err
	}

	doc := lib.SerializeGPX(route, name)
	if output == "" {
		if name == "" {
			name = route.RouteName
		}
		output = lib.SuggestedFilename(name)
	}
	if err := os.WriteFile(output, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}

	fmt.Printf("Wrote %d waypoints to %s\n", len(route.Waypoints), output)
	return nil
}
