package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/Deathbringer98/Username-Sniffer/internal/cli"
	"github.com/Deathbringer98/Username-Sniffer/internal/config"
	"github.com/Deathbringer98/Username-Sniffer/internal/enrich"
	"github.com/Deathbringer98/Username-Sniffer/internal/httpx"
	"github.com/Deathbringer98/Username-Sniffer/internal/output"
	"github.com/Deathbringer98/Username-Sniffer/internal/probe"
	"github.com/Deathbringer98/Username-Sniffer/internal/scan"
	"github.com/Deathbringer98/Username-Sniffer/internal/sites"
	"github.com/Deathbringer98/Username-Sniffer/internal/variants"
)

func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fmt.Fprintln(stdout, "Username Sniffer - check handle availability across the social web.")

	opts, handles, err := cli.Parse(args, stdout, stderr)
	if err != nil {
		if errors.Is(err, cli.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err.Error())
		return 2
	}

	color.NoColor = opts.NoColor

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "config error: %v\n", err)
		return 1
	}

	catalog, err := loadCatalog(opts.SitesFile)
	if err != nil {
		fmt.Fprintf(stderr, "site catalog error: %v\n", err)
		return 1
	}
	profiles := catalog.Include(opts.IncludeSkipped)

	if len(handles) == 0 {
		handles = promptHandles(stdout, os.Stdin)
		if len(handles) == 0 {
			fmt.Fprintln(stderr, "no handles provided")
			return 2
		}
	}

	if opts.Variants {
		handles, err = expandVariants(handles, opts.MaxVariants)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return 2
		}
		if opts.NoColor {
			fmt.Fprintf(stdout, "[i] Checking %d handle(s) including variations\n", len(handles))
		} else {
			fmt.Fprintf(color.Output, "[%s] Checking %d handle(s) including variations\n",
				color.HiBlueString("i"), len(handles))
		}
	}

	httpClient, err := httpx.NewClient(httpx.ClientConfig{
		Timeout:   cfg.Timeout.Duration,
		ProxyURL:  opts.Proxy,
		ConnLimit: cfg.ConnLimit,
	})
	if err != nil {
		fmt.Fprintf(stderr, "failed to initialize HTTP client: %v\n", err)
		return 1
	}

	logger := logrus.New()
	logger.SetOutput(stderr)
	logger.SetLevel(logrus.WarnLevel)
	if opts.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	limiter := probe.NewHostLimiter(probe.RateLimit{
		Requests: cfg.RateLimitPerHost.Requests,
		Window:   cfg.RateLimitPerHost.Window.Duration,
	})

	prober := probe.New(httpClient, probe.Config{
		UserAgent:    cfg.UserAgent,
		Timeout:      cfg.Timeout.Duration,
		MaxBodyBytes: cfg.MaxBodyBytes,
		MaxAttempts:  cfg.Retries,
	}, limiter, logger)

	enricher := enrich.New(httpClient, cfg.UserAgent)

	scanner := scan.NewScanner(prober, enricher, scan.Config{
		Concurrency: cfg.Concurrency,
	}, logger)

	printer := output.NewPrinter(stdout, opts.NoColor, opts.Verbose, opts.ShowUncertain)

	result, err := scanner.Scan(ctx, handles, profiles, printer.Result, printer.Report)
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(stderr, "scan error: %v\n", err)
		return 1
	}
	if result == nil {
		return 1
	}

	printer.Summary(result)

	if opts.Output != "" {
		if err := output.Export(opts.Output, result); err != nil {
			fmt.Fprintf(stderr, "failed to export results to %q: %v\n", opts.Output, err)
			return 1
		}
		if opts.NoColor {
			fmt.Fprintf(stdout, "[i] Saved results to %s\n", opts.Output)
		} else {
			fmt.Fprintf(color.Output, "[%s] Saved results to %s\n",
				color.HiBlueString("i"), color.HiGreenString(opts.Output))
		}
	}

	return 0
}

// loadConfig layers explicit flags over the config file over built-ins.
func loadConfig(opts cli.Options) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigFile != "" {
		var err error
		cfg, err = config.Load(opts.ConfigFile)
		if err != nil {
			return config.Config{}, err
		}
	}

	if opts.Set["timeout"] {
		cfg.Timeout = config.DurationFrom(opts.Timeout)
	}
	if opts.Set["concurrency"] {
		cfg.Concurrency = opts.Concurrency
	}
	if opts.Set["conn-limit"] {
		cfg.ConnLimit = opts.ConnLimit
	}
	return cfg, nil
}

func loadCatalog(path string) (*sites.Catalog, error) {
	if path == "" {
		return sites.LoadDefault()
	}
	return sites.Load(path)
}

// expandVariants replaces each base handle with its variation set, keeping
// first-seen order across bases.
func expandVariants(bases []string, max int) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string

	for _, base := range bases {
		vars, err := variants.Generate(base, max)
		if err != nil {
			return nil, fmt.Errorf("handle %q: %w", base, err)
		}
		for _, v := range vars {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out, nil
}

func promptHandles(stdout io.Writer, stdin io.Reader) []string {
	fmt.Fprint(stdout, "Enter handles to check separated by a space: ")
	r := bufio.NewReader(stdin)
	line, _ := r.ReadString('\n')
	return strings.Fields(strings.TrimSpace(line))
}
