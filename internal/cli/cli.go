package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
)

var ErrHelp = errors.New("help requested")

type Options struct {
	NoColor        bool
	Verbose        bool
	ShowUncertain  bool
	IncludeSkipped bool
	Variants       bool

	SitesFile  string
	ConfigFile string
	Proxy      string
	Output     string

	Timeout     time.Duration
	Concurrency int
	ConnLimit   int
	MaxVariants int

	// Set records which flags were given explicitly, so file-config values
	// survive unless the user overrode them.
	Set map[string]bool
}

const usageText = `
usage:
  usniffer [flags] USERNAME [USERNAMES...]

positional arguments:
  USERNAMES             one or more handles to check (prompted if omitted)

flags:
  -h, --help            show this help message and exit
  --no-color            disable colored stdout output
  -v, --verbose         print misses and uncertain results while scanning
  --show-uncertain      print the uncertain site list per handle
  --include-skipped     probe sites marked skip:true in the catalog
  --variants            also check generated handle variations

options:
  --sites PATH          site catalog file (default: built-in catalog)
  --config PATH         YAML config file with scan defaults
  --proxy URL           route probes through a proxy (socks5:// or http://)
  --output PATH         export results to .json, .csv, or .xlsx
  --timeout SECONDS     per-request timeout (default: 10)
  --concurrency N       max concurrent probes (default: 25)
  --conn-limit N        max concurrent connections (default: 50)
  --max-variants N      cap on generated variations (default: 12)
`

func Parse(args []string, stdout, stderr io.Writer) (Options, []string, error) {
	var opts Options
	var (
		help     bool
		timeoutS int
	)

	fs := flag.NewFlagSet("usniffer", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.Usage = func() {
		_, _ = fmt.Fprint(stdout, usageText)
	}

	// Help
	fs.BoolVar(&help, "h", false, "show help")
	fs.BoolVar(&help, "help", false, "show help")

	// Behavior flags
	fs.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	fs.BoolVar(&opts.Verbose, "v", false, "verbose output")
	fs.BoolVar(&opts.Verbose, "verbose", false, "verbose output")
	fs.BoolVar(&opts.ShowUncertain, "show-uncertain", false, "print uncertain sites per handle")
	fs.BoolVar(&opts.IncludeSkipped, "include-skipped", false, "probe sites marked skip:true")
	fs.BoolVar(&opts.Variants, "variants", false, "also check generated handle variations")

	// Options
	fs.StringVar(&opts.SitesFile, "sites", "", "site catalog path")
	fs.StringVar(&opts.ConfigFile, "config", "", "YAML config path")
	fs.StringVar(&opts.Proxy, "proxy", "", "proxy url")
	fs.StringVar(&opts.Output, "output", "", "export path")
	fs.IntVar(&timeoutS, "timeout", 10, "request timeout in seconds")
	fs.IntVar(&opts.Concurrency, "concurrency", 25, "max concurrent probes")
	fs.IntVar(&opts.ConnLimit, "conn-limit", 50, "max concurrent connections")
	fs.IntVar(&opts.MaxVariants, "max-variants", 12, "cap on generated variations")

	if err := fs.Parse(args); err != nil {
		return Options{}, nil, err
	}
	if help {
		fs.Usage()
		return Options{}, nil, ErrHelp
	}

	if timeoutS <= 0 {
		timeoutS = 10
		if opts.NoColor {
			fmt.Fprintf(stdout, "[!] Invalid timeout value; using default of 10 seconds.\n")
		} else {
			fmt.Fprintf(color.Output, "[%s] Invalid timeout value; using default of %s.\n",
				color.HiRedString("!"),
				color.HiYellowString("10 seconds"),
			)
		}
	}
	opts.Timeout = time.Duration(timeoutS) * time.Second

	if opts.Concurrency <= 0 {
		opts.Concurrency = 25
	}
	if opts.ConnLimit <= 0 {
		opts.ConnLimit = 50
	}
	if opts.MaxVariants <= 0 {
		opts.MaxVariants = 12
	}

	opts.Set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		opts.Set[f.Name] = true
	})

	return opts, fs.Args(), nil
}
