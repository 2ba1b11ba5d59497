// Package app wires the application commands: update, build and cron.
package app

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"fxpub/internal/config"
	"fxpub/internal/provider"
	"fxpub/internal/provider/mufg"
	"fxpub/internal/retry"
	"fxpub/internal/retry/backoff"
)

const dateLayout = "2006-01-02"

// maxBackoff caps the delay between retries of external requests.
const maxBackoff = 2 * time.Minute

// Run wires the application components and dispatches the subcommand.
func Run() error {
	appCfg, err := config.Init()
	if err != nil {
		return err
	}
	// Logger
	logrus.SetOutput(os.Stdout)
	cfgLevel := appCfg.Logging.Level
	if parsedLvl, parseErr := logrus.ParseLevel(cfgLevel); parseErr != nil {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(parsedLvl)
	}
	logrus.Info("✅ Config initialization successful")

	// Root context bound to OS signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, appCfg, os.Args[1:])
}

func run(ctx context.Context, appCfg *config.AppConfig, args []string) error {
	flags := flag.NewFlagSet("fxpub", flag.ContinueOnError)
	debug := flags.Bool("debug", false, "enable debug logging")
	flags.Usage = func() { usage(flags) }

	if err := flags.Parse(args); err != nil {
		return err
	}
	if *debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	rest := flags.Args()
	if len(rest) == 0 {
		usage(flags)
		return nil
	}

	registry := newRegistry(appCfg)

	switch rest[0] {
	case "update":
		return updateCommand(ctx, appCfg, registry, rest[1:])
	case "build":
		return buildCommand(ctx, appCfg, registry, rest[1:])
	case "cron":
		return cronCommand(ctx, appCfg, registry, rest[1:])
	default:
		usage(flags)
		return fmt.Errorf("unknown command %q", rest[0])
	}
}

func usage(flags *flag.FlagSet) {
	out := flags.Output()
	fmt.Fprintf(out, "usage: fxpub [--debug] <command> [flags]\n\n")
	fmt.Fprintf(out, "commands:\n")
	fmt.Fprintf(out, "  update    update currency exchange data\n")
	fmt.Fprintf(out, "  build     build the static API files\n")
	fmt.Fprintf(out, "  cron      run update and build on a schedule\n\n")
	fmt.Fprintf(out, "flags:\n")
	flags.PrintDefaults()
}

// newRegistry registers every known provider. Instances are only built for
// the providers a command resolves.
func newRegistry(appCfg *config.AppConfig) *provider.Registry {
	registry := provider.NewRegistry()
	registry.Register(mufg.Descriptor(), func() (provider.Provider, error) {
		return mufg.New(newHTTPClient(appCfg), newRetrier(appCfg))
	})
	return registry
}

func newHTTPClient(appCfg *config.AppConfig) *http.Client {
	timeout := appCfg.HTTPClient.Timeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func newRetrier(appCfg *config.AppConfig) retry.Retrier {
	return retry.NewRetrier(
		retry.NonRetriableErrors(context.Canceled),
		retry.Limit(appCfg.HTTPClient.Retries+1),
		retry.Backoff(backoff.BinaryExponential(appCfg.HTTPClient.Backoff()), maxBackoff),
	)
}

// multiFlag collects a repeatable string flag.
type multiFlag []string

func (f *multiFlag) String() string { return strings.Join(*f, ",") }

func (f *multiFlag) Set(value string) error {
	*f = append(*f, value)
	return nil
}
