// Command storefront is a terminal client for the shop: it keeps a cart in a
// local state file, places orders against the API and tracks them.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/collabinvest/cil-storefront/internal/clientstore"
	"github.com/collabinvest/cil-storefront/pkg/logger"
)

const usage = `usage: storefront [-api URL] [-state FILE] <command> [flags]

commands:
  cart list|add|remove|qty|clear   manage the local cart
  checkout                         place an order for the cart
  track                            look up an order
`

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

type app struct {
	out       io.Writer
	state     clientstore.Storage
	apiURL    string
	shopPhone string
	logg      *logger.Logger
}

func run(ctx context.Context, args []string, out io.Writer) error {
	global := flag.NewFlagSet("storefront", flag.ContinueOnError)
	global.SetOutput(out)
	global.Usage = func() { fmt.Fprint(out, usage) }
	apiURL := global.String("api", envOr("CIL_STOREFRONT_API_URL", "http://localhost:8080"), "storefront API base URL")
	statePath := global.String("state", defaultStatePath(), "file holding the cart and session hand-offs")
	shopPhone := global.String("whatsapp", envOr("CIL_SHOP_WHATSAPP_PHONE", "2348129978419"), "shop WhatsApp number for fallback links")
	verbose := global.Bool("v", false, "log requests to stderr")
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		global.Usage()
		return flag.ErrHelp
	}

	state, err := clientstore.OpenFile(*statePath)
	if err != nil {
		return err
	}

	logg := logger.Nop()
	if *verbose {
		logg = logger.New(logger.Options{ServiceName: "storefront", Level: logger.ParseLevel("debug"), Output: os.Stderr})
	}

	a := &app{out: out, state: state, apiURL: *apiURL, shopPhone: *shopPhone, logg: logg}
	cmd, rest := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "cart":
		return a.cart(rest)
	case "checkout":
		return a.checkout(ctx, rest)
	case "track":
		return a.track(ctx, rest)
	default:
		global.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultStatePath() string {
	if v := os.Getenv("CIL_STOREFRONT_STATE"); v != "" {
		return v
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".cil-storefront.json"
	}
	return filepath.Join(dir, "cil-storefront", "state.json")
}
