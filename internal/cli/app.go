package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/nikolayk812/storefront/internal/cart"
	"github.com/nikolayk812/storefront/internal/checkout"
	"github.com/nikolayk812/storefront/internal/commerce"
	"github.com/nikolayk812/storefront/internal/config"
	"github.com/nikolayk812/storefront/internal/logger"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/nikolayk812/storefront/internal/session"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var errUsage = errors.New("usage")

type command struct {
	usage string
	help  string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"connect":    {usage: "connect <store code | store://slug>", help: "select the store to shop in", run: runConnect},
	"categories": {usage: "categories", help: "list categories", run: runCategories},
	"products":   {usage: "products [-query q] [-category id] [-page n] [-limit n]", help: "browse products", run: runProducts},
	"product":    {usage: "product <id>", help: "show a product with its variants and add-ons", run: runProduct},
	"add":        {usage: "add <product id> [-variant group=id]... [-option id]... [-qty n]", help: "add a product to the cart", run: runAdd},
	"cart":       {usage: "cart", help: "show the cart", run: runCart},
	"qty":        {usage: "qty <line> <n>", help: "set a line quantity; 0 removes the line", run: runQty},
	"remove":     {usage: "remove <line>", help: "remove a cart line", run: runRemove},
	"clear":      {usage: "clear", help: "empty the cart", run: runClear},
	"checkout":   {usage: "checkout [-shipping id] [-place -name .. -street .. -city .. -postal .. -country ..]", help: "quote and place an order", run: runCheckout},
	"register":   {usage: "register -first .. -last .. -email .. -password .. -confirm .. [-phone ..]", help: "create an account", run: runRegister},
	"login":      {usage: "login -email .. -password ..", help: "sign in", run: runLogin},
	"logout":     {usage: "logout", help: "sign out", run: runLogout},
	"profile":    {usage: "profile [-first ..] [-last ..] [-email ..] [-phone ..]", help: "show or update your profile", run: runProfile},
	"countries":  {usage: "countries", help: "list delivery countries", run: runCountries},
}

type app struct {
	stdout io.Writer
	stderr io.Writer

	cfg     config.Config
	logger  *zap.Logger
	session *session.Store
	client  *commerce.Client

	carts     *cart.Service
	closeRepo func()
}

// Run executes one storefront command and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("storefront", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to the YAML config file")
	apiURL := fs.String("api", "", "commerce API base URL")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.Usage = func() { printUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() == 0 {
		printUsage(stderr)
		return exitUsage
	}

	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		printUsage(stderr)
		return exitUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitError
	}
	if *apiURL != "" {
		cfg.API.BaseURL = *apiURL
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	a, err := newApp(cfg, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}
	defer a.close()

	err = cmd.run(ctx, a, fs.Args()[1:])
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		fmt.Fprintf(stderr, "usage: storefront %s\n", cmd.usage)
		return exitUsage
	default:
		a.logger.Debug("command failed", zap.String("command", name), zap.Error(err))
		fmt.Fprintf(stderr, "error: %s\n", describe(err))
		return exitError
	}
}

func newApp(cfg config.Config, stdout, stderr io.Writer) (*app, error) {
	log, err := logger.New(logger.Options{
		Service: "storefront",
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Writer:  stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("logger.New: %w", err)
	}

	store, err := session.NewStore(cfg.StateDir)
	if err != nil {
		return nil, fmt.Errorf("session.NewStore: %w", err)
	}

	client, err := commerce.New(cfg.API.BaseURL,
		commerce.WithTimeout(cfg.API.Timeout),
		commerce.WithUploadsURL(cfg.API.UploadsURL),
		commerce.WithSlugSource(store),
		commerce.WithTokenSource(store),
		commerce.WithLogger(log.Named("api")),
	)
	if err != nil {
		return nil, fmt.Errorf("commerce.New: %w", err)
	}

	return &app{
		stdout:  stdout,
		stderr:  stderr,
		cfg:     cfg,
		logger:  log,
		session: store,
		client:  client,
	}, nil
}

func (a *app) close() {
	if a.closeRepo != nil {
		a.closeRepo()
	}
	a.client.Close()
	_ = a.logger.Sync()
}

// cartService opens the cart database on first use.
func (a *app) cartService(ctx context.Context, state session.State) (*cart.Service, error) {
	if a.carts != nil {
		return a.carts, nil
	}

	repo, closeRepo, err := repository.Open(ctx, a.cfg.Cart.DSN)
	if err != nil {
		return nil, fmt.Errorf("repository.Open: %w", err)
	}
	a.closeRepo = closeRepo

	code := state.StoreCurrency
	if code == "" {
		code = a.cfg.Cart.Currency
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("currency[%s] is not valid: %w", code, err)
	}

	a.carts, err = cart.NewService(repo, unit, a.logger.Named("cart"))
	if err != nil {
		return nil, fmt.Errorf("cart.NewService: %w", err)
	}

	return a.carts, nil
}

func (a *app) checkoutService(ctx context.Context, state session.State) (*checkout.Service, error) {
	carts, err := a.cartService(ctx, state)
	if err != nil {
		return nil, err
	}

	taxRate := checkout.DefaultTaxRate
	if a.cfg.Checkout.TaxRate != "" {
		taxRate, err = decimal.NewFromString(a.cfg.Checkout.TaxRate)
		if err != nil {
			return nil, fmt.Errorf("tax rate[%s] is not valid: %w", a.cfg.Checkout.TaxRate, err)
		}
	}

	return checkout.NewService(carts, a.client, a.client,
		checkout.WithTaxRate(taxRate),
		checkout.WithMaxConcurrent(a.cfg.Checkout.MaxConcurrent),
		checkout.WithLogger(a.logger.Named("checkout")),
	)
}

// requireStore loads the session and fails when no store is connected.
func (a *app) requireStore() (session.State, error) {
	state, err := a.session.Load()
	if err != nil {
		return session.State{}, err
	}
	if state.StoreSlug == "" {
		return session.State{}, session.ErrNoStore
	}
	return state, nil
}

func describe(err error) string {
	var apiErr *commerce.APIError
	switch {
	case errors.Is(err, session.ErrNoStore):
		return "no store selected, run: storefront connect <store code>"
	case errors.Is(err, commerce.ErrUnauthorized):
		return "not signed in or session expired, run: storefront login"
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	default:
		return err.Error()
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: storefront [-config file] [-api url] [-log-level level] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(w, "  %-11s %s\n", name, commands[name].help)
	}
}

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// parseFlags parses command flags that may be interleaved with positional arguments.
func parseFlags(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, fmt.Errorf("%w: %w", errUsage, err)
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func newFlagSet(a *app, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() {}
	return fs
}
