// SPDX-License-Identifier: MIT

// xordonctl is the operator CLI for the Xordon API. Commands cover auth,
// campaigns, settings and a backend health probe.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ronittamrakar/xordon-go/internal/auth"
	"github.com/ronittamrakar/xordon-go/internal/cache"
	"github.com/ronittamrakar/xordon-go/internal/campaigns"
	"github.com/ronittamrakar/xordon-go/internal/config"
	xlog "github.com/ronittamrakar/xordon-go/internal/log"
	"github.com/ronittamrakar/xordon-go/internal/session"
	"github.com/ronittamrakar/xordon-go/internal/settings"
	"github.com/ronittamrakar/xordon-go/internal/transport"
)

var version = "dev"

func usage() {
	fmt.Fprintf(os.Stderr, `usage: xordonctl [flags] <command> [args]

commands:
  login <email>            authenticate and store the session
  logout                   drop the stored session
  whoami                   print the cached user
  campaigns list           list campaigns
  campaigns get <id>       show one campaign
  campaigns create <name> <subject>  create a draft campaign
  campaigns send <id>      queue a campaign for sending
  settings get             print the workspace settings
  health                   probe the backend
  version                  print version and exit

flags:
`)
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}
	if args[0] == "version" {
		fmt.Printf("xordonctl %s\n", version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "xordonctl: %v\n", err)
		os.Exit(1)
	}

	xlog.Configure(xlog.Config{
		Level:   cfg.LogLevel,
		Service: "xordonctl",
		Version: version,
	})
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := session.NewFileStore(cfg.SessionFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "xordonctl: session store: %v\n", err)
		os.Exit(1)
	}
	sess := session.New(store)

	opts := []transport.Option{
		transport.WithCache(cache.NewMemory(time.Minute), 0),
		transport.WithAuthExpiredHook(func() {
			fmt.Fprintln(os.Stderr, "session expired, run `xordonctl login` again")
		}),
	}
	if cfg.DevMode {
		opts = append(opts, transport.WithTokenSource(auth.NewBootstrap(cfg, sess)))
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, transport.WithRateLimit(cfg.RateLimit))
	}
	client := transport.New(cfg, sess, opts...)

	if err := run(ctx, args, client); err != nil {
		fmt.Fprintf(os.Stderr, "xordonctl: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, client *transport.Client) error {
	authSvc := auth.NewService(client)

	switch args[0] {
	case "login":
		if len(args) < 2 {
			return fmt.Errorf("login: email required")
		}
		password, err := readPassword()
		if err != nil {
			return err
		}
		result, err := authSvc.Login(ctx, args[1], password, "", true)
		if err != nil {
			return err
		}
		fmt.Printf("logged in as %s\n", result.User.DisplayName())
		return nil

	case "logout":
		authSvc.Logout(ctx)
		fmt.Println("logged out")
		return nil

	case "whoami":
		user := authSvc.CurrentUser()
		if user == nil {
			return fmt.Errorf("not logged in")
		}
		return printJSON(user)

	case "campaigns":
		if len(args) < 2 {
			return fmt.Errorf("campaigns: subcommand required (list, get, create, send)")
		}
		svc := campaigns.NewService(client)
		switch args[1] {
		case "list":
			items, err := svc.List(ctx, "")
			if err != nil {
				return err
			}
			for _, c := range items {
				fmt.Printf("%s\t%s\t%s\n", c.ID, c.Status, c.Name)
			}
			return nil
		case "get":
			if len(args) < 3 {
				return fmt.Errorf("campaigns get: id required")
			}
			c, err := svc.Get(ctx, args[2])
			if err != nil {
				return err
			}
			return printJSON(c)
		case "create":
			if len(args) < 4 {
				return fmt.Errorf("campaigns create: name and subject required")
			}
			c, err := svc.Create(ctx, campaigns.CreateParams{Name: args[2], Subject: args[3]})
			if err != nil {
				return err
			}
			fmt.Printf("created %s\n", c.ID)
			return nil
		case "send":
			if len(args) < 3 {
				return fmt.Errorf("campaigns send: id required")
			}
			if err := svc.Send(ctx, args[2]); err != nil {
				return err
			}
			fmt.Println("queued")
			return nil
		default:
			return fmt.Errorf("campaigns: unknown subcommand %q", args[1])
		}

	case "settings":
		if len(args) < 2 || args[1] != "get" {
			return fmt.Errorf("settings: only `settings get` is supported")
		}
		svc := settings.NewService(client)
		return printJSON(svc.Get(ctx))

	case "health":
		var out map[string]any
		if err := client.Do(ctx, "GET", "/health", nil, &out); err != nil {
			return err
		}
		return printJSON(out)

	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readPassword reads the password from the XORDON_PASSWORD env var or, when
// unset, from stdin.
func readPassword() (string, error) {
	if p := os.Getenv("XORDON_PASSWORD"); p != "" {
		return p, nil
	}
	fmt.Fprint(os.Stderr, "password: ")
	var p string
	if _, err := fmt.Scanln(&p); err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return p, nil
}
