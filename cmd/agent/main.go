// Command agent is a headless front end for the smartlabs API: it keeps the
// same local session file a browser build would, and drives the login,
// bootstrap, watch-ad, withdraw and admin flows from the command line.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/enaya12q/smartlabs/internal/client"
)

func main() {
	server := flag.String("server", envOr("SMARTLABS_SERVER", "http://localhost:8080"), "API base URL")
	cachePath := flag.String("cache", "", "session cache file (default: user config dir)")
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	path := *cachePath
	if path == "" {
		var err error
		path, err = client.DefaultCachePath()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
	}
	c := client.New(*server, client.NewCache(path))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var err error
	switch cmd := flag.Arg(0); cmd {
	case "login":
		err = loginFlow(ctx, c, flag.Arg(1))
	case "status":
		err = statusFlow(ctx, c)
	case "watch-ad":
		err = watchAdFlow(ctx, c)
	case "withdraw":
		err = withdrawFlow(ctx, c, flag.Arg(1))
	case "logout":
		err = c.Logout(ctx)
	case "admin":
		err = adminFlow(ctx, c, flag.Args()[1:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: agent [flags] <command>

commands:
  login <assertion.json>      sign in with a Telegram widget payload
  status                      bootstrap and print the current session
  watch-ad                    view one ad and print updated earnings
  withdraw <ton-wallet>       request a payout of the full balance
  logout                      close the session
  admin login <user> <pass>   open an admin session
  admin users [search]        list users
  admin withdrawals [search]  list withdrawal requests
  admin approve <id>          complete a pending withdrawal
  admin reject <id>           reject a pending withdrawal`)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func loginFlow(ctx context.Context, c *client.Client, file string) error {
	if file == "" {
		return errors.New("login needs an assertion JSON file")
	}
	raw, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	s, err := c.Login(ctx, json.RawMessage(raw))
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s (earnings %s, ads viewed %d)\n",
		s.DisplayName(), s.Earnings.StringFixed(4), s.AdsViewed)
	return nil
}

func statusFlow(ctx context.Context, c *client.Client) error {
	state, s, err := c.Bootstrap(ctx)
	if err != nil {
		return err
	}
	if state == client.StateAnonymous {
		fmt.Println("Not logged in.")
		return nil
	}
	fmt.Printf("[%s] %s: earnings %s, ads viewed %d\nreferral: %s\n",
		state, s.DisplayName(), s.Earnings.StringFixed(4), s.AdsViewed, s.ReferralLink)
	return nil
}

func watchAdFlow(ctx context.Context, c *client.Client) error {
	// The dashboard requires a server-confirmed session before any action.
	if _, err := c.BootstrapDashboard(ctx); err != nil {
		return err
	}

	ad := c.StartAd()
	fmt.Println("Ad playing...")
	for !ad.CanClose() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(ad.RemainingDwell()):
		}
	}
	s, err := ad.Close(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Ad viewed! Earnings %s, ads viewed %d\n", s.Earnings.StringFixed(4), s.AdsViewed)
	return nil
}

func withdrawFlow(ctx context.Context, c *client.Client, wallet string) error {
	if _, err := c.BootstrapDashboard(ctx); err != nil {
		return err
	}
	s, err := c.Withdraw(ctx, wallet)
	if err != nil {
		return err
	}
	fmt.Printf("Withdrawal request submitted. Remaining earnings: %s\n", s.Earnings.StringFixed(4))
	return nil
}

func adminFlow(ctx context.Context, c *client.Client, args []string) error {
	if len(args) < 1 {
		return errors.New("admin needs a subcommand")
	}
	v := c.Admin()
	switch args[0] {
	case "login":
		if len(args) < 3 {
			return errors.New("admin login needs a username and password")
		}
		if err := v.Login(ctx, args[1], args[2]); err != nil {
			return err
		}
		fmt.Println("Admin session opened.")
		return nil
	case "users":
		users, err := v.SearchUsers(ctx, arg(args, 1))
		if err != nil {
			return err
		}
		for _, u := range users {
			fmt.Printf("%s  tg=%d  %s  earnings=%s  ads=%d  ref=%s\n",
				u.ID, u.TelegramID, u.Username, u.Earnings.StringFixed(4), u.AdsViewed, u.ReferralCode)
		}
		return nil
	case "withdrawals":
		ws, err := v.SearchWithdrawals(ctx, arg(args, 1))
		if err != nil {
			return err
		}
		for _, w := range ws {
			fmt.Printf("%s  user=%s  amount=%s  wallet=%s  status=%s\n",
				w.ID, w.Username, w.Amount.StringFixed(4), w.TonWalletAddress, w.Status)
		}
		return nil
	case "approve", "reject":
		if len(args) < 2 {
			return fmt.Errorf("admin %s needs a withdrawal id", args[0])
		}
		var err error
		status := "completed"
		if args[0] == "reject" {
			status = "rejected"
			_, err = v.Reject(ctx, args[1])
		} else {
			_, err = v.Approve(ctx, args[1])
		}
		if err != nil {
			return err
		}
		fmt.Printf("Withdrawal %s %s.\n", args[1], status)
		return nil
	default:
		return fmt.Errorf("unknown admin subcommand %q", args[0])
	}
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
