// Command escrowctl is the operator tool for the escrow API:
//
//	escrowctl token   -address 0x... [-ttl 24h] [-locale id]
//	escrowctl mint    -to 0x... -amount 12.5
//	escrowctl balance -address 0x...
//	escrowctl journal -project <uuid> [-limit 50]
//	escrowctl migrate
//
// mint, balance, journal and migrate talk to DATABASE_URL directly.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"

	"opencure/internal/adapter/repo"
	"opencure/internal/infra"
	"opencure/internal/middleware"
	"opencure/internal/token"
	"opencure/migrations"
)

func main() {
	_ = godotenv.Load()
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		exitWithError(err)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("usage: escrowctl <token|mint|balance|journal|migrate> [flags]")
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "token":
		return issueToken(rest, out, time.Now())
	case "mint":
		return mint(ctx, rest, out)
	case "balance":
		return balance(ctx, rest, out)
	case "journal":
		return journal(ctx, rest, out)
	case "migrate":
		return migrate(ctx, rest, out)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func issueToken(args []string, out io.Writer, now time.Time) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	address := fs.String("address", "", "caller address (hex)")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	locale := fs.String("locale", "", "preferred locale (en, id)")
	secret := fs.String("secret", os.Getenv("JWT_SECRET"), "HMAC secret, defaults to JWT_SECRET")
	if err := fs.Parse(args); err != nil {
		return err
	}
	addr, err := parseAddress(*address)
	if err != nil {
		return err
	}
	if strings.TrimSpace(*secret) == "" {
		return errors.New("JWT secret is required (-secret or JWT_SECRET)")
	}
	claims := middleware.TokenClaims{
		Sub:    addr.Hex(),
		Locale: *locale,
		Iat:    now.Unix(),
		Issuer: "escrowctl",
	}
	if *ttl > 0 {
		claims.Exp = now.Add(*ttl).Unix()
	}
	jwt, err := middleware.SignJWT(*secret, claims)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, jwt)
	return err
}

func mint(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("mint", flag.ContinueOnError)
	to := fs.String("to", "", "recipient address (hex)")
	amount := fs.String("amount", "", "amount in whole tokens, e.g. 12.5")
	decimals := fs.Int("decimals", token.DefaultDecimals, "token decimals")
	if err := fs.Parse(args); err != nil {
		return err
	}
	addr, err := parseAddress(*to)
	if err != nil {
		return err
	}
	units, err := token.ParseUnits(*amount, int32(*decimals))
	if err != nil {
		return err
	}
	return withRunner(ctx, "mint", func(runner *infra.SQLRunner) error {
		ledger := token.NewPostgres(runner)
		if err := ledger.Mint(ctx, addr, units); err != nil {
			return err
		}
		bal, err := ledger.BalanceOf(ctx, addr)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "minted %s to %s, balance %s\n",
			token.FormatUnits(units, int32(*decimals)), addr.Hex(), token.FormatUnits(bal, int32(*decimals)))
		return err
	})
}

func balance(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("balance", flag.ContinueOnError)
	address := fs.String("address", "", "address (hex)")
	decimals := fs.Int("decimals", token.DefaultDecimals, "token decimals")
	if err := fs.Parse(args); err != nil {
		return err
	}
	addr, err := parseAddress(*address)
	if err != nil {
		return err
	}
	return withRunner(ctx, "balance", func(runner *infra.SQLRunner) error {
		bal, err := token.NewPostgres(runner).BalanceOf(ctx, addr)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%s %s\n", addr.Hex(), token.FormatUnits(bal, int32(*decimals)))
		return err
	})
}

func journal(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("journal", flag.ContinueOnError)
	project := fs.String("project", "", "project id")
	limit := fs.Int("limit", 50, "maximum number of events")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*project) == "" {
		return errors.New("-project is required")
	}
	return withRunner(ctx, "journal", func(runner *infra.SQLRunner) error {
		entries, err := repo.NewEventRepository(runner).ListByProject(ctx, *project, *limit)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		for _, e := range entries {
			line := map[string]any{
				"seq":         e.Sequence,
				"type":        e.Type,
				"occurred_at": e.OccurredAt.Format(time.RFC3339),
				"payload":     json.RawMessage(e.Payload),
			}
			if err := enc.Encode(line); err != nil {
				return err
			}
		}
		return nil
	})
}

func migrate(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	return withRunner(ctx, "migrate", func(runner *infra.SQLRunner) error {
		applied, err := runner.Migrate(ctx, migrations.Files)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			_, err = fmt.Fprintln(out, "schema up to date")
			return err
		}
		for _, v := range applied {
			if _, err := fmt.Fprintf(out, "applied %d\n", v); err != nil {
				return err
			}
		}
		return nil
	})
}

func withRunner(ctx context.Context, name string, fn func(*infra.SQLRunner) error) error {
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := infra.NewDBPool(ctx, &infra.Config{DatabaseURL: dbURL})
	if err != nil {
		return err
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", name).Logger()
	return fn(infra.NewSQLRunner(pool, logger))
}

func parseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "escrowctl: %v\n", err)
	os.Exit(1)
}
