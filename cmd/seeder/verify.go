package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/bara-directory/seeder/internal/app"
	"github.com/bara-directory/seeder/internal/service"
	"github.com/bara-directory/seeder/internal/sink"
)

func runVerify(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	country := fs.String("country", e.cfg.DefaultCountry, "country to count")
	if err := fs.Parse(args); err != nil {
		return err
	}

	stack, err := app.Open(ctx, e.cfg, app.Options{Mode: sink.ModeInsert})
	if err != nil {
		return err
	}
	defer stack.Close()
	if stack.Lister == nil {
		return errors.New("verify needs DATABASE_URL")
	}

	totals, err := service.NewBusinessesService(stack.Lister).Totals(ctx, *country)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(totals, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(e.stdout, string(out))
	return err
}

func runProfiles(_ context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("profiles", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	_, err := fmt.Fprintln(e.stdout, strings.Join(e.pools.Names(), "\n"))
	return err
}
