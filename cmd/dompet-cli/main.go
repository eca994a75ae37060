// Command dompet-cli answers chat commands typed on stdin, for trying the
// assistant without a chat bridge.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"dompet/internal/bot"
	"dompet/internal/cli"
	"dompet/internal/log"
	"dompet/internal/services"
)

func main() {
	backendFlag := flag.String("backend", "memory", "ledger backend: memory, sqlite or sheets")
	dbPath := flag.String("db", "", "sqlite database path (default from SQLITE_DB_PATH)")
	seed := flag.String("seed", "", "pipe-separated seed file for the memory backend")
	sender := flag.String("sender", "cli", "sender recorded on new rows")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger("WARN", "text")

	os.Setenv("CHANNEL", "http")
	os.Setenv("DATA_BACKEND", *backendFlag)
	if *dbPath != "" {
		os.Setenv("SQLITE_DB_PATH", *dbPath)
	}
	if *seed != "" {
		os.Setenv("MEMORY_SEED_FILE", *seed)
	}
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()
	core, err := bot.NewCore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to start", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer core.Close()

	fmt.Println("dompet: ketik /help untuk bantuan, Ctrl-D untuk keluar")
	repl(ctx, core.Service, os.Stdin, os.Stdout, *sender)
}

func repl(ctx context.Context, svc *services.FinanceService, in io.Reader, out io.Writer, sender string) {
	sc := bufio.NewScanner(in)
	for n := 1; ; n++ {
		fmt.Fprint(out, "> ")
		if !sc.Scan() || ctx.Err() != nil {
			fmt.Fprintln(out)
			return
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		reply, ok := svc.Handle(ctx, services.Message{ID: fmt.Sprintf("cli-%d", n), Sender: sender, Text: line})
		if !ok {
			fmt.Fprintln(out, "(tidak ada balasan)")
			continue
		}
		fmt.Fprintln(out, reply)
	}
}
