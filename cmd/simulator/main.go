// Command simulator chats with the lead assistant in the terminal.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	appconfig "github.com/adarshrealtor/lead-assistant/internal/config"
	"github.com/adarshrealtor/lead-assistant/internal/conversation"
	"github.com/adarshrealtor/lead-assistant/internal/leads"
	"github.com/adarshrealtor/lead-assistant/internal/settings"
	"github.com/adarshrealtor/lead-assistant/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := appconfig.Load()
	logger := logging.NewWithWriter(cfg.LogLevel, "text", os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, conversation.GeminiClientFactory(cfg.GeminiModel), os.Stdin, os.Stdout, logger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *appconfig.Config, factory conversation.ClientFactory, in io.Reader, out io.Writer, logger *logging.Logger) error {
	settingsStore := settings.NewStore(settings.Settings{APIKey: cfg.GeminiAPIKey})
	leadStore := leads.NewStore()

	queue := conversation.NewMemoryQueue(cfg.ExtractionQueueSize)
	manager := conversation.NewManager(settingsStore, factory, conversation.NewPublisher(queue, logger), logger,
		conversation.WithModel(cfg.GeminiModel),
		conversation.WithTemperature(cfg.ChatTemperature),
		conversation.WithTurnTimeout(cfg.TurnTimeout),
	)
	defer manager.Close()

	promoter := conversation.NewPromoter(leadStore, logger,
		conversation.WithPromotionListener(conversation.PromotionListenerFunc(func(_ context.Context, lead *leads.Lead) {
			fmt.Fprintf(out, "\n📋 Lead captured: %s | %s | %s\n", lead.Name, lead.Phone, lead.Requirement)
		})),
	)
	worker := conversation.NewExtractionWorker(queue, manager,
		conversation.NewProbe(logger, conversation.WithProbeModel(cfg.GeminiModel)),
		promoter, logger,
		conversation.WithExtractionTimeout(cfg.ExtractionTimeout),
	)

	session, err := manager.Create(ctx)
	if errors.Is(err, conversation.ErrConfiguration) {
		fmt.Fprintln(out, conversation.SetupPrompt)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Adarsh Realtor simulator. Commands: /restart, /leads, /quit")
	printMessage(out, session.Messages()[0])

	done := make(chan struct{})
	defer close(done)
	lines, scanErr := readLines(in, done)

	for {
		fmt.Fprint(out, "> ")
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case text, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return <-scanErr
			}
			line = strings.TrimSpace(text)
		}

		switch line {
		case "":
			continue
		case "/quit":
			return nil
		case "/leads":
			printLeads(out, leadStore.All())
			continue
		case "/restart":
			if err := session.Start(ctx); err != nil {
				fmt.Fprintln(out, describe(err))
				continue
			}
			printMessage(out, session.Messages()[0])
			continue
		}

		reply, err := session.Send(ctx, line)
		if ctx.Err() != nil {
			// Interrupted mid-turn; the reply is a cancellation, not a backend fault.
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			fmt.Fprintln(out, describe(err))
			continue
		}
		printMessage(out, reply)

		// Extraction runs inline so a captured lead prints right after the reply.
		if err := worker.Drain(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}
	}
}

// readLines scans in on its own goroutine so the REPL can react to ctx while
// stdin is blocked. The goroutine exits once done is closed or input ends.
func readLines(in io.Reader, done <-chan struct{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}

func printMessage(out io.Writer, msg conversation.Message) {
	fmt.Fprintf(out, "bot: %s\n", msg.Text)
}

func printLeads(out io.Writer, all []*leads.Lead) {
	if len(all) == 0 {
		fmt.Fprintln(out, "No leads captured yet.")
		return
	}
	for _, l := range all {
		fmt.Fprintf(out, "%s  %-16s %-14s %-24s %s\n", l.CreatedAt.Format("15:04:05"), l.Name, l.Phone, l.Requirement, l.Status)
	}
}

func describe(err error) string {
	if errors.Is(err, conversation.ErrConfiguration) {
		return conversation.SetupPrompt
	}
	return "error: " + err.Error()
}
