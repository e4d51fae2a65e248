// Command drivecheck verifies the Google Drive setup without Telegram: it
// reports the credential state, completes the OAuth exchange, runs a sample
// search and exports the stored token for GDRIVE_TOKEN_BASE64.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"drive-search-bot/internal/application"
	"drive-search-bot/internal/config"
	"drive-search-bot/internal/domain"
	"drive-search-bot/internal/domain/model"
	"drive-search-bot/internal/infra/adapters/drive"
	tele "drive-search-bot/internal/infra/adapters/telegram"
	"drive-search-bot/internal/infra/db"
	"drive-search-bot/internal/infra/i18n"
	"drive-search-bot/internal/infra/logging"
	"drive-search-bot/internal/infra/security"
	"drive-search-bot/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	code := flag.String("code", "", "authorization code to exchange for a token")
	query := flag.String("query", "", "run a sample search for this text")
	export := flag.Bool("export", false, "print the stored token as base64")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load(*cfgPath, true)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, err := db.Open(ctx, cfg.Database, logger)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer store.Close()

	var cipher drive.TokenCipher
	if cfg.Security.EncryptionKey != "" {
		enc, err := security.NewEncryptionService(cfg.Security.EncryptionKey)
		if err != nil {
			log.Fatalf("encryption: %v", err)
		}
		cipher = enc
	}
	creds, err := drive.LoadCredentials(cfg.Drive)
	if err != nil {
		log.Fatalf("credentials: %v", err)
	}
	auth, err := drive.NewAuthenticator(creds, store, cipher, logger)
	if err != nil {
		log.Fatalf("drive auth: %v", err)
	}
	if err := auth.Bootstrap(ctx, cfg.Drive.TokenBase64); err != nil {
		log.Printf("bootstrap token: %v", err)
	}

	fmt.Printf("store:        %s\n", store.Backend())
	fmt.Printf("folder:       %s\n", orDash(cfg.Drive.FolderID))
	fmt.Printf("credentials:  %v\n", auth.HasCredentials())

	if *code != "" {
		if err := auth.Exchange(ctx, *code); err != nil {
			log.Fatalf("exchange: %v", err)
		}
		fmt.Println("✅ token stored")
	}

	if !auth.IsAuthenticated(ctx) {
		fmt.Println("authorized:   false")
		url, err := auth.AuthURL()
		if errors.Is(err, domain.ErrNoCredentials) {
			fmt.Println("set GDRIVE_CREDENTIALS or GDRIVE_CREDENTIALS_FILE first")
			os.Exit(1)
		}
		fmt.Printf("\nopen this URL, then rerun with -code <code>:\n%s\n", url)
		os.Exit(1)
	}
	fmt.Println("authorized:   true")

	if *query != "" {
		tr, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Bot.Language)
		if err != nil {
			log.Fatalf("i18n: %v", err)
		}
		client := drive.NewClient(auth, cfg.Drive, logger)
		search := usecase.NewSearchUseCase(client, store, logger)
		flow := application.NewSearchFlow(search, tele.NewNoopMessenger(logger), tr, orDash(cfg.Bot.Username), logger)
		in := application.Inbound{ChatType: model.ChatTypePrivate, Text: *query}
		if err := flow.Reply(ctx, in, *query, application.StyleDownload); err != nil {
			log.Fatalf("search: %v", err)
		}
	}

	if *export {
		tok, err := auth.Export(ctx)
		if err != nil {
			log.Fatalf("export: %v", err)
		}
		fmt.Printf("\nGDRIVE_TOKEN_BASE64=%s\n", tok)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
