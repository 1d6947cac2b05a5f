package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"flightalert-service/internal/infrastructure/config"
	"flightalert-service/internal/infrastructure/oauth"
	"flightalert-service/pkg/logger"
)

func gmailTokenCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "gmail-token",
		Short: "Obtain a Gmail refresh token for the EMAIL channel",
		Long: `Run the OAuth consent flow for GMAIL_CLIENT_ID and print the refresh
token to store in GMAIL_REFRESH_TOKEN.

A local callback server listens on --port until the consent completes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.GmailClientID == "" || cfg.GmailClientSecret == "" {
				return errors.New("GMAIL_CLIENT_ID and GMAIL_CLIENT_SECRET must be set")
			}

			redirect := fmt.Sprintf("http://localhost:%d/oauth2callback", port)
			gmailOAuth := oauth.NewGmailOAuth(cfg.GmailClientID, cfg.GmailClientSecret, "", logger.NewLogger(cfg.LogLevel),
				oauth.WithRedirectURL(redirect))
			return runConsent(cmd, gmailOAuth, port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8090, "Port of the local OAuth callback server")
	return cmd
}

func runConsent(cmd *cobra.Command, gmailOAuth *oauth.GmailOAuth, port int) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	state := uuid.NewString()
	result := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		token, err := gmailOAuth.ExchangeCode(r.Context(), r.URL.Query().Get("code"))
		if err != nil {
			http.Error(w, "Failed to exchange code", http.StatusInternalServerError)
			result <- err
			return
		}

		fmt.Fprintf(cmd.OutOrStdout(), "\nRefresh Token: %s\n\n", token.RefreshToken)
		fmt.Fprint(w, "Authentication successful! You can close this window.")
		result <- nil
	})

	server := &http.Server{Addr: fmt.Sprintf("localhost:%d", port), Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			result <- err
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Open this URL in your browser:\n%s\n", gmailOAuth.GenerateAuthURL(state))

	var err error
	select {
	case err = <-result:
	case <-ctx.Done():
		err = ctx.Err()
	}
	_ = server.Shutdown(context.Background())
	return err
}
