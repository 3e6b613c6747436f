package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/pytutor/internal/app"
	"github.com/abhisek/pytutor/internal/client"
	"github.com/abhisek/pytutor/internal/curriculum"
	"github.com/abhisek/pytutor/internal/progress"
)

type chatOptions struct {
	local       bool
	serverURL   string
	skipWelcome bool
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start a tutoring session in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts chatOptions
		opts.local, _ = cmd.Flags().GetBool("local")
		opts.serverURL, _ = cmd.Flags().GetString("server")
		opts.skipWelcome, _ = cmd.Flags().GetBool("skip-welcome")
		return runChat(cmd, opts)
	},
}

func init() {
	chatCmd.Flags().Bool("local", false, "Run the chat server in-process")
	chatCmd.Flags().String("server", "", "Chat server URL (overrides client.server_url)")
	chatCmd.Flags().Bool("skip-welcome", false, "Start on the topic list")
}

// runChat opens the store, connects a pipeline to a chat server, and
// launches the TUI.
func runChat(cmd *cobra.Command, opts chatOptions) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	serverURL := opts.serverURL
	if serverURL == "" {
		serverURL = appConfig.Client.ServerURL
	}

	// The TUI owns the terminal.
	uiLogger := slog.New(slog.DiscardHandler)

	if opts.local {
		srv, err := newChatServer(ctx, st, uiLogger)
		if err != nil {
			return err
		}
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		go func() {
			if err := srv.Serve(ctx, ln); err != nil {
				fmt.Fprintln(os.Stderr, "chat server:", err)
			}
		}()
		serverURL = "http://" + ln.Addr().String()
	}

	progressStore := progress.New(curriculum.Default())
	pipeline, err := client.New(client.Options{
		ServerURL:     serverURL,
		Store:         progressStore,
		State:         st.LocalStateRepo(),
		HistoryWindow: appConfig.Client.HistoryWindow,
		Logger:        uiLogger,
	})
	if err != nil {
		return err
	}

	return app.Run(app.Options{
		Store:       progressStore,
		Submitter:   pipeline,
		State:       st.LocalStateRepo(),
		SkipWelcome: opts.skipWelcome,
	})
}
