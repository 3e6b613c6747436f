package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/pytutor/internal/curriculum"
	"github.com/abhisek/pytutor/internal/llm"
	"github.com/abhisek/pytutor/internal/server"
	"github.com/abhisek/pytutor/internal/store"
	"github.com/abhisek/pytutor/internal/tutor"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat server",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = appConfig.Server.Addr
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv, err := newChatServer(ctx, st, logger)
		if err != nil {
			return err
		}

		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "PyTutor server running at http://%s\n", ln.Addr())
		return srv.Serve(ctx, ln)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}

// newChatServer builds the provider stack, the tutor service, and the HTTP
// server around them.
func newChatServer(ctx context.Context, st *store.Store, log *slog.Logger) (*server.Server, error) {
	provider, llmCfg, err := llm.NewProviderFromEnv(ctx, st.EventRepo())
	if err != nil {
		return nil, fmt.Errorf("LLM provider not configured: %w", err)
	}
	log.Info("llm provider ready", "provider", llmCfg.Provider)

	svc := tutor.NewService(provider, appConfig.TutorService(llmCfg.Provider), log)

	timeout := appConfig.Server.Timeout
	if timeout == 0 {
		timeout = llmCfg.Timeout
	}
	return server.New(server.Options{
		Chat:      svc,
		Catalog:   curriculum.Default(),
		Logger:    log,
		RateLimit: appConfig.Server.RateLimit,
		Burst:     appConfig.Server.Burst,
		Timeout:   timeout,
	})
}
