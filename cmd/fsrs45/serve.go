package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sky-flux/fsrs45/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: http.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	httpCfg := appConfig.HTTP
	if serveAddr != "" {
		httpCfg.Addr = serveAddr
	}
	srv := server.New(st, logger, server.Options{
		Version:     version,
		EvalWorkers: appConfig.Eval.Workers,
	})
	return srv.ListenAndServe(ctx, httpCfg)
}
