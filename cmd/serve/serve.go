// Package serve handles the serve command
package serve

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"fjacquet/invoice-extract/cmd/root"
	"fjacquet/invoice-extract/internal/server"
)

var addr string

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the upload API",
	Long: `Serve an HTTP API to upload PDF invoices into a session and download the
accumulated invoices as one spreadsheet.

Routes:
  POST   /v1/invoices          upload PDFs (multipart field "files")
  GET    /v1/invoices          accumulated invoices and totals
  GET    /v1/invoices/export   download (?format=xlsx|csv)
  GET    /v1/invoices/debug    per-document debug report
  DELETE /v1/invoices          clear the session
  GET    /v1/templates         loaded templates

Example:
  invoice-extract serve --addr :8080`,
	Args: cobra.NoArgs,
	RunE: serveFunc,
}

func init() {
	Cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server.addr)")
}

func serveFunc(cmd *cobra.Command, args []string) error {
	appContainer := root.GetContainer()
	if appContainer == nil {
		return fmt.Errorf("container not initialized")
	}
	cfg := appContainer.GetConfig()

	listen := addr
	if listen == "" {
		listen = cfg.Server.Addr
	}
	if cfg.Log.Level != "debug" && cfg.Log.Level != "trace" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := server.New(listen, server.Deps{
		Processor:      appContainer.GetProcessor(),
		Sessions:       appContainer.GetSessions(),
		Templates:      appContainer.GetTemplates(),
		Encoder:        appContainer.Encoder,
		FileName:       cfg.Export.FileName,
		MaxUploadBytes: int64(cfg.Server.MaxUploadMB) << 20,
		Logger:         appContainer.GetLogger(),
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Start(ctx)
}
