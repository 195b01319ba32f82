package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/milestonegate/internal/client/client"
	"github.com/dmitrijs2005/milestonegate/internal/client/config"
	"github.com/dmitrijs2005/milestonegate/internal/common"
)

type rootFlags struct {
	configPath string
	addr       string
	token      string
	dir        string
	timeout    time.Duration
}

// NewRootCmd creates the top-level "milestonectl" command and registers all
// subcommands against app.
func NewRootCmd(app *App) *cobra.Command {
	var f rootFlags

	root := &cobra.Command{
		Use:           "milestonectl",
		Short:         "Milestone payments and gated deliverables",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(f.configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("addr") {
				cfg.ServerEndpointAddr = f.addr
			}
			if flags.Changed("token") {
				cfg.AccessToken = f.token
			}
			if flags.Changed("dir") {
				cfg.DownloadDir = f.dir
			}
			if flags.Changed("timeout") {
				cfg.RequestTimeout = f.timeout
			}
			app.config = cfg
			if !needsServer(cmd) {
				return nil
			}
			return app.connect(cmd.ErrOrStderr())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "path to a JSON or YAML config file")
	pf.StringVarP(&f.addr, "addr", "a", "", "address and port of the server")
	pf.StringVarP(&f.token, "token", "t", "", "access token")
	pf.StringVarP(&f.dir, "dir", "d", "", "directory for downloaded files")
	pf.DurationVar(&f.timeout, "timeout", 0, "per-request timeout")

	root.AddCommand(
		newGetCmd(app),
		newSubmitProofCmd(app),
		newReviewCmd(app),
		newUploadDeliverableCmd(app),
		newSetWatermarkCmd(app),
		newDownloadCmd(app),
		newPreviewCmd(app),
		newProofURLCmd(app),
	)

	return root
}

// needsServer is false for cobra's own help and completion commands.
func needsServer(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion":
			return false
		}
	}
	return true
}

// Describe turns an error into the line shown to the user. The gate and
// transient failures get fixed wording so the user knows what to do next.
func Describe(err error) string {
	switch {
	case errors.Is(err, common.ErrPaymentNotApproved):
		return "payment must be approved before the deliverable can be downloaded"
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable, try again"
	case errors.Is(err, common.ErrTokenExpired):
		return "access token expired, obtain a new one"
	case errors.Is(err, client.ErrUnauthorized):
		return "access token rejected"
	case errors.Is(err, common.ErrRateLimited):
		return "too many uploads, wait a minute and try again"
	case errors.Is(err, common.ErrPreviewSuperseded):
		return "payment is approved, use download for the original"
	default:
		return fmt.Sprintf("%v", err)
	}
}
