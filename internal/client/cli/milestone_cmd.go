package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/milestonegate/internal/client/client"
	"github.com/dmitrijs2005/milestonegate/internal/common"
)

func newGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <milestone-id>",
		Short: "Show a milestone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := app.callContext(cmd.Context())
			defer cancel()

			m, err := app.client.Get(ctx, args[0])
			if err != nil {
				return err
			}
			printMilestone(cmd.OutOrStdout(), m)
			return nil
		},
	}
}

func newSubmitProofCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "submit-proof <milestone-id> <file>",
		Short: "Upload a payment proof (client)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			up, err := readUpload(args[1])
			if err != nil {
				return err
			}

			ctx, cancel := app.callContext(cmd.Context())
			defer cancel()

			m, err := app.client.SubmitProof(ctx, args[0], up)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "proof submitted, status %s\n", m.Status)
			return nil
		},
	}
}

func newReviewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "review <milestone-id> approve|reject",
		Short:     "Approve or reject the submitted payment (freelancer)",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"approve", "reject"},
		RunE: func(cmd *cobra.Command, args []string) error {
			decision := strings.ToLower(args[1])
			if decision != "approve" && decision != "reject" {
				return fmt.Errorf("%w: decision must be approve or reject", common.ErrValidation)
			}

			ctx, cancel := app.callContext(cmd.Context())
			defer cancel()

			m, err := app.client.Review(ctx, args[0], decision)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "payment %s, status %s\n", decision+"d", m.Status)
			return nil
		},
	}
}

func newUploadDeliverableCmd(app *App) *cobra.Command {
	var watermark string

	cmd := &cobra.Command{
		Use:   "upload-deliverable <milestone-id> <file>",
		Short: "Upload or replace the deliverable (freelancer)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			up, err := readUpload(args[1])
			if err != nil {
				return err
			}

			var wm *string
			if cmd.Flags().Changed("watermark") {
				wm = &watermark
			}

			ctx, cancel := app.callContext(cmd.Context())
			defer cancel()

			m, err := app.client.UploadDeliverable(ctx, args[0], up, wm)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deliverable %s stored (%d bytes)\n", m.DeliverableName, m.DeliverableSize)
			return nil
		},
	}
	cmd.Flags().StringVarP(&watermark, "watermark", "w", "", "watermark text for previews")
	return cmd
}

func newSetWatermarkCmd(app *App) *cobra.Command {
	var unset bool

	cmd := &cobra.Command{
		Use:   "set-watermark <milestone-id> [text]",
		Short: "Change or clear the preview watermark (freelancer)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text *string
			switch {
			case unset && len(args) == 2:
				return fmt.Errorf("%w: --clear takes no text", common.ErrValidation)
			case !unset && len(args) == 1:
				return fmt.Errorf("%w: text or --clear required", common.ErrValidation)
			case !unset:
				text = &args[1]
			}

			ctx, cancel := app.callContext(cmd.Context())
			defer cancel()

			if _, err := app.client.UpdateWatermark(ctx, args[0], text); err != nil {
				return err
			}
			if text == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "watermark cleared")
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "watermark set to %q\n", *text)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&unset, "clear", false, "remove the watermark")
	return cmd
}

// readUpload loads a file and sniffs its type. Oversized files are refused
// before anything is sent.
func readUpload(path string) (client.Upload, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return client.Upload{}, err
	}
	if fi.Size() > common.MaxUploadSize {
		return client.Upload{}, fmt.Errorf("%w: %s exceeds %d bytes", common.ErrValidation, path, common.MaxUploadSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return client.Upload{}, err
	}

	ct := mimetype.Detect(data).String()
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return client.Upload{Name: filepath.Base(path), ContentType: ct, Data: data}, nil
}
