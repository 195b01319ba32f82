package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/milestonegate/internal/client/client"
	"github.com/dmitrijs2005/milestonegate/internal/filex"
	"github.com/dmitrijs2005/milestonegate/internal/netx"
)

type urlFetcher func(ctx context.Context, milestoneID string) (client.SignedURL, error)

// newSignedURLCmd builds a command that asks for a signed URL and either
// prints it (--url-only) or saves the object into the download directory.
func newSignedURLCmd(app *App, use, short string, fetch func() urlFetcher, name func(ctx context.Context, id string, u client.SignedURL) string) *cobra.Command {
	var urlOnly bool

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := app.callContext(cmd.Context())
			defer cancel()

			u, err := fetch()(ctx, args[0])
			if err != nil {
				return err
			}
			if urlOnly {
				printSignedURL(cmd.OutOrStdout(), u)
				return nil
			}

			dir, err := filex.EnsureSubdDir(app.config.DownloadDir)
			if err != nil {
				return err
			}

			var n int64
			path, err := filex.SaveAs(dir, name(ctx, args[0], u), func(w io.Writer) error {
				var err error
				n, _, err = netx.Download(ctx, app.HTTPClient, u.URL, w)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%d bytes)\n", path, n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&urlOnly, "url-only", false, "print the signed URL instead of downloading")
	return cmd
}

func newDownloadCmd(app *App) *cobra.Command {
	return newSignedURLCmd(app,
		"download <milestone-id>",
		"Download the original deliverable (payment must be approved)",
		func() urlFetcher { return app.client.DownloadURL },
		func(ctx context.Context, id string, u client.SignedURL) string {
			if m, err := app.client.Get(ctx, id); err == nil && m.DeliverableName != "" {
				return m.DeliverableName
			}
			return fallbackName(id, u.ContentType)
		},
	)
}

func newPreviewCmd(app *App) *cobra.Command {
	return newSignedURLCmd(app,
		"preview <milestone-id>",
		"Download the watermarked preview",
		func() urlFetcher { return app.client.PreviewURL },
		func(_ context.Context, id string, u client.SignedURL) string {
			return fallbackName("preview-"+id, u.ContentType)
		},
	)
}

func newProofURLCmd(app *App) *cobra.Command {
	return newSignedURLCmd(app,
		"proof-url <milestone-id>",
		"Fetch the submitted payment proof",
		func() urlFetcher { return app.client.ProofURL },
		func(_ context.Context, id string, u client.SignedURL) string {
			return fallbackName("proof-"+id, u.ContentType)
		},
	)
}

func fallbackName(base, contentType string) string {
	if m := mimetype.Lookup(contentType); m != nil {
		return base + m.Extension()
	}
	return base
}
