package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody caps how much of a failed response is echoed back.
const maxErrorBody = 512

// Download fetches a signed URL and copies the body to w. It returns the
// number of bytes written and the Content-Type reported by the store.
func Download(ctx context.Context, client *http.Client, url string, w io.Writer) (int64, string, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return 0, "", fmt.Errorf("download failed: %s; body: %s", resp.Status, string(b))
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, "", fmt.Errorf("download interrupted: %w", err)
	}
	return n, resp.Header.Get("Content-Type"), nil
}
