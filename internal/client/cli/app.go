package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dmitrijs2005/milestonegate/internal/client/client"
	"github.com/dmitrijs2005/milestonegate/internal/client/config"
)

// Dialer opens a client for addr authenticated with token.
type Dialer func(addr, token string) (client.Client, error)

// App holds what the commands share. Fields left nil get production
// defaults in NewApp.
type App struct {
	Dial       Dialer
	HTTPClient *http.Client
	Stdin      *os.File

	config *config.Config
	client client.Client
}

func NewApp() *App {
	return &App{
		Dial: func(addr, token string) (client.Client, error) {
			c, err := client.NewMilestoneClient(addr, token)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
		HTTPClient: http.DefaultClient,
		Stdin:      os.Stdin,
	}
}

var errNoToken = errors.New("access token required: pass --token or set " + config.EnvAccessToken)

// connect resolves the token and dials once per process.
func (a *App) connect(w io.Writer) error {
	if a.client != nil {
		return nil
	}

	if a.config.AccessToken == "" {
		tok, err := promptToken(a.Stdin, w)
		if err != nil {
			return err
		}
		a.config.AccessToken = tok
	}

	c, err := a.Dial(a.config.ServerEndpointAddr, a.config.AccessToken)
	if err != nil {
		return fmt.Errorf("connect %s: %w", a.config.ServerEndpointAddr, err)
	}
	a.client = c
	return nil
}

func (a *App) close() {
	if a.client != nil {
		_ = a.client.Close()
		a.client = nil
	}
}

func (a *App) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}
