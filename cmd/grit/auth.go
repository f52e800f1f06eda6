package main

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/grit-vcs/grit/internal/credentials"
	"github.com/grit-vcs/grit/internal/models"
	"github.com/grit-vcs/grit/internal/oauthserver"
	"github.com/grit-vcs/grit/internal/shared"
	"github.com/urfave/cli/v3"
)

func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage provider OAuth credentials",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Run the OAuth authorization-code flow for a provider and save the resulting token",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "provider"},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "status",
				Usage: "Report whether a provider has a saved token",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "provider"},
				},
				Action: r.AuthStatus,
			},
		},
	}
}

// AuthLogin drives the local-listener OAuth authorization-code dance:
// it starts a one-shot callback server, prints the provider's consent
// URL for the user to open, waits for the redirect, exchanges the code, and
// saves the resulting token encrypted at rest.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	kind := models.ProviderKind(cmd.StringArg("provider"))
	if kind == "" {
		return fmt.Errorf("%w: provider", shared.ErrMissingArgument)
	}

	p, err := r.newProvider(kind)
	if err != nil {
		return err
	}

	_, _, redirectURI, err := r.providerCredentials(kind)
	if err != nil {
		return err
	}

	addr, err := listenAddrFromRedirect(redirectURI)
	if err != nil {
		return err
	}

	state := shared.GenerateID()
	srv := oauthserver.New(addr, state)
	if err := srv.Start(); err != nil {
		return err
	}

	authURL := p.OAuthURL(redirectURI, state)
	if err := r.writePlain("open the following URL to authorize:\n%s\n", authURL); err != nil {
		return err
	}

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	result, err := srv.Wait(waitCtx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	token, err := p.ExchangeCode(ctx, result.Code, redirectURI)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	if err := credentials.Save(r.root, kind, token); err != nil {
		return err
	}

	return r.writePlain("authenticated %s\n", kind)
}

// AuthStatus reports whether kind has a saved, loadable token.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	kind := models.ProviderKind(cmd.StringArg("provider"))
	if kind == "" {
		return fmt.Errorf("%w: provider", shared.ErrMissingArgument)
	}

	p, err := r.newProvider(kind)
	if err != nil {
		return err
	}

	if _, err := credentials.Load(ctx, r.root, kind, p); err != nil {
		return r.writePlain("%s: not authenticated (%v)\n", kind, err)
	}

	return r.writePlain("%s: authenticated\n", kind)
}

func listenAddrFromRedirect(redirectURI string) (string, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", fmt.Errorf("%w: invalid redirect_uri %q: %v", shared.ErrInvalidConfig, redirectURI, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: redirect_uri %q has no host", shared.ErrInvalidConfig, redirectURI)
	}
	return u.Host, nil
}
