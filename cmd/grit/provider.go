package main

import (
	"context"

	"github.com/grit-vcs/grit/internal/credentials"
	"github.com/grit-vcs/grit/internal/models"
	"github.com/grit-vcs/grit/internal/providers"
)

// authenticatedProvider builds a provider for kind and attaches its
// stored (refreshing if necessary) access token.
func (r *Runner) authenticatedProvider(ctx context.Context, kind models.ProviderKind) (providers.Provider, error) {
	p, err := r.newProvider(kind)
	if err != nil {
		return nil, err
	}

	token, err := credentials.Load(ctx, r.root, kind, p)
	if err != nil {
		return nil, err
	}

	setProviderToken(p, token.AccessToken)
	return p, nil
}

// providerForPlaylist loads the head snapshot for playlistID to learn
// which provider owns it, then builds an authenticated provider of that
// kind.
func (r *Runner) providerForPlaylist(ctx context.Context, playlistID string) (providers.Provider, error) {
	head, _, err := r.engine.Status(playlistID)
	if err != nil {
		return nil, err
	}
	return r.authenticatedProvider(ctx, head.Provider)
}
