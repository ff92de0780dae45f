// Package serverpool selects and reserves game servers for matches.
package serverpool

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"matchbot/internal/domain"
	"slices"
	"strings"

	"github.com/rs/zerolog"
)

var ErrNoServer = errors.New("no server available")

type Store interface {
	Get(ctx context.Context, serverID int64) (*domain.RconServer, error)
	List(ctx context.Context) ([]domain.RconServer, error)
	ListFree(ctx context.Context) ([]domain.RconServer, error)
	Reserve(ctx context.Context, serverID int64, matchID string) (bool, error)
	Release(ctx context.Context, serverID int64) error
	ReleaseFor(ctx context.Context, serverID int64, matchID string) (bool, error)
	UpsertBatch(ctx context.Context, servers []domain.RconServer) error
}

// Prober checks that a server answers on its remote console.
type Prober interface {
	Probe(ctx context.Context, server domain.RconServer) bool
}

type Pool struct {
	store  Store
	prober Prober
	logger zerolog.Logger
}

func New(store Store, prober Prober, logger zerolog.Logger) *Pool {
	return &Pool{
		store:  store,
		prober: prober,
		logger: logger,
	}
}

// Affinity scores how well a player's region fits a server's region: 2 for
// the same region, 1 for the same family ("eu-west" and "eu-north").
func Affinity(playerRegion, serverRegion string) int {
	p := strings.ToLower(strings.TrimSpace(playerRegion))
	s := strings.ToLower(strings.TrimSpace(serverRegion))
	if p == "" || s == "" {
		return 0
	}
	if p == s {
		return 2
	}
	if family(p) == family(s) {
		return 1
	}
	return 0
}

func family(region string) string {
	f, _, _ := strings.Cut(region, "-")
	return f
}

// Score sums the affinity of every player region against the server.
func Score(regions []string, serverRegion string) int {
	total := 0
	for _, r := range regions {
		total += Affinity(r, serverRegion)
	}
	return total
}

// Rank orders servers best score first, keeping the store order on ties.
func Rank(servers []domain.RconServer, regions []string) []domain.RconServer {
	ranked := slices.Clone(servers)
	slices.SortStableFunc(ranked, func(a, b domain.RconServer) int {
		return cmp.Compare(Score(regions, b.Region), Score(regions, a.Region))
	})
	return ranked
}

// Reserve claims the best free server for the match. Each candidate is
// claimed in the store first and then probed; a server that does not answer
// is released again and the next candidate is tried.
func (p *Pool) Reserve(ctx context.Context, matchID string, regions []string) (*domain.RconServer, error) {
	free, err := p.store.ListFree(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list free servers: %w", err)
	}

	for _, s := range Rank(free, regions) {
		log := p.logger.With().Int64("server_id", s.ServerID).Str("match_id", matchID).Logger()

		ok, err := p.store.Reserve(ctx, s.ServerID, matchID)
		if err != nil {
			return nil, err
		}
		if !ok {
			log.Debug().Msg("server taken by another match")
			continue
		}

		if !p.prober.Probe(ctx, s) {
			log.Warn().Str("server", s.Name).Msg("server did not respond, skipping")
			if _, err := p.store.ReleaseFor(ctx, s.ServerID, matchID); err != nil {
				log.Error().Err(err).Msg("failed to release unresponsive server")
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}

		s.BeingUsed = true
		s.MatchID = matchID
		log.Info().Str("server", s.Name).Int("score", Score(regions, s.Region)).Msg("server reserved")
		return &s, nil
	}

	return nil, ErrNoServer
}

// Release frees the server the match reserved. A server the operator freed
// or handed to another match in the meantime is left alone.
func (p *Pool) Release(ctx context.Context, serverID int64, matchID string) error {
	released, err := p.store.ReleaseFor(ctx, serverID, matchID)
	if err != nil {
		return err
	}
	if !released {
		p.logger.Warn().Int64("server_id", serverID).Str("match_id", matchID).Msg("server no longer held by match")
	}
	return nil
}

// Free releases a server on operator request and returns the match that held it.
func (p *Pool) Free(ctx context.Context, serverID int64) (string, error) {
	s, err := p.store.Get(ctx, serverID)
	if err != nil {
		return "", err
	}
	if err := p.store.Release(ctx, serverID); err != nil {
		return "", err
	}
	p.logger.Info().Int64("server_id", serverID).Str("match_id", s.MatchID).Msg("server freed by operator")
	return s.MatchID, nil
}

func (p *Pool) List(ctx context.Context) ([]domain.RconServer, error) {
	return p.store.List(ctx)
}

func (p *Pool) Get(ctx context.Context, serverID int64) (*domain.RconServer, error) {
	return p.store.Get(ctx, serverID)
}

// HeldBy returns the server reserved for the match, if any.
func (p *Pool) HeldBy(ctx context.Context, matchID string) (*domain.RconServer, error) {
	servers, err := p.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", err)
	}
	for _, s := range servers {
		if s.BeingUsed && s.MatchID == matchID {
			return &s, nil
		}
	}
	return nil, nil
}
