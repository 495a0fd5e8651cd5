package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/oddsmith/matchfeed/internal/platform/logging"
)

// SourceRouter decides which provider serves which league and falls back to
// the secondary provider when the primary reports an access problem.
type SourceRouter struct {
	adapters map[string]SourceAdapter
	// routes maps a league code to its ordered provider chain; leagues
	// without an entry use defaultChain.
	routes       map[string][]string
	defaultChain []string
	logger       *logging.Logger
}

func NewSourceRouter(adapters []SourceAdapter, routes map[string][]string, defaultChain []string, logger *logging.Logger) (*SourceRouter, error) {
	if len(adapters) == 0 {
		return nil, fmt.Errorf("%w: no source adapters", ErrInvalidInput)
	}
	if logger == nil {
		logger = logging.Default()
	}

	byCode := make(map[string]SourceAdapter, len(adapters))
	for _, a := range adapters {
		byCode[a.Code()] = a
	}
	if len(defaultChain) == 0 {
		for _, a := range adapters {
			defaultChain = append(defaultChain, a.Code())
		}
	}
	for league, chain := range routes {
		for _, code := range chain {
			if _, ok := byCode[code]; !ok {
				return nil, fmt.Errorf("%w: route for %s names unknown provider %q", ErrInvalidInput, league, code)
			}
		}
	}
	for _, code := range defaultChain {
		if _, ok := byCode[code]; !ok {
			return nil, fmt.Errorf("%w: default chain names unknown provider %q", ErrInvalidInput, code)
		}
	}

	return &SourceRouter{adapters: byCode, routes: routes, defaultChain: defaultChain, logger: logger}, nil
}

// Chain returns the ordered provider codes for a league.
func (r *SourceRouter) Chain(leagueCode string) []string {
	if chain, ok := r.routes[leagueCode]; ok && len(chain) > 0 {
		return chain
	}
	return r.defaultChain
}

// Fetch walks the league's provider chain. Access errors advance to the next
// provider; every other failure kind is the chain's answer, because a 404 or
// a dead upstream from the routed provider is the unit's real outcome.
func (r *SourceRouter) Fetch(ctx context.Context, leagueCode, seasonCode string) (Feed, error) {
	chain := r.Chain(leagueCode)
	var lastErr error
	for i, code := range chain {
		feed, err := r.adapters[code].Fetch(ctx, leagueCode, seasonCode)
		if err == nil {
			return feed, nil
		}
		lastErr = err
		if !errors.Is(err, ErrAccessDenied) || i == len(chain)-1 {
			return Feed{}, err
		}
		r.logger.WarnContext(ctx, "provider denied access, trying fallback",
			"provider", code, "fallback", chain[i+1], "league", leagueCode, "season", seasonCode)
	}
	return Feed{}, lastErr
}
