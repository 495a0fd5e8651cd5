package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/oddsmith/matchfeed/internal/domain/match"
	"github.com/oddsmith/matchfeed/internal/domain/team"
	"github.com/oddsmith/matchfeed/internal/infrastructure/repository/memory"
	teammock "github.com/oddsmith/matchfeed/internal/mocks/domain/team"
	"github.com/oddsmith/matchfeed/internal/platform/logging"
)

func TestUpsertService_ResolverContractUsingMockery(t *testing.T) {
	t.Parallel()

	matches := memory.NewMatchRepository()
	resolver := teammock.NewResolver(t)
	svc := NewUpsertService(matches, resolver, 0, logging.NewNop())

	date := time.Date(2023, time.August, 1, 0, 0, 0, 0, time.UTC)
	leagueID := int64(3)

	// Home side resolves directly; away side misses and gets created.
	resolver.
		On("Resolve", mock.Anything, "Alpha FC", leagueID).
		Return(team.Team{ID: 10, LeagueID: leagueID, Name: "Alpha FC"}, true, nil).
		Once()
	resolver.
		On("Resolve", mock.Anything, "Beta FC", leagueID).
		Return(team.Team{}, false, nil).
		Once()
	resolver.
		On("CreateIfNotExists", mock.Anything, "Beta FC", leagueID).
		Return(team.Team{ID: 11, LeagueID: leagueID, Name: "Beta FC"}, nil).
		Once()

	res, err := svc.Upsert(context.Background(), leagueID, "batch-1", []match.Candidate{
		candidate(date, "Alpha FC", "Beta FC", 2, 0),
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if res.Counters.Inserted != 1 {
		t.Fatalf("counters: %+v, want one insert", res.Counters)
	}

	stored := matches.All()
	if len(stored) != 1 {
		t.Fatalf("stored rows=%d, want 1", len(stored))
	}
	if stored[0].HomeTeamID != 10 || stored[0].AwayTeamID != 11 {
		t.Fatalf("team ids=%d/%d, want 10/11", stored[0].HomeTeamID, stored[0].AwayTeamID)
	}
}
