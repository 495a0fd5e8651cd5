package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/oddsmith/matchfeed/internal/platform/logging"
)

type stubAdapter struct {
	code  string
	feed  Feed
	err   error
	calls int
}

func (a *stubAdapter) Code() string { return a.code }

func (a *stubAdapter) Fetch(_ context.Context, leagueCode, seasonCode string) (Feed, error) {
	a.calls++
	if a.err != nil {
		return Feed{}, a.err
	}
	feed := a.feed
	feed.Provider = a.code
	feed.LeagueCode = leagueCode
	feed.SeasonCode = seasonCode
	return feed, nil
}

func TestSourceRouter_RoutesPerLeague(t *testing.T) {
	primary := &stubAdapter{code: "footcsv"}
	secondary := &stubAdapter{code: "apifootball"}
	router, err := NewSourceRouter(
		[]SourceAdapter{primary, secondary},
		map[string][]string{"SP1": {"apifootball"}},
		[]string{"footcsv", "apifootball"},
		logging.NewNop(),
	)
	if err != nil {
		t.Fatalf("new router: %v", err)
	}

	feed, err := router.Fetch(context.Background(), "SP1", "2324")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if feed.Provider != "apifootball" {
		t.Fatalf("provider=%q, want routed apifootball", feed.Provider)
	}
	if primary.calls != 0 {
		t.Fatal("default provider called despite league route")
	}
}

func TestSourceRouter_FallsBackOnAccessDenied(t *testing.T) {
	primary := &stubAdapter{code: "footcsv", err: fmt.Errorf("%w: subscription expired", ErrAccessDenied)}
	secondary := &stubAdapter{code: "apifootball"}
	router, err := NewSourceRouter(
		[]SourceAdapter{primary, secondary},
		nil,
		[]string{"footcsv", "apifootball"},
		logging.NewNop(),
	)
	if err != nil {
		t.Fatalf("new router: %v", err)
	}

	feed, err := router.Fetch(context.Background(), "E0", "2324")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if feed.Provider != "apifootball" {
		t.Fatalf("provider=%q, want fallback apifootball", feed.Provider)
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Fatalf("calls: primary=%d secondary=%d", primary.calls, secondary.calls)
	}
}

func TestSourceRouter_NoFallbackOnOtherFailures(t *testing.T) {
	for _, kind := range []error{ErrNotFound, ErrSourceUnavailable, ErrInvalidContent} {
		primary := &stubAdapter{code: "footcsv", err: fmt.Errorf("%w: upstream", kind)}
		secondary := &stubAdapter{code: "apifootball"}
		router, err := NewSourceRouter(
			[]SourceAdapter{primary, secondary},
			nil,
			[]string{"footcsv", "apifootball"},
			logging.NewNop(),
		)
		if err != nil {
			t.Fatalf("new router: %v", err)
		}

		_, err = router.Fetch(context.Background(), "E0", "2324")
		if !errors.Is(err, kind) {
			t.Fatalf("err=%v, want %v from the routed provider", err, kind)
		}
		if secondary.calls != 0 {
			t.Fatalf("%v must not trigger fallback", kind)
		}
	}
}

func TestSourceRouter_RejectsUnknownProviderInRoute(t *testing.T) {
	_, err := NewSourceRouter(
		[]SourceAdapter{&stubAdapter{code: "footcsv"}},
		map[string][]string{"E0": {"nope"}},
		nil,
		logging.NewNop(),
	)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err=%v, want ErrInvalidInput", err)
	}
}

func TestSourceRouter_AccessDeniedEverywhereSurfaces(t *testing.T) {
	primary := &stubAdapter{code: "footcsv", err: fmt.Errorf("%w: no plan", ErrAccessDenied)}
	secondary := &stubAdapter{code: "apifootball", err: fmt.Errorf("%w: bad key", ErrAccessDenied)}
	router, err := NewSourceRouter(
		[]SourceAdapter{primary, secondary},
		nil,
		[]string{"footcsv", "apifootball"},
		logging.NewNop(),
	)
	if err != nil {
		t.Fatalf("new router: %v", err)
	}

	_, err = router.Fetch(context.Background(), "E0", "2324")
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("err=%v, want ErrAccessDenied", err)
	}
}
