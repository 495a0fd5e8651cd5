package usecase

import "context"

// Feed is one fetched (league, season) payload, already decoded to UTF-8 and
// split into a header plus value rows. RawBytes keeps the verbatim upstream
// payload for snapshotting before any cleaning touches it.
type Feed struct {
	Provider   string
	LeagueCode string
	SeasonCode string
	RawBytes   []byte
	Header     []string
	Rows       [][]string
	// FallbackEncoding names the decode fallback that applied, empty when
	// the declared encoding worked.
	FallbackEncoding string
}

// SourceAdapter is the logical fetch contract every provider implements.
// Implementations are pure fetches: retry/backoff and soft-failure detection
// happen inside, but nothing is persisted.
type SourceAdapter interface {
	Code() string
	Fetch(ctx context.Context, leagueCode, seasonCode string) (Feed, error)
}
