package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/oddsmith/matchfeed/internal/domain/ingestlog"
	"github.com/oddsmith/matchfeed/internal/domain/match"
	"github.com/oddsmith/matchfeed/internal/platform/logging"
)

// CleaningPhase selects how far the cleaning pipeline goes.
type CleaningPhase string

const (
	// PhaseStructural validates, normalizes and drops broken rows/columns.
	PhaseStructural CleaningPhase = "structural"
	// PhaseEnriched additionally imputes card counts and derives features.
	PhaseEnriched CleaningPhase = "enriched"
)

const (
	// DefaultMissingColumnThreshold drops an optional column once more than
	// half of its values are empty.
	DefaultMissingColumnThreshold = 0.5
	// minImputationSamples is the smallest population a median imputation
	// may be computed from.
	minImputationSamples = 4
	// minColumnStatsRows gates the column drop: missing-rates measured on
	// a handful of rows are noise, not signal.
	minColumnStatsRows = 10
)

// droppableFields are the optional columns subject to the missing-rate drop.
// Required columns are never dropped; a broken required column rejects rows
// individually instead.
var droppableFields = []string{
	FieldHalfTimeHome, FieldHalfTimeAway,
	FieldOddsHome, FieldOddsDraw, FieldOddsAway,
	FieldHomeYellowCards, FieldAwayYellowCards,
	FieldHomeRedCards, FieldAwayRedCards,
	FieldMatchday, FieldKickoffTime, FieldVenue, FieldReferee,
}

// imputableFields get median imputation in the enriched phase. Odds are
// never imputed: a fabricated price would poison the probability features.
var imputableFields = []string{
	FieldHomeYellowCards, FieldAwayYellowCards,
	FieldHomeRedCards, FieldAwayRedCards,
}

// CleaningService turns a raw feed into normalized candidates plus a report.
type CleaningService struct {
	phase           CleaningPhase
	missingColLimit float64
	logger          *logging.Logger
}

func NewCleaningService(phase CleaningPhase, missingColLimit float64, logger *logging.Logger) *CleaningService {
	if phase != PhaseStructural && phase != PhaseEnriched {
		phase = PhaseEnriched
	}
	if missingColLimit <= 0 || missingColLimit > 1 {
		missingColLimit = DefaultMissingColumnThreshold
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CleaningService{phase: phase, missingColLimit: missingColLimit, logger: logger}
}

// Clean runs the configured phases over one feed. The output is deterministic
// for a given input: row order is preserved and imputation medians depend
// only on the feed itself. A panic in the enrichment stage degrades the unit
// to its structural output instead of failing it.
func (s *CleaningService) Clean(ctx context.Context, feed Feed) ([]match.Candidate, ingestlog.CleaningStats, error) {
	ctx, span := startUsecaseSpan(ctx, "CleaningService.Clean")
	defer span.End()

	stats := ingestlog.CleaningStats{
		RowsBefore:           len(feed.Rows),
		FallbackEncodingUsed: feed.FallbackEncoding,
	}

	schema := ResolveSchema(feed.Header)
	if missing := schema.MissingRequired(); len(missing) > 0 {
		return nil, stats, rowlessInvalidContent(feed, missing)
	}

	stats.ColumnsDropped = s.dropSparseColumns(feed, schema)

	candidates := make([]match.Candidate, 0, len(feed.Rows))
	for _, row := range feed.Rows {
		c, err := Normalize(row, schema)
		if err != nil {
			s.countRejection(&stats, err)
			continue
		}
		candidates = append(candidates, c)
	}
	stats.RowsAfter = len(candidates)

	if s.phase == PhaseEnriched && len(candidates) > 0 {
		s.enrich(ctx, feed, candidates, &stats)
	}

	return candidates, stats, nil
}

func rowlessInvalidContent(feed Feed, missing []string) error {
	return fmt.Errorf("%w: feed %s/%s/%s header lacks required columns: %s",
		ErrInvalidContent, feed.Provider, feed.LeagueCode, feed.SeasonCode,
		strings.Join(missing, ", "))
}

// dropSparseColumns removes optional columns whose missing-rate exceeds the
// threshold, so half-empty bookmaker columns do not leak partial values.
func (s *CleaningService) dropSparseColumns(feed Feed, schema Schema) []string {
	if len(feed.Rows) < minColumnStatsRows {
		return nil
	}
	var dropped []string
	for _, field := range droppableFields {
		if !schema.Has(field) {
			continue
		}
		missing := 0
		for _, row := range feed.Rows {
			if _, ok := schema.value(row, field); !ok {
				missing++
			}
		}
		rate := float64(missing) / float64(len(feed.Rows))
		if rate > s.missingColLimit {
			schema.Drop(field)
			dropped = append(dropped, field)
		}
	}
	sort.Strings(dropped)
	return dropped
}

func (s *CleaningService) countRejection(stats *ingestlog.CleaningStats, err error) {
	rowErr, ok := AsRowError(err)
	if !ok {
		stats.RemovedUnparsable++
		return
	}
	switch rowErr.Reason {
	case ReasonInvalidDate:
		stats.RemovedInvalidDate++
	case ReasonMissingField:
		stats.RemovedMissingField++
	default:
		stats.RemovedUnparsable++
	}
}

// enrich imputes card counts and derives probability and goal features. It
// never fails the unit: a panic is logged and the structural candidates pass
// through with whatever enrichment already landed.
func (s *CleaningService) enrich(ctx context.Context, feed Feed, candidates []match.Candidate, stats *ingestlog.CleaningStats) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "cleaning enrichment panicked, keeping structural output",
				"league", feed.LeagueCode, "season", feed.SeasonCode, "panic", r)
		}
	}()

	stats.ValuesImputed += s.imputeCards(candidates)

	features := map[string]bool{}
	for i := range candidates {
		c := &candidates[i]

		total := c.HomeGoals + c.AwayGoals
		diff := c.HomeGoals - c.AwayGoals
		c.TotalGoals = &total
		c.GoalDifference = &diff
		features["total_goals"] = true
		features["goal_difference"] = true

		if c.HasOddsTriple() {
			pHome, pDraw, pAway, ok := match.ImpliedProbabilities(*c.OddsHome, *c.OddsDraw, *c.OddsAway)
			if !ok {
				s.logger.WarnContext(ctx, "odds triple rejected during enrichment",
					"league", feed.LeagueCode, "season", feed.SeasonCode,
					"odds_home", *c.OddsHome, "odds_draw", *c.OddsDraw, "odds_away", *c.OddsAway)
				continue
			}
			c.ProbHome = &pHome
			c.ProbDraw = &pDraw
			c.ProbAway = &pAway
			features["implied_probabilities"] = true
		}
	}

	for name := range features {
		stats.FeaturesCreated = append(stats.FeaturesCreated, name)
	}
	sort.Strings(stats.FeaturesCreated)
}

// imputeCards fills missing card counts with the feed-wide median, field by
// field, once a field has enough observed samples to make a median honest.
func (s *CleaningService) imputeCards(candidates []match.Candidate) int {
	imputed := 0
	for _, field := range imputableFields {
		values := make([]int, 0, len(candidates))
		for i := range candidates {
			if v := cardValue(&candidates[i], field); *v != nil {
				values = append(values, **v)
			}
		}
		if len(values) < minImputationSamples {
			continue
		}
		median := intMedian(values)
		for i := range candidates {
			slot := cardValue(&candidates[i], field)
			if *slot == nil {
				v := median
				*slot = &v
				imputed++
			}
		}
	}
	return imputed
}

func cardValue(c *match.Candidate, field string) **int {
	switch field {
	case FieldHomeYellowCards:
		return &c.HomeYellowCards
	case FieldAwayYellowCards:
		return &c.AwayYellowCards
	case FieldHomeRedCards:
		return &c.HomeRedCards
	case FieldAwayRedCards:
		return &c.AwayRedCards
	}
	return nil
}

func intMedian(values []int) int {
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// RenderCleanedCSV serializes candidates back to a canonical CSV layout for
// the cleaned snapshot. Column set is fixed so cleaned files diff cleanly
// across runs.
func RenderCleanedCSV(candidates []match.Candidate) []byte {
	var b strings.Builder
	b.WriteString("date,home_team,away_team,home_goals,away_goals,result," +
		"ht_home_goals,ht_away_goals,odds_home,odds_draw,odds_away," +
		"prob_home,prob_draw,prob_away," +
		"home_yellow_cards,away_yellow_cards,home_red_cards,away_red_cards," +
		"total_goals,goal_difference\n")
	for _, c := range candidates {
		cols := []string{
			c.MatchDate.Format("2006-01-02"),
			csvEscape(c.HomeTeam),
			csvEscape(c.AwayTeam),
			strconv.Itoa(c.HomeGoals),
			strconv.Itoa(c.AwayGoals),
			string(c.Result),
			intCell(c.HalfTimeHomeGoals),
			intCell(c.HalfTimeAwayGoals),
			floatCell(c.OddsHome),
			floatCell(c.OddsDraw),
			floatCell(c.OddsAway),
			floatCell(c.ProbHome),
			floatCell(c.ProbDraw),
			floatCell(c.ProbAway),
			intCell(c.HomeYellowCards),
			intCell(c.AwayYellowCards),
			intCell(c.HomeRedCards),
			intCell(c.AwayRedCards),
			intCell(c.TotalGoals),
			intCell(c.GoalDifference),
		}
		b.WriteString(strings.Join(cols, ","))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func csvEscape(v string) string {
	if strings.ContainsAny(v, ",\"\n") {
		return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return v
}

func intCell(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 6, 64)
}
