package usecase

import (
	"strconv"
	"strings"
	"time"

	"github.com/oddsmith/matchfeed/internal/domain/match"
)

// Canonical field names used by the schema resolver and the cleaning stage.
const (
	FieldDate            = "date"
	FieldKickoffTime     = "kickoff_time"
	FieldHomeTeam        = "home_team"
	FieldAwayTeam        = "away_team"
	FieldHomeGoals       = "home_goals"
	FieldAwayGoals       = "away_goals"
	FieldHalfTimeHome    = "ht_home_goals"
	FieldHalfTimeAway    = "ht_away_goals"
	FieldOddsHome        = "odds_home"
	FieldOddsDraw        = "odds_draw"
	FieldOddsAway        = "odds_away"
	FieldHomeYellowCards = "home_yellow_cards"
	FieldAwayYellowCards = "away_yellow_cards"
	FieldHomeRedCards    = "home_red_cards"
	FieldAwayRedCards    = "away_red_cards"
	FieldMatchday        = "matchday"
	FieldVenue           = "venue"
	FieldReferee         = "referee"
)

// fieldAliases maps each logical field to its known upstream column names in
// resolution order: the first alias present in a header wins. The short codes
// follow the historical bulk-CSV provider conventions; later entries cover
// bookmaker-specific odds columns from older seasons.
var fieldAliases = map[string][]string{
	FieldDate:            {"Date", "MatchDate"},
	FieldKickoffTime:     {"Time", "KickoffTime", "KO"},
	FieldHomeTeam:        {"HomeTeam", "Home"},
	FieldAwayTeam:        {"AwayTeam", "Away"},
	FieldHomeGoals:       {"FTHG", "HG", "FTH"},
	FieldAwayGoals:       {"FTAG", "AG", "FTA"},
	FieldHalfTimeHome:    {"HTHG", "HTH"},
	FieldHalfTimeAway:    {"HTAG", "HTA"},
	FieldOddsHome:        {"AvgH", "B365H", "BbAvH", "PSH", "WHH"},
	FieldOddsDraw:        {"AvgD", "B365D", "BbAvD", "PSD", "WHD"},
	FieldOddsAway:        {"AvgA", "B365A", "BbAvA", "PSA", "WHA"},
	FieldHomeYellowCards: {"HY", "HomeYellow"},
	FieldAwayYellowCards: {"AY", "AwayYellow"},
	FieldHomeRedCards:    {"HR", "HomeRed"},
	FieldAwayRedCards:    {"AR", "AwayRed"},
	FieldMatchday:        {"Matchday", "Round", "MW"},
	FieldVenue:           {"Venue", "Stadium"},
	FieldReferee:         {"Referee", "Ref"},
}

// requiredFields must resolve and parse for a row to survive normalization.
var requiredFields = []string{FieldDate, FieldHomeTeam, FieldAwayTeam, FieldHomeGoals, FieldAwayGoals}

// dateFormats in parse order: day-first formats are primary because the bulk
// provider writes dd/mm; ISO and dash variants cover the API provider.
var dateFormats = []string{
	"02/01/2006",
	"02/01/06",
	"2006-01-02",
	"02-01-2006",
	"2006/01/02",
}

const (
	minSaneYear = 1900
)

// Schema maps canonical fields to column positions for one resolved header.
// Resolution happens once per feed, not per row.
type Schema struct {
	index map[string]int
}

// ResolveSchema matches a header against the alias tables, case-insensitively,
// first alias wins.
func ResolveSchema(header []string) Schema {
	byLower := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, exists := byLower[key]; !exists {
			byLower[key] = i
		}
	}

	index := make(map[string]int, len(fieldAliases))
	for field, aliases := range fieldAliases {
		for _, alias := range aliases {
			if pos, ok := byLower[strings.ToLower(alias)]; ok {
				index[field] = pos
				break
			}
		}
	}

	return Schema{index: index}
}

// Has reports whether the feed carries a column for the field.
func (s Schema) Has(field string) bool {
	_, ok := s.index[field]
	return ok
}

// Drop removes a field from the schema; used when the cleaning stage drops a
// column whose missing-rate exceeds the threshold.
func (s Schema) Drop(field string) {
	delete(s.index, field)
}

// MissingRequired lists required fields the header does not cover at all.
func (s Schema) MissingRequired() []string {
	var missing []string
	for _, field := range requiredFields {
		if !s.Has(field) {
			missing = append(missing, field)
		}
	}
	return missing
}

func (s Schema) value(row []string, field string) (string, bool) {
	pos, ok := s.index[field]
	if !ok || pos >= len(row) {
		return "", false
	}
	v := strings.TrimSpace(row[pos])
	return v, v != ""
}

// Normalize maps one raw row onto a candidate record. Required fields that
// are missing or unparsable reject the row with a specific RowError; missing
// optional fields stay nil; zero is a valid goal count and must never be
// confused with absence.
func Normalize(row []string, schema Schema) (match.Candidate, error) {
	var c match.Candidate

	rawDate, ok := schema.value(row, FieldDate)
	if !ok {
		return c, rowErrorf(ReasonMissingField, FieldDate, "no date value")
	}
	date, err := parseFeedDate(rawDate)
	if err != nil {
		return c, rowErrorf(ReasonInvalidDate, FieldDate, "%q: %v", rawDate, err)
	}
	c.MatchDate = date

	if c.HomeTeam, ok = schema.value(row, FieldHomeTeam); !ok {
		return c, rowErrorf(ReasonMissingField, FieldHomeTeam, "no home team")
	}
	if c.AwayTeam, ok = schema.value(row, FieldAwayTeam); !ok {
		return c, rowErrorf(ReasonMissingField, FieldAwayTeam, "no away team")
	}

	if c.HomeGoals, err = parseRequiredGoals(row, schema, FieldHomeGoals); err != nil {
		return c, err
	}
	if c.AwayGoals, err = parseRequiredGoals(row, schema, FieldAwayGoals); err != nil {
		return c, err
	}
	c.Result = match.DeriveResult(c.HomeGoals, c.AwayGoals)

	c.HalfTimeHomeGoals = parseOptionalInt(row, schema, FieldHalfTimeHome)
	c.HalfTimeAwayGoals = parseOptionalInt(row, schema, FieldHalfTimeAway)
	c.EnforceHalfTimePair()

	c.OddsHome = parseOptionalOdds(row, schema, FieldOddsHome)
	c.OddsDraw = parseOptionalOdds(row, schema, FieldOddsDraw)
	c.OddsAway = parseOptionalOdds(row, schema, FieldOddsAway)

	c.HomeYellowCards = parseOptionalInt(row, schema, FieldHomeYellowCards)
	c.AwayYellowCards = parseOptionalInt(row, schema, FieldAwayYellowCards)
	c.HomeRedCards = parseOptionalInt(row, schema, FieldHomeRedCards)
	c.AwayRedCards = parseOptionalInt(row, schema, FieldAwayRedCards)

	c.Matchday = parseOptionalInt(row, schema, FieldMatchday)
	c.KickoffTime = optionalString(row, schema, FieldKickoffTime)
	c.Venue = optionalString(row, schema, FieldVenue)
	c.Referee = optionalString(row, schema, FieldReferee)

	return c, nil
}

func parseFeedDate(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateFormats {
		parsed, err := time.Parse(layout, raw)
		if err != nil {
			lastErr = err
			continue
		}
		maxYear := time.Now().Year() + 1
		if parsed.Year() < minSaneYear || parsed.Year() > maxYear {
			return time.Time{}, rowErrorf(ReasonInvalidDate, FieldDate, "year %d outside [%d, %d]", parsed.Year(), minSaneYear, maxYear)
		}
		return match.DateOnly(parsed), nil
	}
	return time.Time{}, lastErr
}

func parseRequiredGoals(row []string, schema Schema, field string) (int, error) {
	raw, ok := schema.value(row, field)
	if !ok {
		return 0, rowErrorf(ReasonMissingField, field, "no goal count")
	}
	goals, err := strconv.Atoi(raw)
	if err != nil {
		return 0, rowErrorf(ReasonUnparsableNumber, field, "%q is not an integer", raw)
	}
	if goals < 0 {
		return 0, rowErrorf(ReasonUnparsableNumber, field, "negative goal count %d", goals)
	}
	return goals, nil
}

// parseOptionalInt returns nil for missing or unparsable optional values.
func parseOptionalInt(row []string, schema Schema, field string) *int {
	raw, ok := schema.value(row, field)
	if !ok {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

// parseOptionalOdds returns nil unless the value is a decimal price > 1.
func parseOptionalOdds(row []string, schema Schema, field string) *float64 {
	raw, ok := schema.value(row, field)
	if !ok {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 1 {
		return nil
	}
	return &v
}

func optionalString(row []string, schema Schema, field string) *string {
	raw, ok := schema.value(row, field)
	if !ok {
		return nil
	}
	return &raw
}
