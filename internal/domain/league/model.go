package league

import "strings"

// League is a competition a feed can cover. Codes are short provider-style
// identifiers such as "E0" or "D1".
type League struct {
	ID      int64
	Code    string
	Name    string
	Country string
	Tier    int
	Active  bool
}

// Meta is the static metadata used to seed a league the first time its
// code shows up in a feed.
type Meta struct {
	Name    string
	Country string
	Tier    int
}

var metaByCode = map[string]Meta{
	"E0":  {Name: "Premier League", Country: "England", Tier: 1},
	"E1":  {Name: "Championship", Country: "England", Tier: 2},
	"E2":  {Name: "League One", Country: "England", Tier: 3},
	"E3":  {Name: "League Two", Country: "England", Tier: 4},
	"SC0": {Name: "Scottish Premiership", Country: "Scotland", Tier: 1},
	"D1":  {Name: "Bundesliga", Country: "Germany", Tier: 1},
	"D2":  {Name: "2. Bundesliga", Country: "Germany", Tier: 2},
	"SP1": {Name: "La Liga", Country: "Spain", Tier: 1},
	"SP2": {Name: "Segunda División", Country: "Spain", Tier: 2},
	"I1":  {Name: "Serie A", Country: "Italy", Tier: 1},
	"I2":  {Name: "Serie B", Country: "Italy", Tier: 2},
	"F1":  {Name: "Ligue 1", Country: "France", Tier: 1},
	"F2":  {Name: "Ligue 2", Country: "France", Tier: 2},
	"N1":  {Name: "Eredivisie", Country: "Netherlands", Tier: 1},
	"B1":  {Name: "Pro League", Country: "Belgium", Tier: 1},
	"P1":  {Name: "Primeira Liga", Country: "Portugal", Tier: 1},
	"T1":  {Name: "Süper Lig", Country: "Turkey", Tier: 1},
	"G1":  {Name: "Super League", Country: "Greece", Tier: 1},
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// LookupMeta returns the static metadata for a code. Unknown codes get a
// placeholder so lazy creation never blocks an ingestion unit.
func LookupMeta(code string) Meta {
	code = NormalizeCode(code)
	if meta, ok := metaByCode[code]; ok {
		return meta
	}
	return Meta{Name: "Unknown league (" + code + ")", Country: "Unknown", Tier: 1}
}

// FromMeta builds a new active league entity for a code.
func FromMeta(code string) League {
	code = NormalizeCode(code)
	meta := LookupMeta(code)
	return League{
		Code:    code,
		Name:    meta.Name,
		Country: meta.Country,
		Tier:    meta.Tier,
		Active:  true,
	}
}
