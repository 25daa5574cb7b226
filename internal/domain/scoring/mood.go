package scoring

// Mood labels one game with a rough emotional read derived from the line.
type Mood struct {
	MatchID      string  `json:"match_id"`
	ChampionName string  `json:"champion_name"`
	Mood         string  `json:"mood"`
	Score        float64 `json:"score"`
	Win          bool    `json:"win"`
}

// Mood labels, ordered roughly best to worst.
const (
	MoodDominant   = "dominant"
	MoodConfident  = "confident"
	MoodSteady     = "steady"
	MoodStruggling = "struggling"
	MoodTilted     = "tilted"
)

// AnalyzePlayerMood labels each game from its KDA, deaths, and outcome.
// Rows stay in input order so the caller can render a recency timeline.
func AnalyzePlayerMood(rows []Row) []Mood {
	out := make([]Mood, 0, len(rows))
	for _, r := range rows {
		kda := r.Features[FeatKDA]
		deaths := r.Features[FeatDeaths]

		var label string
		switch {
		case r.Win && kda >= 4:
			label = MoodDominant
		case r.Win && kda >= 2:
			label = MoodConfident
		case !r.Win && deaths >= 8 && kda < 1:
			label = MoodTilted
		case !r.Win && kda < 1.5:
			label = MoodStruggling
		default:
			label = MoodSteady
		}

		out = append(out, Mood{
			MatchID:      r.MatchID,
			ChampionName: r.ChampionName,
			Mood:         label,
			Score:        kda,
			Win:          r.Win,
		})
	}
	return out
}
