// Package scoring turns stored matches into flat feature rows and derives
// the model metrics, mood reads, and insight lists shown in analysis results.
package scoring

import (
	"math"

	"github.com/riftscope/riftscope/internal/domain/model"
)

// Row is one match flattened to the subject's per-game features. Rows are
// ordered newest first everywhere in this package.
type Row struct {
	MatchID      string
	GameCreation int64
	ChampionName string
	TeamPosition string
	Win          bool
	Features     map[string]float64
}

// Feature keys shared between training, averages, and opponent comparison.
const (
	FeatKills             = "kills"
	FeatDeaths            = "deaths"
	FeatAssists           = "assists"
	FeatKDA               = "kda"
	FeatGoldPerMinute     = "goldPerMinute"
	FeatXPPerMinute       = "xpPerMinute"
	FeatDamagePerMinute   = "damagePerMinute"
	FeatVisionScore       = "visionScore"
	FeatWardsPlaced       = "wardsPlaced"
	FeatControlWards      = "controlWardsPlaced"
	FeatCS                = "totalMinionsKilled"
	FeatTowerDamage       = "towerDamageDealt"
	FeatSoloKills         = "soloKills"
	FeatKillParticipation = "killParticipation"
	FeatSkillshotsHit     = "skillshotsHit"
	FeatSkillshotsDodged  = "skillshotsDodged"
	FeatEarlyCS           = "laneMinionsFirst10Minutes"
	FeatTurretPlates      = "turretPlatesTaken"
	FeatEarlyAdvantage    = "earlyLaningPhaseGoldExpAdvantage"
	FeatLaningAdvantage   = "laningPhaseGoldExpAdvantage"
	FeatCSAdvantage       = "maxCsAdvantageOnLaneOpponent"
	FeatLevelLead         = "maxLevelLeadLaneOpponent"
	FeatVisionAdvantage   = "visionScoreAdvantageLaneOpponent"
	FeatTeamDamageShare   = "teamDamagePercentage"
	FeatDamageTakenShare  = "damageTakenOnTeamPercentage"
	FeatAggression        = "aggressionScore"
	FeatVisionDominance   = "visionDominance"
	FeatJunglePressure    = "jungleInvasionPressure"
)

// trainFeatures are the columns the model trains on. Composite scores are
// included so the drivers list can surface play patterns, not only raw stats.
var trainFeatures = []string{
	FeatKDA, FeatGoldPerMinute, FeatXPPerMinute, FeatDamagePerMinute,
	FeatVisionScore, FeatKillParticipation, FeatSoloKills, FeatCS,
	FeatTowerDamage, FeatEarlyAdvantage, FeatLaningAdvantage,
	FeatAggression, FeatVisionDominance, FeatJunglePressure,
}

// FlattenMatch extracts the subject's feature row from one match. The second
// return is false when the subject did not play in the match.
func FlattenMatch(match model.Match, puuid string) (Row, bool) {
	p, ok := match.Info.ParticipantByPUUID(puuid)
	if !ok {
		return Row{}, false
	}

	minutes := match.Info.DurationMinutes()
	gpm := float64(p.GoldEarned) / minutes
	xpm := float64(p.ChampExperience) / minutes
	dpm := float64(p.TotalDamageDealtToChampions) / minutes
	cs := float64(p.TotalMinionsKilled + p.NeutralMinionsKilled)

	features := map[string]float64{
		FeatKills:             float64(p.Kills),
		FeatDeaths:            float64(p.Deaths),
		FeatAssists:           float64(p.Assists),
		FeatKDA:               p.KDA(),
		FeatGoldPerMinute:     gpm,
		FeatXPPerMinute:       xpm,
		FeatDamagePerMinute:   dpm,
		FeatVisionScore:       float64(p.VisionScore),
		FeatWardsPlaced:       float64(p.WardsPlaced),
		FeatControlWards:      float64(p.DetectorWardsPlaced),
		FeatCS:                cs,
		FeatTowerDamage:       float64(p.DamageDealtToTurrets),
		FeatSoloKills:         p.Challenge("soloKills"),
		FeatKillParticipation: p.Challenge("killParticipation"),
		FeatSkillshotsHit:     p.Challenge("skillshotsHit"),
		FeatSkillshotsDodged:  p.Challenge("skillshotsDodged"),
		FeatEarlyCS:           p.Challenge("laneMinionsFirst10Minutes"),
		FeatTurretPlates:      p.Challenge("turretPlatesTaken"),
		FeatEarlyAdvantage:    p.Challenge("earlyLaningPhaseGoldExpAdvantage"),
		FeatLaningAdvantage:   p.Challenge("laningPhaseGoldExpAdvantage"),
		FeatCSAdvantage:       p.Challenge("maxCsAdvantageOnLaneOpponent"),
		FeatLevelLead:         p.Challenge("maxLevelLeadLaneOpponent"),
		FeatVisionAdvantage:   p.Challenge("visionScoreAdvantageLaneOpponent"),
		FeatTeamDamageShare:   p.Challenge("teamDamagePercentage"),
		FeatDamageTakenShare:  p.Challenge("damageTakenOnTeamPercentage"),

		"enemyMissingPings": float64(p.EnemyMissingPings),
		"onMyWayPings":      float64(p.OnMyWayPings),
		"assistMePings":     float64(p.AssistMePings),
		"getBackPings":      float64(p.GetBackPings),
	}

	features[FeatAggression] = p.Challenge("soloKills")*2 + float64(p.Kills) + dpm/100
	features[FeatVisionDominance] = float64(p.VisionScore) + float64(p.DetectorWardsPlaced)*2 +
		p.Challenge("visionScoreAdvantageLaneOpponent")
	features[FeatJunglePressure] = p.Challenge("moreEnemyJungleThanOpponent")

	for k, v := range features {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			features[k] = 0
		}
	}

	return Row{
		MatchID:      match.Metadata.MatchID,
		GameCreation: match.Info.GameCreation,
		ChampionName: p.ChampionName,
		TeamPosition: p.TeamPosition,
		Win:          p.Win,
		Features:     features,
	}, true
}

// FlattenMatches builds rows for every match the subject played in,
// preserving the input order (newest first from the store).
func FlattenMatches(matches []model.Match, puuid string) []Row {
	rows := make([]Row, 0, len(matches))
	for _, m := range matches {
		if row, ok := FlattenMatch(m, puuid); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// OpponentFeatures flattens a lane opponent's line for the comparison panel,
// using the same keys as the subject rows so readers can diff them directly.
func OpponentFeatures(info model.MatchInfo, enemy model.Participant) map[string]any {
	minutes := info.DurationMinutes()
	return map[string]any{
		"championName":           enemy.ChampionName,
		"damageDealtToChampions": float64(enemy.TotalDamageDealtToChampions),
		FeatKills:                float64(enemy.Kills),
		FeatDeaths:               float64(enemy.Deaths),
		FeatAssists:              float64(enemy.Assists),
		FeatKDA:                  enemy.KDA(),
		FeatGoldPerMinute:        float64(enemy.GoldEarned) / minutes,
		FeatXPPerMinute:          float64(enemy.ChampExperience) / minutes,
		FeatDamagePerMinute:      float64(enemy.TotalDamageDealtToChampions) / minutes,
		FeatVisionScore:          float64(enemy.VisionScore),
		FeatWardsPlaced:          float64(enemy.WardsPlaced),
		FeatControlWards:         float64(enemy.DetectorWardsPlaced),
		FeatCS:                   float64(enemy.TotalMinionsKilled + enemy.NeutralMinionsKilled),
		FeatTowerDamage:          float64(enemy.DamageDealtToTurrets),
		FeatSoloKills:            enemy.Challenge("soloKills"),
		FeatKillParticipation:    enemy.Challenge("killParticipation"),
		FeatSkillshotsHit:        enemy.Challenge("skillshotsHit"),
		FeatSkillshotsDodged:     enemy.Challenge("skillshotsDodged"),
		FeatEarlyCS:              enemy.Challenge("laneMinionsFirst10Minutes"),
		FeatTurretPlates:         enemy.Challenge("turretPlatesTaken"),
		FeatEarlyAdvantage:       enemy.Challenge("earlyLaningPhaseGoldExpAdvantage"),
		FeatLaningAdvantage:      enemy.Challenge("laningPhaseGoldExpAdvantage"),
		FeatCSAdvantage:          enemy.Challenge("maxCsAdvantageOnLaneOpponent"),
		FeatLevelLead:            enemy.Challenge("maxLevelLeadLaneOpponent"),
		FeatVisionAdvantage:      enemy.Challenge("visionScoreAdvantageLaneOpponent"),
		FeatTeamDamageShare:      enemy.Challenge("teamDamagePercentage"),
		FeatDamageTakenShare:     enemy.Challenge("damageTakenOnTeamPercentage"),
		"enemyMissingPings":      float64(enemy.EnemyMissingPings),
		"onMyWayPings":           float64(enemy.OnMyWayPings),
		"assistMePings":          float64(enemy.AssistMePings),
		"getBackPings":           float64(enemy.GetBackPings),
	}
}
