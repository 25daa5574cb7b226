package model

// Match is one completed game as returned by the match service. Completed
// matches are immutable upstream, which makes them safe to cache and store.
type Match struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     MatchInfo     `json:"info"`
}

// MatchMetadata carries match identity.
type MatchMetadata struct {
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"`
}

// MatchInfo is the per-game payload the pipeline reads.
type MatchInfo struct {
	GameCreation int64         `json:"gameCreation"`
	GameDuration int64         `json:"gameDuration"`
	GameMode     string        `json:"gameMode"`
	QueueID      int           `json:"queueId"`
	Participants []Participant `json:"participants"`
}

// Participant is one player's end-of-game line in a match.
type Participant struct {
	PUUID         string `json:"puuid"`
	ParticipantID int    `json:"participantId"`
	TeamID        int    `json:"teamId"`
	TeamPosition  string `json:"teamPosition"`
	ChampionName  string `json:"championName"`
	Win           bool   `json:"win"`

	Kills   int `json:"kills"`
	Deaths  int `json:"deaths"`
	Assists int `json:"assists"`

	GoldEarned                  int `json:"goldEarned"`
	ChampExperience             int `json:"champExperience"`
	TotalMinionsKilled          int `json:"totalMinionsKilled"`
	NeutralMinionsKilled        int `json:"neutralMinionsKilled"`
	TotalDamageDealtToChampions int `json:"totalDamageDealtToChampions"`
	DamageDealtToTurrets        int `json:"damageDealtToTurrets"`
	VisionScore                 int `json:"visionScore"`
	WardsPlaced                 int `json:"wardsPlaced"`
	DetectorWardsPlaced         int `json:"detectorWardsPlaced"`

	EnemyMissingPings int `json:"enemyMissingPings"`
	OnMyWayPings      int `json:"onMyWayPings"`
	AssistMePings     int `json:"assistMePings"`
	GetBackPings      int `json:"getBackPings"`

	// Challenges keys are not reliably present in all queues or patches;
	// readers must treat missing keys as zero.
	Challenges map[string]float64 `json:"challenges"`
}

// ParticipantByPUUID finds a participant by identity.
func (i MatchInfo) ParticipantByPUUID(puuid string) (Participant, bool) {
	for _, p := range i.Participants {
		if p.PUUID == puuid {
			return p, true
		}
	}
	return Participant{}, false
}

// LaneOpponent finds the participant on the opposing team sharing the
// subject's assigned role. Game modes without role data (e.g. ARAM) have no
// lane opponent.
func (i MatchInfo) LaneOpponent(subject Participant) (Participant, bool) {
	if subject.TeamPosition == "" {
		return Participant{}, false
	}
	for _, p := range i.Participants {
		if p.TeamID != subject.TeamID && p.TeamPosition == subject.TeamPosition {
			return p, true
		}
	}
	return Participant{}, false
}

// Challenge reads a challenges key, returning 0 when absent.
func (p Participant) Challenge(key string) float64 {
	if p.Challenges == nil {
		return 0
	}
	return p.Challenges[key]
}

// KDA is kills+assists per death, with deaths floored at 1.
func (p Participant) KDA() float64 {
	deaths := p.Deaths
	if deaths < 1 {
		deaths = 1
	}
	return float64(p.Kills+p.Assists) / float64(deaths)
}

// DurationMinutes returns the game length in minutes, floored at 1 to keep
// per-minute rates defined.
func (i MatchInfo) DurationMinutes() float64 {
	m := float64(i.GameDuration) / 60.0
	if m <= 0 {
		return 1
	}
	return m
}
