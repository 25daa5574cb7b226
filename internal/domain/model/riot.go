// Package model defines the domain data shapes shared by the Riot gateway,
// the match store, and the analysis pipeline.
package model

// Account is the identity record resolved from a Riot ID (name#tag).
type Account struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

// Summoner is the platform-scoped profile for a PUUID.
type Summoner struct {
	PUUID         string `json:"puuid"`
	ProfileIconID int    `json:"profileIconId"`
	SummonerLevel int    `json:"summonerLevel"`
}

// LeagueEntry is one ranked-queue standing. Mutable upstream: never cached.
type LeagueEntry struct {
	QueueType    string `json:"queueType"`
	Tier         string `json:"tier"`
	Rank         string `json:"rank"`
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	HotStreak    bool   `json:"hotStreak"`
	Veteran      bool   `json:"veteran"`
	FreshBlood   bool   `json:"freshBlood"`
}

// RankedSolo5x5 is the queue type used for ranked standings in results.
const RankedSolo5x5 = "RANKED_SOLO_5x5"

// User is the resolved subject of an analysis.
type User struct {
	PUUID         string `json:"puuid"`
	GameName      string `json:"game_name"`
	TagLine       string `json:"tag_line"`
	Region        string `json:"region"`
	ProfileIconID int    `json:"profile_icon_id"`
	SummonerLevel int    `json:"summoner_level"`
}
