package models

type DashboardStats struct {
	PlayersTotal     int      `json:"players_total"`
	TournamentsTotal int      `json:"tournaments_total"`
	OpenTournaments  int      `json:"open_tournaments"`
	MatchesTotal     int      `json:"matches_total"`
	MatchesLive      int      `json:"matches_live"`
	TopPlayers       []Player `json:"top_players"`
}
