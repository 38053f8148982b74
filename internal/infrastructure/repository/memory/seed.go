package memory

import "github.com/riskibarqy/gps-gamemodel/internal/domain/roster"

const (
	DemoClubID = "club-demo"
	DemoTeamID = "team-demo-first"
)

// SeedRoster returns the demo squad served by the in-memory wiring.
func SeedRoster() []roster.Player {
	return []roster.Player{
		{ID: "player-01", ClubID: DemoClubID, TeamID: DemoTeamID, FullName: "Ivan Petrov"},
		{ID: "player-02", ClubID: DemoClubID, TeamID: DemoTeamID, FullName: "Alexei Smirnov", Aliases: []string{"Lyosha Smirnov"}},
		{ID: "player-03", ClubID: DemoClubID, TeamID: DemoTeamID, FullName: "Dmitri Sokolov"},
		{ID: "player-04", ClubID: DemoClubID, TeamID: DemoTeamID, FullName: "Sergei Volkov"},
		{ID: "player-05", ClubID: DemoClubID, TeamID: DemoTeamID, FullName: "Artyom Kuznetsov"},
		{ID: "player-06", ClubID: DemoClubID, TeamID: DemoTeamID, FullName: "Nikita Popov"},
		{ID: "player-07", ClubID: DemoClubID, TeamID: DemoTeamID, FullName: "Maxim Lebedev"},
		{ID: "player-08", ClubID: DemoClubID, TeamID: DemoTeamID, FullName: "Andrei Kozlov"},
		{ID: "player-09", ClubID: DemoClubID, TeamID: DemoTeamID, FullName: "Yegor Novikov"},
		{ID: "player-10", ClubID: DemoClubID, TeamID: DemoTeamID, FullName: "Pavel Morozov"},
		{ID: "player-11", ClubID: DemoClubID, TeamID: DemoTeamID, FullName: "Roman Pavlov"},
	}
}
