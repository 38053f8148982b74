package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "vendor_name").
		From("gps_profiles").
		Where(Eq("club_id", "c1"), IsNull("deleted_at")).
		OrderBy("name").
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, vendor_name FROM gps_profiles WHERE club_id = $1 AND deleted_at IS NULL ORDER BY name"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "c1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_InAndExpr(t *testing.T) {
	query, args, err := Select("player_id", "alias").
		From("player_aliases").
		Where(In("player_id", []any{"p1", "p2"}), Expr("club_id = ?", "c1")).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT player_id, alias FROM player_aliases WHERE player_id IN ($1, $2) AND club_id = $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[2] != "c1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("gps_reports").
		Columns("id", "file_name").
		Values("r1", "export.csv").
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO gps_reports (id, file_name) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "r1" || args[1] != "export.csv" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModels(t *testing.T) {
	type mappingRow struct {
		ReportID string `db:"report_id"`
		RowIndex int    `db:"row_index"`
		Ignored  string
	}

	query, args, err := InsertModels("gps_player_mappings", []mappingRow{
		{ReportID: "r1", RowIndex: 0},
		{ReportID: "r1", RowIndex: 2},
	}, "ON CONFLICT DO NOTHING")
	if err != nil {
		t.Fatalf("build insert models query: %v", err)
	}

	wantQuery := "INSERT INTO gps_player_mappings (report_id, row_index) VALUES ($1, $2), ($3, $4) ON CONFLICT DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[3] != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := InsertModels[mappingRow]("gps_player_mappings", nil, ""); err == nil {
		t.Fatalf("expected error for empty models")
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("gps_player_mappings").
		Set("is_manual", true).
		SetExpr("updated_at", "NOW()").
		Where(Eq("report_id", "r1"), Eq("row_index", 3)).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE gps_player_mappings SET is_manual = $1, updated_at = NOW() WHERE report_id = $2 AND row_index = $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != true || args[1] != "r1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("player_game_models").
		Where(Eq("club_id", "c1"), Eq("player_id", "p1")).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}

	wantQuery := "DELETE FROM player_game_models WHERE club_id = $1 AND player_id = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := DeleteFrom("player_game_models").ToSQL(); err == nil {
		t.Fatalf("expected unconditional delete to be rejected")
	}
}

func TestOnConflict(t *testing.T) {
	tests := []struct {
		name   string
		clause *ConflictClause
		want   string
	}{
		{
			name:   "do nothing",
			clause: OnConflict("player_id", "alias").DoNothing(),
			want:   "ON CONFLICT (player_id, alias) DO NOTHING",
		},
		{
			name:   "no updates falls back to do nothing",
			clause: OnConflict("id"),
			want:   "ON CONFLICT (id) DO NOTHING",
		},
		{
			name: "guarded update",
			clause: OnConflict("match_id", "player_id").
				UpdateExcluded("minutes_played", "updated_at").
				Where("match_player_stats.club_id = EXCLUDED.club_id"),
			want: "ON CONFLICT (match_id, player_id) DO UPDATE SET minutes_played = EXCLUDED.minutes_played, updated_at = EXCLUDED.updated_at WHERE match_player_stats.club_id = EXCLUDED.club_id",
		},
		{
			name: "update with expression and returning",
			clause: OnConflict("player_id", "club_id").
				UpdateExcluded("metrics").
				UpdateExpr("version", "player_game_models.version + 1").
				Returning("id", "version"),
			want: "ON CONFLICT (player_id, club_id) DO UPDATE SET metrics = EXCLUDED.metrics, version = player_game_models.version + 1 RETURNING id, version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.clause.String(); got != tt.want {
				t.Fatalf("unexpected clause:\nwant: %s\ngot:  %s", tt.want, got)
			}
		})
	}
}

func TestInsertModel_WithConflictClause(t *testing.T) {
	type profileRow struct {
		ID     string `db:"id"`
		ClubID string `db:"club_id"`
		Name   string `db:"name"`
	}

	query, args, err := InsertModel("gps_profiles", profileRow{ID: "p1", ClubID: "c1", Name: "Match"},
		OnConflict("id").UpdateExcluded("name").Where("gps_profiles.club_id = EXCLUDED.club_id").String())
	if err != nil {
		t.Fatalf("build insert model query: %v", err)
	}

	wantQuery := "INSERT INTO gps_profiles (id, club_id, name) VALUES ($1, $2, $3) ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name WHERE gps_profiles.club_id = EXCLUDED.club_id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 {
		t.Fatalf("unexpected args: %+v", args)
	}
}
