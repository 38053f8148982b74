package postgres

import (
	"database/sql"
	"time"
)

type gpsReportTableModel struct {
	ID              string    `db:"id"`
	ClubID          string    `db:"club_id"`
	TeamID          string    `db:"team_id"`
	ProfileID       string    `db:"profile_id"`
	EventType       string    `db:"event_type"`
	EventID         string    `db:"event_id"`
	EventDate       time.Time `db:"event_date"`
	FileName        string    `db:"file_name"`
	RawData         string    `db:"raw_data"`
	ProcessedData   string    `db:"processed_data"`
	SkippedRows     string    `db:"skipped_rows"`
	ProfileSnapshot string    `db:"profile_snapshot"`
	IsProcessed     bool      `db:"is_processed"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

type gpsReportUpsertModel struct {
	ID              string    `db:"id"`
	ClubID          string    `db:"club_id"`
	TeamID          string    `db:"team_id"`
	ProfileID       string    `db:"profile_id"`
	EventType       string    `db:"event_type"`
	EventID         string    `db:"event_id"`
	EventDate       time.Time `db:"event_date"`
	FileName        string    `db:"file_name"`
	RawData         string    `db:"raw_data"`
	ProcessedData   string    `db:"processed_data"`
	SkippedRows     string    `db:"skipped_rows"`
	ProfileSnapshot string    `db:"profile_snapshot"`
	IsProcessed     bool      `db:"is_processed"`
	UpdatedAt       time.Time `db:"updated_at"`
}

type gpsPlayerMappingTableModel struct {
	ReportID   string         `db:"report_id"`
	RowIndex   int            `db:"row_index"`
	SourceName string         `db:"source_name"`
	PlayerID   sql.NullString `db:"player_id"`
	IsManual   bool           `db:"is_manual"`
	Similarity sql.NullInt64  `db:"similarity"`
	Candidates string         `db:"candidates"`
	UpdatedAt  time.Time      `db:"updated_at"`
}
