package dto

// HistoryQuery filters the substitution history listing.
type HistoryQuery struct {
	Teacher  string `form:"teacher"`
	Since    *int64 `form:"since" validate:"omitempty,min=0"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=500"`
}

// LeaderboardQuery selects the leaderboard window.
type LeaderboardQuery struct {
	Period string `form:"period" validate:"omitempty,oneof=weekly monthly"`
}

// HistoryResetResponse reports a purge of the history log.
type HistoryResetResponse struct {
	Removed int64 `json:"removed"`
}
