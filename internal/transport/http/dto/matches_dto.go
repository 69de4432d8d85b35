package dto

import "time"

type MatchItemResponse struct {
	MatchID     int64     `json:"match_id"`
	UserID      int64     `json:"user_id"`
	DisplayName string    `json:"display_name"`
	City        string    `json:"city,omitempty"`
	MatchedAt   time.Time `json:"matched_at"`
}

type MatchListResponse struct {
	Matches []MatchItemResponse `json:"matches"`
}
