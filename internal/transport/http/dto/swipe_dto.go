package dto

type LikeRequest struct {
	TargetID int64 `json:"target_id"`
}

type LikeResponse struct {
	OK          bool   `json:"ok"`
	MatchID     int64  `json:"match_id"`
	Status      string `json:"status"`
	MutualMatch bool   `json:"mutual_match"`
}

type DislikeRequest struct {
	TargetID int64 `json:"target_id"`
}

type DislikeResponse struct {
	OK bool `json:"ok"`
}
