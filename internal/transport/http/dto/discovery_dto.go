package dto

type CandidateResponse struct {
	UserID      int64    `json:"user_id"`
	DisplayName string   `json:"display_name"`
	Age         int      `json:"age"`
	Gender      string   `json:"gender"`
	City        string   `json:"city,omitempty"`
	Bio         string   `json:"bio,omitempty"`
	PhotoURLs   []string `json:"photo_urls"`
}

type SearchResponse struct {
	Candidates []CandidateResponse `json:"candidates"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	HasMore    bool                `json:"has_more"`
}
