package dto

type LocationPayload struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	City string  `json:"city"`
}

type SaveProfileRequest struct {
	DisplayName string           `json:"display_name"`
	Birthdate   string           `json:"birthdate"`
	Gender      string           `json:"gender"`
	Bio         string           `json:"bio"`
	Photos      []string         `json:"photos"`
	Location    *LocationPayload `json:"location"`
	LookingFor  []string         `json:"looking_for"`
}

type ProfileResponse struct {
	UserID      int64            `json:"user_id"`
	DisplayName string           `json:"display_name"`
	Birthdate   string           `json:"birthdate"`
	Gender      string           `json:"gender"`
	Bio         string           `json:"bio,omitempty"`
	PhotoURLs   []string         `json:"photo_urls"`
	Location    *LocationPayload `json:"location,omitempty"`
	LookingFor  []string         `json:"looking_for"`
}
