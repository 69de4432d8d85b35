package model

import (
	"time"

	"github.com/olzhas-sembi/dating-backend/internal/domain/enums"
)

type Location struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	City string  `json:"city"`
}

type Profile struct {
	UserID      int64        `json:"user_id"`
	DisplayName string       `json:"display_name"`
	Birthdate   time.Time    `json:"birthdate"`
	Gender      enums.Gender `json:"gender"`
	Bio         string       `json:"bio"`
	Photos      []string     `json:"photos"`
	Location    *Location    `json:"location"`
	LookingFor  []string     `json:"looking_for"`
	IsDeleted   bool         `json:"is_deleted"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
