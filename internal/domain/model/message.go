package model

import "time"

type Attachment struct {
	URL  string `json:"url"`
	Kind string `json:"kind"`
}

type Message struct {
	ID          int64        `json:"id"`
	MatchID     int64        `json:"match_id"`
	SenderID    int64        `json:"sender_id"`
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments"`
	ReadBy      []int64      `json:"read_by"`
	SentAt      time.Time    `json:"sent_at"`
	Edited      bool         `json:"edited"`
	IsDeleted   bool         `json:"is_deleted"`
}
