package dto

import "time"

type AttachmentPayload struct {
	URL  string `json:"url"`
	Kind string `json:"kind"`
}

type SendMessageRequest struct {
	Text        string              `json:"text"`
	Attachments []AttachmentPayload `json:"attachments"`
}

type MessageResponse struct {
	ID          int64               `json:"id"`
	MatchID     int64               `json:"match_id"`
	SenderID    int64               `json:"sender_id"`
	Text        string              `json:"text"`
	Attachments []AttachmentPayload `json:"attachments"`
	ReadBy      []int64             `json:"read_by"`
	SentAt      time.Time           `json:"sent_at"`
}

type MessagePageResponse struct {
	Messages []MessageResponse `json:"messages"`
	HasMore  bool              `json:"has_more"`
}
