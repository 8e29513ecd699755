package models

import "time"

// Strategy is one persisted simulation run.
type Strategy struct {
	ID          int64     `json:"id"           bson:"_id"`
	UserID      int64     `json:"user_id"      bson:"user_id"`
	Platform    string    `json:"platform"     bson:"platform"`
	EntryTime   string    `json:"entry_time"   bson:"entry_time"`
	TicketType  string    `json:"ticket_type"  bson:"ticket_type"`
	Network     string    `json:"network"      bson:"network"`
	SuccessRate int       `json:"success_rate" bson:"success_rate"`
	Suggestion  string    `json:"suggestion"   bson:"suggestion"`
	CreatedAt   time.Time `json:"created_at"   bson:"created_at"`
}

// SimulateRequest is the JSON body for POST /simulate.
type SimulateRequest struct {
	Platform   string     `json:"platform"`
	EntryTime  string     `json:"entry_time"`
	TicketType FlexString `json:"ticket_type"`
	Network    string     `json:"network"`
	UserID     FlexString `json:"user_id"`
}

// SimulateResponse is the JSON body returned by POST /simulate.
type SimulateResponse struct {
	SuccessRate int    `json:"success_rate"`
	Suggestion  string `json:"suggestion"`
}
