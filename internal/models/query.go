package models

import "time"

// Query is a chat request answered by the backend, kept so it can be rated.
type Query struct {
	ID        string     `json:"id"`
	Message   string     `json:"message"`
	Response  string     `json:"response"`
	Agent     string     `json:"agent_type"`
	Language  string     `json:"language"`
	Rating    Rating     `json:"user_rating,omitempty"`
	RatedAt   *time.Time `json:"rating_timestamp,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
