package models

import "encoding/json"

// Who identifies the author of a message.
type Who string

const (
	WhoUser Who = "user"
	WhoBot  Who = "bot"
)

// Rating is the feedback a user leaves on an answered bot message.
type Rating string

const (
	RatingNone    Rating = ""
	RatingLike    Rating = "like"
	RatingDislike Rating = "dislike"
)

// Valid reports whether r is one of like or dislike.
func (r Rating) Valid() bool {
	return r == RatingLike || r == RatingDislike
}

// Message is one turn of the conversation as the widget keeps it.
// The JSON names match the browser history so existing histories load as is.
type Message struct {
	ID     string `json:"id,omitempty"`
	Text   string `json:"text"`
	Who    Who    `json:"who"`
	Typing bool   `json:"typing,omitempty"`
	Error  bool   `json:"error,omitempty"`
	Rating Rating `json:"user_rating,omitempty"`
	Lang   string `json:"lang,omitempty"`
	Agent  string `json:"model,omitempty"`
}

// UnmarshalJSON accepts numeric ids, which is how the browser widget stores
// the query ids it got from the backend.
func (m *Message) UnmarshalJSON(data []byte) error {
	type plain Message
	aux := struct {
		*plain
		ID ID `json:"id"`
	}{plain: (*plain)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	m.ID = string(aux.ID)
	return nil
}

// Rateable reports whether a rating may still be applied to m.
func (m Message) Rateable() bool {
	return m.Who == WhoBot && m.ID != "" && !m.Typing && !m.Error && m.Rating == RatingNone
}

// Settings is the per-request view of the session configuration sent along
// with every backend call.
type Settings struct {
	Language string `json:"language"`
	Agent    string `json:"agent"`
}
