package model

import "time"

// EmailFlags is the subset of IMAP flags tracked per message.
type EmailFlags struct {
	Seen     bool `json:"seen"`
	Flagged  bool `json:"flagged"`
	Answered bool `json:"answered"`
	Deleted  bool `json:"deleted"`
	Draft    bool `json:"draft"`
}

// Email is a synchronized message as served by the backend. Records are
// always fetched whole; the client never constructs one partially.
type Email struct {
	ID        string     `json:"id"`
	AccountID string     `json:"accountId"`
	Folder    string     `json:"folder"`
	From      string     `json:"from"`
	Subject   string     `json:"subject"`
	Date      time.Time  `json:"date"`
	Flags     EmailFlags `json:"flags"`
	Snippet   string     `json:"snippet"`
}
