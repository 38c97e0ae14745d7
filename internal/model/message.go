// internal/model/message.go
package model

// Attachment is a single file attached to an outgoing message.
type Attachment struct {
	Filename string
	Data     []byte
}

// Message is one personalized outgoing email. Built lazily per send and
// never persisted.
type Message struct {
	From       string
	FromName   string
	To         string
	Subject    string
	Body       string
	Attachment *Attachment
}
