package domain

import "time"

// OutboxEmail is a message captured by the outbox mail driver instead of
// being handed to a real mail server.
type OutboxEmail struct {
	EmailID   string    `json:"id" dynamodbav:"email_id"`
	To        string    `json:"to" dynamodbav:"to"`
	Subject   string    `json:"subject" dynamodbav:"subject"`
	Body      string    `json:"body" dynamodbav:"body"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"created_at"`
}
