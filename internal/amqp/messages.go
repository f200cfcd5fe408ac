package amqp

import (
	"encoding/json"
	"time"
)

// CostCreatedMessage announces a stored cost. Consumers load whatever they
// need from the store; the message only says which month changed.
type CostCreatedMessage struct {
	ID        string    `json:"id"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Timestamp time.Time `json:"timestamp"`
}

// NewCostCreatedMessage tags the message with the calendar month of date.
// Callers convert date to the reporting timezone first.
func NewCostCreatedMessage(id string, date time.Time) *CostCreatedMessage {
	return &CostCreatedMessage{
		ID:        id,
		Year:      date.Year(),
		Month:     int(date.Month()),
		Timestamp: time.Now(),
	}
}

func (m *CostCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func CostCreatedMessageFromJSON(data []byte) (*CostCreatedMessage, error) {
	var msg CostCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
