// Package queue carries reservation lifecycle events over RabbitMQ: a
// publisher used by the service layer and a consumer that stands in for
// the notification dispatcher by appending each event to a log file.
package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/table-reservation/internal/model"
)

// EventsQueue is the durable queue every lifecycle event is routed to.
const EventsQueue = "reservation.events"

func encodeEvent(rec model.EventRecord) ([]byte, error) {
	return json.Marshal(rec)
}

func decodeEvent(body []byte) (model.EventRecord, error) {
	var rec model.EventRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return model.EventRecord{}, fmt.Errorf("unmarshal: %w", err)
	}
	if rec.ReservationID == "" || rec.Type == "" {
		return model.EventRecord{}, errors.New("event without reservation id or type")
	}
	return rec, nil
}

// formatLine renders one log line per event.
func formatLine(rec model.EventRecord) string {
	line := fmt.Sprintf("[%s] reservation %s | reservation_id=%s | customer_id=%s | restaurant_id=%s | actor=%s | points=%+d | reliability=%+d",
		rec.OccurredAt.UTC().Format(time.RFC3339), rec.Type, rec.ReservationID, rec.CustomerID,
		rec.RestaurantID, rec.Actor, rec.PointsDelta, rec.ReliabilityDelta)
	if rec.Tier != "" {
		line += " | tier=" + rec.Tier
	}
	return line + "\n"
}
