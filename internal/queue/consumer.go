package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartActivityConsumer connects to the broker at url, declares the
// registration and rating queues (durable), and starts consuming from
// both. Each message is appended to logs/activity.log in a single-line,
// human-friendly format. The function runs a reconnect loop with
// exponential backoff; it keeps running and logs processing errors while
// rejecting the offending message so the server continues operating.
func StartActivityConsumer(url string) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("activity-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn); err != nil {
			log.Printf("activity-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("activity-consumer: set QoS failed: %v", err)
	}

	for _, name := range []string{UserRegisteredQueue, RatingCreatedQueue} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
	}

	registered, err := ch.Consume(UserRegisteredQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume %s: %w", UserRegisteredQueue, err)
	}
	rated, err := ch.Consume(RatingCreatedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume %s: %w", RatingCreatedQueue, err)
	}

	for {
		select {
		case d, ok := <-registered:
			if !ok {
				return errors.New("registered deliveries channel closed")
			}
			ackOrNack(d, handleRegistered(d.Body))
		case d, ok := <-rated:
			if !ok {
				return errors.New("rated deliveries channel closed")
			}
			ackOrNack(d, handleRated(d.Body))
		}
	}
}

func ackOrNack(d amqp.Delivery, err error) {
	if err != nil {
		log.Printf("activity-consumer: handle message failed: %v", err)
		_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
		return
	}
	_ = d.Ack(false)
}

func handleRegistered(body []byte) error {
	var ev UserRegisteredEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line := fmt.Sprintf("[%s] User registered | event_id=%s | user_id=%d | username=%q\n",
		ev.RegisteredAt, ev.EventID, ev.UserID, ev.Username)
	return appendActivity(line)
}

func handleRated(body []byte) error {
	var ev RatingCreatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line := fmt.Sprintf("[%s] Rating created | event_id=%s | rating_id=%d | user=%q | movie=%q (tmdb_id=%d) | rating=%.1f\n",
		ev.CreatedAt, ev.EventID, ev.RatingID, ev.Username, ev.MovieTitle, ev.TMDBID, ev.Rating)
	return appendActivity(line)
}

func appendActivity(line string) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "activity.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
