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

// StartNotificationConsumer connects to RabbitMQ and consumes both domain
// queues, appending one human-readable line per event to
// logs/notifications.log.  This consumer is the stand-in for the real-time
// push channel: anything written here is what a connected client would
// have been pushed.  The function runs a reconnect loop with backoff and
// keeps running across broker restarts; processing errors are logged and
// the offending message rejected without requeue so a bad payload cannot
// wedge the queue.
func StartNotificationConsumer() error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(brokerURL())
		if err != nil {
			log.Printf("notify-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn); err != nil {
			log.Printf("notify-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

// consumeLoop consumes both queues on one channel until a delivery stream
// closes, then returns so the caller reconnects.
func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("notify-consumer: set QoS failed: %v", err)
	}

	for _, name := range []string{BookingCreatedQueue, MessagePostedQueue} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
	}

	bookings, err := ch.Consume(BookingCreatedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", BookingCreatedQueue, err)
	}
	messages, err := ch.Consume(MessagePostedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", MessagePostedQueue, err)
	}

	for {
		select {
		case d, ok := <-bookings:
			if !ok {
				return errors.New("booking deliveries channel closed")
			}
			handle(d, handleBookingCreated)
		case d, ok := <-messages:
			if !ok {
				return errors.New("message deliveries channel closed")
			}
			handle(d, handleMessagePosted)
		}
	}
}

func handle(d amqp.Delivery, fn func([]byte) error) {
	if err := fn(d.Body); err != nil {
		log.Printf("notify-consumer: handle message failed: %v", err)
		_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
		return
	}
	_ = d.Ack(false)
}

func handleBookingCreated(body []byte) error {
	var ev BookingCreatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line := fmt.Sprintf("[%s] Booking created | booking_id=%d | class=%q | student_id=%d | trainer_id=%d | date=%s %s | period=%s | price=%d cents | code=%s\n",
		ev.CreatedAt, ev.BookingID, ev.ClassName, ev.StudentID, ev.TrainerID,
		ev.SessionDate, ev.SessionTime, ev.Period, ev.PriceCents, ev.VerificationCode)
	return appendNotification(line)
}

func handleMessagePosted(body []byte) error {
	var ev MessagePostedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line := fmt.Sprintf("[%s] Message posted | message_id=%d | conversation_id=%d | from=%d | to=%d | preview=%q\n",
		ev.CreatedAt, ev.MessageID, ev.ConversationID, ev.SenderID, ev.RecipientID, ev.Preview)
	return appendNotification(line)
}

func appendNotification(line string) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "notifications.log")
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
