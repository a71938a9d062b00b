package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/pasarhub/marketplace-orders/internal/kafka"
	"github.com/pasarhub/marketplace-orders/internal/market"
	"github.com/pasarhub/marketplace-orders/internal/redisx"
)

// Service consumes order events and sends best-effort mail. Every failure is
// logged and swallowed: the handler returns nil so the offset commits and
// nothing ever flows back into the order transaction that emitted the event.
type Service struct {
	Repo   *market.Repo
	Redis  *redis.Client
	Mailer Mailer
}

// HandleEvent is wired as the consumer handler for all three order topics.
func (s *Service) HandleEvent(ctx context.Context, m kafkago.Message) error {
	var env market.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		log.Printf("notifier: bad envelope: %v", err)
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, "notifier", env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	var err error
	switch env.EventType {
	case market.EventOrdersCreated:
		err = s.ordersCreated(ctx, env.Payload)
	case market.EventOrderCancelled:
		err = s.orderCancelled(ctx, env.Payload)
	case market.EventOrderStatusMoved:
		err = s.statusMoved(ctx, env.Payload)
	default:
		return nil
	}
	if err != nil {
		log.Printf("notifier: %s %s: %v", env.EventType, env.CorrelationID, err)
	}
	return nil
}

func (s *Service) ordersCreated(ctx context.Context, raw json.RawMessage) error {
	p, err := kafkax.UnwrapPayload[market.OrdersCreatedPayload](raw)
	if err != nil {
		return err
	}
	contacts, err := s.Repo.OrderContacts(ctx, p.OrderIDs)
	if err != nil {
		return err
	}
	if len(contacts) == 0 {
		return nil
	}
	// one batch is one buyer and one listing
	first := contacts[0]

	subject := "Order Confirmation - " + first.ListingName
	body := fmt.Sprintf("Hi %s,\n\nYour order has been placed.\n\nItem: %s\nQuantity: %d\nStatus: %s\nOrder IDs: %s\n",
		first.BuyerName, first.ListingName, len(contacts), first.Status, strings.Join(p.OrderIDs, ", "))
	s.send([]string{first.BuyerEmail}, subject, body)

	vendorTo, err := s.Repo.VendorEmails(ctx, first.VendorID)
	if err != nil {
		return err
	}
	s.send(vendorTo, "New order received - "+first.ListingName,
		fmt.Sprintf("A new order for %q (quantity %d) was placed by %s.\n", first.ListingName, len(contacts), first.BuyerName))
	return nil
}

func (s *Service) orderCancelled(ctx context.Context, raw json.RawMessage) error {
	p, err := kafkax.UnwrapPayload[market.OrderCancelledPayload](raw)
	if err != nil {
		return err
	}
	contacts, err := s.Repo.OrderContacts(ctx, []string{p.OrderID})
	if err != nil || len(contacts) == 0 {
		return err
	}
	c := contacts[0]

	s.send([]string{c.BuyerEmail}, "Order Cancelled - "+c.ListingName,
		fmt.Sprintf("Hi %s,\n\nOrder %s for %q has been cancelled.\n", c.BuyerName, c.OrderID, c.ListingName))

	vendorTo, err := s.Repo.VendorEmails(ctx, c.VendorID)
	if err != nil {
		return err
	}
	s.send(vendorTo, "Order Cancelled - "+c.ListingName,
		fmt.Sprintf("Order %s for %q was cancelled by the %s.\n", c.OrderID, c.ListingName, p.CancelledBy))
	return nil
}

func (s *Service) statusMoved(ctx context.Context, raw json.RawMessage) error {
	p, err := kafkax.UnwrapPayload[market.OrderStatusMovedPayload](raw)
	if err != nil {
		return err
	}
	contacts, err := s.Repo.OrderContacts(ctx, []string{p.OrderID})
	if err != nil || len(contacts) == 0 {
		return err
	}
	c := contacts[0]

	s.send([]string{c.BuyerEmail}, "Order Update - "+c.ListingName,
		fmt.Sprintf("Hi %s,\n\nOrder %s is now %s.\n", c.BuyerName, c.OrderID, p.To))
	return nil
}

func (s *Service) send(to []string, subject, body string) {
	if err := s.Mailer.Send(to, subject, body); err != nil {
		log.Printf("notifier: send %q to %v: %v", subject, to, err)
	}
}
