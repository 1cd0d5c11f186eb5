package sse

import (
	"time"

	"github.com/GTDGit/bakery_storefront/internal/cart"
	"github.com/GTDGit/bakery_storefront/internal/models"
)

// Notifier is the interface services use to emit live events.
type Notifier interface {
	NotifyCartChanged(session string, snap cart.Snapshot)
	NotifyOrderCreated(receipt *models.OrderReceipt)
}

// HubNotifier implements Notifier using the SSE Hub.
type HubNotifier struct {
	hub *Hub
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyCartChanged(session string, snap cart.Snapshot) {
	topic := CartTopic(session)
	if !n.hub.Listening(topic) {
		return
	}
	n.hub.Publish(topic, &Event{Event: EventCartUpdated, Data: snap, Timestamp: time.Now()})
}

func (n *HubNotifier) NotifyOrderCreated(receipt *models.OrderReceipt) {
	if !n.hub.Listening(TopicAdmin) {
		return
	}
	n.hub.Publish(TopicAdmin, &Event{Event: EventOrderCreated, Data: receipt, Timestamp: time.Now()})
}

// NopNotifier is a no-op implementation for when SSE is not needed.
type NopNotifier struct{}

func (NopNotifier) NotifyCartChanged(string, cart.Snapshot) {}
func (NopNotifier) NotifyOrderCreated(*models.OrderReceipt) {}
