package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"mikrotik-manager/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Store is what the workers read and prune.
type Store interface {
	GetDevice(ctx context.Context, id string) (*model.Device, error)
	ListPushSubscriptionsByUser(ctx context.Context, userID string) ([]model.PushSubscription, error)
	DeletePushSubscription(ctx context.Context, endpoint string) error
}

// Alert reports that a device changed reachability.
type Alert struct {
	DeviceID string
	Status   model.DeviceState
}

// Payload is the JSON body pushed to the browser.
type Payload struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	DeviceID string `json:"device_id"`
	Status   string `json:"status"`
}

// WorkerPool manages a pool of workers for sending device alerts.
type WorkerPool struct {
	size    int
	jobs    chan Alert
	store   Store
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, s Store, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Alert, size),
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// WithSender replaces the push transport.
func (wp *WorkerPool) WithSender(sender NotificationSender) *WorkerPool {
	wp.sender = sender
	return wp
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Worker %d started", id)
	for {
		select {
		case alert := <-wp.jobs:
			log.Printf("Worker %d processing device %s (%s)", id, alert.DeviceID, alert.Status)
			wp.notifyOwner(ctx, alert)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues an alert, blocking while every worker is busy.
func (wp *WorkerPool) Dispatch(alert Alert) {
	wp.jobs <- alert
}

func (wp *WorkerPool) notifyOwner(ctx context.Context, alert Alert) {
	device, err := wp.store.GetDevice(ctx, alert.DeviceID)
	if err != nil {
		log.Printf("Error fetching device %s: %v", alert.DeviceID, err)
		return
	}
	if device == nil {
		return
	}

	subscriptions, err := wp.store.ListPushSubscriptionsByUser(ctx, device.OwnerID)
	if err != nil {
		log.Printf("Error fetching subscriptions for user %s: %v", device.OwnerID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(buildPayload(device, alert.Status))
	if err != nil {
		log.Printf("Error encoding alert for device %s: %v", device.ID, err)
		return
	}

	log.Printf("Sending %d notifications for device %s", len(subscriptions), device.ID)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

func buildPayload(device *model.Device, status model.DeviceState) Payload {
	label := device.Name
	if label == "" {
		label = device.IPAddress
	}
	p := Payload{DeviceID: device.ID, Status: string(status)}
	if status == model.DeviceOnline {
		p.Title = "Device back online"
		p.Body = fmt.Sprintf("%s (%s) is reachable again.", label, device.IPAddress)
	} else {
		p.Title = "Device offline"
		p.Body = fmt.Sprintf("%s (%s) stopped responding.", label, device.IPAddress)
	}
	return p
}

func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Expired subscription
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.store.DeletePushSubscription(ctx, sub.Endpoint); err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
