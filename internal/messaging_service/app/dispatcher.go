package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	directory "github.com/fieldops/dispatch_services/internal/directory_service/domain"
	"github.com/fieldops/dispatch_services/internal/messaging_service/provider"
	servicecall "github.com/fieldops/dispatch_services/internal/servicecall_service/domain"
)

// ProfessionalFinder resolves the recipients of a notification.
type ProfessionalFinder interface {
	FindAvailable(ctx context.Context, profession string, locations []string) ([]*directory.Professional, error)
}

// ServiceCallGetter loads the call being announced.
type ServiceCallGetter interface {
	Get(ctx context.Context, id int64) (*servicecall.ServiceCall, error)
}

// NotifyResult is returned for a service call notification.
type NotifyResult struct {
	Success               bool     `json:"success"`
	Matched               int      `json:"professionals_matched"`
	NotificationsSent     int      `json:"notifications_sent"`
	ProfessionalsNotified []string `json:"professionals_notified"`
}

// Dispatcher is the Notification Dispatcher.
type Dispatcher struct {
	professionals ProfessionalFinder
	calls         ServiceCallGetter
	sender        provider.Sender
	sendTimeout   time.Duration
	logger        *slog.Logger
}

const defaultSendTimeout = 10 * time.Second

// NewDispatcher bounds every gateway send by sendTimeout, 10s when sendTimeout <= 0.
func NewDispatcher(professionals ProfessionalFinder, calls ServiceCallGetter, sender provider.Sender, sendTimeout time.Duration, logger *slog.Logger) *Dispatcher {
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}
	return &Dispatcher{
		professionals: professionals,
		calls:         calls,
		sender:        sender,
		sendTimeout:   sendTimeout,
		logger:        logger.With("component", "notification_dispatcher"),
	}
}

// Notify sends description to every available professional of profession, restricted to locations when
// any are given. It returns the number of successful sends. Individual send failures are skipped; only a
// directory failure is returned as an error. A zero count does not distinguish "no matches" from "all failed".
func (d *Dispatcher) Notify(ctx context.Context, profession, description string, locations []string) (int, error) {
	res, err := d.notify(ctx, profession, description, locations)
	if err != nil {
		return 0, err
	}
	return res.NotificationsSent, nil
}

// NotifyServiceCall forwards a call's description to the professionals matching its profession and locations.
func (d *Dispatcher) NotifyServiceCall(ctx context.Context, serviceCallID int64) (*NotifyResult, error) {
	sc, err := d.calls.Get(ctx, serviceCallID)
	if err != nil {
		return nil, err
	}
	return d.notify(ctx, sc.Profession, sc.Description, sc.Locations)
}

// SendDirect sends one operator-composed message.
func (d *Dispatcher) SendDirect(ctx context.Context, to, body string) bool {
	ok := d.send(ctx, to, body)
	d.logger.InfoContext(ctx, "Direct message", "to", to, "sent", ok)
	return ok
}

func (d *Dispatcher) notify(ctx context.Context, profession, description string, locations []string) (*NotifyResult, error) {
	recipients, err := d.professionals.FindAvailable(ctx, strings.TrimSpace(profession), locations)
	if err != nil {
		d.logger.ErrorContext(ctx, "Failed to resolve notification recipients", "profession", profession, "error", err)
		return nil, fmt.Errorf("resolve recipients: %w", err)
	}
	NotificationRecipientsHist.Observe(float64(len(recipients)))

	res := &NotifyResult{Matched: len(recipients), ProfessionalsNotified: []string{}}
	for _, p := range recipients {
		if !d.send(ctx, p.Phone, description) {
			NotificationsTotal.WithLabelValues("failed").Inc()
			d.logger.WarnContext(ctx, "Notification not delivered", "professional_id", p.ID, "phone", p.Phone)
			continue
		}
		NotificationsTotal.WithLabelValues("sent").Inc()
		res.NotificationsSent++
		res.ProfessionalsNotified = append(res.ProfessionalsNotified, p.Phone)
	}
	res.Success = true

	d.logger.InfoContext(ctx, "Notifications dispatched",
		"profession", profession, "locations", locations, "matched", res.Matched, "sent", res.NotificationsSent)
	return res, nil
}

func (d *Dispatcher) send(ctx context.Context, to, body string) bool {
	ctx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()
	return d.sender.Send(ctx, to, body)
}
