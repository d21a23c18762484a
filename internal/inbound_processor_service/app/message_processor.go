package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	directory "github.com/fieldops/dispatch_services/internal/directory_service/domain"
	"github.com/fieldops/dispatch_services/internal/inbound_processor_service/domain"
	"github.com/fieldops/dispatch_services/internal/messaging_service/provider"
	servicecall "github.com/fieldops/dispatch_services/internal/servicecall_service/domain"
)

// ProfessionalResolver finds the professional behind a sender phone number.
type ProfessionalResolver interface {
	FindByPhone(ctx context.Context, phone string) (*directory.Professional, error)
}

// Lifecycle moves service calls between states on behalf of a professional.
type Lifecycle interface {
	Accept(ctx context.Context, profession string, professionalID int64) (*servicecall.Assignment, error)
	Complete(ctx context.Context, professionalID int64) (*servicecall.Assignment, error)
}

// Timeouts bound each external call made while processing one message.
type Timeouts struct {
	Store      time.Duration
	Classifier time.Duration
	Gateway    time.Duration
}

func (t Timeouts) withDefaults() Timeouts {
	if t.Store <= 0 {
		t.Store = 5 * time.Second
	}
	if t.Classifier <= 0 {
		t.Classifier = 15 * time.Second
	}
	if t.Gateway <= 0 {
		t.Gateway = 10 * time.Second
	}
	return t
}

// MessageProcessor logs inbound messages and applies the keyword rules to them.
type MessageProcessor struct {
	messages      domain.MessageRepository
	professionals ProfessionalResolver
	lifecycle     Lifecycle
	classifier    domain.Classifier
	sender        provider.Sender
	timeouts      Timeouts
	logger        *slog.Logger
}

// NewMessageProcessor creates a new MessageProcessor.
func NewMessageProcessor(
	messages domain.MessageRepository,
	professionals ProfessionalResolver,
	lifecycle Lifecycle,
	classifier domain.Classifier,
	sender provider.Sender,
	timeouts Timeouts,
	logger *slog.Logger,
) *MessageProcessor {
	return &MessageProcessor{
		messages:      messages,
		professionals: professionals,
		lifecycle:     lifecycle,
		classifier:    classifier,
		sender:        sender,
		timeouts:      timeouts.withDefaults(),
		logger:        logger.With("component", "message_processor"),
	}
}

// Process handles a batch in input order and returns one outcome per message.
// A failure on one message never prevents the following messages from being processed.
// Processing is detached from ctx cancellation once started, so a dropped webhook connection
// cannot leave a call assigned without its confirmation attempt.
func (p *MessageProcessor) Process(ctx context.Context, batch []domain.RawInboundMessage) []domain.Outcome {
	inboundBatchSizeHist.Observe(float64(len(batch)))
	base := context.WithoutCancel(ctx)

	outcomes := make([]domain.Outcome, 0, len(batch))
	for i, raw := range batch {
		start := time.Now()
		out := p.processOne(base, raw)
		inboundMessagesProcessedCounter.WithLabelValues(string(out.Status)).Inc()
		inboundMessageDurationHist.WithLabelValues(string(out.Status)).Observe(time.Since(start).Seconds())
		p.logger.InfoContext(ctx, "Inbound message processed",
			"index", i,
			"from", out.From,
			"status", out.Status,
		)
		outcomes = append(outcomes, out)
	}
	return outcomes
}

func (p *MessageProcessor) processOne(ctx context.Context, raw domain.RawInboundMessage) (out domain.Outcome) {
	name := raw.FromName
	if name == "" {
		name = domain.UnknownSenderName
	}
	out = domain.Outcome{From: raw.From, Name: name, Message: raw.Body}

	defer func() {
		if r := recover(); r != nil {
			p.logger.ErrorContext(ctx, "Panic while processing inbound message", "from", raw.From, "panic", fmt.Sprint(r))
			out.Status = domain.OutcomeError
			out.ServiceCallID = nil
		}
	}()

	intent := p.classify(ctx, raw.Body)
	out.Intent = intent

	msg := domain.NewMessage(raw.From, name, raw.Body, &intent)
	if err := p.withStoreTimeout(ctx, func(ctx context.Context) error {
		return p.messages.Create(ctx, msg)
	}); err != nil {
		p.logger.ErrorContext(ctx, "Failed to store inbound message", "error", err, "from", raw.From)
		out.Status = domain.OutcomeError
		return out
	}

	var professional *directory.Professional
	err := p.withStoreTimeout(ctx, func(ctx context.Context) error {
		var findErr error
		professional, findErr = p.professionals.FindByPhone(ctx, raw.From)
		return findErr
	})
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			p.logger.InfoContext(ctx, "Inbound message from unknown sender", "from", raw.From)
			out.Status = domain.OutcomeUnknownProfessional
			return out
		}
		p.logger.ErrorContext(ctx, "Failed to resolve sender", "error", err, "from", raw.From)
		out.Status = domain.OutcomeError
		return out
	}

	switch MatchCommand(raw.Body) {
	case CommandAccept:
		p.accept(ctx, professional, &out)
	case CommandComplete:
		p.complete(ctx, professional, &out)
	default:
		out.Status = domain.OutcomeOtherMessage
	}
	return out
}

func (p *MessageProcessor) accept(ctx context.Context, professional *directory.Professional, out *domain.Outcome) {
	var assignment *servicecall.Assignment
	err := p.withStoreTimeout(ctx, func(ctx context.Context) error {
		var acceptErr error
		assignment, acceptErr = p.lifecycle.Accept(ctx, professional.Profession, professional.ID)
		return acceptErr
	})
	switch {
	case err == nil:
		id := assignment.ServiceCallID
		out.Status = domain.OutcomeAccepted
		out.ServiceCallID = &id
		p.reply(ctx, out.From, acceptConfirmation(assignment.ServiceCall), "accept_confirmation")
	case errors.Is(err, servicecall.ErrNoOpenCall):
		out.Status = domain.OutcomeNoOpenCalls
		p.reply(ctx, out.From, replyNoOpenCalls, "no_open_calls")
	default:
		p.logger.ErrorContext(ctx, "Accept failed", "error", err, "professional_id", professional.ID)
		out.Status = domain.OutcomeError
	}
}

func (p *MessageProcessor) complete(ctx context.Context, professional *directory.Professional, out *domain.Outcome) {
	var assignment *servicecall.Assignment
	err := p.withStoreTimeout(ctx, func(ctx context.Context) error {
		var completeErr error
		assignment, completeErr = p.lifecycle.Complete(ctx, professional.ID)
		return completeErr
	})
	switch {
	case err == nil:
		id := assignment.ServiceCallID
		out.Status = domain.OutcomeCompleted
		out.ServiceCallID = &id
		p.reply(ctx, out.From, replyCompleted, "completion")
	case errors.Is(err, servicecall.ErrNoActiveAssignment):
		out.Status = domain.OutcomeNoActiveAssignments
	default:
		p.logger.ErrorContext(ctx, "Complete failed", "error", err, "professional_id", professional.ID)
		out.Status = domain.OutcomeError
	}
}

// classify never fails: classifier errors and timeouts yield FallbackIntent.
func (p *MessageProcessor) classify(ctx context.Context, body string) string {
	if p.classifier == nil {
		classifierFallbackCounter.Inc()
		return domain.FallbackIntent
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeouts.Classifier)
	defer cancel()

	intent, err := p.classifier.Classify(ctx, body)
	if err != nil || intent == "" {
		if err != nil && !errors.Is(err, domain.ErrClassifierUnavailable) {
			p.logger.WarnContext(ctx, "Intent classification failed, using fallback", "error", err)
		}
		classifierFallbackCounter.Inc()
		return domain.FallbackIntent
	}
	return intent
}

// reply is best-effort. A failed send is logged and never undoes the state change.
func (p *MessageProcessor) reply(ctx context.Context, to, body, kind string) {
	if p.sender == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeouts.Gateway)
	defer cancel()
	if !p.sender.Send(ctx, to, body) {
		replySendFailuresCounter.WithLabelValues(kind).Inc()
		p.logger.WarnContext(ctx, "Reply to professional not delivered", "to", to, "kind", kind)
	}
}

func (p *MessageProcessor) withStoreTimeout(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeouts.Store)
	defer cancel()
	return fn(ctx)
}
