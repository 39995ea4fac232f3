package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/gradpush/recommend-api/internal/dto"
	"github.com/gradpush/recommend-api/internal/models"
	"github.com/gradpush/recommend-api/internal/observability"
	"github.com/gradpush/recommend-api/internal/repository"
)

const notificationBufferSize = 16

// NotificationService publishes review-decision notifications and streams
// them to students via SSE. Cross-node delivery rides redis pub/sub and NATS.
type NotificationService interface {
	Publish(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error)
	List(ctx context.Context, studentNumber string, limit, offset int) ([]dto.NotificationResponse, error)
	MarkRead(ctx context.Context, id uint, studentNumber string) (dto.NotificationResponse, error)
	Subscribe(studentNumber string) (<-chan dto.NotificationResponse, func())
	Start(ctx context.Context)
}

type notificationService struct {
	repo        repository.NotificationRepository
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	sanitizer   *bluemonday.Policy
	hub         *studentStreamHub
	nodeID      string
}

// reviewEvent is the cross-node wire form of a decision notification. It
// carries the review context flat so any consumer can route on the student
// number and correlate with the application without unwrapping a nested
// payload.
type reviewEvent struct {
	Node           string    `json:"node"`
	NotificationID uint      `json:"notification_id"`
	StudentNumber  string    `json:"student_number"`
	ApplicationID  *uint     `json:"application_id,omitempty"`
	Decision       string    `json:"decision"`
	Message        string    `json:"message"`
	DecidedAt      time.Time `json:"decided_at"`
}

// studentStreamHub fans notifications out to the SSE streams of one node,
// keyed by student number.
type studentStreamHub struct {
	mu      sync.RWMutex
	streams map[string]map[chan dto.NotificationResponse]struct{}
}

// NewNotificationService constructs a notification service.
func NewNotificationService(repo repository.NotificationRepository, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, validate *validator.Validate, logger zerolog.Logger) NotificationService {
	stream := ""
	subject := ""
	if channelBase != "" {
		stream = channelBase + ":notifications"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".notifications"
	}

	return &notificationService{
		repo:        repo,
		redis:       redisClient,
		redisStream: stream,
		nats:        natsConn,
		natsSubject: subject,
		validator:   validate,
		logger:      logger.With().Str("component", "notification_service").Logger(),
		tracer:      otel.Tracer("github.com/gradpush/recommend-api/internal/service/notification"),
		sanitizer:   bluemonday.StrictPolicy(),
		hub: &studentStreamHub{
			streams: make(map[string]map[chan dto.NotificationResponse]struct{}),
		},
		nodeID: uuid.NewString(),
	}
}

func (s *notificationService) Start(ctx context.Context) {
	if s.redis != nil && s.redisStream != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

// Publish persists the notification, pushes it to the owning student's local
// streams and fans it out to the other nodes. Fan-out failure is warn-only:
// the notification is already stored and listable.
func (s *notificationService) Publish(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.NotificationResponse{}, err
	}

	cleanMessage := strings.TrimSpace(s.sanitizer.Sanitize(payload.Message))
	if cleanMessage == "" {
		return dto.NotificationResponse{}, errors.New("notification message empty after sanitization")
	}

	attrs := []attribute.KeyValue{
		attribute.String("notification.student_number", payload.UserID),
		attribute.String("notification.decision", payload.Type),
	}
	if payload.ApplicationID != nil {
		attrs = append(attrs, attribute.Int64("notification.application_id", int64(*payload.ApplicationID)))
	}

	spanCtx, span := s.tracer.Start(ctx, "notifications.publish", trace.WithAttributes(attrs...))
	defer span.End()

	model := models.Notification{
		UserID:        payload.UserID,
		ApplicationID: payload.ApplicationID,
		Type:          payload.Type,
		Message:       cleanMessage,
	}

	if err := s.repo.Create(spanCtx, &model); err != nil {
		span.RecordError(err)
		return dto.NotificationResponse{}, err
	}

	response := dto.NewNotificationResponse(model)
	s.hub.push(response.UserID, response)
	if err := s.fanOut(spanCtx, response); err != nil {
		s.logger.Warn().Err(err).Msg("failed to fan notification out to other nodes")
	}

	observability.NotificationsPublishedTotal().WithLabelValues(response.Type).Inc()

	return response, nil
}

func (s *notificationService) List(ctx context.Context, studentNumber string, limit, offset int) ([]dto.NotificationResponse, error) {
	if strings.TrimSpace(studentNumber) == "" {
		return nil, errors.New("student number is required")
	}

	notifications, err := s.repo.ListByUser(ctx, studentNumber, limit, offset)
	if err != nil {
		return nil, err
	}

	return dto.NewNotificationResponses(notifications), nil
}

func (s *notificationService) MarkRead(ctx context.Context, id uint, studentNumber string) (dto.NotificationResponse, error) {
	attrs := []attribute.KeyValue{
		attribute.String("notification.student_number", studentNumber),
	}
	spanCtx, span := s.tracer.Start(ctx, "notifications.mark_read", trace.WithAttributes(attrs...))
	defer span.End()

	notification, err := s.repo.MarkRead(spanCtx, id, studentNumber)
	if err != nil {
		span.RecordError(err)
		return dto.NotificationResponse{}, err
	}

	return dto.NewNotificationResponse(notification), nil
}

func (s *notificationService) Subscribe(studentNumber string) (<-chan dto.NotificationResponse, func()) {
	channel := make(chan dto.NotificationResponse, notificationBufferSize)

	s.hub.attach(studentNumber, channel)
	observability.SSEClientsActive().Inc()

	cleanup := func() {
		s.hub.detach(studentNumber, channel)
		observability.SSEClientsActive().Dec()
	}

	return channel, cleanup
}

func (s *notificationService) fanOut(ctx context.Context, notification dto.NotificationResponse) error {
	event := reviewEvent{
		Node:           s.nodeID,
		NotificationID: notification.ID,
		StudentNumber:  notification.UserID,
		ApplicationID:  notification.ApplicationID,
		Decision:       notification.Type,
		Message:        notification.Message,
		DecidedAt:      notification.CreatedAt,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisStream != "" {
		if err := s.redis.Publish(ctx, s.redisStream, payload).Err(); err != nil {
			return err
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}

func (s *notificationService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisStream)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error().Err(err).Msg("notification redis subscription closed")
			return
		}
		s.handleEvent([]byte(msg.Payload))
	}
}

func (s *notificationService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.QueueSubscribe(s.natsSubject, "gradpush-notifications", func(msg *nats.Msg) {
		s.handleEvent(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats notifications subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain notification nats subscription")
		}
	}()
}

// handleEvent delivers a decision published on another node to this node's
// streams. Events this node published come back on the same channels and are
// dropped by the node check.
func (s *notificationService) handleEvent(payload []byte) {
	var event reviewEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		s.logger.Warn().Err(err).Msg("invalid review event payload")
		return
	}

	if event.Node == s.nodeID {
		return
	}
	if event.StudentNumber == "" {
		s.logger.Warn().Msg("review event without a student number dropped")
		return
	}

	notification := dto.NotificationResponse{
		ID:            event.NotificationID,
		UserID:        event.StudentNumber,
		ApplicationID: event.ApplicationID,
		Type:          event.Decision,
		Message:       event.Message,
		CreatedAt:     event.DecidedAt,
	}
	if notification.Type == "" {
		notification.Type = "generic"
	}

	observability.NotificationsPublishedTotal().WithLabelValues(notification.Type).Inc()
	s.hub.push(notification.UserID, notification)
}

func (h *studentStreamHub) attach(studentNumber string, ch chan dto.NotificationResponse) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.streams[studentNumber]; !exists {
		h.streams[studentNumber] = make(map[chan dto.NotificationResponse]struct{})
	}
	h.streams[studentNumber][ch] = struct{}{}
}

func (h *studentStreamHub) detach(studentNumber string, ch chan dto.NotificationResponse) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if streams, ok := h.streams[studentNumber]; ok {
		delete(streams, ch)
		close(ch)
		if len(streams) == 0 {
			delete(h.streams, studentNumber)
		}
	}
}

// push never blocks: a stream whose buffer is full misses the event and
// catches up through List.
func (h *studentStreamHub) push(studentNumber string, notification dto.NotificationResponse) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.streams[studentNumber] {
		select {
		case ch <- notification:
		default:
		}
	}
}
