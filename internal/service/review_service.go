package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/gradpush/recommend-api/internal/dto"
	"github.com/gradpush/recommend-api/internal/models"
	"github.com/gradpush/recommend-api/internal/repository"
)

// ErrApplicationNotFound indicates the application was not located.
var ErrApplicationNotFound = errors.New("application not found")

// ErrApplicationNotPending indicates a review decision on an application that
// is not awaiting review.
var ErrApplicationNotPending = errors.New("application is not pending review")

// ErrApplicationNotRejected indicates a resubmission of an application that
// was never rejected.
var ErrApplicationNotRejected = errors.New("only rejected applications can be resubmitted")

// Notification types emitted by review decisions.
const (
	NotificationTypeApproved = "application_approved"
	NotificationTypeRejected = "application_rejected"
)

// ReviewService drives the application review workflow. Review decisions
// commit first; the statistics refresh runs afterwards and its failure is
// reported as a warning, never rolled into the decision's transaction.
type ReviewService interface {
	Approve(ctx context.Context, applicationID uint, payload dto.ApproveApplicationRequest, actor ActivityActor) (dto.ReviewDecisionResponse, error)
	Reject(ctx context.Context, applicationID uint, payload dto.RejectApplicationRequest, actor ActivityActor) (dto.ReviewDecisionResponse, error)
	Resubmit(ctx context.Context, applicationID uint, studentNumber string) (dto.ApplicationResponse, error)
	BatchReview(ctx context.Context, payload dto.BatchReviewRequest, actor ActivityActor) (dto.BatchReviewResponse, error)
}

type reviewService struct {
	applications  repository.ApplicationRepository
	statistics    StatisticsService
	notifications NotificationService
	activity      ActivityRecorder
	validator     *validator.Validate
	sanitizer     *bluemonday.Policy
	logger        zerolog.Logger
	now           func() time.Time
}

// NewReviewService constructs the review workflow service.
func NewReviewService(
	applications repository.ApplicationRepository,
	statistics StatisticsService,
	notifications NotificationService,
	activity ActivityRecorder,
	validate *validator.Validate,
	logger zerolog.Logger,
) ReviewService {
	return &reviewService{
		applications:  applications,
		statistics:    statistics,
		notifications: notifications,
		activity:      activity,
		validator:     validate,
		sanitizer:     bluemonday.StrictPolicy(),
		logger:        logger.With().Str("component", "review_service").Logger(),
		now:           time.Now,
	}
}

func (s *reviewService) Approve(ctx context.Context, applicationID uint, payload dto.ApproveApplicationRequest, actor ActivityActor) (dto.ReviewDecisionResponse, error) {
	tracer := otel.Tracer("github.com/gradpush/recommend-api/internal/service/review")
	ctx, span := tracer.Start(ctx, "review.approve")
	span.SetAttributes(
		attribute.Int64("review.application_id", int64(applicationID)),
		attribute.Int64("review.actor_id", int64(actor.ID)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.ReviewDecisionResponse{}, err
	}

	application, err := s.pendingApplication(ctx, applicationID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "application_unavailable")
		return dto.ReviewDecisionResponse{}, err
	}

	finalScore := payload.FinalScore
	application.Status = models.ApplicationStatusApproved
	application.FinalScore = &finalScore
	application.RuleID = payload.RuleID
	application.ReviewComment = s.cleanComment(payload.Comment)
	application.ReviewedBy = actor.Name
	reviewedAt := s.now()
	application.ReviewedAt = &reviewedAt

	if err := s.applications.Update(ctx, &application); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "application_update_failed")
		return dto.ReviewDecisionResponse{}, err
	}

	response := dto.ReviewDecisionResponse{Application: dto.NewApplicationResponse(application)}
	response.RecomputeWarning = s.recompute(ctx, application.StudentNumber)

	s.recordDecision(ctx, actor, models.ActionApplicationApproved, application, &finalScore)
	s.notify(ctx, application, NotificationTypeApproved,
		fmt.Sprintf("您的申请「%s」已通过审核，得分 %.4g 分", application.ProjectName, finalScore))

	span.SetAttributes(attribute.Float64("review.final_score", finalScore))

	return response, nil
}

func (s *reviewService) Reject(ctx context.Context, applicationID uint, payload dto.RejectApplicationRequest, actor ActivityActor) (dto.ReviewDecisionResponse, error) {
	tracer := otel.Tracer("github.com/gradpush/recommend-api/internal/service/review")
	ctx, span := tracer.Start(ctx, "review.reject")
	span.SetAttributes(
		attribute.Int64("review.application_id", int64(applicationID)),
		attribute.Int64("review.actor_id", int64(actor.ID)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.ReviewDecisionResponse{}, err
	}

	application, err := s.pendingApplication(ctx, applicationID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "application_unavailable")
		return dto.ReviewDecisionResponse{}, err
	}

	zero := 0.0
	application.Status = models.ApplicationStatusRejected
	application.FinalScore = &zero
	application.ReviewComment = s.cleanComment(payload.Comment)
	application.ReviewedBy = actor.Name
	reviewedAt := s.now()
	application.ReviewedAt = &reviewedAt

	if err := s.applications.Update(ctx, &application); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "application_update_failed")
		return dto.ReviewDecisionResponse{}, err
	}

	response := dto.ReviewDecisionResponse{Application: dto.NewApplicationResponse(application)}
	response.RecomputeWarning = s.recompute(ctx, application.StudentNumber)

	s.recordDecision(ctx, actor, models.ActionApplicationRejected, application, nil)
	s.notify(ctx, application, NotificationTypeRejected,
		fmt.Sprintf("您的申请「%s」未通过审核：%s", application.ProjectName, application.ReviewComment))

	return response, nil
}

// Resubmit returns a rejected application to the review queue, clearing every
// trace of the previous decision.
func (s *reviewService) Resubmit(ctx context.Context, applicationID uint, studentNumber string) (dto.ApplicationResponse, error) {
	application, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ApplicationResponse{}, ErrApplicationNotFound
		}
		return dto.ApplicationResponse{}, err
	}
	if application.StudentNumber != studentNumber {
		return dto.ApplicationResponse{}, ErrApplicationNotFound
	}
	if application.Status != models.ApplicationStatusRejected {
		return dto.ApplicationResponse{}, ErrApplicationNotRejected
	}

	application.Status = models.ApplicationStatusPending
	application.FinalScore = nil
	application.RuleID = nil
	application.ReviewComment = ""
	application.ReviewedBy = ""
	application.ReviewedAt = nil
	application.AppliedAt = s.now()

	if err := s.applications.Update(ctx, &application); err != nil {
		return dto.ApplicationResponse{}, err
	}

	return dto.NewApplicationResponse(application), nil
}

// BatchReview applies one decision to many applications. Eligible decisions
// commit atomically; per-application eligibility failures and per-student
// recompute failures are collected, never fatal for the rest of the batch.
func (s *reviewService) BatchReview(ctx context.Context, payload dto.BatchReviewRequest, actor ActivityActor) (dto.BatchReviewResponse, error) {
	tracer := otel.Tracer("github.com/gradpush/recommend-api/internal/service/review")
	ctx, span := tracer.Start(ctx, "review.batch")
	span.SetAttributes(
		attribute.Int("review.batch_size", len(payload.ApplicationIDs)),
		attribute.String("review.action", payload.Action),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.BatchReviewResponse{}, err
	}

	applications, err := s.applications.ListByIDs(ctx, payload.ApplicationIDs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "application_lookup_failed")
		return dto.BatchReviewResponse{}, err
	}

	byID := make(map[uint]models.Application, len(applications))
	for _, application := range applications {
		byID[application.ID] = application
	}

	comment := s.cleanComment(payload.Comment)
	reviewedAt := s.now()
	result := dto.BatchReviewResponse{Failures: []dto.BatchReviewFailure{}}

	var reviewed []models.Application
	for _, id := range payload.ApplicationIDs {
		application, ok := byID[id]
		if !ok {
			result.Failures = append(result.Failures, dto.BatchReviewFailure{ApplicationID: id, Reason: "application not found"})
			continue
		}
		if application.Status != models.ApplicationStatusPending {
			result.Failures = append(result.Failures, dto.BatchReviewFailure{ApplicationID: id, Reason: "application is not pending review"})
			continue
		}

		switch payload.Action {
		case "approve":
			score, ok := payload.Scores[id]
			if !ok {
				result.Failures = append(result.Failures, dto.BatchReviewFailure{ApplicationID: id, Reason: "missing final score"})
				continue
			}
			finalScore := score
			application.Status = models.ApplicationStatusApproved
			application.FinalScore = &finalScore
		case "reject":
			zero := 0.0
			application.Status = models.ApplicationStatusRejected
			application.FinalScore = &zero
		}

		application.ReviewComment = comment
		application.ReviewedBy = actor.Name
		at := reviewedAt
		application.ReviewedAt = &at
		reviewed = append(reviewed, application)
	}

	if len(reviewed) > 0 {
		if err := s.applications.UpdateAll(ctx, reviewed); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "batch_update_failed")
			return dto.BatchReviewResponse{}, err
		}
	}
	result.Processed = len(reviewed)

	recomputed := map[string]struct{}{}
	for _, application := range reviewed {
		if _, done := recomputed[application.StudentNumber]; done {
			continue
		}
		recomputed[application.StudentNumber] = struct{}{}
		if warning := s.recompute(ctx, application.StudentNumber); warning != "" {
			result.RecomputeWarnings = append(result.RecomputeWarnings, warning)
		}
	}

	notificationType := NotificationTypeApproved
	messageTemplate := "您的申请「%s」已通过审核"
	if payload.Action == "reject" {
		notificationType = NotificationTypeRejected
		messageTemplate = "您的申请「%s」未通过审核"
	}
	for _, application := range reviewed {
		s.notify(ctx, application, notificationType, fmt.Sprintf(messageTemplate, application.ProjectName))
	}

	if s.activity != nil {
		_, _ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     models.ActionBatchReviewCompleted,
			EntityType: "application",
			Metadata: map[string]interface{}{
				"action":    payload.Action,
				"processed": result.Processed,
				"failed":    len(result.Failures),
			},
		})
	}

	span.SetAttributes(
		attribute.Int("review.processed", result.Processed),
		attribute.Int("review.failed", len(result.Failures)),
	)

	return result, nil
}

func (s *reviewService) pendingApplication(ctx context.Context, applicationID uint) (models.Application, error) {
	application, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Application{}, ErrApplicationNotFound
		}
		return models.Application{}, err
	}
	if application.Status != models.ApplicationStatusPending {
		return models.Application{}, ErrApplicationNotPending
	}

	return application, nil
}

// recompute refreshes the student's statistics after a committed decision.
// The decision stands even when this fails; the caller receives the failure
// as a warning string.
func (s *reviewService) recompute(ctx context.Context, studentNumber string) string {
	if s.statistics == nil {
		return ""
	}
	if _, err := s.statistics.Recompute(ctx, studentNumber); err != nil {
		s.logger.Warn().Err(err).Str("student_number", studentNumber).Msg("statistics recompute failed after review decision")
		return fmt.Sprintf("statistics update failed for student %s: %v", studentNumber, err)
	}
	return ""
}

func (s *reviewService) recordDecision(ctx context.Context, actor ActivityActor, action string, application models.Application, finalScore *float64) {
	if s.activity == nil {
		return
	}

	metadata := map[string]interface{}{
		"application_id": application.ID,
		"student_number": application.StudentNumber,
	}
	if finalScore != nil {
		metadata["final_score"] = *finalScore
	}

	_, _ = s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: "application",
		EntityID:   &application.ID,
		Metadata:   metadata,
	})
}

func (s *reviewService) notify(ctx context.Context, application models.Application, notificationType, message string) {
	if s.notifications == nil {
		return
	}

	applicationID := application.ID
	_, err := s.notifications.Publish(ctx, dto.NotificationCreateRequest{
		UserID:        application.StudentNumber,
		ApplicationID: &applicationID,
		Type:          notificationType,
		Message:       message,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("student_number", application.StudentNumber).Msg("failed to publish review notification")
	}
}

func (s *reviewService) cleanComment(comment string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(comment))
}
