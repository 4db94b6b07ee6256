package service

import (
	"context"
	"strings"
	"time"

	"cityreport_backend/internal/events"
	"cityreport_backend/internal/reports/domain"
	"cityreport_backend/internal/reports/ports"
	"cityreport_backend/internal/reports/repository"
	"cityreport_backend/internal/reports/transport"
	"cityreport_backend/platform/apperr"
	"cityreport_backend/platform/logger"

	"github.com/google/uuid"
)

// ReportStore is the persistence contract the lifecycle engine drives.
// *repository.Repository is the production implementation; tests substitute
// an in-memory store.
type ReportStore interface {
	Create(ctx context.Context, report *repository.Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Report, error)
	ListByStatus(ctx context.Context, status string) ([]repository.Report, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]repository.Report, error)
	ListByAssignee(ctx context.Context, assigneeID uuid.UUID) ([]repository.Report, error)
	UpdateCategory(ctx context.Context, id, categoryID uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.Status) error
	Reject(ctx context.Context, id uuid.UUID, reason string) error
	SetCoAssignee(ctx context.Context, id, maintainerID uuid.UUID) error
	AssignLeastLoaded(ctx context.Context, reportID, officeID uuid.UUID) (uuid.UUID, error)
}

// Service is the report lifecycle engine. It owns the state machine, the
// assignment routing, and the side effects each transition triggers.
type Service struct {
	store      ReportStore
	categories ports.CategoryDirectory
	users      ports.UserDirectory
	chats      ports.ChatProvisioner
	notifier   ports.NotificationEmitter
	signer     ports.ImageURLSigner
	eventBus   events.Bus
	log        *logger.Logger
}

// New creates a new report lifecycle service.
func New(
	store ReportStore,
	categories ports.CategoryDirectory,
	users ports.UserDirectory,
	chats ports.ChatProvisioner,
	notifier ports.NotificationEmitter,
	eventBus events.Bus,
	log *logger.Logger,
) *Service {
	return &Service{
		store:      store,
		categories: categories,
		users:      users,
		chats:      chats,
		notifier:   notifier,
		eventBus:   eventBus,
		log:        log,
	}
}

// SetImageSigner injects the optional image URL signer for report reads.
func (s *Service) SetImageSigner(signer ports.ImageURLSigner) {
	s.signer = signer
}

// Create files a new report on behalf of a citizen. The report starts in
// pending_approval with no assignee.
func (s *Service) Create(ctx context.Context, creatorID uuid.UUID, req transport.CreateReportRequest) (*transport.ReportResponse, error) {
	creator, err := s.users.FindByID(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if creator == nil {
		return nil, apperr.NotFound("user not found")
	}

	category, err := s.categories.FindByID(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperr.NotFound("category not found")
	}

	now := time.Now()
	report := &repository.Report{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		CategoryID:  req.CategoryID,
		Images:      req.Images,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Status:      string(domain.StatusPendingApproval),
		Anonymous:   req.Anonymous,
		CreatorID:   creatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Create(ctx, report); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.ReportCreated{
			BaseEvent:  events.NewBaseEvent(),
			ReportID:   report.ID,
			CreatorID:  creatorID,
			CategoryID: req.CategoryID,
			Anonymous:  req.Anonymous,
		})
	}

	resp := s.toResponse(ctx, report, true)
	return &resp, nil
}

// ListByStatus returns all reports in the given status for triage and staff
// views. Creator identity is withheld for anonymous reports.
func (s *Service) ListByStatus(ctx context.Context, status string) (*transport.ReportListResponse, error) {
	if !domain.Status(status).IsValid() {
		return nil, apperr.Validation("unknown report status")
	}

	items, err := s.store.ListByStatus(ctx, status)
	if err != nil {
		return nil, err
	}

	return s.toListResponse(ctx, items, false), nil
}

// ListMine returns the reports filed by the given user.
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID) (*transport.ReportListResponse, error) {
	items, err := s.store.ListByCreator(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.toListResponse(ctx, items, true), nil
}

// ListAssignedTo returns the reports currently assigned to the given staff
// member.
func (s *Service) ListAssignedTo(ctx context.Context, staffID uuid.UUID) (*transport.ReportListResponse, error) {
	items, err := s.store.ListByAssignee(ctx, staffID)
	if err != nil {
		return nil, err
	}

	return s.toListResponse(ctx, items, false), nil
}

// GetByID returns the creator-only detail view of a report.
func (s *Service) GetByID(ctx context.Context, reportID, requestorID uuid.UUID) (*transport.ReportResponse, error) {
	report, err := s.store.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.CreatorID != requestorID {
		return nil, apperr.Forbidden("only the report creator may view this report")
	}

	resp := s.toResponse(ctx, report, true)
	return &resp, nil
}

// UpdateCategory performs the administrative category correction. It never
// alters status or assignment and triggers no chats or notifications.
// Recategorization is blocked once the report reaches a terminal status.
func (s *Service) UpdateCategory(ctx context.Context, reportID, actorID uuid.UUID, req transport.UpdateCategoryRequest) (*transport.ReportResponse, error) {
	if err := s.requireTriageRole(ctx, actorID); err != nil {
		return nil, err
	}

	report, err := s.store.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if domain.Status(report.Status).IsTerminal() {
		return nil, apperr.Validation("cannot recategorize a closed report")
	}

	category, err := s.categories.FindByID(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperr.NotFound("category not found")
	}

	if err := s.store.UpdateCategory(ctx, reportID, req.CategoryID); err != nil {
		return nil, err
	}

	report.CategoryID = req.CategoryID
	resp := s.toResponse(ctx, report, false)
	return &resp, nil
}

// Decide triages a pending report: accept routes it to the least-loaded
// qualified staff member and provisions the citizen chat; reject records the
// mandatory reason. Only PRO and admin actors may decide.
func (s *Service) Decide(ctx context.Context, reportID, actorID uuid.UUID, req transport.DecisionRequest) (*transport.ReportResponse, error) {
	if err := s.requireTriageRole(ctx, actorID); err != nil {
		return nil, err
	}

	report, err := s.store.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}

	target := domain.Status(req.TargetStatus)
	current := domain.Status(report.Status)
	if !domain.CanTransition(current, target) {
		return nil, apperr.InvalidTransition(report.Status, req.TargetStatus)
	}

	switch target {
	case domain.StatusRejected:
		return s.reject(ctx, report, actorID, req.RejectionReason)
	case domain.StatusAssigned:
		return s.accept(ctx, report, actorID)
	default:
		return nil, apperr.InvalidTransition(report.Status, req.TargetStatus)
	}
}

func (s *Service) reject(ctx context.Context, report *repository.Report, actorID uuid.UUID, reason *string) (*transport.ReportResponse, error) {
	if reason == nil || strings.TrimSpace(*reason) == "" {
		return nil, apperr.Validation("a rejection reason is required")
	}
	trimmed := strings.TrimSpace(*reason)

	if err := s.store.Reject(ctx, report.ID, trimmed); err != nil {
		return nil, err
	}

	previous := report.Status
	report.Status = string(domain.StatusRejected)
	report.RejectionReason = &trimmed

	sideEffectErr := s.notifyStatusChange(ctx, report, previous)
	s.publishStatusChanged(ctx, report, previous, actorID)

	resp := s.toResponse(ctx, report, false)
	if sideEffectErr != nil {
		return &resp, sideEffectErr
	}
	return &resp, nil
}

func (s *Service) accept(ctx context.Context, report *repository.Report, actorID uuid.UUID) (*transport.ReportResponse, error) {
	category, err := s.categories.FindByID(ctx, report.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperr.NotFound("category not found")
	}
	if category.OfficeID == nil {
		return nil, apperr.RoutingUnavailable("category has no owning office")
	}

	assigneeID, err := s.store.AssignLeastLoaded(ctx, report.ID, *category.OfficeID)
	if err != nil {
		return nil, err
	}

	previous := report.Status
	report.Status = string(domain.StatusAssigned)
	report.AssigneeID = &assigneeID

	// Side effects run strictly after the committed assignment. Their
	// failures must not undo it.
	var sideEffects []string
	if _, err := s.chats.EnsureChat(ctx, report.ID, assigneeID, report.CreatorID, ports.ChatKindCitizenStaff); err != nil {
		s.logSideEffect(report.ID, "citizen_chat", err)
		sideEffects = append(sideEffects, "chat provisioning failed")
	}
	if err := s.notifyStatusChange(ctx, report, previous); err != nil {
		sideEffects = append(sideEffects, "notification emission failed")
	}

	s.publishStatusChanged(ctx, report, previous, actorID)

	resp := s.toResponse(ctx, report, false)
	if len(sideEffects) > 0 {
		return &resp, apperr.SideEffect(strings.Join(sideEffects, "; "), nil)
	}
	return &resp, nil
}

// UpdateStatus performs a staff-driven transition: start work, suspend,
// resume, or resolve. Only the report's current assignee may call it.
func (s *Service) UpdateStatus(ctx context.Context, reportID, actingStaffID uuid.UUID, req transport.UpdateStatusRequest) (*transport.ReportResponse, error) {
	report, err := s.store.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.AssigneeID == nil || *report.AssigneeID != actingStaffID {
		return nil, apperr.Forbidden("not assigned to report")
	}

	target := domain.Status(req.Status)
	current := domain.Status(report.Status)
	if !domain.IsStaffTransition(current, target) {
		return nil, apperr.InvalidTransition(report.Status, req.Status)
	}

	if err := s.store.UpdateStatus(ctx, reportID, current, target); err != nil {
		return nil, err
	}

	previous := report.Status
	report.Status = string(target)

	sideEffectErr := s.notifyStatusChange(ctx, report, previous)
	s.publishStatusChanged(ctx, report, previous, actingStaffID)

	resp := s.toResponse(ctx, report, false)
	if sideEffectErr != nil {
		return &resp, sideEffectErr
	}
	return &resp, nil
}

// AssignExternalMaintainer hands a report off to an external maintainer
// company representative. Only the current assignee may co-assign; the
// operation does not change status, and a later call with a different
// maintainer overwrites the previous one.
func (s *Service) AssignExternalMaintainer(ctx context.Context, reportID, actingStaffID, maintainerID uuid.UUID) (*transport.ReportResponse, error) {
	report, err := s.store.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.AssigneeID == nil || *report.AssigneeID != actingStaffID {
		return nil, apperr.Forbidden("not assigned to report")
	}

	maintainer, err := s.users.FindByID(ctx, maintainerID)
	if err != nil {
		return nil, err
	}
	if maintainer == nil {
		return nil, apperr.NotFound("user not found")
	}
	if maintainer.Type != ports.UserTypeExternalMaintainer {
		return nil, apperr.Validation("target user is not an external maintainer")
	}

	if err := s.store.SetCoAssignee(ctx, reportID, maintainerID); err != nil {
		return nil, err
	}

	report.CoAssigneeID = &maintainerID

	var sideEffectErr *apperr.Error
	if _, err := s.chats.EnsureChat(ctx, report.ID, actingStaffID, maintainerID, ports.ChatKindMaintainerStaff); err != nil {
		s.logSideEffect(report.ID, "maintainer_chat", err)
		sideEffectErr = apperr.SideEffect("chat provisioning failed", err)
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.ReportCoAssigned{
			BaseEvent:    events.NewBaseEvent(),
			ReportID:     report.ID,
			AssigneeID:   actingStaffID,
			MaintainerID: maintainerID,
		})
	}

	resp := s.toResponse(ctx, report, false)
	if sideEffectErr != nil {
		return &resp, sideEffectErr
	}
	return &resp, nil
}

// requireTriageRole resolves the actor and checks for PRO/admin privileges.
func (s *Service) requireTriageRole(ctx context.Context, actorID uuid.UUID) error {
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return err
	}
	if actor == nil {
		return apperr.NotFound("user not found")
	}
	if !actor.CanTriage() {
		return apperr.Forbidden("triage requires a public relations or admin account")
	}
	return nil
}

// notifyStatusChange emits the creator notification for a committed
// transition. Failures are logged and surfaced as side effect errors, never
// propagated as operation failures.
func (s *Service) notifyStatusChange(ctx context.Context, report *repository.Report, previous string) *apperr.Error {
	err := s.notifier.EmitStatusChange(ctx, report.CreatorID, report.ID, previous, report.Status)
	if err == nil {
		return nil
	}
	s.logSideEffect(report.ID, "status_notification", err)
	return apperr.SideEffect("notification emission failed", err)
}

func (s *Service) publishStatusChanged(ctx context.Context, report *repository.Report, previous string, actorID uuid.UUID) {
	if s.eventBus == nil {
		return
	}
	s.eventBus.Publish(ctx, events.ReportStatusChanged{
		BaseEvent:      events.NewBaseEvent(),
		ReportID:       report.ID,
		CreatorID:      report.CreatorID,
		AssigneeID:     report.AssigneeID,
		PreviousStatus: previous,
		NewStatus:      report.Status,
		ActorID:        actorID,
	})
}

func (s *Service) logSideEffect(reportID uuid.UUID, effect string, err error) {
	if s.log != nil {
		s.log.SideEffectFailure(reportID.String(), effect, err)
	}
}

// toResponse maps a stored report to its transport view. Creator identity is
// withheld for anonymous reports unless the viewer is the creator.
func (s *Service) toResponse(ctx context.Context, report *repository.Report, includeCreator bool) transport.ReportResponse {
	images := make([]transport.ReportImage, 0, len(report.Images))
	for _, key := range report.Images {
		img := transport.ReportImage{Key: key}
		if s.signer != nil {
			if url, err := s.signer.SignedURL(ctx, key); err == nil {
				img.URL = url
			}
		}
		images = append(images, img)
	}

	resp := transport.ReportResponse{
		ID:              report.ID,
		Title:           report.Title,
		Description:     report.Description,
		CategoryID:      report.CategoryID,
		Images:          images,
		Latitude:        report.Latitude,
		Longitude:       report.Longitude,
		Status:          report.Status,
		Anonymous:       report.Anonymous,
		RejectionReason: report.RejectionReason,
		AssigneeID:      report.AssigneeID,
		CoAssigneeID:    report.CoAssigneeID,
		CreatedAt:       report.CreatedAt,
	}

	if includeCreator || !report.Anonymous {
		creatorID := report.CreatorID
		resp.CreatorID = &creatorID
	}

	return resp
}

func (s *Service) toListResponse(ctx context.Context, items []repository.Report, includeCreator bool) *transport.ReportListResponse {
	responses := make([]transport.ReportResponse, len(items))
	for i := range items {
		responses[i] = s.toResponse(ctx, &items[i], includeCreator)
	}
	return &transport.ReportListResponse{Items: responses, Total: len(responses)}
}
