package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"cityreport_backend/internal/reports/domain"
	"cityreport_backend/internal/reports/ports"
	"cityreport_backend/internal/reports/repository"
	"cityreport_backend/internal/reports/transport"
	"cityreport_backend/platform/apperr"

	"github.com/google/uuid"
)

// fakeStore is an in-memory ReportStore. AssignLeastLoaded mirrors the
// production routing rule: lowest open-report count wins, ties broken by
// lowest staff id.
type fakeStore struct {
	reports     map[uuid.UUID]*repository.Report
	officeStaff map[uuid.UUID][]uuid.UUID
	staffLoad   map[uuid.UUID]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		reports:     make(map[uuid.UUID]*repository.Report),
		officeStaff: make(map[uuid.UUID][]uuid.UUID),
		staffLoad:   make(map[uuid.UUID]int),
	}
}

func (f *fakeStore) Create(_ context.Context, report *repository.Report) error {
	clone := *report
	f.reports[report.ID] = &clone
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*repository.Report, error) {
	r, ok := f.reports[id]
	if !ok {
		return nil, apperr.NotFound("report not found")
	}
	clone := *r
	return &clone, nil
}

func (f *fakeStore) ListByStatus(_ context.Context, status string) ([]repository.Report, error) {
	var out []repository.Report
	for _, r := range f.reports {
		if r.Status == status {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByCreator(_ context.Context, creatorID uuid.UUID) ([]repository.Report, error) {
	var out []repository.Report
	for _, r := range f.reports {
		if r.CreatorID == creatorID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByAssignee(_ context.Context, assigneeID uuid.UUID) ([]repository.Report, error) {
	var out []repository.Report
	for _, r := range f.reports {
		if r.AssigneeID != nil && *r.AssigneeID == assigneeID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateCategory(_ context.Context, id, categoryID uuid.UUID) error {
	r, ok := f.reports[id]
	if !ok {
		return apperr.NotFound("report not found")
	}
	r.CategoryID = categoryID
	return nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id uuid.UUID, from, to domain.Status) error {
	r, ok := f.reports[id]
	if !ok {
		return apperr.NotFound("report not found")
	}
	if r.Status != string(from) {
		return apperr.Conflict("report was modified concurrently")
	}
	r.Status = string(to)
	return nil
}

func (f *fakeStore) Reject(_ context.Context, id uuid.UUID, reason string) error {
	r, ok := f.reports[id]
	if !ok {
		return apperr.NotFound("report not found")
	}
	if r.Status != string(domain.StatusPendingApproval) {
		return apperr.Conflict("report was modified concurrently")
	}
	r.Status = string(domain.StatusRejected)
	r.RejectionReason = &reason
	return nil
}

func (f *fakeStore) SetCoAssignee(_ context.Context, id, maintainerID uuid.UUID) error {
	r, ok := f.reports[id]
	if !ok {
		return apperr.NotFound("report not found")
	}
	r.CoAssigneeID = &maintainerID
	return nil
}

func (f *fakeStore) AssignLeastLoaded(_ context.Context, reportID, officeID uuid.UUID) (uuid.UUID, error) {
	staff := append([]uuid.UUID(nil), f.officeStaff[officeID]...)
	if len(staff) == 0 {
		return uuid.Nil, apperr.RoutingUnavailable("no staff available for office")
	}
	sort.Slice(staff, func(i, j int) bool {
		li, lj := f.staffLoad[staff[i]], f.staffLoad[staff[j]]
		if li != lj {
			return li < lj
		}
		return staff[i].String() < staff[j].String()
	})
	chosen := staff[0]

	r, ok := f.reports[reportID]
	if !ok {
		return uuid.Nil, apperr.NotFound("report not found")
	}
	if r.Status != string(domain.StatusPendingApproval) {
		return uuid.Nil, apperr.Conflict("report was modified concurrently")
	}
	r.Status = string(domain.StatusAssigned)
	r.AssigneeID = &chosen
	f.staffLoad[chosen]++
	return chosen, nil
}

type fakeCategories struct {
	categories map[uuid.UUID]*ports.Category
}

func (f *fakeCategories) FindByID(_ context.Context, id uuid.UUID) (*ports.Category, error) {
	return f.categories[id], nil
}

type fakeUsers struct {
	users map[uuid.UUID]*ports.User
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*ports.User, error) {
	return f.users[id], nil
}

type chatCall struct {
	reportID uuid.UUID
	staffID  uuid.UUID
	secondID uuid.UUID
	kind     ports.ChatKind
}

type fakeChats struct {
	calls    []chatCall
	chats    map[chatCall]*ports.Chat
	failWith error
}

func newFakeChats() *fakeChats {
	return &fakeChats{chats: make(map[chatCall]*ports.Chat)}
}

func (f *fakeChats) EnsureChat(_ context.Context, reportID, staffID, secondID uuid.UUID, kind ports.ChatKind) (*ports.Chat, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	call := chatCall{reportID: reportID, staffID: staffID, secondID: secondID, kind: kind}
	f.calls = append(f.calls, call)
	if existing, ok := f.chats[call]; ok {
		return existing, nil
	}
	chat := &ports.Chat{
		ID:       uuid.New(),
		ReportID: reportID,
		StaffID:  staffID,
		SecondID: secondID,
		Kind:     kind,
	}
	f.chats[call] = chat
	return chat, nil
}

type notification struct {
	targetUserID   uuid.UUID
	reportID       uuid.UUID
	previousStatus string
	newStatus      string
}

type fakeNotifier struct {
	emitted  []notification
	failWith error
}

func (f *fakeNotifier) EmitStatusChange(_ context.Context, targetUserID, reportID uuid.UUID, previousStatus, newStatus string) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.emitted = append(f.emitted, notification{
		targetUserID:   targetUserID,
		reportID:       reportID,
		previousStatus: previousStatus,
		newStatus:      newStatus,
	})
	return nil
}

type fixture struct {
	svc        *Service
	store      *fakeStore
	categories *fakeCategories
	users      *fakeUsers
	chats      *fakeChats
	notifier   *fakeNotifier

	citizenID    uuid.UUID
	proID        uuid.UUID
	adminID      uuid.UUID
	staffLowID   uuid.UUID
	staffHighID  uuid.UUID
	maintainerID uuid.UUID
	officeID     uuid.UUID
	categoryID   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:      newFakeStore(),
		categories: &fakeCategories{categories: make(map[uuid.UUID]*ports.Category)},
		users:      &fakeUsers{users: make(map[uuid.UUID]*ports.User)},
		chats:      newFakeChats(),
		notifier:   &fakeNotifier{},
		citizenID:  uuid.New(),
		proID:      uuid.New(),
		adminID:    uuid.New(),
		officeID:   uuid.New(),
		categoryID: uuid.New(),
	}

	// Fixed ids so the tie-break order is deterministic.
	f.staffLowID = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	f.staffHighID = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	f.maintainerID = uuid.New()

	companyID := uuid.New()
	f.users.users[f.citizenID] = &ports.User{ID: f.citizenID, Type: ports.UserTypeCitizen}
	f.users.users[f.proID] = &ports.User{ID: f.proID, Type: ports.UserTypePRO}
	f.users.users[f.adminID] = &ports.User{ID: f.adminID, Type: ports.UserTypeAdmin}
	f.users.users[f.staffLowID] = &ports.User{ID: f.staffLowID, Type: ports.UserTypeTechnicalStaff}
	f.users.users[f.staffHighID] = &ports.User{ID: f.staffHighID, Type: ports.UserTypeTechnicalStaff}
	f.users.users[f.maintainerID] = &ports.User{ID: f.maintainerID, Type: ports.UserTypeExternalMaintainer, CompanyID: &companyID}

	f.categories.categories[f.categoryID] = &ports.Category{
		ID:       f.categoryID,
		Name:     "Roads",
		OfficeID: &f.officeID,
	}
	f.store.officeStaff[f.officeID] = []uuid.UUID{f.staffHighID, f.staffLowID}

	f.svc = New(f.store, f.categories, f.users, f.chats, f.notifier, nil, nil)
	return f
}

func (f *fixture) createReport(t *testing.T, anonymous bool) uuid.UUID {
	t.Helper()
	resp, err := f.svc.Create(context.Background(), f.citizenID, transport.CreateReportRequest{
		Title:       "Pothole on Main Street",
		Description: "Deep pothole near the crossing",
		CategoryID:  f.categoryID,
		Images:      []string{"reports/img-1.jpg"},
		Latitude:    45.07,
		Longitude:   7.68,
		Anonymous:   anonymous,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return resp.ID
}

func (f *fixture) accept(t *testing.T, reportID uuid.UUID) *transport.ReportResponse {
	t.Helper()
	resp, err := f.svc.Decide(context.Background(), reportID, f.proID, transport.DecisionRequest{TargetStatus: "assigned"})
	if err != nil {
		t.Fatalf("Decide(assigned): %v", err)
	}
	return resp
}

func assertKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error of kind %v, got nil", kind)
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperr.Error, got %T: %v", err, err)
	}
	if appErr.Kind != kind {
		t.Fatalf("expected kind %v, got %v (%v)", kind, appErr.Kind, appErr)
	}
}

func TestCreateStartsPendingWithoutAssignee(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Create(context.Background(), f.citizenID, transport.CreateReportRequest{
		Title:       "Broken streetlight",
		Description: "Light flickers all night",
		CategoryID:  f.categoryID,
		Images:      []string{"reports/a.jpg", "reports/b.jpg"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if resp.Status != string(domain.StatusPendingApproval) {
		t.Errorf("status = %q, want %q", resp.Status, domain.StatusPendingApproval)
	}
	if resp.AssigneeID != nil {
		t.Errorf("new report must not have an assignee, got %v", resp.AssigneeID)
	}
	if len(f.notifier.emitted) != 0 {
		t.Errorf("creation must not emit notifications, got %d", len(f.notifier.emitted))
	}
	if len(f.chats.calls) != 0 {
		t.Errorf("creation must not provision chats, got %d", len(f.chats.calls))
	}
}

func TestCreateUnknownCategory(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.citizenID, transport.CreateReportRequest{
		Title:       "Pothole",
		Description: "Deep",
		CategoryID:  uuid.New(),
		Images:      []string{"reports/a.jpg"},
	})
	assertKind(t, err, apperr.KindNotFound)
}

func TestAcceptRoutesToLeastLoadedStaff(t *testing.T) {
	f := newFixture(t)
	f.store.staffLoad[f.staffLowID] = 1
	f.store.staffLoad[f.staffHighID] = 3

	reportID := f.createReport(t, false)
	resp := f.accept(t, reportID)

	if resp.Status != string(domain.StatusAssigned) {
		t.Fatalf("status = %q, want assigned", resp.Status)
	}
	if resp.AssigneeID == nil || *resp.AssigneeID != f.staffLowID {
		t.Errorf("assignee = %v, want least-loaded %v", resp.AssigneeID, f.staffLowID)
	}
}

func TestAcceptTieBreaksOnLowestStaffID(t *testing.T) {
	f := newFixture(t)
	f.store.staffLoad[f.staffLowID] = 2
	f.store.staffLoad[f.staffHighID] = 2

	reportID := f.createReport(t, false)
	resp := f.accept(t, reportID)

	if resp.AssigneeID == nil || *resp.AssigneeID != f.staffLowID {
		t.Errorf("assignee = %v, want tie-break winner %v", resp.AssigneeID, f.staffLowID)
	}
}

func TestAcceptProvisionsCitizenChatAndNotifies(t *testing.T) {
	f := newFixture(t)

	reportID := f.createReport(t, false)
	f.accept(t, reportID)

	if len(f.chats.calls) != 1 {
		t.Fatalf("chat calls = %d, want 1", len(f.chats.calls))
	}
	call := f.chats.calls[0]
	if call.kind != ports.ChatKindCitizenStaff {
		t.Errorf("chat kind = %q, want %q", call.kind, ports.ChatKindCitizenStaff)
	}
	if call.secondID != f.citizenID {
		t.Errorf("chat second participant = %v, want creator %v", call.secondID, f.citizenID)
	}

	if len(f.notifier.emitted) != 1 {
		t.Fatalf("notifications = %d, want 1", len(f.notifier.emitted))
	}
	n := f.notifier.emitted[0]
	if n.targetUserID != f.citizenID {
		t.Errorf("notification target = %v, want creator %v", n.targetUserID, f.citizenID)
	}
	if n.previousStatus != string(domain.StatusPendingApproval) || n.newStatus != string(domain.StatusAssigned) {
		t.Errorf("notification transition = %q -> %q, want pending_approval -> assigned", n.previousStatus, n.newStatus)
	}
}

func TestAcceptWithoutOfficeIsRoutingUnavailable(t *testing.T) {
	f := newFixture(t)
	f.categories.categories[f.categoryID].OfficeID = nil

	reportID := f.createReport(t, false)
	_, err := f.svc.Decide(context.Background(), reportID, f.proID, transport.DecisionRequest{TargetStatus: "assigned"})
	assertKind(t, err, apperr.KindRoutingUnavailable)

	stored, _ := f.store.GetByID(context.Background(), reportID)
	if stored.Status != string(domain.StatusPendingApproval) {
		t.Errorf("failed routing must leave report pending, got %q", stored.Status)
	}
}

func TestAcceptWithoutStaffIsRoutingUnavailable(t *testing.T) {
	f := newFixture(t)
	f.store.officeStaff[f.officeID] = nil

	reportID := f.createReport(t, false)
	_, err := f.svc.Decide(context.Background(), reportID, f.proID, transport.DecisionRequest{TargetStatus: "assigned"})
	assertKind(t, err, apperr.KindRoutingUnavailable)
}

func TestDecideRequiresTriageRole(t *testing.T) {
	f := newFixture(t)
	reportID := f.createReport(t, false)

	for _, actorID := range []uuid.UUID{f.citizenID, f.staffLowID, f.maintainerID} {
		_, err := f.svc.Decide(context.Background(), reportID, actorID, transport.DecisionRequest{TargetStatus: "assigned"})
		assertKind(t, err, apperr.KindForbidden)
	}

	stored, _ := f.store.GetByID(context.Background(), reportID)
	if stored.Status != string(domain.StatusPendingApproval) {
		t.Errorf("forbidden decision must not change status, got %q", stored.Status)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	f := newFixture(t)
	reportID := f.createReport(t, false)

	empty := "   "
	cases := []struct {
		name   string
		reason *string
	}{
		{"missing", nil},
		{"blank", &empty},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Decide(context.Background(), reportID, f.proID, transport.DecisionRequest{
				TargetStatus:    "rejected",
				RejectionReason: tc.reason,
			})
			assertKind(t, err, apperr.KindValidation)

			stored, _ := f.store.GetByID(context.Background(), reportID)
			if stored.Status != string(domain.StatusPendingApproval) {
				t.Errorf("invalid rejection must not change status, got %q", stored.Status)
			}
		})
	}
}

func TestRejectPersistsReasonAndNotifies(t *testing.T) {
	f := newFixture(t)
	reportID := f.createReport(t, false)

	reason := "duplicate of an existing report"
	resp, err := f.svc.Decide(context.Background(), reportID, f.adminID, transport.DecisionRequest{
		TargetStatus:    "rejected",
		RejectionReason: &reason,
	})
	if err != nil {
		t.Fatalf("Decide(rejected): %v", err)
	}

	if resp.Status != string(domain.StatusRejected) {
		t.Errorf("status = %q, want rejected", resp.Status)
	}
	if resp.RejectionReason == nil || *resp.RejectionReason != reason {
		t.Errorf("rejection reason = %v, want %q", resp.RejectionReason, reason)
	}
	if len(f.notifier.emitted) != 1 || f.notifier.emitted[0].newStatus != string(domain.StatusRejected) {
		t.Errorf("expected one rejection notification, got %+v", f.notifier.emitted)
	}
	if len(f.chats.calls) != 0 {
		t.Errorf("rejection must not provision chats, got %d", len(f.chats.calls))
	}
}

func TestDecideOnNonPendingIsInvalidTransition(t *testing.T) {
	f := newFixture(t)
	reportID := f.createReport(t, false)
	f.accept(t, reportID)

	_, err := f.svc.Decide(context.Background(), reportID, f.proID, transport.DecisionRequest{TargetStatus: "assigned"})
	assertKind(t, err, apperr.KindInvalidTransition)
}

func TestUpdateStatusOnlyByAssignee(t *testing.T) {
	f := newFixture(t)
	reportID := f.createReport(t, false)
	f.accept(t, reportID)

	_, err := f.svc.UpdateStatus(context.Background(), reportID, f.staffHighID, transport.UpdateStatusRequest{Status: "in_progress"})
	assertKind(t, err, apperr.KindForbidden)
}

func TestUpdateStatusRejectsIllegalTransitions(t *testing.T) {
	f := newFixture(t)
	reportID := f.createReport(t, false)
	resp := f.accept(t, reportID)
	assignee := *resp.AssigneeID

	// Resolving straight from assigned skips in_progress.
	_, err := f.svc.UpdateStatus(context.Background(), reportID, assignee, transport.UpdateStatusRequest{Status: "resolved"})
	assertKind(t, err, apperr.KindInvalidTransition)

	_, err = f.svc.UpdateStatus(context.Background(), reportID, assignee, transport.UpdateStatusRequest{Status: "suspended"})
	assertKind(t, err, apperr.KindInvalidTransition)
}

func TestUpdateStatusNotifiesCreator(t *testing.T) {
	f := newFixture(t)
	reportID := f.createReport(t, false)
	resp := f.accept(t, reportID)
	assignee := *resp.AssigneeID
	f.notifier.emitted = nil

	if _, err := f.svc.UpdateStatus(context.Background(), reportID, assignee, transport.UpdateStatusRequest{Status: "in_progress"}); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	if len(f.notifier.emitted) != 1 {
		t.Fatalf("notifications = %d, want 1", len(f.notifier.emitted))
	}
	n := f.notifier.emitted[0]
	if n.targetUserID != f.citizenID || n.newStatus != string(domain.StatusInProgress) {
		t.Errorf("unexpected notification %+v", n)
	}
}

func TestResolvedIsTerminal(t *testing.T) {
	f := newFixture(t)
	reportID := f.createReport(t, false)
	resp := f.accept(t, reportID)
	assignee := *resp.AssigneeID

	mustUpdate := func(status string) {
		t.Helper()
		if _, err := f.svc.UpdateStatus(context.Background(), reportID, assignee, transport.UpdateStatusRequest{Status: status}); err != nil {
			t.Fatalf("UpdateStatus(%s): %v", status, err)
		}
	}
	mustUpdate("in_progress")
	mustUpdate("resolved")

	_, err := f.svc.UpdateStatus(context.Background(), reportID, assignee, transport.UpdateStatusRequest{Status: "in_progress"})
	assertKind(t, err, apperr.KindInvalidTransition)
}

func TestSuspendAndResume(t *testing.T) {
	f := newFixture(t)
	reportID := f.createReport(t, false)
	resp := f.accept(t, reportID)
	assignee := *resp.AssigneeID

	steps := []string{"in_progress", "suspended", "in_progress", "resolved"}
	for _, status := range steps {
		if _, err := f.svc.UpdateStatus(context.Background(), reportID, assignee, transport.UpdateStatusRequest{Status: status}); err != nil {
			t.Fatalf("UpdateStatus(%s): %v", status, err)
		}
	}

	stored, _ := f.store.GetByID(context.Background(), reportID)
	if stored.Status != string(domain.StatusResolved) {
		t.Errorf("final status = %q, want resolved", stored.Status)
	}
}

func TestNotificationFailureIsPartialSuccess(t *testing.T) {
	f := newFixture(t)
	reportID := f.createReport(t, false)
	resp := f.accept(t, reportID)
	assignee := *resp.AssigneeID

	f.notifier.failWith = errors.New("broker unavailable")

	updated, err := f.svc.UpdateStatus(context.Background(), reportID, assignee, transport.UpdateStatusRequest{Status: "in_progress"})
	assertKind(t, err, apperr.KindSideEffect)
	if updated == nil {
		t.Fatal("side effect failure must still return the committed report")
	}
	if updated.Status != string(domain.StatusInProgress) {
		t.Errorf("status = %q, want in_progress despite notification failure", updated.Status)
	}

	stored, _ := f.store.GetByID(context.Background(), reportID)
	if stored.Status != string(domain.StatusInProgress) {
		t.Errorf("stored status = %q, notification failure must not roll back", stored.Status)
	}
}

func TestChatFailureDoesNotRollBackAssignment(t *testing.T) {
	f := newFixture(t)
	reportID := f.createReport(t, false)

	f.chats.failWith = errors.New("chat store unavailable")

	resp, err := f.svc.Decide(context.Background(), reportID, f.proID, transport.DecisionRequest{TargetStatus: "assigned"})
	assertKind(t, err, apperr.KindSideEffect)
	if resp == nil || resp.Status != string(domain.StatusAssigned) {
		t.Fatalf("assignment must survive chat failure, got %+v", resp)
	}
	if len(f.notifier.emitted) != 1 {
		t.Errorf("notification must still be attempted, got %d", len(f.notifier.emitted))
	}
}

func TestEnsureChatIsIdempotentAcrossAccepts(t *testing.T) {
	f := newFixture(t)

	first := f.createReport(t, false)
	f.accept(t, first)
	chatID := f.chats.chats[f.chats.calls[0]].ID

	// Re-running provisioning for the same triple yields the same chat.
	chat, err := f.chats.EnsureChat(context.Background(), first, f.chats.calls[0].staffID, f.citizenID, ports.ChatKindCitizenStaff)
	if err != nil {
		t.Fatalf("EnsureChat: %v", err)
	}
	if chat.ID != chatID {
		t.Errorf("EnsureChat returned a new chat %v, want existing %v", chat.ID, chatID)
	}
}

func TestAssignMaintainer(t *testing.T) {
	f := newFixture(t)
	reportID := f.createReport(t, false)
	resp := f.accept(t, reportID)
	assignee := *resp.AssigneeID
	f.chats.calls = nil

	updated, err := f.svc.AssignExternalMaintainer(context.Background(), reportID, assignee, f.maintainerID)
	if err != nil {
		t.Fatalf("AssignExternalMaintainer: %v", err)
	}

	if updated.CoAssigneeID == nil || *updated.CoAssigneeID != f.maintainerID {
		t.Errorf("co-assignee = %v, want %v", updated.CoAssigneeID, f.maintainerID)
	}
	if updated.Status != string(domain.StatusAssigned) {
		t.Errorf("co-assignment must not change status, got %q", updated.Status)
	}
	if updated.AssigneeID == nil || *updated.AssigneeID != assignee {
		t.Errorf("co-assignment must not change assignee, got %v", updated.AssigneeID)
	}

	if len(f.chats.calls) != 1 || f.chats.calls[0].kind != ports.ChatKindMaintainerStaff {
		t.Fatalf("expected one maintainer chat, got %+v", f.chats.calls)
	}
	if f.chats.calls[0].secondID != f.maintainerID {
		t.Errorf("chat second participant = %v, want maintainer %v", f.chats.calls[0].secondID, f.maintainerID)
	}
}

func TestAssignMaintainerValidation(t *testing.T) {
	f := newFixture(t)
	reportID := f.createReport(t, false)
	resp := f.accept(t, reportID)
	assignee := *resp.AssigneeID

	t.Run("not the assignee", func(t *testing.T) {
		_, err := f.svc.AssignExternalMaintainer(context.Background(), reportID, f.staffHighID, f.maintainerID)
		assertKind(t, err, apperr.KindForbidden)
	})

	t.Run("target not a maintainer", func(t *testing.T) {
		_, err := f.svc.AssignExternalMaintainer(context.Background(), reportID, assignee, f.citizenID)
		assertKind(t, err, apperr.KindValidation)
	})

	t.Run("target missing", func(t *testing.T) {
		_, err := f.svc.AssignExternalMaintainer(context.Background(), reportID, assignee, uuid.New())
		assertKind(t, err, apperr.KindNotFound)
	})
}

func TestAssignMaintainerOverwrites(t *testing.T) {
	f := newFixture(t)
	reportID := f.createReport(t, false)
	resp := f.accept(t, reportID)
	assignee := *resp.AssigneeID

	otherCompany := uuid.New()
	secondMaintainer := uuid.New()
	f.users.users[secondMaintainer] = &ports.User{ID: secondMaintainer, Type: ports.UserTypeExternalMaintainer, CompanyID: &otherCompany}

	if _, err := f.svc.AssignExternalMaintainer(context.Background(), reportID, assignee, f.maintainerID); err != nil {
		t.Fatalf("first co-assignment: %v", err)
	}
	updated, err := f.svc.AssignExternalMaintainer(context.Background(), reportID, assignee, secondMaintainer)
	if err != nil {
		t.Fatalf("second co-assignment: %v", err)
	}

	if updated.CoAssigneeID == nil || *updated.CoAssigneeID != secondMaintainer {
		t.Errorf("co-assignee = %v, want overwritten %v", updated.CoAssigneeID, secondMaintainer)
	}
}

func TestUpdateCategory(t *testing.T) {
	f := newFixture(t)
	otherCategory := uuid.New()
	f.categories.categories[otherCategory] = &ports.Category{ID: otherCategory, Name: "Lighting", OfficeID: &f.officeID}

	reportID := f.createReport(t, false)

	t.Run("requires triage role", func(t *testing.T) {
		_, err := f.svc.UpdateCategory(context.Background(), reportID, f.staffLowID, transport.UpdateCategoryRequest{CategoryID: otherCategory})
		assertKind(t, err, apperr.KindForbidden)
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := f.svc.UpdateCategory(context.Background(), reportID, f.proID, transport.UpdateCategoryRequest{CategoryID: uuid.New()})
		assertKind(t, err, apperr.KindNotFound)
	})

	t.Run("no side effects", func(t *testing.T) {
		resp, err := f.svc.UpdateCategory(context.Background(), reportID, f.proID, transport.UpdateCategoryRequest{CategoryID: otherCategory})
		if err != nil {
			t.Fatalf("UpdateCategory: %v", err)
		}
		if resp.CategoryID != otherCategory {
			t.Errorf("category = %v, want %v", resp.CategoryID, otherCategory)
		}
		if resp.Status != string(domain.StatusPendingApproval) {
			t.Errorf("category change must not alter status, got %q", resp.Status)
		}
		if len(f.notifier.emitted) != 0 || len(f.chats.calls) != 0 {
			t.Error("category change must not trigger chats or notifications")
		}
	})

	t.Run("blocked on closed reports", func(t *testing.T) {
		closed := f.createReport(t, false)
		reason := "out of municipal scope"
		if _, err := f.svc.Decide(context.Background(), closed, f.proID, transport.DecisionRequest{TargetStatus: "rejected", RejectionReason: &reason}); err != nil {
			t.Fatalf("Decide(rejected): %v", err)
		}
		_, err := f.svc.UpdateCategory(context.Background(), closed, f.proID, transport.UpdateCategoryRequest{CategoryID: otherCategory})
		assertKind(t, err, apperr.KindValidation)
	})
}

func TestGetByIDCreatorOnly(t *testing.T) {
	f := newFixture(t)
	reportID := f.createReport(t, false)

	if _, err := f.svc.GetByID(context.Background(), reportID, f.citizenID); err != nil {
		t.Fatalf("GetByID as creator: %v", err)
	}

	_, err := f.svc.GetByID(context.Background(), reportID, f.proID)
	assertKind(t, err, apperr.KindForbidden)

	_, err = f.svc.GetByID(context.Background(), uuid.New(), f.citizenID)
	assertKind(t, err, apperr.KindNotFound)
}

func TestAnonymousReportsHideCreatorInStaffViews(t *testing.T) {
	f := newFixture(t)
	f.createReport(t, true)

	list, err := f.svc.ListByStatus(context.Background(), string(domain.StatusPendingApproval))
	if err != nil {
		t.Fatalf("ListByStatus: %v", err)
	}
	if len(list.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(list.Items))
	}
	if list.Items[0].CreatorID != nil {
		t.Errorf("anonymous report must hide creator in staff views, got %v", list.Items[0].CreatorID)
	}

	mine, err := f.svc.ListMine(context.Background(), f.citizenID)
	if err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	if len(mine.Items) != 1 || mine.Items[0].CreatorID == nil {
		t.Error("creator must still see their own anonymous report attributed")
	}
}

func TestListByStatusRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ListByStatus(context.Background(), "archived")
	assertKind(t, err, apperr.KindValidation)
}

func TestListAssignedTo(t *testing.T) {
	f := newFixture(t)

	first := f.createReport(t, false)
	second := f.createReport(t, false)
	f.accept(t, first)
	f.accept(t, second)

	lowList, err := f.svc.ListAssignedTo(context.Background(), f.staffLowID)
	if err != nil {
		t.Fatalf("ListAssignedTo: %v", err)
	}
	highList, err := f.svc.ListAssignedTo(context.Background(), f.staffHighID)
	if err != nil {
		t.Fatalf("ListAssignedTo: %v", err)
	}

	// Two accepts against an evenly loaded office spread across both staff.
	if len(lowList.Items)+len(highList.Items) != 2 {
		t.Errorf("assigned totals = %d + %d, want 2", len(lowList.Items), len(highList.Items))
	}
	if len(lowList.Items) != 1 || len(highList.Items) != 1 {
		t.Errorf("load balancing spread = %d/%d, want 1/1", len(lowList.Items), len(highList.Items))
	}
}

func TestFullLifecycle(t *testing.T) {
	f := newFixture(t)

	reportID := f.createReport(t, false)
	resp := f.accept(t, reportID)
	assignee := *resp.AssigneeID

	if _, err := f.svc.UpdateStatus(context.Background(), reportID, assignee, transport.UpdateStatusRequest{Status: "in_progress"}); err != nil {
		t.Fatalf("start work: %v", err)
	}
	if _, err := f.svc.AssignExternalMaintainer(context.Background(), reportID, assignee, f.maintainerID); err != nil {
		t.Fatalf("co-assign: %v", err)
	}
	if _, err := f.svc.UpdateStatus(context.Background(), reportID, assignee, transport.UpdateStatusRequest{Status: "resolved"}); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	stored, _ := f.store.GetByID(context.Background(), reportID)
	if stored.Status != string(domain.StatusResolved) {
		t.Fatalf("final status = %q, want resolved", stored.Status)
	}
	if stored.CoAssigneeID == nil || *stored.CoAssigneeID != f.maintainerID {
		t.Errorf("co-assignee lost during lifecycle, got %v", stored.CoAssigneeID)
	}

	// One notification per committed transition.
	wantTransitions := []string{
		string(domain.StatusAssigned),
		string(domain.StatusInProgress),
		string(domain.StatusResolved),
	}
	if len(f.notifier.emitted) != len(wantTransitions) {
		t.Fatalf("notifications = %d, want %d", len(f.notifier.emitted), len(wantTransitions))
	}
	for i, want := range wantTransitions {
		if f.notifier.emitted[i].newStatus != want {
			t.Errorf("notification %d = %q, want %q", i, f.notifier.emitted[i].newStatus, want)
		}
	}

	// Citizen chat at accept, maintainer chat at co-assign.
	if len(f.chats.calls) != 2 {
		t.Fatalf("chat provisions = %d, want 2", len(f.chats.calls))
	}
	if f.chats.calls[0].kind != ports.ChatKindCitizenStaff || f.chats.calls[1].kind != ports.ChatKindMaintainerStaff {
		t.Errorf("unexpected chat kinds %q, %q", f.chats.calls[0].kind, f.chats.calls[1].kind)
	}

	if time.Since(stored.CreatedAt) < 0 {
		t.Error("created timestamp in the future")
	}
}
