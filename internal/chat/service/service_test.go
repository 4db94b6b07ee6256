package service

import (
	"context"
	"testing"

	"cityreport_backend/platform/apperr"

	"github.com/google/uuid"
)

func TestEnsureRejectsUnknownKind(t *testing.T) {
	svc := New(nil, nil, nil, nil)

	_, err := svc.Ensure(context.Background(), uuid.New(), uuid.New(), uuid.New(), "staff_staff")
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestEnsureRejectsSelfChat(t *testing.T) {
	svc := New(nil, nil, nil, nil)

	participant := uuid.New()
	_, err := svc.Ensure(context.Background(), uuid.New(), participant, participant, KindCitizenStaff)
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
