package server

import (
	"context"
	"testing"

	identitydomain "github.com/ManuelDev-we/CRM-condominio-sub002/internal/identity/domain"
)

func TestWithIdentity_SetsAllValues(t *testing.T) {
	ctx := WithIdentity(context.Background(), "subject-1", identitydomain.RoleResident, "session-1")

	subjectID, ok := GetSubjectID(ctx)
	if !ok || subjectID != "subject-1" {
		t.Errorf("subject_id = %q, %v; want subject-1, true", subjectID, ok)
	}
	role, ok := GetRole(ctx)
	if !ok || role != identitydomain.RoleResident {
		t.Errorf("role = %q, %v; want resident, true", role, ok)
	}
	sessionID, ok := GetSessionID(ctx)
	if !ok || sessionID != "session-1" {
		t.Errorf("session_id = %q, %v; want session-1, true", sessionID, ok)
	}
}

func TestGetters_ReturnFalseWhenNotSet(t *testing.T) {
	ctx := context.Background()
	if _, ok := GetSubjectID(ctx); ok {
		t.Error("GetSubjectID should return false")
	}
	if _, ok := GetRole(ctx); ok {
		t.Error("GetRole should return false")
	}
	if _, ok := GetSessionID(ctx); ok {
		t.Error("GetSessionID should return false")
	}
}
