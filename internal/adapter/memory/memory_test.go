package memory

import (
	"context"
	"testing"
	"time"

	"gymsync/internal/domain"
)

func TestSyncGateway(t *testing.T) {
	db := New()
	ctx := context.Background()

	// Absent document
	p, err := db.DownloadData(ctx, "ana")
	if err != nil {
		t.Fatalf("DownloadData: %v", err)
	}
	if p != nil {
		t.Fatalf("expected nil for absent document, got %+v", p)
	}

	doc := domain.Profile{
		PersonalData: domain.PersonalData{Name: "Ana"},
		Routine:      []domain.Exercise{{Day: domain.Monday, Name: "Remo", Sets: 3, Reps: 10}},
	}
	if err := db.UploadData(ctx, "ana", doc); err != nil {
		t.Fatalf("UploadData: %v", err)
	}

	// Caller mutations must not leak into the stored copy
	doc.Routine[0].Name = "changed"

	p, err = db.DownloadData(ctx, "ana")
	if err != nil {
		t.Fatalf("DownloadData: %v", err)
	}
	if p == nil {
		t.Fatal("expected document, got nil")
	}
	if p.UserID != "ana" {
		t.Errorf("expected user id ana, got %q", p.UserID)
	}
	if p.Routine[0].Name != "Remo" {
		t.Errorf("expected stored copy, got %q", p.Routine[0].Name)
	}

	p.PersonalData.Name = "changed"
	again, _ := db.DownloadData(ctx, "ana")
	if again.PersonalData.Name != "Ana" {
		t.Error("downloaded document aliases the stored one")
	}

	if err := db.UploadData(ctx, "", doc); err == nil {
		t.Error("expected error for empty user id")
	}
}

func TestListProfiles(t *testing.T) {
	db := New()
	ctx := context.Background()

	for _, id := range []string{"carla", "ana", "beto"} {
		if err := db.UploadData(ctx, id, domain.Profile{}); err != nil {
			t.Fatalf("UploadData: %v", err)
		}
	}

	profiles, err := db.ListProfiles(ctx)
	if err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}
	if len(profiles) != 3 {
		t.Fatalf("expected 3 profiles, got %d", len(profiles))
	}
	for i, want := range []string{"ana", "beto", "carla"} {
		if profiles[i].UserID != want {
			t.Errorf("profiles[%d]: expected %s, got %s", i, want, profiles[i].UserID)
		}
	}
}

func TestUserRepository(t *testing.T) {
	db := New()
	ctx := context.Background()

	u, err := db.Create(ctx, "bob", "hash")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Username != "bob" {
		t.Errorf("expected bob, got %s", u.Username)
	}

	u2, err := db.GetByUsername(ctx, "bob")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if u2 == nil || u2.ID != u.ID {
		t.Error("failed to retrieve user")
	}

	if _, err := db.Create(ctx, "bob", ""); err == nil {
		t.Error("expected duplicate username to fail")
	}

	count, _ := db.Count(ctx)
	if count != 1 {
		t.Errorf("expected 1 user, got %d", count)
	}
}

func TestSessionRepository(t *testing.T) {
	db := New()
	repo := db.NewSessionRepo()
	ctx := context.Background()

	err := repo.Create(ctx, 1, "token123", "test-agent", "10.0.0.1", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	sess, err := repo.GetByToken(ctx, "token123")
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if sess == nil {
		t.Fatal("expected session, got nil")
	}
	if sess.UserAgent != "test-agent" || sess.IP != "10.0.0.1" {
		t.Errorf("expected client details to be stored, got %+v", sess)
	}

	_ = repo.Delete(ctx, "token123")
	sess, _ = repo.GetByToken(ctx, "token123")
	if sess != nil {
		t.Error("expected nil (deleted)")
	}

	_ = repo.Create(ctx, 1, "old", "ua", "", time.Now().Add(-time.Minute))
	if err := repo.DeleteExpired(ctx); err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if sess, _ := repo.GetByToken(ctx, "old"); sess != nil {
		t.Error("expected expired session to be gone")
	}
}
