package repository

import (
	"context"
	"errors"
	"testing"

	"go-coordinator/modules/participant/entity"
)

func TestMemoryParticipantRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryParticipantRepository()

	ada := &entity.Participant{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	if err := repo.Create(ctx, ada); err != nil {
		t.Fatal(err)
	}
	if ada.ID != 1 {
		t.Errorf("id = %d, want 1", ada.ID)
	}
	if err := repo.Create(ctx, &entity.Participant{Email: "ada@example.com"}); !errors.Is(err, ErrParticipantExists) {
		t.Errorf("duplicate err = %v, want ErrParticipantExists", err)
	}

	for email, want := range map[string]bool{"ada@example.com": true, "ADA@example.com": false, "bob@example.com": false} {
		got, err := repo.ExistsByEmail(ctx, email)
		if err != nil || got != want {
			t.Errorf("ExistsByEmail(%q) = %v, %v; want %v", email, got, err, want)
		}
	}

	if err := repo.Delete(ctx, ada.ID); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, 99); err != nil {
		t.Fatalf("deleting unknown id: %v", err)
	}
	if ok, _ := repo.ExistsByEmail(ctx, "ada@example.com"); ok {
		t.Error("deleted participant still verifies")
	}
	items, _ := repo.List(ctx)
	if len(items) != 0 {
		t.Errorf("List = %+v, want empty", items)
	}
}
