// internal/app/store/users/userstore_test.go
package userstore_test

import (
	"errors"
	"testing"

	userstore "github.com/issuedeck/issuedeck/internal/app/store/users"
	"github.com/issuedeck/issuedeck/internal/app/system/indexes"
	"github.com/issuedeck/issuedeck/internal/domain/models"
	"github.com/issuedeck/issuedeck/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestCreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := userstore.New(db)

	u, err := store.Create(ctx, models.User{
		FullName:   "Ada Example",
		Email:      "ada@example.com",
		AuthMethod: "password",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID.IsZero() {
		t.Fatal("Create did not assign an ID")
	}
	if u.Status != "active" {
		t.Errorf("Status = %q, want active default", u.Status)
	}

	got, err := store.GetByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("GetByEmail returned wrong user")
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	store := userstore.New(db)

	if _, err := store.Create(ctx, models.User{FullName: "A", Email: "dup@example.com", AuthMethod: "password"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := store.Create(ctx, models.User{FullName: "B", Email: "dup@example.com", AuthMethod: "password"})
	if !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Errorf("duplicate Create err = %v, want ErrDuplicateEmail", err)
	}
}

func TestSoftDeleteHidesUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := userstore.New(db)

	u, err := store.Create(ctx, models.User{FullName: "Gone Soon", Email: "gone@example.com", AuthMethod: "password"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.SoftDelete(ctx, u.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	if _, err := store.GetByID(ctx, u.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("GetByID after delete err = %v, want ErrNoDocuments", err)
	}
	if _, err := store.GetByEmail(ctx, "gone@example.com"); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("GetByEmail after delete err = %v, want ErrNoDocuments", err)
	}
}

func TestUpsertGoogleUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := userstore.New(db)

	first, err := store.UpsertGoogleUser(ctx, "g@example.com", "G User", "https://avatar/1")
	if err != nil {
		t.Fatalf("UpsertGoogleUser: %v", err)
	}

	second, err := store.UpsertGoogleUser(ctx, "g@example.com", "G User Renamed", "https://avatar/2")
	if err != nil {
		t.Fatalf("UpsertGoogleUser (again): %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("upsert created a second account")
	}
	if second.FullName != "G User Renamed" {
		t.Errorf("FullName = %q, profile refresh not applied", second.FullName)
	}
}
