package testutil

import (
	"context"
	"net/mail"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/child"
	"github.com/trezcool/malezi/core/observation"
	"github.com/trezcool/malezi/core/shift"
	"github.com/trezcool/malezi/core/user"
)

// NewConfig returns a config suitable for tests; nothing external is reached.
func NewConfig() *core.Config {
	conf := &core.Config{
		Env:      "TEST",
		AppName:  "Malezi",
		Debug:    false,
		TestMode: true,

		SecretKey:        "s3cr3t-p0ulet!",
		FrontendBaseURL:  "http://localhost:8080",
		DefaultFromEmail: mail.Address{Name: "Malezi", Address: "noreply@test.malezi.cd"},

		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		ObservationEditWindow:     24 * time.Hour,
		ModerationKeywords:        []string{"badword", "idiot"},
	}
	conf.Server.JWTExpirationDelta = 7 * 24 * time.Hour
	conf.Server.JWTRefreshExpirationDelta = 4 * time.Hour
	return conf
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateFamily creates a family and optionally adds parentID as a member.
func CreateFamily(t *testing.T, repo child.Repository, name, parentID string) child.Family {
	t.Helper()
	ctx := context.Background()
	tstamp := time.Now().UTC()
	fam, err := repo.CreateFamily(ctx, child.Family{Name: name, CreatedAt: tstamp, UpdatedAt: tstamp})
	if err != nil {
		t.Fatalf("CreateFamily() failed: %v", err)
	}
	if parentID != "" {
		if err = repo.AddMember(ctx, child.Membership{FamilyID: fam.ID, UserID: parentID, Relation: "guardian"}); err != nil {
			t.Fatalf("CreateFamily() failed: %v", err)
		}
	}
	return fam
}

func AssignNanny(t *testing.T, repo child.Repository, familyID, nannyID string) {
	t.Helper()
	a := child.Assignment{FamilyID: familyID, NannyID: nannyID, CreatedAt: time.Now().UTC()}
	if err := repo.AddAssignment(context.Background(), a); err != nil {
		t.Fatalf("AssignNanny() failed: %v", err)
	}
}

func CreateChild(t *testing.T, repo child.Repository, familyID, name string, birthDate time.Time) child.Child {
	t.Helper()
	tstamp := time.Now().UTC()
	c, err := repo.CreateChild(context.Background(), child.Child{
		FamilyID:  familyID,
		Name:      name,
		BirthDate: birthDate,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateChild() failed: %v", err)
	}
	return c
}

func CreateObservation(
	t *testing.T,
	repo observation.Repository,
	childID, authorID, category, body string,
	createdAt ...time.Time,
) observation.Observation {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	obs, err := repo.CreateObservation(context.Background(), observation.Observation{
		ChildID:   childID,
		AuthorID:  authorID,
		Category:  category,
		Body:      body,
		CreatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateObservation() failed: %v", err)
	}
	return obs
}

func CreateShift(
	t *testing.T,
	repo shift.Repository,
	nannyID, familyID string,
	clockIn time.Time,
	clockOut ...time.Time,
) shift.Shift {
	t.Helper()
	s := shift.Shift{NannyID: nannyID, FamilyID: familyID, ClockIn: clockIn.UTC()}
	if len(clockOut) > 0 {
		s.ClockOut = null.TimeFrom(clockOut[0].UTC())
	}
	s, err := repo.CreateShift(context.Background(), s)
	if err != nil {
		t.Fatalf("CreateShift() failed: %v", err)
	}
	return s
}
