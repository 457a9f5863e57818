package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/malezi/core/shift"
	"github.com/trezcool/malezi/core/user"
	testutil "github.com/trezcool/malezi/tests"
)

func Test_shiftApi_clockInOut(t *testing.T) {
	app := setup(t)

	nanny := testutil.CreateUser(t, usrRepo, "Amina", "amina1", "amina@test.cd", "", []string{user.RoleNanny}, true)
	parent := testutil.CreateUser(t, usrRepo, "Parent", "parent1", "parent@test.cd", "", []string{user.RoleParent}, true)

	fam := testutil.CreateFamily(t, childRepo, "Kabongo", parent.ID)
	testutil.AssignNanny(t, childRepo, fam.ID, nanny.ID)
	otherFam := testutil.CreateFamily(t, childRepo, "Ilunga", "")

	nannyToken := getToken(t, nanny)

	t.Run("parent cannot clock in", func(t *testing.T) {
		body := marchallObj(t, shift.ClockIn{FamilyID: fam.ID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/shifts/clock-in", getToken(t, parent), body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusForbidden, rec.Body.String())
		}
	})

	t.Run("unassigned family reads as missing", func(t *testing.T) {
		body := marchallObj(t, shift.ClockIn{FamilyID: otherFam.ID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/shifts/clock-in", nannyToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusNotFound, rec.Body.String())
		}
	})

	t.Run("clock out without open shift", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/shifts/clock-out", nannyToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusBadRequest, rec.Body.String())
		}
	})

	t.Run("clock in", func(t *testing.T) {
		body := marchallObj(t, shift.ClockIn{FamilyID: fam.ID, Note: "morning shift"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/shifts/clock-in", nannyToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var s shift.Shift
		if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if !s.Open() {
			t.Error("failed! new shift is not open")
		}
	})

	t.Run("double clock in rejected", func(t *testing.T) {
		body := marchallObj(t, shift.ClockIn{FamilyID: fam.ID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/shifts/clock-in", nannyToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusBadRequest, rec.Body.String())
		}
	})

	t.Run("clock out", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/shifts/clock-out", nannyToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var s shift.Shift
		if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if s.Open() {
			t.Error("failed! shift still open after clock out")
		}
	})
}

func Test_shiftApi_totals(t *testing.T) {
	app := setup(t)

	nanny := testutil.CreateUser(t, usrRepo, "Amina", "amina1", "amina@test.cd", "", []string{user.RoleNanny}, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)

	fam := testutil.CreateFamily(t, childRepo, "Kabongo", "")
	testutil.AssignNanny(t, childRepo, fam.ID, nanny.ID)

	day := time.Date(2026, 8, 3, 8, 0, 0, 0, time.UTC)
	testutil.CreateShift(t, shiftRepo, nanny.ID, fam.ID, day, day.Add(4*time.Hour))
	testutil.CreateShift(t, shiftRepo, nanny.ID, fam.ID, day.Add(24*time.Hour), day.Add(27*time.Hour+30*time.Minute))
	testutil.CreateShift(t, shiftRepo, nanny.ID, fam.ID, day.Add(48*time.Hour)) // still open; excluded

	req, rec := newAuthRequest(http.MethodGet, "/v1/shifts/totals", getToken(t, admin))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var totals []shift.Total
	if err := json.Unmarshal(rec.Body.Bytes(), &totals); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if len(totals) != 1 {
		t.Fatalf("failed! len(totals) = %d; want 1", len(totals))
	}
	if totals[0].NannyID != nanny.ID || totals[0].Shifts != 2 || totals[0].Hours != 7.5 {
		t.Errorf("failed! total = %+v; want 2 shifts, 7.5 hours", totals[0])
	}
}
