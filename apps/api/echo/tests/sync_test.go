package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	echoapi "github.com/trezcool/malezi/apps/api/echo"
	"github.com/trezcool/malezi/core/observation"
	"github.com/trezcool/malezi/core/shift"
	appsync "github.com/trezcool/malezi/core/sync"
	"github.com/trezcool/malezi/core/user"
	testutil "github.com/trezcool/malezi/tests"
)

func Test_syncApi_replay(t *testing.T) {
	app := setup(t)

	nanny := testutil.CreateUser(t, usrRepo, "Amina", "amina1", "amina@test.cd", "", []string{user.RoleNanny}, true)
	fam := testutil.CreateFamily(t, childRepo, "Kabongo", "")
	testutil.AssignNanny(t, childRepo, fam.ID, nanny.ID)
	kid := testutil.CreateChild(t, childRepo, fam.ID, "Tshala", time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC))

	token := getToken(t, nanny)
	clientTime := time.Now().Add(-2 * time.Hour).UTC()

	ops := []appsync.Operation{
		{
			ClientID:   "op-1",
			Model:      appsync.ModelObservation,
			Action:     appsync.ActionCreate,
			Payload:    marchallObj(t, observation.NewObservation{ChildID: kid.ID, Category: observation.CategoryMeal, Body: "finished his bottle"}),
			ClientTime: clientTime,
		},
		{
			ClientID:   "op-2",
			Model:      appsync.ModelShift,
			Action:     appsync.ActionCreate,
			Payload:    marchallObj(t, shift.ClockIn{FamilyID: fam.ID}),
			ClientTime: clientTime,
		},
		{
			ClientID:   "op-3",
			Model:      appsync.ModelShift,
			Action:     appsync.ActionUpdate, // clock out
			ClientTime: clientTime.Add(4 * time.Hour),
		},
		{
			ClientID: "op-4",
			Model:    appsync.ModelObservation,
			Action:   appsync.ActionCreate,
			Payload:  marchallObj(t, observation.NewObservation{ChildID: "nope", Category: observation.CategoryNote, Body: "unknown child"}),
		},
	}

	body := marchallObj(t, echoapi.SyncRequest{Operations: ops})
	req, rec := newAuthRequest(http.MethodPost, "/v1/sync", token, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}

	var resp echoapi.SyncResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if len(resp.Results) != len(ops) {
		t.Fatalf("failed! len(results) = %d; want %d", len(resp.Results), len(ops))
	}

	// failures do not stop the replay
	for i, want := range []string{appsync.StatusApplied, appsync.StatusApplied, appsync.StatusApplied, appsync.StatusFailed} {
		res := resp.Results[i]
		if res.Status != want {
			t.Errorf("failed! results[%d].Status = %s; want %s (error %q)", i, res.Status, want, res.Error)
		}
		if want == appsync.StatusApplied && res.Status == want && res.ObjectID == "" && ops[i].Action == appsync.ActionCreate {
			t.Errorf("failed! results[%d] has no server id", i)
		}
	}

	t.Run("history records every operation", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/sync/history", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var entries []appsync.LogEntry
		if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if len(entries) != len(ops) {
			t.Fatalf("failed! len(entries) = %d; want %d", len(entries), len(ops))
		}
		failed := 0
		for _, e := range entries {
			if e.UserID != nanny.ID {
				t.Errorf("failed! entry.UserID = %s; want %s", e.UserID, nanny.ID)
			}
			if e.Status == appsync.StatusFailed {
				failed++
			}
		}
		if failed != 1 {
			t.Errorf("failed! %d failed entries; want 1", failed)
		}
	})

	t.Run("the shift really closed", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/shifts", token)
		app.ServeHTTP(rec, req)
		var shifts []shift.Shift
		if err := json.Unmarshal(rec.Body.Bytes(), &shifts); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if len(shifts) != 1 || shifts[0].Open() {
			t.Errorf("failed! shifts = %+v; want one closed shift", shifts)
		}
	})
}
