package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/malezi/core/moderation"
	"github.com/trezcool/malezi/core/observation"
	"github.com/trezcool/malezi/core/user"
	testutil "github.com/trezcool/malezi/tests"
)

func Test_moderationApi_resolve(t *testing.T) {
	app := setup(t)

	nanny := testutil.CreateUser(t, usrRepo, "Amina", "amina1", "amina@test.cd", "", []string{user.RoleNanny}, true)
	parent := testutil.CreateUser(t, usrRepo, "Parent", "parent1", "parent@test.cd", "", []string{user.RoleParent}, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	moderator := testutil.CreateUser(t, usrRepo, "Mod", "themod1", "mod@test.cd", "", []string{user.RoleAdminModerator}, true)

	fam := testutil.CreateFamily(t, childRepo, "Kabongo", parent.ID)
	testutil.AssignNanny(t, childRepo, fam.ID, nanny.ID)
	kid := testutil.CreateChild(t, childRepo, fam.ID, "Tshala", time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC))

	// keyword hit creates a pending flag
	body := marchallObj(t, observation.NewObservation{ChildID: kid.ID, Category: observation.CategoryIncident, Body: "screamed badword at nap time"})
	req, rec := newAuthRequest(http.MethodPost, "/v1/observations", getToken(t, nanny), body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var obs observation.Observation
	if err := json.Unmarshal(rec.Body.Bytes(), &obs); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}

	t.Run("pending list needs moderator", func(t *testing.T) {
		for _, token := range []string{getToken(t, nanny), getToken(t, parent), getToken(t, admin)} {
			req, rec := newAuthRequest(http.MethodGet, "/v1/flags", token)
			app.ServeHTTP(rec, req)
			if rec.Code != http.StatusForbidden {
				t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusForbidden)
			}
		}
	})

	var flag moderation.Flag
	t.Run("moderator lists pending", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/flags", getToken(t, moderator))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var flags []moderation.Flag
		if err := json.Unmarshal(rec.Body.Bytes(), &flags); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if len(flags) != 1 {
			t.Fatalf("failed! len(flags) = %d; want 1", len(flags))
		}
		flag = flags[0]
		if flag.ContentID != obs.ID || flag.Keyword.String != "badword" {
			t.Errorf("failed! flag = %+v; want keyword flag on observation", flag)
		}
	})

	t.Run("remove redacts the content", func(t *testing.T) {
		body := marchallObj(t, moderation.ResolveFlag{Action: moderation.ActionRemove})
		req, rec := newAuthRequest(http.MethodPost, "/v1/flags/"+flag.ID+"/resolve", getToken(t, moderator), body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var resolved moderation.Flag
		if err := json.Unmarshal(rec.Body.Bytes(), &resolved); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if resolved.Status != moderation.StatusRemoved || resolved.ResolvedBy.String != moderator.ID {
			t.Errorf("failed! resolved = %+v; want removed by moderator", resolved)
		}

		refreshed, err := obsRepo.GetObservation(context.Background(), obs.ID)
		if err != nil {
			t.Fatalf("GetObservation() failed, %v", err)
		}
		if refreshed.Body != moderation.RedactedBody {
			t.Errorf("failed! body = %q; want %q", refreshed.Body, moderation.RedactedBody)
		}
	})

	t.Run("second resolve rejected", func(t *testing.T) {
		body := marchallObj(t, moderation.ResolveFlag{Action: moderation.ActionApprove})
		req, rec := newAuthRequest(http.MethodPost, "/v1/flags/"+flag.ID+"/resolve", getToken(t, moderator), body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
	})
}
