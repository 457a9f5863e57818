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

func Test_observationApi_create(t *testing.T) {
	app := setup(t)

	nanny := testutil.CreateUser(t, usrRepo, "Amina", "amina1", "amina@test.cd", "", []string{user.RoleNanny}, true)
	parent := testutil.CreateUser(t, usrRepo, "Parent", "parent1", "parent@test.cd", "", []string{user.RoleParent}, true)

	fam := testutil.CreateFamily(t, childRepo, "Kabongo", parent.ID)
	testutil.AssignNanny(t, childRepo, fam.ID, nanny.ID)
	kid := testutil.CreateChild(t, childRepo, fam.ID, "Tshala", time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC))

	otherFam := testutil.CreateFamily(t, childRepo, "Ilunga", "")
	otherKid := testutil.CreateChild(t, childRepo, otherFam.ID, "Mwamba", time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC))

	type extraTest struct {
		flagged bool
	}
	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "required fields", token: getToken(t, nanny), wantCode: http.StatusBadRequest,
			body: marchallObj(t, observation.NewObservation{}),
		},
		{
			name: "unknown category", token: getToken(t, nanny), wantCode: http.StatusBadRequest,
			body: marchallObj(t, observation.NewObservation{ChildID: kid.ID, Category: "lol", Body: "zzz"}),
		},
		{
			name: "out of scope child reads as missing", token: getToken(t, nanny), wantCode: http.StatusNotFound,
			body:     marchallObj(t, observation.NewObservation{ChildID: otherKid.ID, Category: observation.CategoryNap, Body: "slept 2h"}),
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "nanny logs a nap", token: getToken(t, nanny), wantCode: http.StatusCreated,
			body:  marchallObj(t, observation.NewObservation{ChildID: kid.ID, Category: observation.CategoryNap, Body: "slept 2h after lunch"}),
			extra: extraTest{flagged: false},
		},
		{
			name: "parent logs a note", token: getToken(t, parent), wantCode: http.StatusCreated,
			body:  marchallObj(t, observation.NewObservation{ChildID: kid.ID, Category: observation.CategoryNote, Body: "had a great morning"}),
			extra: extraTest{flagged: false},
		},
		{
			name: "keyword match is auto-flagged", token: getToken(t, nanny), wantCode: http.StatusCreated,
			body:  marchallObj(t, observation.NewObservation{ChildID: kid.ID, Category: observation.CategoryIncident, Body: "called his brother an IDIOT today"}),
			extra: extraTest{flagged: true},
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/observations"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
			if extra, ok := tt.extra.(extraTest); ok && tt.wantCode == http.StatusCreated {
				var obs observation.Observation
				if err := json.Unmarshal(rec.Body.Bytes(), &obs); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if obs.Flagged != extra.flagged {
					t.Errorf("failed! flagged = %v; want %v", obs.Flagged, extra.flagged)
				}
				if extra.flagged {
					flags, err := modRepo.QueryFlags(context.Background(), moderation.StatusPending)
					if err != nil {
						t.Fatalf("QueryFlags() failed, %v", err)
					}
					found := false
					for _, f := range flags {
						if f.ContentID == obs.ID {
							found = true
						}
					}
					if !found {
						t.Error("failed! no pending flag recorded for flagged observation")
					}
				}
			}
		})
	}
}

func Test_observationApi_update(t *testing.T) {
	app := setup(t)

	nanny := testutil.CreateUser(t, usrRepo, "Amina", "amina1", "amina@test.cd", "", []string{user.RoleNanny}, true)
	parent := testutil.CreateUser(t, usrRepo, "Parent", "parent1", "parent@test.cd", "", []string{user.RoleParent}, true)

	fam := testutil.CreateFamily(t, childRepo, "Kabongo", parent.ID)
	testutil.AssignNanny(t, childRepo, fam.ID, nanny.ID)
	kid := testutil.CreateChild(t, childRepo, fam.ID, "Tshala", time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC))

	fresh := testutil.CreateObservation(t, obsRepo, kid.ID, nanny.ID, observation.CategoryNote, "ate well")
	stale := testutil.CreateObservation(t, obsRepo, kid.ID, nanny.ID, observation.CategoryNote, "old entry", time.Now().Add(-48*time.Hour))

	tests := []httpTest{
		{
			name: "author edits within window", path: "/v1/observations/" + fresh.ID, token: getToken(t, nanny),
			body: marchallObj(t, observation.UpdateObservation{Body: "ate very well"}), wantCode: http.StatusOK,
		},
		{
			name: "edit window over", path: "/v1/observations/" + stale.ID, token: getToken(t, nanny),
			body:     marchallObj(t, observation.UpdateObservation{Body: "too late"}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "observation can no longer be edited"}),
		},
		{
			name: "only the author may edit", path: "/v1/observations/" + fresh.ID, token: getToken(t, parent),
			body:     marchallObj(t, observation.UpdateObservation{Body: "not mine"}), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPut

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
		})
	}
}
