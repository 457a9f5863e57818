package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/malezi/core/milestone"
	"github.com/trezcool/malezi/core/user"
	testutil "github.com/trezcool/malezi/tests"
)

func Test_milestoneApi_achievements(t *testing.T) {
	app := setup(t)

	nanny := testutil.CreateUser(t, usrRepo, "Amina", "amina1", "amina@test.cd", "", []string{user.RoleNanny}, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)

	fam := testutil.CreateFamily(t, childRepo, "Kabongo", "")
	testutil.AssignNanny(t, childRepo, fam.ID, nanny.ID)
	// ~15 months old
	kid := testutil.CreateChild(t, childRepo, fam.ID, "Tshala", time.Now().AddDate(0, -15, 0).UTC())

	adminToken := getToken(t, admin)
	nannyToken := getToken(t, nanny)

	var walks, phrases milestone.Milestone
	t.Run("admin seeds the catalog", func(t *testing.T) {
		for _, nm := range []milestone.NewMilestone{
			{Category: milestone.CategoryMotor, Title: "Walks alone", MinMonths: 11, MaxMonths: 15},
			{Category: milestone.CategoryLanguage, Title: "Two-word phrases", MinMonths: 18, MaxMonths: 24},
		} {
			req, rec := newAuthRequest(http.MethodPost, "/v1/milestones", adminToken, marchallObj(t, nm))
			app.ServeHTTP(rec, req)
			if rec.Code != http.StatusCreated {
				t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
			}
			var m milestone.Milestone
			if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
				t.Fatalf("json.Unmarshal() failed! err %v", err)
			}
			switch m.Title {
			case "Walks alone":
				walks = m
			case "Two-word phrases":
				phrases = m
			}
		}
	})

	t.Run("nanny cannot create milestones", func(t *testing.T) {
		nm := milestone.NewMilestone{Category: milestone.CategoryMotor, Title: "Runs", MinMonths: 15, MaxMonths: 20}
		req, rec := newAuthRequest(http.MethodPost, "/v1/milestones", nannyToken, marchallObj(t, nm))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("record achievement", func(t *testing.T) {
		na := milestone.NewAchievement{MilestoneID: walks.ID, Note: "wobbly but walking"}
		req, rec := newAuthRequest(http.MethodPost, "/v1/children/"+kid.ID+"/achievements", nannyToken, marchallObj(t, na))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("duplicate achievement rejected", func(t *testing.T) {
		na := milestone.NewAchievement{MilestoneID: walks.ID}
		req, rec := newAuthRequest(http.MethodPost, "/v1/children/"+kid.ID+"/achievements", nannyToken, marchallObj(t, na))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("progress covers the child's age only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/children/"+kid.ID+"/progress", nannyToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var prog milestone.Progress
		if err := json.Unmarshal(rec.Body.Bytes(), &prog); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		// "Two-word phrases" (18-24mo) is out of range at 15 months
		if prog.Expected != 1 || prog.Achieved != 1 {
			t.Errorf("failed! progress = %+v; want 1/1 (phrases %s out of range)", prog, phrases.ID)
		}
	})
}
