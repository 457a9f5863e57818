package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/malezi/core/child"
	"github.com/trezcool/malezi/core/user"
	testutil "github.com/trezcool/malezi/tests"
)

func Test_familyApi_createFamily(t *testing.T) {
	app := setup(t)

	parent := testutil.CreateUser(t, usrRepo, "Parent", "parent1", "parent@test.cd", "", []string{user.RoleParent}, true)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "required fields", token: getToken(t, parent), wantCode: http.StatusBadRequest,
			body:     marchallObj(t, child.NewFamily{}),
			wantData: marchallObj(t, child.NewFamily{Name: "this field is required"}),
		},
		{
			name: "family created", token: getToken(t, parent), wantCode: http.StatusCreated,
			body: marchallObj(t, child.NewFamily{Name: "Kabongo", Relation: "father"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/families"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode != http.StatusCreated {
				checkCodeAndData(t, tt, rec)
				return
			}

			// the creator becomes a member
			var fam child.Family
			if err := json.Unmarshal(rec.Body.Bytes(), &fam); err != nil {
				t.Fatalf("json.Unmarshal() failed! err %v", err)
			}
			req, rec = newAuthRequest(http.MethodGet, "/v1/families/"+fam.ID+"/members", tt.token)
			app.ServeHTTP(rec, req)
			var members []child.Membership
			if err := json.Unmarshal(rec.Body.Bytes(), &members); err != nil {
				t.Fatalf("json.Unmarshal() failed! err %v", err)
			}
			if len(members) != 1 || members[0].UserID != parent.ID {
				t.Errorf("failed! members = %v; want creator only", members)
			}
		})
	}
}

func Test_familyApi_childScope(t *testing.T) {
	app := setup(t)

	parent1 := testutil.CreateUser(t, usrRepo, "Parent One", "parent1", "parent1@test.cd", "", []string{user.RoleParent}, true)
	parent2 := testutil.CreateUser(t, usrRepo, "Parent Two", "parent2", "parent2@test.cd", "", []string{user.RoleParent}, true)
	nanny := testutil.CreateUser(t, usrRepo, "Amina", "amina1", "amina@test.cd", "", []string{user.RoleNanny}, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)

	fam1 := testutil.CreateFamily(t, childRepo, "Kabongo", parent1.ID)
	fam2 := testutil.CreateFamily(t, childRepo, "Ilunga", parent2.ID)
	testutil.AssignNanny(t, childRepo, fam1.ID, nanny.ID)

	birth := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	kid1 := testutil.CreateChild(t, childRepo, fam1.ID, "Tshala", birth)
	kid2 := testutil.CreateChild(t, childRepo, fam2.ID, "Mwamba", birth)

	notFound := marchallObj(t, httpErr{Error: "not found"})

	tests := []httpTest{
		{name: "parent sees own child", path: "/v1/children/" + kid1.ID, token: getToken(t, parent1), wantCode: http.StatusOK},
		{name: "nanny sees assigned child", path: "/v1/children/" + kid1.ID, token: getToken(t, nanny), wantCode: http.StatusOK},
		{name: "admin sees any child", path: "/v1/children/" + kid2.ID, token: getToken(t, admin), wantCode: http.StatusOK},
		// out of scope reads as not found, never forbidden
		{name: "foreign child hidden from parent", path: "/v1/children/" + kid2.ID, token: getToken(t, parent1), wantCode: http.StatusNotFound, wantData: notFound},
		{name: "foreign child hidden from nanny", path: "/v1/children/" + kid2.ID, token: getToken(t, nanny), wantCode: http.StatusNotFound, wantData: notFound},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

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

	t.Run("children list is scoped", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/children", getToken(t, parent1))
		app.ServeHTTP(rec, req)
		var children []child.Child
		if err := json.Unmarshal(rec.Body.Bytes(), &children); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if len(children) != 1 || children[0].ID != kid1.ID {
			t.Errorf("failed! children = %v; want only own child", children)
		}
	})

	t.Run("admin lists all children", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/children", getToken(t, admin))
		app.ServeHTTP(rec, req)
		var children []child.Child
		if err := json.Unmarshal(rec.Body.Bytes(), &children); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if len(children) != 2 {
			t.Errorf("failed! len(children) = %d; want 2", len(children))
		}
	})
}
