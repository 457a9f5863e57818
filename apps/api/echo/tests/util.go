package tests

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/malezi/apps/api/echo"
	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/activity"
	"github.com/trezcool/malezi/core/child"
	"github.com/trezcool/malezi/core/message"
	"github.com/trezcool/malezi/core/milestone"
	"github.com/trezcool/malezi/core/moderation"
	"github.com/trezcool/malezi/core/observation"
	"github.com/trezcool/malezi/core/report"
	"github.com/trezcool/malezi/core/shift"
	appsync "github.com/trezcool/malezi/core/sync"
	"github.com/trezcool/malezi/core/user"
	emailsvc "github.com/trezcool/malezi/services/email"
	logsvc "github.com/trezcool/malezi/services/logger"
	inmemdb "github.com/trezcool/malezi/storage/database/inmem"
	testutil "github.com/trezcool/malezi/tests"
)

var (
	usrRepo   user.Repository
	childRepo child.Repository
	obsRepo   observation.Repository
	mlstRepo  milestone.Repository
	msgRepo   message.Repository
	shiftRepo shift.Repository
	modRepo   moderation.Repository

	emitter *activity.Emitter

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

func setup(t *testing.T) Server {
	t.Helper()
	conf := testutil.NewConfig()

	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags), conf)
	logger.Enable(false)

	// set up DB & repos
	db := inmemdb.NewDB()
	usrRepo = inmemdb.NewUserRepository(db)
	childRepo = inmemdb.NewChildRepository(db)
	obsRepo = inmemdb.NewObservationRepository(db)
	mlstRepo = inmemdb.NewMilestoneRepository(db)
	msgRepo = inmemdb.NewMessageRepository(db)
	shiftRepo = inmemdb.NewShiftRepository(db)
	modRepo = inmemdb.NewModerationRepository(db)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	core.ParseEmailTemplates(conf, logger)

	// set up services
	emitter = activity.NewEmitter()
	matcher := moderation.NewMatcher(conf.ModerationKeywords)

	mailSvc := emailsvc.NewConsoleService(conf, logger)
	usrSvc := user.NewServiceMock(usrRepo, mailSvc, conf)
	childSvc := child.NewService(childRepo, usrRepo)
	modSvc := moderation.NewService(modRepo, validate, emitter)
	obsSvc := observation.NewService(obsRepo, childSvc, modSvc, matcher, validate, emitter, conf, logger)
	mlstSvc := milestone.NewService(mlstRepo, childSvc, validate)
	msgSvc := message.NewService(msgRepo, usrSvc, modSvc, matcher, validate, logger)
	shiftSvc := shift.NewService(shiftRepo, childSvc, validate)
	reportSvc := report.NewService(inmemdb.NewReportRepository(db), shiftSvc)
	syncSvc := appsync.NewService(inmemdb.NewSyncRepository(db), obsSvc, mlstSvc, msgSvc, shiftSvc, validate, logger)

	// set up server
	return NewServer(
		ServerDeps{
			Conf:           conf,
			Logger:         logger,
			UserSvc:        usrSvc,
			ChildSvc:       childSvc,
			ObservationSvc: obsSvc,
			MilestoneSvc:   mlstSvc,
			MessageSvc:     msgSvc,
			ShiftSvc:       shiftSvc,
			ModerationSvc:  modSvc,
			ReportSvc:      reportSvc,
			SyncSvc:        syncSvc,
			Emitter:        emitter,
			Validate:       validate,
			Translator:     translator,
		},
	)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

// nolint
func marchallList(t *testing.T, objs ...interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
