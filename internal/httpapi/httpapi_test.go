package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/school-discipline/internal/auth"
	"github.com/Spok95/school-discipline/internal/ids"
	"github.com/Spok95/school-discipline/internal/models"
	"github.com/Spok95/school-discipline/internal/rules"
	"github.com/Spok95/school-discipline/internal/service"
	"github.com/Spok95/school-discipline/internal/testutil/memstore"
	"github.com/Spok95/school-discipline/internal/week"
)

func init() { gin.SetMode(gin.TestMode) }

type env struct {
	t      *testing.T
	router *gin.Engine
	store  *memstore.Store
	tokens *auth.Tokens
	weeks  *week.Resolver
	ping   error
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		t:      t,
		store:  memstore.New(),
		tokens: auth.NewTokens([]byte("test-secret"), time.Hour, nil),
		weeks:  week.NewResolver(time.FixedZone("UTC+7", 7*3600), time.September, 1),
	}
	_ = e.store.ReplaceRules(context.Background(), rules.Catalog())
	e.router = NewRouter(Deps{
		Tokens:   e.tokens,
		Records:  service.NewRecords(e.store, e.weeks, nil, nil),
		Rankings: service.NewRankings(e.store, e.weeks, nil, nil),
		Users:    service.NewUsers(e.store, e.tokens, nil),
		Rules:    service.NewRules(e.store, nil),
		Roster:   service.NewRoster(e.store, nil, nil),
		Ping:     func(context.Context) error { return e.ping },
	})
	return e
}

// token signs a session for a fresh user with the given role.
func (e *env) token(role models.Role, classes ...string) string {
	e.t.Helper()
	u, err := e.store.CreateUser(context.Background(), models.User{
		ID: ids.New(), DisplayName: string(role), Email: ids.New() + "@school.vn", Role: role, AssignedClasses: classes,
	})
	if err != nil {
		e.t.Fatal(err)
	}
	tok, _, err := e.tokens.Issue(*u, models.UserClaims{UserID: u.ID, Role: role, AssignedClasses: classes})
	if err != nil {
		e.t.Fatal(err)
	}
	return tok
}

func (e *env) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func TestAddRecord(t *testing.T) {
	e := newEnv(t)
	tok := e.token(models.RoleTeacher)

	w := e.do(http.MethodGet, "/addRecord", tok, nil)
	if w.Code != http.StatusMethodNotAllowed || w.Body.String() != "Method Not Allowed" {
		t.Fatalf("GET: %d %q", w.Code, w.Body.String())
	}
	if w := e.do(http.MethodPost, "/addRecord", "", `{"a":1}`); w.Code != http.StatusUnauthorized || w.Body.String() != "Unauthorized" {
		t.Fatalf("no token: %d %q", w.Code, w.Body.String())
	}
	if w := e.do(http.MethodPost, "/addRecord", "garbage", `{"a":1}`); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: %d", w.Code)
	}

	w = e.do(http.MethodPost, "/addRecord", tok, `{"ruleCode":"VP001","quantity":2}`)
	if w.Code != http.StatusOK {
		t.Fatalf("POST: %d %s", w.Code, w.Body.String())
	}
	got := decode[struct {
		OK       bool           `json:"ok"`
		Received map[string]any `json:"received"`
	}](t, w)
	if !got.OK || got.Received["ruleCode"] != "VP001" {
		t.Fatalf("echo = %+v", got)
	}
	if len(e.store.Records) != 0 {
		t.Fatal("addRecord must not persist")
	}
}

func TestSetUserClaims(t *testing.T) {
	e := newEnv(t)
	target, _ := e.store.CreateUser(context.Background(), models.User{ID: ids.New(), DisplayName: "T", Email: "t@school.vn", Role: models.RoleTeacher})
	body := map[string]any{"uid": target.ID, "role": "proctor", "assignedClasses": []string{}}

	w := e.do(http.MethodPost, "/setUserClaims", e.token(models.RoleHomeroomTeacher), body)
	if w.Code != http.StatusForbidden {
		t.Fatalf("homeroom: %d %s", w.Code, w.Body.String())
	}
	if e.store.ClaimWrites != 0 {
		t.Fatal("claims mutated by non-admin")
	}
	if w := e.do(http.MethodPost, "/setUserClaims", "", body); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: %d", w.Code)
	}

	w = e.do(http.MethodPost, "/setUserClaims", e.token(models.RoleAdmin), body)
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != `{"ok":true}` {
		t.Fatalf("admin: %d %s", w.Code, w.Body.String())
	}
	if e.store.Claims[target.ID].Role != models.RoleProctor {
		t.Fatal("claims not updated")
	}

	body["role"] = "janitor"
	w = e.do(http.MethodPost, "/setUserClaims", e.token(models.RoleAdmin), body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad role: %d", w.Code)
	}
	if got := decode[errorBody](t, w); len(got.Fields) != 1 || got.Fields[0].Field != "role" {
		t.Fatalf("fields = %+v", got.Fields)
	}
}

func TestSyncRules(t *testing.T) {
	e := newEnv(t)
	if w := e.do(http.MethodPost, "/syncRules", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: %d", w.Code)
	}
	if w := e.do(http.MethodPost, "/syncRules", e.token(models.RoleTeacher), nil); w.Code != http.StatusForbidden || w.Body.String() != "Forbidden" {
		t.Fatalf("teacher: %d %q", w.Code, w.Body.String())
	}
	admin := e.token(models.RoleAdmin)
	for i := 0; i < 2; i++ {
		w := e.do(http.MethodPost, "/syncRules", admin, nil)
		if w.Code != http.StatusOK || w.Body.String() != fmt.Sprintf("Synced %d rules", len(rules.Catalog())) {
			t.Fatalf("run %d: %d %q", i, w.Code, w.Body.String())
		}
	}
	if w := e.do(http.MethodDelete, "/syncRules", admin, nil); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("DELETE: %d", w.Code)
	}
}

func TestAPIRequiresSession(t *testing.T) {
	e := newEnv(t)
	w := e.do(http.MethodGet, "/api/rules", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("code = %d", w.Code)
	}
	if got := decode[errorBody](t, w); got.Error == "" {
		t.Fatal("expected JSON error")
	}
	if w.Header().Get(headerRequestID) == "" {
		t.Fatal("request id header missing")
	}
}

// Полный сценарий: ростер, запись, рейтинг, финализация, экспорт.
func TestRecordToRankingFlow(t *testing.T) {
	e := newEnv(t)
	admin := e.token(models.RoleAdmin)

	w := e.do(http.MethodPost, "/api/classes", admin, models.NewClass{Grade: 10, Name: "10A1"})
	if w.Code != http.StatusCreated {
		t.Fatalf("class: %d %s", w.Code, w.Body.String())
	}
	cls := decode[models.Class](t, w)
	w = e.do(http.MethodPost, "/api/classes", admin, models.NewClass{Grade: 10, Name: "10A2"})
	other := decode[models.Class](t, w)

	w = e.do(http.MethodPost, "/api/students", admin, models.NewStudent{SchoolID: "HS001", FullName: "Nguyễn An", ClassID: cls.ID})
	if w.Code != http.StatusCreated {
		t.Fatalf("student: %d %s", w.Code, w.Body.String())
	}
	st := decode[models.Student](t, w)

	// прошлый учебный год: неделя гарантированно закончилась
	sy := e.weeks.SchoolYear(time.Now()) - 1
	day := e.weeks.TermStart(sy).AddDate(0, 0, 9)
	weekKey, err := e.weeks.Key(day)
	if err != nil {
		t.Fatal(err)
	}

	teacher := e.token(models.RoleTeacher)
	w = e.do(http.MethodPost, "/api/records", teacher, models.NewRecord{RuleCode: "KT001", StudentID: st.ID, Quantity: 2, EventDate: day})
	if w.Code != http.StatusCreated {
		t.Fatalf("record: %d %s", w.Code, w.Body.String())
	}
	rec := decode[models.Record](t, w)
	if rec.ClassID != cls.ID || rec.Points <= 0 {
		t.Fatalf("record = %+v", rec)
	}

	w = e.do(http.MethodPost, "/api/records", teacher, models.NewRecord{RuleCode: "NOPE", StudentID: st.ID, Quantity: 1, EventDate: day})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown rule: %d", w.Code)
	}

	w = e.do(http.MethodGet, "/api/rankings/"+weekKey+"?grade=10", teacher, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("ranking: %d %s", w.Code, w.Body.String())
	}
	b := decode[service.Board](t, w)
	if b.Locked || len(b.Standings) != 2 || b.Standings[0].ClassID != cls.ID || b.Standings[1].ClassID != other.ID {
		t.Fatalf("board = %+v", b)
	}

	if w := e.do(http.MethodPost, "/api/rankings/"+weekKey+"/finalize?grade=10", teacher, nil); w.Code != http.StatusForbidden {
		t.Fatalf("teacher finalize: %d", w.Code)
	}
	w = e.do(http.MethodPost, "/api/rankings/"+weekKey+"/finalize?grade=10", admin, nil)
	if w.Code != http.StatusOK || !decode[service.Board](t, w).Locked {
		t.Fatalf("finalize: %d %s", w.Code, w.Body.String())
	}

	w = e.do(http.MethodPost, "/api/records", teacher, models.NewRecord{RuleCode: "KT001", StudentID: st.ID, Quantity: 1, EventDate: day})
	if w.Code != http.StatusConflict {
		t.Fatalf("locked week: %d %s", w.Code, w.Body.String())
	}

	w = e.do(http.MethodGet, "/api/rankings/"+weekKey+"/export?grade=10", e.token(models.RolePrincipal), nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != xlsxMime {
		t.Fatalf("export: %d %s", w.Code, w.Header().Get("Content-Type"))
	}
	if !strings.HasPrefix(w.Header().Get("Content-Disposition"), "attachment;") {
		t.Fatalf("disposition = %q", w.Header().Get("Content-Disposition"))
	}

	homeroom := e.token(models.RoleHomeroomTeacher, other.ID)
	w = e.do(http.MethodGet, "/api/records?week="+weekKey, homeroom, nil)
	if w.Code != http.StatusOK || len(decode[[]models.Record](t, w)) != 0 {
		t.Fatalf("homeroom of other class sees: %s", w.Body.String())
	}
	if w := e.do(http.MethodGet, "/api/records/"+rec.ID, homeroom, nil); w.Code != http.StatusNotFound {
		t.Fatalf("foreign record: %d", w.Code)
	}
}

func TestLoginAndMe(t *testing.T) {
	e := newEnv(t)
	users := service.NewUsers(e.store, e.tokens, nil)
	if err := users.Bootstrap(context.Background(), "admin@school.vn", "change-me-now"); err != nil {
		t.Fatal(err)
	}

	if w := e.do(http.MethodPost, "/auth/token", "", models.Credentials{Email: "admin@school.vn", Password: "nope"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: %d", w.Code)
	}
	w := e.do(http.MethodPost, "/auth/token", "", models.Credentials{Email: "admin@school.vn", Password: "change-me-now"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	tok := decode[service.TokenResponse](t, w)
	if !tok.Flags.SuperAdmin {
		t.Fatalf("flags = %+v", tok.Flags)
	}

	w = e.do(http.MethodGet, "/api/me", tok.Token, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"isSuperAdmin":true`) {
		t.Fatalf("me: %d %s", w.Code, w.Body.String())
	}
	if w := e.do(http.MethodPost, "/auth/refresh", tok.Token, nil); w.Code != http.StatusOK {
		t.Fatalf("refresh: %d", w.Code)
	}
}

func TestTokenWithoutRoleHasNoCapability(t *testing.T) {
	e := newEnv(t)
	tok := e.token(models.RoleNone)
	if w := e.do(http.MethodGet, "/api/classes", tok, nil); w.Code != http.StatusForbidden {
		t.Fatalf("code = %d", w.Code)
	}
	// но rules читать можно любому вошедшему
	if w := e.do(http.MethodGet, "/api/rules", tok, nil); w.Code != http.StatusOK {
		t.Fatalf("rules: %d", w.Code)
	}
}

func TestHealthzAndMetrics(t *testing.T) {
	e := newEnv(t)
	if w := e.do(http.MethodGet, "/healthz", "", nil); w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", w.Code, w.Body.String())
	}
	e.ping = errors.New("connection refused")
	if w := e.do(http.MethodGet, "/healthz", "", nil); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("healthz down: %d", w.Code)
	}
	w := e.do(http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "discipline_http_requests_total") {
		t.Fatalf("metrics: %d", w.Code)
	}
}
