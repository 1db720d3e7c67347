package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"opencure/internal/escrow"
	"opencure/internal/http/handlers"
	"opencure/internal/middleware"
	"opencure/internal/token"
)

const testSecret = "test-secret"

var (
	owner     = common.HexToAddress("0x00000000000000000000000000000000000000A1")
	scientist = common.HexToAddress("0x00000000000000000000000000000000000000B2")
	alice     = common.HexToAddress("0x00000000000000000000000000000000000000C3")
	bob       = common.HexToAddress("0x00000000000000000000000000000000000000D4")
	factory   = common.HexToAddress("0x00000000000000000000000000000000000E5C40")
)

type testServer struct {
	t      *testing.T
	srv    *httptest.Server
	ledger *token.Memory
}

func newTestServer(t *testing.T, faucet bool) *testServer {
	t.Helper()
	ledger := token.NewMemory()
	reg, err := escrow.NewRegistry(escrow.RegistryOptions{
		Ledger:   ledger,
		Factory:  factory,
		Logger:   zerolog.Nop(),
		Defaults: escrow.Defaults{MinDonation: 1},
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	app := &handlers.App{
		Registry: reg,
		Ledger:   ledger,
		Logger:   zerolog.Nop(),
		Decimals: token.DefaultDecimals,
		Faucet:   faucet,
	}
	srv := httptest.NewServer(NewRouter(app, Options{JWTSecret: testSecret, Logger: zerolog.Nop()}))
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv, ledger: ledger}
}

func bearer(t *testing.T, addr common.Address) string {
	t.Helper()
	tok, err := middleware.SignJWT(testSecret, middleware.TokenClaims{Sub: addr.Hex()})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	return "Bearer " + tok
}

// do sends body as JSON on behalf of as (zero address for anonymous) and
// decodes the response into a generic map.
func (s *testServer) do(method, path string, as common.Address, body any, headers ...string) (int, map[string]any) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode: %v", err)
		}
	}
	req, err := http.NewRequest(method, s.srv.URL+path, &buf)
	if err != nil {
		s.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if as != (common.Address{}) {
		req.Header.Set("Authorization", bearer(s.t, as))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		s.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func (s *testServer) mustDo(want int, method, path string, as common.Address, body any) map[string]any {
	s.t.Helper()
	code, out := s.do(method, path, as, body)
	if code != want {
		s.t.Fatalf("%s %s: status %d, want %d, body %v", method, path, code, want, out)
	}
	return out
}

func (s *testServer) createProject(goal uint64) string {
	s.t.Helper()
	out := s.mustDo(http.StatusCreated, http.MethodPost, "/v1/projects", owner, map[string]any{
		"name":                     "ALS gene therapy",
		"category":                 "neurology",
		"beneficiary":              scientist.Hex(),
		"goal_amount":              goal,
		"funding_duration_seconds": 3600,
	})
	id, _ := out["id"].(string)
	if id == "" {
		s.t.Fatalf("project id missing: %v", out)
	}
	return id
}

func (s *testServer) fund(projectID string, donor common.Address, amount uint64) {
	s.t.Helper()
	s.mustDo(http.StatusOK, http.MethodPost, "/v1/token/mint", donor, map[string]any{"amount": amount})
	s.mustDo(http.StatusOK, http.MethodPost, "/v1/token/approve", donor, map[string]any{"project_id": projectID, "amount": amount})
	s.mustDo(http.StatusCreated, http.MethodPost, "/v1/projects/"+projectID+"/donations", donor, map[string]any{"amount": amount})
}

func errorCode(out map[string]any) string {
	e, _ := out["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func errorMessage(out map[string]any) string {
	e, _ := out["error"].(map[string]any)
	msg, _ := e["message"].(string)
	return msg
}

func TestMilestoneLifecycle(t *testing.T) {
	s := newTestServer(t, true)
	id := s.createProject(1000)
	base := "/v1/projects/" + id

	s.fund(id, alice, 600)
	s.fund(id, bob, 500)

	got := s.mustDo(http.StatusOK, http.MethodGet, base, common.Address{}, nil)
	project := got["project"].(map[string]any)
	if project["total_raised"].(float64) != 1100 || project["donor_count"].(float64) != 2 {
		t.Fatalf("project = %v", project)
	}
	if project["funding_succeeded"] != true || got["custody_balance"].(float64) != 1100 {
		t.Fatalf("funding state = %v", got)
	}

	m := s.mustDo(http.StatusCreated, http.MethodPost, base+"/milestones", owner, map[string]any{
		"description": "Phase I trial",
		"amount":      800,
	})
	if m["id"].(float64) != 0 || m["amount_display"] != "0.000800" {
		t.Fatalf("milestone = %v", m)
	}

	s.mustDo(http.StatusOK, http.MethodPost, base+"/milestones/0/complete", owner, nil)

	code, out := s.do(http.MethodPost, base+"/milestones/0/release", owner, nil)
	if code != http.StatusConflict || errorCode(out) != "vote_not_passed" {
		t.Fatalf("release before vote: %d %v", code, out)
	}

	voted := s.mustDo(http.StatusOK, http.MethodPost, base+"/milestones/0/votes", alice, map[string]any{"support": true})
	if voted["votes_for"].(float64) != 600 || voted["vote_passed"] != true {
		t.Fatalf("vote = %v", voted)
	}

	code, out = s.do(http.MethodPost, base+"/milestones/0/votes", alice, map[string]any{"support": false})
	if code != http.StatusConflict || errorCode(out) != "already_voted" {
		t.Fatalf("double vote: %d %v", code, out)
	}

	released := s.mustDo(http.StatusOK, http.MethodPost, base+"/milestones/0/release", owner, nil)
	if released["funds_released"] != true {
		t.Fatalf("release = %v", released)
	}
	bal := s.mustDo(http.StatusOK, http.MethodGet, "/v1/token/balances/"+scientist.Hex(), common.Address{}, nil)
	if bal["balance"].(float64) != 800 || bal["display"] != "0.000800" {
		t.Fatalf("scientist balance = %v", bal)
	}

	detail := s.mustDo(http.StatusOK, http.MethodGet, base+"/milestones/0", common.Address{}, nil)
	if votes := detail["votes"].([]any); len(votes) != 1 {
		t.Fatalf("votes = %v", detail["votes"])
	}

	events := s.mustDo(http.StatusOK, http.MethodGet, base+"/events", common.Address{}, nil)
	var types []string
	for _, item := range events["items"].([]any) {
		types = append(types, item.(map[string]any)["type"].(string))
	}
	want := []string{"DonationReceived", "DonationReceived", "MilestoneAdded", "MilestoneCompleted", "VoteCast", "FundsReleased"}
	if fmt.Sprint(types) != fmt.Sprint(want) {
		t.Fatalf("events = %v, want %v", types, want)
	}

	donors := s.mustDo(http.StatusOK, http.MethodGet, base+"/donors", common.Address{}, nil)
	if len(donors["items"].([]any)) != 2 {
		t.Fatalf("donors = %v", donors)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	s := newTestServer(t, true)
	id := s.createProject(1000)
	base := "/v1/projects/" + id

	tests := []struct {
		name     string
		method   string
		path     string
		as       common.Address
		body     any
		wantCode int
		wantErr  string
	}{
		{name: "no token", method: http.MethodPost, path: base + "/pause", wantCode: http.StatusUnauthorized},
		{name: "not owner", method: http.MethodPost, path: base + "/pause", as: alice, wantCode: http.StatusForbidden, wantErr: "only_owner"},
		{name: "missing project", method: http.MethodGet, path: "/v1/projects/nope", wantCode: http.StatusNotFound, wantErr: "not_found"},
		{name: "zero donation", method: http.MethodPost, path: base + "/donations", as: alice, body: map[string]any{"amount": 0}, wantCode: http.StatusBadRequest, wantErr: "invalid_amount"},
		{name: "no allowance", method: http.MethodPost, path: base + "/donations", as: alice, body: map[string]any{"amount": 5}, wantCode: http.StatusUnprocessableEntity, wantErr: "insufficient_allowance"},
		{name: "refund before deadline", method: http.MethodPost, path: base + "/refunds", as: alice, wantCode: http.StatusPreconditionFailed, wantErr: "refund_not_available"},
		{name: "bad milestone id", method: http.MethodGet, path: base + "/milestones/x", wantCode: http.StatusBadRequest, wantErr: "invalid_milestone"},
		{name: "vote without support", method: http.MethodPost, path: base + "/milestones/0/votes", as: alice, body: map[string]any{}, wantCode: http.StatusBadRequest, wantErr: "invalid_payload"},
		{name: "bad beneficiary", method: http.MethodPut, path: base + "/beneficiary", as: owner, body: map[string]any{"beneficiary": "0x123"}, wantCode: http.StatusBadRequest, wantErr: "invalid_address"},
		{name: "journal not configured", method: http.MethodGet, path: base + "/events?source=journal", wantCode: http.StatusNotImplemented, wantErr: "journal_unavailable"},
		{name: "journal bad limit", method: http.MethodGet, path: base + "/events?source=journal&limit=abc", wantCode: http.StatusBadRequest, wantErr: "invalid_input"},
		{name: "funding duration overflow", method: http.MethodPost, path: "/v1/projects", as: owner, body: map[string]any{
			"name": "Overflow", "beneficiary": scientist.Hex(), "goal_amount": 1, "funding_duration_seconds": int64(1) << 62,
		}, wantCode: http.StatusBadRequest, wantErr: "invalid_duration"},
		{name: "milestone duration overflow", method: http.MethodPost, path: base + "/milestones", as: owner, body: map[string]any{
			"description": "Overflow", "amount": 1, "duration_seconds": int64(9223372037),
		}, wantCode: http.StatusBadRequest, wantErr: "invalid_duration"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, out := s.do(tc.method, tc.path, tc.as, tc.body)
			if code != tc.wantCode {
				t.Fatalf("status = %d, want %d (%v)", code, tc.wantCode, out)
			}
			if tc.wantErr != "" && errorCode(out) != tc.wantErr {
				t.Fatalf("error code = %q, want %q", errorCode(out), tc.wantErr)
			}
		})
	}
}

func TestAdminEndpoints(t *testing.T) {
	s := newTestServer(t, true)
	id := s.createProject(1000)
	base := "/v1/projects/" + id

	paused := s.mustDo(http.StatusOK, http.MethodPost, base+"/pause", owner, nil)
	if paused["paused"] != true {
		t.Fatalf("pause = %v", paused)
	}
	code, out := s.do(http.MethodPost, base+"/donations", alice, map[string]any{"amount": 1})
	if code != http.StatusConflict || errorCode(out) != "paused" {
		t.Fatalf("donate while paused: %d %v", code, out)
	}
	s.mustDo(http.StatusOK, http.MethodPost, base+"/unpause", owner, nil)

	next := common.HexToAddress("0x00000000000000000000000000000000000000E5")
	updated := s.mustDo(http.StatusOK, http.MethodPut, base+"/beneficiary", owner, map[string]any{"beneficiary": next.Hex()})
	if updated["beneficiary"] != next.Hex() {
		t.Fatalf("beneficiary = %v", updated)
	}

	s.fund(id, alice, 40)
	failed := s.mustDo(http.StatusOK, http.MethodPost, base+"/fail", owner, nil)
	if failed["status"] != "failed" {
		t.Fatalf("fail = %v", failed)
	}
	refund := s.mustDo(http.StatusOK, http.MethodPost, base+"/refunds", alice, nil)
	if refund["refunded"].(float64) != 40 {
		t.Fatalf("refund = %v", refund)
	}
	if bal, _ := s.ledger.BalanceOf(context.Background(), alice); bal != 40 {
		t.Fatalf("alice balance = %d, want 40", bal)
	}

	list := s.mustDo(http.StatusOK, http.MethodGet, "/v1/projects?status=failed", common.Address{}, nil)
	if len(list["items"].([]any)) != 1 {
		t.Fatalf("filtered list = %v", list)
	}
	list = s.mustDo(http.StatusOK, http.MethodGet, "/v1/projects?status=active", common.Address{}, nil)
	if len(list["items"].([]any)) != 0 {
		t.Fatalf("filtered list = %v", list)
	}
}

func TestErrorsAreLocalized(t *testing.T) {
	s := newTestServer(t, true)
	id := s.createProject(1000)

	code, out := s.do(http.MethodPost, "/v1/projects/"+id+"/donations", alice, map[string]any{"amount": 0}, "X-Locale", "id")
	if code != http.StatusBadRequest || errorMessage(out) != "Jumlah harus > 0" {
		t.Fatalf("localized response = %d %v", code, out)
	}
	code, out = s.do(http.MethodPost, "/v1/projects/"+id+"/donations", alice, map[string]any{"amount": 0}, "Accept-Language", "en-US")
	if code != http.StatusBadRequest || errorMessage(out) != "Amount must be > 0" {
		t.Fatalf("english response = %d %v", code, out)
	}
}

func TestFaucetDisabled(t *testing.T) {
	s := newTestServer(t, false)
	code, out := s.do(http.MethodPost, "/v1/token/mint", alice, map[string]any{"amount": 10})
	if code != http.StatusForbidden || errorCode(out) != "faucet_disabled" {
		t.Fatalf("mint with faucet off: %d %v", code, out)
	}
}

func TestTokenAllowanceQuery(t *testing.T) {
	s := newTestServer(t, true)
	s.mustDo(http.StatusOK, http.MethodPost, "/v1/token/mint", alice, map[string]any{"amount": 70, "to": bob.Hex()})
	s.mustDo(http.StatusOK, http.MethodPost, "/v1/token/approve", bob, map[string]any{"spender": alice.Hex(), "amount": 30})

	out := s.mustDo(http.StatusOK, http.MethodGet, "/v1/token/balances/"+bob.Hex()+"?spender="+alice.Hex(), common.Address{}, nil)
	if out["balance"].(float64) != 70 || out["allowance"].(float64) != 30 {
		t.Fatalf("balance = %v", out)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, false)
	s.createProject(10)
	out := s.mustDo(http.StatusOK, http.MethodGet, "/v1/healthz", common.Address{}, nil)
	if out["status"] != "ok" || out["projects"].(float64) != 1 || out["journal"] != false {
		t.Fatalf("health = %v", out)
	}
}

func TestStatsAndDocs(t *testing.T) {
	s := newTestServer(t, true)
	first := s.createProject(1000)
	s.createProject(500)
	s.fund(first, alice, 300)
	s.mustDo(http.StatusOK, http.MethodPost, "/v1/projects/"+first+"/pause", owner, nil)

	stats := s.mustDo(http.StatusOK, http.MethodGet, "/v1/stats", common.Address{}, nil)
	if stats["projects"].(float64) != 2 || stats["total_raised"].(float64) != 300 || stats["donations"].(float64) != 1 {
		t.Fatalf("stats = %v", stats)
	}
	states := stats["projects_by_state"].(map[string]any)
	if states["paused"].(float64) != 1 || states["active"].(float64) != 1 {
		t.Fatalf("projects_by_state = %v", states)
	}

	doc := s.mustDo(http.StatusOK, http.MethodGet, "/v1/openapi.json", common.Address{}, nil)
	paths, _ := doc["paths"].(map[string]any)
	if _, ok := paths["/v1/projects/{id}/milestones/{mid}/release"]; !ok {
		t.Fatalf("openapi document misses release path")
	}

	resp, err := http.Get(s.srv.URL + "/v1/docs")
	if err != nil {
		t.Fatalf("GET /v1/docs: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "text/html; charset=utf-8" {
		t.Fatalf("docs = %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
}
