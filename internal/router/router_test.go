package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hospital-queue/internal/platform/metrics"
	"hospital-queue/internal/router"
)

func TestHTTP_EndToEnd_OPDQueue(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	// 1) Paciente normal
	p1 := checkIn(t, ts.URL, "OPD", map[string]any{"patient_id": "P1"})
	if p1.QueueNumber != 1 || p1.Position != 1 || p1.Lane != "normal" {
		t.Fatalf("unexpected P1 check-in: %+v", p1)
	}

	// 2) Senior pasa a la lane priority
	p2 := checkIn(t, ts.URL, "opd", map[string]any{"patient_id": "P2", "is_senior": true})
	if p2.Lane != "priority" || p2.Position != 1 || p2.PriorityClass != "senior" {
		t.Fatalf("unexpected P2 check-in: %+v", p2)
	}

	// Tablero: [P2, P1] sin datos del paciente
	{
		st, body := doReq(t, ts.URL, "GET", "/departments/OPD/queue", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 board, got %d body=%s", st, string(body))
		}
		if strings.Contains(string(body), "P1") || strings.Contains(string(body), "patient_id") {
			t.Fatalf("board must not expose patient ids: %s", string(body))
		}
		var board struct {
			Entries []struct {
				QueueNumber int    `json:"queue_number"`
				Lane        string `json:"lane"`
				Position    int    `json:"position"`
			} `json:"entries"`
		}
		_ = json.Unmarshal(body, &board)
		if len(board.Entries) != 2 || board.Entries[0].Lane != "priority" || board.Entries[1].Lane != "normal" {
			t.Fatalf("unexpected board order: %s", string(body))
		}
	}

	// Vista del personal: mismo orden, con visit_id y patient_id
	{
		st, body := doReq(t, ts.URL, "GET", "/departments/opd/snapshot", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 snapshot, got %d body=%s", st, string(body))
		}
		var snap struct {
			Entries []struct {
				VisitID     string `json:"visit_id"`
				PatientID   string `json:"patient_id"`
				QueueNumber int    `json:"queue_number"`
				Lane        string `json:"lane"`
				Position    int    `json:"position"`
			} `json:"entries"`
		}
		_ = json.Unmarshal(body, &snap)
		if len(snap.Entries) != 2 {
			t.Fatalf("unexpected snapshot: %s", string(body))
		}
		first, second := snap.Entries[0], snap.Entries[1]
		if first.VisitID != p2.VisitID || first.PatientID != "P2" || first.Lane != "priority" || first.Position != 1 {
			t.Fatalf("unexpected snapshot head: %+v", first)
		}
		if second.VisitID != p1.VisitID || second.PatientID != "P1" || second.QueueNumber != 1 {
			t.Fatalf("unexpected snapshot tail: %+v", second)
		}
	}

	// 6) Duplicado => 409 con el número existente
	{
		st, body := doReq(t, ts.URL, "POST", "/departments/OPD/checkins", map[string]any{"patient_id": "P1"})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 duplicate, got %d body=%s", st, string(body))
		}
		var resp struct {
			ExistingQueueNumber int    `json:"existing_queue_number"`
			ExistingVisitID     string `json:"existing_visit_id"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.ExistingQueueNumber != 1 || resp.ExistingVisitID != p1.VisitID {
			t.Fatalf("duplicate must carry existing number: %s", string(body))
		}
	}

	// 3) + 4) call-next: priority primero
	if got := callNext(t, ts.URL, "OPD"); got.VisitID != p2.VisitID {
		t.Fatalf("expected P2 first, got %+v", got)
	}
	if got := callNext(t, ts.URL, "OPD"); got.VisitID != p1.VisitID {
		t.Fatalf("expected P1 second, got %+v", got)
	}
	if got := callNext(t, ts.URL, "OPD"); !got.Empty {
		t.Fatalf("expected empty queue signal, got %+v", got)
	}

	// cancel sobre in_progress => 409
	{
		st, body := doReq(t, ts.URL, "POST", "/visits/"+p2.VisitID+"/cancel", map[string]any{"reason": "left"})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 cancel in-progress, got %d body=%s", st, string(body))
		}
	}

	// 5) complete
	{
		st, body := doReq(t, ts.URL, "POST", "/visits/"+p2.VisitID+"/complete", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 complete, got %d body=%s", st, string(body))
		}
		var v struct {
			State string `json:"state"`
		}
		_ = json.Unmarshal(body, &v)
		if v.State != "completed" {
			t.Fatalf("expected completed, got %s", string(body))
		}
	}

	// complete dos veces => 409
	{
		st, _ := doReq(t, ts.URL, "POST", "/visits/"+p2.VisitID+"/complete", nil)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 on second complete, got %d", st)
		}
	}

	// espera estimada no aplica a visitas atendidas
	{
		st, body := doReq(t, ts.URL, "GET", "/visits/"+p2.VisitID+"/estimated-wait", nil)
		if st != http.StatusOK || !strings.Contains(string(body), `"applicable":false`) {
			t.Fatalf("expected applicable=false, got %d body=%s", st, string(body))
		}
	}

	// stats
	{
		st, body := doReq(t, ts.URL, "GET", "/departments/OPD/stats", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 stats, got %d body=%s", st, string(body))
		}
		var s struct {
			InProgress int `json:"in_progress"`
			Completed  int `json:"completed"`
		}
		_ = json.Unmarshal(body, &s)
		if s.InProgress != 1 || s.Completed != 1 {
			t.Fatalf("unexpected stats: %s", string(body))
		}
	}
}

func TestHTTP_CancelWaitingVisit(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	a := checkIn(t, ts.URL, "Pharmacy", map[string]any{"patient_id": "A"})
	b := checkIn(t, ts.URL, "Pharmacy", map[string]any{"patient_id": "B"})
	if b.EstimatedWaitSeconds != 15*60 {
		t.Fatalf("expected 15m estimate with no history, got %d", b.EstimatedWaitSeconds)
	}

	// cancel sin body
	st, body := doReq(t, ts.URL, "POST", "/visits/"+a.VisitID+"/cancel", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 cancel, got %d body=%s", st, string(body))
	}

	st, body = doReq(t, ts.URL, "GET", "/visits/"+b.VisitID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 get visit, got %d", st)
	}
	var v struct {
		Position             int `json:"position"`
		EstimatedWaitSeconds int `json:"estimated_wait_seconds"`
	}
	_ = json.Unmarshal(body, &v)
	if v.Position != 1 || v.EstimatedWaitSeconds != 0 {
		t.Fatalf("expected B to move to the head, got %s", string(body))
	}

	st, body = doReq(t, ts.URL, "GET", "/departments/Pharmacy/lanes/normal", nil)
	if st != http.StatusOK || strings.Count(string(body), `"id"`) != 1 {
		t.Fatalf("expected one normal entry, got %d body=%s", st, string(body))
	}
}

func TestHTTP_ValidationErrors(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	cases := []struct {
		method, path string
		payload      any
		want         int
	}{
		{"POST", "/departments/Radiology/checkins", map[string]any{"patient_id": "P1"}, http.StatusNotFound},
		{"POST", "/departments/OPD/checkins", map[string]any{"patient_id": " "}, http.StatusBadRequest},
		{"POST", "/departments/OPD/call-next", nil, http.StatusOK},
		{"GET", "/departments/OPD/lanes/vip", nil, http.StatusBadRequest},
		{"GET", "/visits/unknown", nil, http.StatusNotFound},
		{"POST", "/visits/unknown/complete", nil, http.StatusNotFound},
		{"GET", "/departments/Billing/service-time", nil, http.StatusOK},
	}

	for _, tc := range cases {
		st, body := doReq(t, ts.URL, tc.method, tc.path, tc.payload)
		if st != tc.want {
			t.Fatalf("%s %s: expected %d, got %d body=%s", tc.method, tc.path, tc.want, st, string(body))
		}
	}

	// json inválido
	req, _ := http.NewRequest("POST", ts.URL+"/departments/OPD/checkins", strings.NewReader("{"))
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 invalid json, got %d", res.StatusCode)
	}
}

func TestHTTP_HealthAndMetrics(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{Metrics: metrics.New()}))
	defer ts.Close()

	st, body := doReq(t, ts.URL, "GET", "/health", nil)
	if st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("unexpected health: %d %s", st, string(body))
	}

	checkIn(t, ts.URL, "Billing", map[string]any{"patient_id": "P1"})

	st, body = doReq(t, ts.URL, "GET", "/metrics", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 metrics, got %d", st)
	}
	if !strings.Contains(string(body), `route="/departments/{department}/checkins"`) {
		t.Fatalf("expected checkin route in metrics, got %s", string(body))
	}
}

type checkInResp struct {
	VisitID              string `json:"visit_id"`
	QueueNumber          int    `json:"queue_number"`
	Lane                 string `json:"lane"`
	PriorityClass        string `json:"priority_class"`
	Position             int    `json:"position"`
	EstimatedWaitSeconds int    `json:"estimated_wait_seconds"`
}

type callNextResp struct {
	Empty       bool   `json:"empty"`
	VisitID     string `json:"visit_id"`
	QueueNumber int    `json:"queue_number"`
}

func checkIn(t *testing.T, baseURL, dept string, payload map[string]any) checkInResp {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/departments/"+dept+"/checkins", payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 check-in, got %d body=%s", st, string(body))
	}

	var resp checkInResp
	_ = json.Unmarshal(body, &resp)
	if resp.VisitID == "" {
		t.Fatalf("check-in: missing visit_id body=%s", string(body))
	}
	return resp
}

func callNext(t *testing.T, baseURL, dept string) callNextResp {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/departments/"+dept+"/call-next", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 call-next, got %d body=%s", st, string(body))
	}
	var resp callNextResp
	_ = json.Unmarshal(body, &resp)
	return resp
}

func doReq(t *testing.T, baseURL, method, path string, payload any) (int, []byte) {
	t.Helper()

	var r io.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	b, _ := io.ReadAll(res.Body)
	return res.StatusCode, b
}
