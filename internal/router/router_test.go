package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"medicare-companion/internal/router"
)

func TestHTTP_EndToEnd_DailyAdherence(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	userID := "patient-1"

	// 1) Alta de dos medicaciones, una sin horario (usa el default 09:00)
	aspirinID := createMedication(t, ts.URL, userID, map[string]any{
		"name":           "Aspirin",
		"dosage":         "100mg",
		"scheduled_time": "08:00",
	})
	vitaminID := createMedication(t, ts.URL, userID, map[string]any{
		"name":   "Vitamin D",
		"dosage": "1000 IU",
	})

	// 2) El listado trae ambas con estado "no tomada" y display time
	{
		st, body := doReq(t, ts.URL, "GET", "/medications", userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list, got %d body=%s", st, string(body))
		}
		items := decodeStatusList(t, body)
		if len(items) != 2 {
			t.Fatalf("expected 2 medications, got %d", len(items))
		}
		// orden por scheduled_time: 08:00 antes que 09:00
		if items[0].ID != aspirinID || items[1].ID != vitaminID {
			t.Fatalf("unexpected order: %s, %s", items[0].Name, items[1].Name)
		}
		if items[0].DisplayTime != "8:00 AM" {
			t.Fatalf("expected display_time 8:00 AM, got %q", items[0].DisplayTime)
		}
		if items[1].ScheduledTime != "09:00" {
			t.Fatalf("expected default scheduled_time 09:00, got %q", items[1].ScheduledTime)
		}
		for _, it := range items {
			if it.TakenToday || it.TakenAt != nil || it.LogID != nil {
				t.Fatalf("expected untaken status for %s", it.Name)
			}
		}
	}

	// 3) Marcar una como tomada hoy
	{
		st, body := doReq(t, ts.URL, "POST", "/medications/"+aspirinID+"/taken", userID, nil)
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 mark taken, got %d body=%s", st, string(body))
		}
	}

	// 4) El listado reconcilia: taken_today con log_id real
	var logID string
	{
		st, body := doReq(t, ts.URL, "GET", "/medications", userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list, got %d", st)
		}
		items := decodeStatusList(t, body)
		for _, it := range items {
			if it.ID == aspirinID {
				if !it.TakenToday || it.TakenAt == nil || it.LogID == nil {
					t.Fatalf("expected reconciled taken status, got %+v", it)
				}
				logID = *it.LogID
			} else if it.TakenToday {
				t.Fatalf("medication %s should stay untaken", it.Name)
			}
		}
		if logID == "" {
			t.Fatal("missing log id after mark taken")
		}
	}

	// 5) Segunda marca el mismo día => 409
	{
		st, body := doReq(t, ts.URL, "POST", "/medications/"+aspirinID+"/taken", userID, nil)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 on second mark, got %d body=%s", st, string(body))
		}
	}

	// 6) Deshacer la toma por log id
	{
		st, _ := doReq(t, ts.URL, "DELETE", "/medications/taken/"+logID, userID, nil)
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 unmark, got %d", st)
		}

		st, body := doReq(t, ts.URL, "GET", "/medications", userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list, got %d", st)
		}
		for _, it := range decodeStatusList(t, body) {
			if it.TakenToday || it.LogID != nil {
				t.Fatalf("expected untaken status after unmark for %s", it.Name)
			}
		}
	}

	// 7) Borrar una medicación la saca del listado
	{
		st, _ := doReq(t, ts.URL, "DELETE", "/medications/"+vitaminID, userID, nil)
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 delete, got %d", st)
		}

		_, body := doReq(t, ts.URL, "GET", "/medications", userID, nil)
		items := decodeStatusList(t, body)
		if len(items) != 1 || items[0].ID != aspirinID {
			t.Fatalf("expected only aspirin left, got %d items", len(items))
		}
	}

	// 8) Otro usuario no ve nada
	{
		_, body := doReq(t, ts.URL, "GET", "/medications", "patient-2", nil)
		if items := decodeStatusList(t, body); len(items) != 0 {
			t.Fatalf("expected empty list for other user, got %d", len(items))
		}
	}
}

func TestHTTP_Medications_ScopedToOwner(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	ownerID := "patient-1"
	otherID := "patient-2"

	medID := createMedication(t, ts.URL, ownerID, map[string]any{
		"name":   "Aspirin",
		"dosage": "100mg",
	})

	// 1) Otro usuario no puede marcarla como tomada
	{
		st, _ := doReq(t, ts.URL, "POST", "/medications/"+medID+"/taken", otherID, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 foreign mark, got %d", st)
		}
	}

	// 2) El día del dueño sigue libre: su vista no cambió y su primera
	//    marca no conflictúa
	var logID string
	{
		_, body := doReq(t, ts.URL, "GET", "/medications", ownerID, nil)
		items := decodeStatusList(t, body)
		if len(items) != 1 || items[0].TakenToday {
			t.Fatalf("owner view must stay untaken after foreign mark: %+v", items)
		}

		st, _ := doReq(t, ts.URL, "POST", "/medications/"+medID+"/taken", ownerID, nil)
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 owner mark, got %d", st)
		}

		_, body = doReq(t, ts.URL, "GET", "/medications", ownerID, nil)
		items = decodeStatusList(t, body)
		if items[0].LogID == nil {
			t.Fatalf("missing log id after owner mark")
		}
		logID = *items[0].LogID
	}

	// 3) Otro usuario no puede revertir la toma ni borrar la medicación
	{
		st, _ := doReq(t, ts.URL, "DELETE", "/medications/taken/"+logID, otherID, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 foreign unmark, got %d", st)
		}

		st, _ = doReq(t, ts.URL, "DELETE", "/medications/"+medID, otherID, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 foreign delete, got %d", st)
		}

		_, body := doReq(t, ts.URL, "GET", "/medications", ownerID, nil)
		items := decodeStatusList(t, body)
		if len(items) != 1 || !items[0].TakenToday {
			t.Fatalf("owner view must survive foreign mutations: %+v", items)
		}
	}
}

func TestHTTP_Medications_Validation(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	userID := "patient-1"

	// nombre vacío => 400
	{
		st, _ := doReq(t, ts.URL, "POST", "/medications", userID, map[string]any{
			"name":   "",
			"dosage": "10mg",
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for empty name, got %d", st)
		}
	}

	// horario inválido => 400
	{
		st, _ := doReq(t, ts.URL, "POST", "/medications", userID, map[string]any{
			"name":           "Aspirin",
			"dosage":         "10mg",
			"scheduled_time": "25:00",
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for invalid time, got %d", st)
		}
	}

	// sin usuario => 401
	{
		st, _ := doReq(t, ts.URL, "GET", "/medications", "", nil)
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 without user, got %d", st)
		}
	}
}

func TestHTTP_DevModeSurface(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{
		AuthVerifier: nil,
		NotifySecret: "s3cret",
	}))
	defer ts.Close()

	// health siempre responde
	{
		st, body := doReq(t, ts.URL, "GET", "/health", "", nil)
		if st != http.StatusOK || string(body) != "ok" {
			t.Fatalf("expected 200 ok, got %d body=%s", st, string(body))
		}
	}

	// sin Authenticator, /auth/* devuelve 503
	{
		st, _ := doReq(t, ts.URL, "POST", "/auth/signup", "", map[string]any{
			"email":    "ana@example.com",
			"password": "Password1",
		})
		if st != http.StatusServiceUnavailable {
			t.Fatalf("expected 503 signup without auth backend, got %d", st)
		}
	}

	// sin perfil creado todavía => 404
	{
		st, _ := doReq(t, ts.URL, "GET", "/me/profile", "patient-1", nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 profile, got %d", st)
		}
	}

	// trigger del notificador: sin secret => 401, con secret => resumen vacío
	{
		st, _ := doReq(t, ts.URL, "POST", "/internal/notifications/run", "", nil)
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 without secret, got %d", st)
		}

		req, err := http.NewRequest("POST", ts.URL+"/internal/notifications/run", nil)
		if err != nil {
			t.Fatalf("new request: %v", err)
		}
		req.Header.Set("X-Notify-Secret", "s3cret")
		res, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("do request: %v", err)
		}
		defer res.Body.Close()
		if res.StatusCode != http.StatusOK {
			t.Fatalf("expected 200 run, got %d", res.StatusCode)
		}
		var summary struct {
			Sent   int `json:"sent"`
			Failed int `json:"failed"`
			Total  int `json:"total"`
		}
		if err := json.NewDecoder(res.Body).Decode(&summary); err != nil {
			t.Fatalf("decode summary: %v", err)
		}
		if summary.Sent != 0 || summary.Failed != 0 || summary.Total != 0 {
			t.Fatalf("expected empty summary, got %+v", summary)
		}
	}
}

type statusItem struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	ScheduledTime string  `json:"scheduled_time"`
	DisplayTime   string  `json:"display_time"`
	TakenToday    bool    `json:"taken_today"`
	TakenAt       *string `json:"taken_at"`
	LogID         *string `json:"log_id"`
}

func decodeStatusList(t *testing.T, body []byte) []statusItem {
	t.Helper()

	var items []statusItem
	if err := json.Unmarshal(body, &items); err != nil {
		t.Fatalf("decode list: %v body=%s", err, string(body))
	}
	return items
}

func createMedication(t *testing.T, baseURL, userID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/medications", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create medication, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create medication: missing id body=%s", string(body))
	}
	return resp.ID
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
