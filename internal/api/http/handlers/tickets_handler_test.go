package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func createTicketViaGateway(t *testing.T, app *fiber.App, text string) string {
	t.Helper()
	resp := postJSON(t, app, "/webhooks/sms/gateway", map[string]string{
		"From": "+911234567890",
		"Body": text,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("seed ticket status = %d, want 201", resp.StatusCode)
	}
	data, _ := decodeBody(t, resp)["data"].(map[string]any)
	id, _ := data["ticket_id"].(string)
	return id
}

func registerAndLogin(t *testing.T, app *fiber.App, role string) string {
	t.Helper()
	resp := postJSON(t, app, "/auth/register", map[string]string{
		"name":     "Operator",
		"email":    role + "@example.com",
		"password": "s3cret",
		"role":     role,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d, want 201", resp.StatusCode)
	}
	data, _ := decodeBody(t, resp)["data"].(map[string]any)
	token, _ := data["token"].(string)
	if token == "" {
		t.Fatalf("register returned no token")
	}
	return token
}

func patchStatus(t *testing.T, app *fiber.App, ticketID, status, token string) *http.Response {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"status": status})
	req := httptest.NewRequest(http.MethodPatch, "/tickets/"+ticketID+"/status", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func TestGetTicketPublic(t *testing.T) {
	ta := newTestApp(t)
	id := createTicketViaGateway(t, ta.app, "pothole near the school gate")

	req := httptest.NewRequest(http.MethodGet, "/tickets/"+id, nil)
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	data, _ := decodeBody(t, resp)["data"].(map[string]any)
	if data["ticket_id"] != id {
		t.Fatalf("ticket_id = %v, want %s", data["ticket_id"], id)
	}
}

func TestGetTicketMissing(t *testing.T) {
	ta := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/tickets/TKT-MISSING1", nil)
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestUpdateStatusRequiresAdmin(t *testing.T) {
	ta := newTestApp(t)
	id := createTicketViaGateway(t, ta.app, "pothole near the school gate")

	resp := patchStatus(t, ta.app, id, "in_progress", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", resp.StatusCode)
	}

	citizenToken := registerAndLogin(t, ta.app, "citizen")
	resp = patchStatus(t, ta.app, id, "in_progress", citizenToken)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("citizen token: status = %d, want 403", resp.StatusCode)
	}
}

func TestUpdateStatusAsAdmin(t *testing.T) {
	ta := newTestApp(t)
	id := createTicketViaGateway(t, ta.app, "pothole near the school gate")
	adminToken := registerAndLogin(t, ta.app, "admin")

	resp := patchStatus(t, ta.app, id, "In Progress", adminToken)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	data, _ := decodeBody(t, resp)["data"].(map[string]any)
	if data["new_status"] != "in_progress" {
		t.Fatalf("new_status = %v, want in_progress", data["new_status"])
	}
	if data["in_progress_at"] == nil {
		t.Fatalf("first in_progress transition must carry in_progress_at")
	}

	resp = patchStatus(t, ta.app, id, "solved", adminToken)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown status: %d, want 400", resp.StatusCode)
	}
}

func TestListTicketsAdminOnly(t *testing.T) {
	ta := newTestApp(t)
	createTicketViaGateway(t, ta.app, "garbage pile in sector 3")
	adminToken := registerAndLogin(t, ta.app, "admin")

	req := httptest.NewRequest(http.MethodGet, "/tickets", nil)
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous list: %d, want 401", resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodGet, "/tickets", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err = ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin list: %d, want 200", resp.StatusCode)
	}
	items, _ := decodeBody(t, resp)["data"].([]any)
	if len(items) != 1 {
		t.Fatalf("list returned %d items, want 1", len(items))
	}
}
