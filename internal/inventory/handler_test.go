package inventory

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func newTestApp() *fiber.App {
	app := fiber.New()
	NewHandler(NewService(newCatalog(), DefaultLowStockThreshold)).RegisterAdminRoutes(app.Group("/api/v1/admin"))
	return app
}

func TestAdjustHandler(t *testing.T) {
	app := newTestApp()

	cases := []struct {
		name string
		path string
		body string
		want int
	}{
		{"ok", "/api/v1/admin/inventory/101", `{"stock":12}`, fiber.StatusOK},
		{"negative", "/api/v1/admin/inventory/101", `{"stock":-1}`, fiber.StatusUnprocessableEntity},
		{"missing", "/api/v1/admin/inventory/101", `{}`, fiber.StatusBadRequest},
		{"unknown", "/api/v1/admin/inventory/999", `{"stock":1}`, fiber.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("PATCH", tc.path, strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			res, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if res.StatusCode != tc.want {
				t.Fatalf("expected %d got %d", tc.want, res.StatusCode)
			}
		})
	}
}

func TestListHandler(t *testing.T) {
	res, err := newTestApp().Test(httptest.NewRequest("GET", "/api/v1/admin/inventory?status=out_of_stock", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	var body struct {
		Items   []Item  `json:"items"`
		Summary Summary `json:"summary"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Items) != 1 || body.Items[0].ID != 107 || body.Summary.OutOfStock != 1 {
		t.Fatalf("unexpected body %+v", body)
	}
}
