package category

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestGetCategories(t *testing.T) {
	repo := NewInMemoryRepository([]Category{
		{ID: 1, Name: "Groceries"},
		{ID: 2, Name: "Fruits & Vegetables"},
		{ID: 3, Name: "Cold Cuts"},
	})
	app := fiber.New()
	NewHandler(NewService(repo)).RegisterPublicRoutes(app)

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/categories?limit=2", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 got %d", res.StatusCode)
	}
	var got []Category
	if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Groceries" {
		t.Fatalf("unexpected categories %+v", got)
	}

	res, err = app.Test(httptest.NewRequest("GET", "/api/v1/categories?limit=0", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for limit=0, got %d", res.StatusCode)
	}
}

func TestGetCategory(t *testing.T) {
	repo := NewInMemoryRepository([]Category{{ID: 4, Name: "Dairy", Icon: "🥛"}})
	app := fiber.New()
	NewHandler(NewService(repo)).RegisterPublicRoutes(app)

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/categories/4", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var got Category
	if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Name != "Dairy" {
		t.Fatalf("unexpected category %+v", got)
	}

	res, err = app.Test(httptest.NewRequest("GET", "/api/v1/categories/9", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.StatusCode)
	}
}

func TestInMemorySeedKeepsExisting(t *testing.T) {
	repo := NewInMemoryRepository([]Category{{ID: 1, Name: "Groceries"}})
	if err := repo.Seed(t.Context(), []Category{{ID: 1, Name: "Other"}, {ID: 4, Name: "Dairy"}}); err != nil {
		t.Fatal(err)
	}
	c, err := repo.GetByID(t.Context(), 1)
	if err != nil || c.Name != "Groceries" {
		t.Fatalf("seed overwrote existing category: %+v %v", c, err)
	}
	if _, err := repo.GetByID(t.Context(), 4); err != nil {
		t.Fatalf("expected seeded category 4: %v", err)
	}
	if _, err := repo.GetByID(t.Context(), 9); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
