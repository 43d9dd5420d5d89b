package dispatch

import (
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/grocery-delivery-backend/internal/order"
)

func makeAppWithDispatchHandler(dHandler *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-Driver-ID"); v != "" {
			id, err := strconv.Atoi(v)
			if err == nil {
				claims := jwt.MapClaims{"user_id": 100 + id, "role": "driver", "driver_id": id}
				c.Locals("user", &jwt.Token{Claims: claims})
			}
		}
		return c.Next()
	})
	dHandler.RegisterAdminRoutes(app.Group("/api/v1/admin"))
	dHandler.RegisterDriverRoutes(app.Group("/api/v1/driver"))
	return app
}

func call(t *testing.T, app *fiber.App, method, path, driverID, body string) *httptestResponse {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if driverID != "" {
		req.Header.Set("X-Driver-ID", driverID)
	}
	res, err := app.Test(req)
	require.NoError(t, err)
	return &httptestResponse{code: res.StatusCode, dec: json.NewDecoder(res.Body)}
}

type httptestResponse struct {
	code int
	dec  *json.Decoder
}

func TestDispatchRoutes(t *testing.T) {
	f := newFixture()
	app := makeAppWithDispatchHandler(NewHandler(f.svc))
	o := f.preparing(t)
	assignPath := "/api/v1/admin/orders/" + strconv.Itoa(o.ID) + "/assign"

	res := call(t, app, "POST", assignPath, "", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, res.code)

	res = call(t, app, "POST", assignPath, "", `{"driverId":999}`)
	assert.Equal(t, fiber.StatusNotFound, res.code)

	res = call(t, app, "POST", assignPath, "", `{"driverId":301}`)
	require.Equal(t, fiber.StatusOK, res.code)
	var assigned order.Order
	require.NoError(t, res.dec.Decode(&assigned))
	assert.Equal(t, order.OnTheWay, assigned.Status)

	res = call(t, app, "GET", "/api/v1/admin/drivers/available", "", "")
	require.Equal(t, fiber.StatusOK, res.code)
	var avail []map[string]any
	require.NoError(t, res.dec.Decode(&avail))
	assert.Len(t, avail, 1)

	res = call(t, app, "GET", "/api/v1/driver/deliveries", "", "")
	assert.Equal(t, fiber.StatusForbidden, res.code)

	res = call(t, app, "GET", "/api/v1/driver/deliveries", "301", "")
	require.Equal(t, fiber.StatusOK, res.code)
	var active []order.Order
	require.NoError(t, res.dec.Decode(&active))
	assert.Len(t, active, 1)

	deliveredPath := "/api/v1/driver/orders/" + strconv.Itoa(o.ID) + "/delivered"
	res = call(t, app, "POST", deliveredPath, "302", "")
	assert.Equal(t, fiber.StatusForbidden, res.code)
	res = call(t, app, "POST", deliveredPath, "301", "")
	assert.Equal(t, fiber.StatusOK, res.code)

	res = call(t, app, "GET", "/api/v1/driver/earnings", "301", "")
	require.Equal(t, fiber.StatusOK, res.code)
	var e struct {
		DeliveredOrders int    `json:"deliveredOrders"`
		Total           string `json:"total"`
	}
	require.NoError(t, res.dec.Decode(&e))
	assert.Equal(t, 1, e.DeliveredOrders)
	assert.Equal(t, "1.73", e.Total)
}
