// Package seed loads the demo catalog, accounts and order history used to
// populate empty stores.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/wichananm65/grocery-delivery-backend/internal/address"
	"github.com/wichananm65/grocery-delivery-backend/internal/category"
	"github.com/wichananm65/grocery-delivery-backend/internal/driver"
	"github.com/wichananm65/grocery-delivery-backend/internal/order"
	"github.com/wichananm65/grocery-delivery-backend/internal/product"
	"github.com/wichananm65/grocery-delivery-backend/internal/promotion"
	"github.com/wichananm65/grocery-delivery-backend/internal/user"
)

//go:embed fixtures.yaml
var embedded []byte

type productRecord struct {
	ID         int    `yaml:"id"`
	Name       string `yaml:"name"`
	Price      string `yaml:"price"`
	CategoryID int    `yaml:"categoryId"`
	Image      string `yaml:"image"`
	Stock      int    `yaml:"stock"`
}

type userRecord struct {
	ID       int    `yaml:"id"`
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Phone    string `yaml:"phone"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
	DriverID *int   `yaml:"driverId"`
}

type driverRecord struct {
	ID           int     `yaml:"id"`
	Name         string  `yaml:"name"`
	LicensePlate string  `yaml:"licensePlate"`
	Photo        string  `yaml:"photo"`
	Rating       float64 `yaml:"rating"`
	Completed    int     `yaml:"deliveriesCompleted"`
	Location     struct {
		Lat float64 `yaml:"lat"`
		Lng float64 `yaml:"lng"`
	} `yaml:"location"`
}

type orderItemRecord struct {
	ProductID int    `yaml:"productId"`
	Quantity  int    `yaml:"quantity"`
	Price     string `yaml:"price"`
}

type orderRecord struct {
	ID                int               `yaml:"id"`
	UserID            int               `yaml:"userId"`
	AddressID         int               `yaml:"addressId"`
	Items             []orderItemRecord `yaml:"items"`
	Total             string            `yaml:"total"`
	Status            string            `yaml:"status"`
	DriverID          *int              `yaml:"driverId"`
	EstimatedDelivery time.Time         `yaml:"estimatedDelivery"`
	OrderDate         time.Time         `yaml:"orderDate"`
}

type promotionRecord struct {
	ID         int    `yaml:"id"`
	Title      string `yaml:"title"`
	Code       string `yaml:"code"`
	Discount   string `yaml:"discount"`
	Type       string `yaml:"type"`
	Active     bool   `yaml:"active"`
	ExpiryDate string `yaml:"expiryDate"`
}

type fixtures struct {
	Categories []category.Category `yaml:"categories"`
	Products   []productRecord     `yaml:"products"`
	Users      []userRecord        `yaml:"users"`
	Addresses  []struct {
		ID        int    `yaml:"id"`
		UserID    int    `yaml:"userId"`
		Label     string `yaml:"label"`
		Address   string `yaml:"address"`
		City      string `yaml:"city"`
		IsDefault bool   `yaml:"isDefault"`
	} `yaml:"addresses"`
	Drivers    []driverRecord    `yaml:"drivers"`
	Orders     []orderRecord     `yaml:"orders"`
	Promotions []promotionRecord `yaml:"promotions"`
}

// Data is the fixture set converted to domain values.
type Data struct {
	Categories []category.Category
	Products   []product.Product
	Users      []user.User
	Addresses  []address.Address
	Drivers    []driver.Driver
	Orders     []order.Order
	Promotions []promotion.Promotion
}

// Load reads fixtures from path, or the embedded set when path is empty.
func Load(path string) (Data, error) {
	raw := embedded
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Data{}, fmt.Errorf("read seed file: %w", err)
		}
		raw = b
	}
	return Parse(raw)
}

func Parse(raw []byte) (Data, error) {
	var fx fixtures
	if err := yaml.Unmarshal(raw, &fx); err != nil {
		return Data{}, fmt.Errorf("failed to parse fixtures: %w", err)
	}

	var d Data
	d.Categories = fx.Categories

	names := make(map[int]string, len(fx.Products))
	for _, r := range fx.Products {
		price, err := decimal.NewFromString(r.Price)
		if err != nil {
			return Data{}, fmt.Errorf("product %d price: %w", r.ID, err)
		}
		p := product.Product{ID: r.ID, Name: r.Name, Price: price, CategoryID: r.CategoryID, Image: r.Image, Stock: r.Stock}
		if err := p.Validate(); err != nil {
			return Data{}, err
		}
		names[p.ID] = p.Name
		d.Products = append(d.Products, p)
	}

	for _, r := range fx.Users {
		role := user.Role(r.Role)
		if r.Role != "" && !role.Valid() {
			return Data{}, fmt.Errorf("user %d: unknown role %q", r.ID, r.Role)
		}
		d.Users = append(d.Users, user.User{
			ID: r.ID, Email: r.Email, Password: r.Password, Name: r.Name, Phone: r.Phone, Role: role, DriverID: r.DriverID,
		})
	}

	for _, r := range fx.Addresses {
		a := address.Address{ID: r.ID, UserID: r.UserID, Label: r.Label, Address: r.Address, City: r.City, IsDefault: r.IsDefault}
		if err := a.Validate(); err != nil {
			return Data{}, fmt.Errorf("address %d: %w", r.ID, err)
		}
		d.Addresses = append(d.Addresses, a)
	}

	for _, r := range fx.Drivers {
		dr := driver.Driver{
			ID: r.ID, Name: r.Name, LicensePlate: r.LicensePlate, Photo: r.Photo, Rating: r.Rating,
			CompletedDeliveries: r.Completed,
			Location:            driver.Location{Lat: r.Location.Lat, Lng: r.Location.Lng},
		}
		if err := dr.Validate(); err != nil {
			return Data{}, fmt.Errorf("driver %d: %w", r.ID, err)
		}
		d.Drivers = append(d.Drivers, dr)
	}

	for _, r := range fx.Orders {
		o, err := r.toOrder(names)
		if err != nil {
			return Data{}, err
		}
		d.Orders = append(d.Orders, o)
	}

	for _, r := range fx.Promotions {
		value, err := decimal.NewFromString(r.Discount)
		if err != nil {
			return Data{}, fmt.Errorf("promotion %d discount: %w", r.ID, err)
		}
		p := promotion.Promotion{
			ID: r.ID, Title: r.Title, Code: promotion.NormalizeCode(r.Code), Kind: promotion.Kind(r.Type),
			Value: value, Active: r.Active, ExpiryDate: r.ExpiryDate,
		}
		if err := p.Validate(); err != nil {
			return Data{}, fmt.Errorf("promotion %d: %w", r.ID, err)
		}
		d.Promotions = append(d.Promotions, p)
	}

	return d, nil
}

// toOrder derives the subtotal from the items; whatever the recorded total
// adds on top is the delivery fee.
func (r orderRecord) toOrder(names map[int]string) (order.Order, error) {
	status, ok := order.ParseStatus(r.Status)
	if !ok {
		return order.Order{}, fmt.Errorf("order %d: unknown status %q", r.ID, r.Status)
	}
	total, err := decimal.NewFromString(r.Total)
	if err != nil {
		return order.Order{}, fmt.Errorf("order %d total: %w", r.ID, err)
	}

	o := order.Order{
		ID:                  r.ID,
		UserID:              r.UserID,
		AddressID:           r.AddressID,
		Status:              status,
		DriverID:            r.DriverID,
		Discount:            decimal.Zero,
		Total:               total,
		CreatedAt:           r.OrderDate.UTC(),
		EstimatedDeliveryAt: r.EstimatedDelivery.UTC(),
		UpdatedAt:           r.OrderDate.UTC(),
	}
	subtotal := decimal.Zero
	for _, it := range r.Items {
		price, err := decimal.NewFromString(it.Price)
		if err != nil {
			return order.Order{}, fmt.Errorf("order %d item %d price: %w", r.ID, it.ProductID, err)
		}
		l := order.Line{ProductID: it.ProductID, Name: names[it.ProductID], Quantity: it.Quantity, UnitPrice: price}
		o.Lines = append(o.Lines, l)
		subtotal = subtotal.Add(l.Amount())
	}
	o.Subtotal = subtotal
	o.DeliveryFee = total.Sub(subtotal)
	if o.DeliveryFee.IsNegative() {
		return order.Order{}, fmt.Errorf("order %d: total %s is below subtotal %s", r.ID, total, subtotal)
	}
	if err := o.Validate(); err != nil {
		return order.Order{}, fmt.Errorf("order %d: %w", r.ID, err)
	}
	return o, nil
}

type (
	categorySeeder  interface{ Seed(context.Context, []category.Category) error }
	productSeeder   interface{ Seed(context.Context, []product.Product) error }
	userSeeder      interface{ Seed(context.Context, []user.User) error }
	addressSeeder   interface{ Seed(context.Context, []address.Address) error }
	orderSeeder     interface{ Seed(context.Context, []order.Order) error }
	promotionSeeder interface{ Seed(context.Context, []promotion.Promotion) error }
)

// Targets are the stores Apply writes to. Nil targets are skipped.
type Targets struct {
	Categories categorySeeder
	Products   productSeeder
	Users      userSeeder
	Addresses  addressSeeder
	Orders     orderSeeder
	Promotions promotionSeeder
}

// Apply seeds every target. Stores keep rows whose id already exists.
func Apply(ctx context.Context, d Data, t Targets) error {
	if t.Categories != nil {
		if err := t.Categories.Seed(ctx, d.Categories); err != nil {
			return fmt.Errorf("seed categories: %w", err)
		}
	}
	if t.Products != nil {
		if err := t.Products.Seed(ctx, d.Products); err != nil {
			return fmt.Errorf("seed products: %w", err)
		}
	}
	if t.Users != nil {
		if err := t.Users.Seed(ctx, d.Users); err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
	}
	if t.Addresses != nil {
		if err := t.Addresses.Seed(ctx, d.Addresses); err != nil {
			return fmt.Errorf("seed addresses: %w", err)
		}
	}
	if t.Promotions != nil {
		if err := t.Promotions.Seed(ctx, d.Promotions); err != nil {
			return fmt.Errorf("seed promotions: %w", err)
		}
	}
	if t.Orders != nil {
		if err := t.Orders.Seed(ctx, d.Orders); err != nil {
			return fmt.Errorf("seed orders: %w", err)
		}
	}
	return nil
}
