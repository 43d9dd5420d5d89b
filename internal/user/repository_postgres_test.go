package user

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

var userCols = []string{"id", "email", "password", "name", "phone", "role", "driver_id"}

func TestPostgresGetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	rows := sqlmock.NewRows(userCols).AddRow(2, "carlos@example.com", "$2a$hash", "Carlos", nil, "driver", 301)
	mock.ExpectQuery("FROM users WHERE lower\\(email\\)").WithArgs("carlos@example.com").WillReturnRows(rows)

	u, err := repo.GetByEmail(t.Context(), "carlos@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Role != RoleDriver || u.DriverID == nil || *u.DriverID != 301 {
		t.Fatalf("unexpected user %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresCreate_EmailExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	rows := sqlmock.NewRows(userCols).AddRow(1, "jane@example.com", "$2a$hash", "Jane", "+1", "customer", nil)
	mock.ExpectQuery("FROM users WHERE lower\\(email\\)").WithArgs("jane@example.com").WillReturnRows(rows)

	if _, err := repo.Create(t.Context(), User{Email: "jane@example.com"}); err != ErrEmailExists {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("FROM users WHERE lower\\(email\\)").WithArgs("new@example.com").WillReturnRows(sqlmock.NewRows(userCols))
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("new@example.com", "hash", "New", "", "customer", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	u, err := repo.Create(t.Context(), User{Email: "new@example.com", Password: "hash", Name: "New", Role: RoleCustomer})
	if err != nil || u.ID != 5 {
		t.Fatalf("unexpected result %+v %v", u, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
