package product

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

var productColumns = []string{"id", "name", "price", "category_id", "image", "stock"}

func TestPostgresList(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	rows := sqlmock.NewRows(productColumns).
		AddRow(102, "Bananas (1kg)", "2.20", 2, "img", 15).
		AddRow(103, "Red Apples (1kg)", "3.00", 2, nil, 20)
	mock.ExpectQuery("FROM products").WithArgs(2, "").WillReturnRows(rows)

	got, err := repo.List(t.Context(), Filter{CategoryID: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[1].Image != "" || got[0].Price.String() != "2.2" {
		t.Fatalf("unexpected products %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresGetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("FROM products").WithArgs(9).WillReturnRows(sqlmock.NewRows(productColumns))

	if _, err := repo.GetByID(t.Context(), 9); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresReserve_RollsBackOnShortage(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE products SET stock = stock -").WithArgs(2, 105).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE products SET stock = stock -").WithArgs(40, 102).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = repo.Reserve(t.Context(), []StockChange{{ProductID: 105, Quantity: 2}, {ProductID: 102, Quantity: 40}})
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresReserve_Commits(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE products SET stock = stock -").WithArgs(2, 105).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Reserve(t.Context(), []StockChange{{ProductID: 105, Quantity: 2}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresSetStock_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectExec("UPDATE products SET stock = \\$1").WithArgs(4, 77).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.SetStock(t.Context(), 77, 4); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresListByIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	rows := sqlmock.NewRows(productColumns).AddRow(105, "Fresh Milk 1L", "1.20", 4, "img", 30)
	mock.ExpectQuery("WHERE id = ANY").WithArgs(sqlmock.AnyArg()).WillReturnRows(rows)

	got, err := repo.ListByIDs(t.Context(), []int{105})
	if err != nil || len(got) != 1 {
		t.Fatalf("unexpected result %+v %v", got, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
