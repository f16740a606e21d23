package order

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func sampleOrder() Order {
	return Order{
		Reference: "ref-1",
		UserID:    42,
		Items: []LineItem{
			{ProductID: 1, Name: "P1", Price: 10.00, Quantity: 2},
		},
		Subtotal:    20.00,
		ShippingFee: 5.00,
		Total:       25.00,
		ShippingAddress: ShippingAddress{
			RecipientName: "Jo", Line: "12 Main St", City: "Springfield",
		},
		PaymentMethod: PaymentCOD,
		Status:        StatusProcessing,
		CreatedAt:     "2026-01-02T03:04:05Z",
		UpdatedAt:     "2026-01-02T03:04:05Z",
	}
}

func TestCommit_HappyPath(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE product SET stock").WithArgs(2, 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO orders").WillReturnRows(sqlmock.NewRows([]string{"order_id"}).AddRow(9))
	mock.ExpectExec("UPDATE users SET cart").WithArgs("2026-01-02T03:04:05Z", 42).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO address").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	ord, err := repo.Commit(sampleOrder(), CommitOptions{ClearCart: true, SaveAddress: true})
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if ord.OrderID != 9 {
		t.Errorf("expected order id 9, got %d", ord.OrderID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCommit_BuyNowSkipsCartAndAddress(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE product SET stock").WithArgs(2, 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO orders").WillReturnRows(sqlmock.NewRows([]string{"order_id"}).AddRow(10))
	mock.ExpectCommit()

	if _, err := repo.Commit(sampleOrder(), CommitOptions{}); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCommit_ShortageRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	// guarded decrement touches no row, so the current name and stock are
	// fetched for the error payload and everything rolls back
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE product SET stock").WithArgs(2, 1).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT product_name, stock").WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"product_name", "stock"}).AddRow("P1", 1))
	mock.ExpectRollback()

	_, err = repo.Commit(sampleOrder(), CommitOptions{ClearCart: true})

	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	s := stockErr.Shortages[0]
	if s.Name != "P1" || s.Requested != 2 || s.Available != 1 {
		t.Errorf("unexpected shortage %+v", s)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCommit_InsertFailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE product SET stock").WithArgs(2, 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO orders").WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	if _, err := repo.Commit(sampleOrder(), CommitOptions{ClearCart: true}); err == nil {
		t.Fatal("expected commit to fail")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateStatus_ConcurrentTransitionDetected(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	// conditional update matches nothing, but the order exists: somebody
	// else moved the status first
	mock.ExpectQuery("UPDATE orders").
		WithArgs("shipped", "2026-01-02T03:04:05Z", 9, "processing").
		WillReturnRows(sqlmock.NewRows([]string{"order_id"}))
	mock.ExpectQuery("SELECT 1 FROM orders").WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(1))

	_, err = repo.UpdateStatus(9, StatusProcessing, StatusShipped, "2026-01-02T03:04:05Z")
	if err != ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateStatus_MissingOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("UPDATE orders").
		WillReturnRows(sqlmock.NewRows([]string{"order_id"}))
	mock.ExpectQuery("SELECT 1 FROM orders").WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"one"}))

	if _, err := repo.UpdateStatus(9, StatusProcessing, StatusShipped, "t"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
