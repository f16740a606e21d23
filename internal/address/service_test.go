package address

import "testing"

func TestAddAddress_DedupesByLocation(t *testing.T) {
	service := NewService(NewInMemoryRepository(nil))

	first, err := service.AddAddress(Address{
		UserID: 7, RecipientName: "Jo", Phone: "555",
		Line: "12 Main St", City: "Springfield", PostalCode: "12345",
	})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if first.AddressID == 0 {
		t.Fatal("expected an assigned address id")
	}

	// the same location again returns the existing row
	second, err := service.AddAddress(Address{
		UserID: 7, RecipientName: "Jo", Phone: "555",
		Line: "12 Main St", City: "Springfield", PostalCode: "12345",
	})
	if err != nil {
		t.Fatalf("re-add failed: %v", err)
	}
	if second.AddressID != first.AddressID {
		t.Errorf("expected the existing address back, got id %d vs %d", second.AddressID, first.AddressID)
	}

	all, _ := service.GetAddresses(7)
	if len(all) != 1 {
		t.Errorf("expected 1 saved address, got %d", len(all))
	}

	// a different recipient at the same street is a distinct address
	third, err := service.AddAddress(Address{
		UserID: 7, RecipientName: "Sam", Phone: "555",
		Line: "12 Main St", City: "Springfield", PostalCode: "12345",
	})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if third.AddressID == first.AddressID {
		t.Error("different recipient must not collapse into the existing address")
	}
	all, _ = service.GetAddresses(7)
	if len(all) != 2 {
		t.Errorf("expected 2 saved addresses, got %d", len(all))
	}
}

func TestAddAddress_RejectsIncomplete(t *testing.T) {
	service := NewService(NewInMemoryRepository(nil))

	if _, err := service.AddAddress(Address{UserID: 7, RecipientName: "Jo"}); err != ErrIncomplete {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
}

func TestAddresses_ScopedToUser(t *testing.T) {
	service := NewService(NewInMemoryRepository(map[int][]Address{
		7: {{AddressID: 1, UserID: 7, RecipientName: "Jo", Line: "12 Main St", City: "Springfield"}},
	}))

	// another user cannot read it by id
	if _, err := service.GetByID(8, 1); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for foreign address, got %v", err)
	}
	if err := service.DeleteAddress(8, 1); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for foreign delete, got %v", err)
	}

	if _, err := service.GetByID(7, 1); err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}
}
