package domain

// Snapshot is the synchronizer's exposed state. It is replaced wholesale
// every time a remote call resolves; readers always receive a copy.
// The backend client handle is owned by the synchronizer for its whole
// lifetime and is exposed separately, since it never changes between snapshots.
type Snapshot struct {
	// Checkout is the current checkout, or a placeholder with no ID.
	Checkout Checkout `json:"checkout"`

	// CheckoutEditable is false while a mutation is in flight.
	CheckoutEditable bool `json:"checkout_editable"`
}

// NewSnapshot returns the initial snapshot: placeholder checkout, editable.
func NewSnapshot() Snapshot {
	return Snapshot{
		Checkout:         NewPlaceholderCheckout(),
		CheckoutEditable: true,
	}
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Checkout:         s.Checkout.Clone(),
		CheckoutEditable: s.CheckoutEditable,
	}
}

// Status reports the lifecycle state of the snapshot's checkout.
func (s Snapshot) Status() CheckoutStatus {
	return s.Checkout.Status()
}
