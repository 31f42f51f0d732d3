package models

// TransferResult summarizes a completed currency transfer
type TransferResult struct {
	Transaction *Transaction
	Currency    *Currency
	NewBalance  int64
}

// WorkResult summarizes a successful work action
type WorkResult struct {
	Currency   *Currency
	Amount     int64
	NewBalance int64
}

// StealResult summarizes a successful steal action
type StealResult struct {
	Currency        *Currency
	Amount          int64
	ActorNewBalance int64
}
