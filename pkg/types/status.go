package types

// TransactionStatus is the lifecycle state shared by bank transactions and gateway payments.
type TransactionStatus string

const (
	TransactionStatusAccepted  TransactionStatus = "Accepted"
	TransactionStatusCompleted TransactionStatus = "Completed"
	TransactionStatusRejected  TransactionStatus = "Rejected"
)

// IsTerminal reports whether no further transition is possible.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusRejected
}

func (s TransactionStatus) String() string {
	return string(s)
}
