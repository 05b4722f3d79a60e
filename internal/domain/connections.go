package domain

import "time"

// ConnectedUser is a user reached through a shared-attribute edge, together
// with the edge kind and the value both users hold.
type ConnectedUser struct {
	User     User
	EdgeKind string
	Shared   string
}

// InvolvedTransaction ties a user to a transaction they participate in.
type InvolvedTransaction struct {
	Transaction Transaction
	Role        string // "sender" or "receiver"
}

// DirectTransfer is one TRANSFERRED_TO edge viewed from a user.
type DirectTransfer struct {
	Counterparty  User
	Direction     string // "outgoing" or "incoming"
	TransactionID string
	Amount        float64
	Currency      string
	Timestamp     time.Time
}

// UserConnections is the full relationship view for a single user.
type UserConnections struct {
	User            User
	ConnectedUsers  []ConnectedUser
	Transactions    []InvolvedTransaction
	DirectTransfers []DirectTransfer
}

// InvolvedUser is a participant of a transaction.
type InvolvedUser struct {
	User User
	Role string // "sender" or "receiver"
}

// RelatedTransaction is a transaction reached through a shared-metadata edge.
type RelatedTransaction struct {
	Transaction Transaction
	EdgeKind    string
	Shared      string
}

// TransactionConnections is the full relationship view for a single transaction.
type TransactionConnections struct {
	Transaction         Transaction
	InvolvedUsers       []InvolvedUser
	RelatedTransactions []RelatedTransaction
}
