package domain

// Node kinds persisted in the graph.
const (
	NodeKindUser        = "User"
	NodeKindTransaction = "Transaction"
)

// Edge kinds between users inferred from shared identifying attributes.
const (
	EdgeSharesEmail         = "SHARES_EMAIL"
	EdgeSharesPhone         = "SHARES_PHONE"
	EdgeSharesAddress       = "SHARES_ADDRESS"
	EdgeSharesPaymentMethod = "SHARES_PAYMENT_METHOD"
)

// Edge kinds derived from a transaction's participants.
const (
	EdgeSentMoney     = "SENT_MONEY"
	EdgeReceivedBy    = "RECEIVED_BY"
	EdgeTransferredTo = "TRANSFERRED_TO"
)

// Edge kinds between transactions inferred from shared metadata.
const (
	EdgeSharesIP       = "SHARES_IP"
	EdgeSharesDevice   = "SHARES_DEVICE"
	EdgeSharesLocation = "SHARES_LOCATION"
)
