package payment

// Details is a tagged union of method-specific payment fields. Each variant
// carries only what its method needs instead of one bag of optional fields.
type Details interface {
	MethodKind() Method
}

// CardDetails describes a card capture.
type CardDetails struct {
	Brand     string
	LastFour  string
	AuthCode  string
	Reference string
}

func (CardDetails) MethodKind() Method { return MethodCard }

// TransferDetails describes an incoming bank transfer.
type TransferDetails struct {
	BankName  string
	Reference string
	IBAN      string
}

func (TransferDetails) MethodKind() Method { return MethodTransfer }

// CashDetails describes a cash payment taken at the desk.
type CashDetails struct {
	ReceivedBy  string
	ReceiptNote string
}

func (CashDetails) MethodKind() Method { return MethodCash }
