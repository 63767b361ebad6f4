package funding

import "context"

// Channel is a provisioned deposit endpoint for a currency.
type Channel struct {
	Address    string
	PaymentURI string
}

// ChannelProvisioner provisions a deposit channel for a currency code.
type ChannelProvisioner interface {
	FetchDepositChannel(ctx context.Context, currencyCode string) (Channel, error)
}

// ConversionService estimates how many platform tokens an amount of source
// currency buys. A nil result means the service produced no amount; callers
// treat that as zero, not as an error.
type ConversionService interface {
	Convert(ctx context.Context, from, to string, amount float64) (*float64, error)
}

// PurchaseSubmitter submits a confirmed purchase to the payment backend.
type PurchaseSubmitter interface {
	SubmitPurchase(ctx context.Context, intent PurchaseIntent) error
}
