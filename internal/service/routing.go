package service

import "github.com/gtibank/corebank/internal/domain"

// Routing holds the house/pool accounts used as settlement counterparty on
// pooled rails. Injected at construction; never read from global state
// mid-flow.
type Routing struct {
	CrossBankAccount     string
	InternationalAccount string
	WalletAccount        string
	AirtimeAccount       string
	TaxAccount           string
}

// SettlementAccount picks the account the core should credit. Same-bank,
// own-account and biller movements settle directly against the recipient;
// pooled rails settle against the configured house account.
func (r Routing) SettlementAccount(rail domain.Rail, recipient string) (string, error) {
	switch rail {
	case domain.RailOwnAccount, domain.RailSameBank, domain.RailBiller:
		return recipient, nil
	case domain.RailCrossBank:
		return r.houseAccount(r.CrossBankAccount)
	case domain.RailInternational:
		return r.houseAccount(r.InternationalAccount)
	case domain.RailWallet:
		return r.houseAccount(r.WalletAccount)
	case domain.RailAirtime:
		return r.houseAccount(r.AirtimeAccount)
	case domain.RailTax:
		return r.houseAccount(r.TaxAccount)
	default:
		return "", ErrUnknownRail
	}
}

func (r Routing) houseAccount(account string) (string, error) {
	if account == "" {
		return "", ErrRailNotConfigured
	}
	return account, nil
}

// transferRails and paymentRails partition the rails between the two
// movement kinds.
var transferRails = map[domain.Rail]bool{
	domain.RailOwnAccount:    true,
	domain.RailSameBank:      true,
	domain.RailCrossBank:     true,
	domain.RailInternational: true,
	domain.RailWallet:        true,
}

var paymentRails = map[domain.Rail]bool{
	domain.RailAirtime: true,
	domain.RailTax:     true,
	domain.RailBiller:  true,
}
