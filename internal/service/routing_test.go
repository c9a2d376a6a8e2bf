package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtibank/corebank/internal/domain"
)

func TestSettlementAccount(t *testing.T) {
	routing := Routing{
		CrossBankAccount:     "GL-CROSS-1",
		InternationalAccount: "GL-INTL-1",
		WalletAccount:        "GL-WALLET-1",
		AirtimeAccount:       "GL-AIRTIME-1",
		TaxAccount:           "GL-TAX-1",
	}

	tests := []struct {
		rail domain.Rail
		want string
	}{
		{domain.RailOwnAccount, "2000200020"},
		{domain.RailSameBank, "2000200020"},
		{domain.RailBiller, "2000200020"},
		{domain.RailCrossBank, "GL-CROSS-1"},
		{domain.RailInternational, "GL-INTL-1"},
		{domain.RailWallet, "GL-WALLET-1"},
		{domain.RailAirtime, "GL-AIRTIME-1"},
		{domain.RailTax, "GL-TAX-1"},
	}
	for _, tc := range tests {
		t.Run(string(tc.rail), func(t *testing.T) {
			got, err := routing.SettlementAccount(tc.rail, "2000200020")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := routing.SettlementAccount(domain.Rail("carrier_pigeon"), "x")
	assert.ErrorIs(t, err, ErrUnknownRail)

	_, err = Routing{}.SettlementAccount(domain.RailTax, "x")
	assert.ErrorIs(t, err, ErrRailNotConfigured)
}
