package domain

import (
	"time"

	"github.com/samber/lo"
)

// AccountType classifies broker accounts.
type AccountType string

const (
	AccountTypeTinkoff     AccountType = "Tinkoff"
	AccountTypeTinkoffIis  AccountType = "TinkoffIis"
	AccountTypeInvestBox   AccountType = "TinkoffInvestBox"
	AccountTypeUnspecified AccountType = "TinkoffUnspecified"
)

// TaxAdvantaged reports whether the account type is subject to the IIS deduction schedule.
func (t AccountType) TaxAdvantaged() bool {
	return t == AccountTypeTinkoffIis
}

// AccountStatus mirrors the gateway account status.
type AccountStatus string

const (
	AccountStatusNew         AccountStatus = "new"
	AccountStatusOpen        AccountStatus = "open"
	AccountStatusClosed      AccountStatus = "closed"
	AccountStatusUnspecified AccountStatus = "unspecified"
)

// Account is a broker account as reported by the gateway.
type Account struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Type       AccountType   `json:"type"`
	Status     AccountStatus `json:"status"`
	OpenedDate time.Time     `json:"openedDate"`
	ClosedDate *time.Time    `json:"closedDate,omitempty"`
}

// OpenAccounts returns accounts that are not closed.
func OpenAccounts(accounts []Account) []Account {
	return lo.Filter(accounts, func(a Account, _ int) bool {
		return a.Status != AccountStatusClosed
	})
}

// AccountByID looks up an account by its identifier.
func AccountByID(accounts []Account, id string) (Account, bool) {
	return lo.Find(accounts, func(a Account) bool {
		return a.ID == id
	})
}
