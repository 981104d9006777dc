package tinvest

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/mtlprog/tinkreport/internal/domain"
)

var accountTypes = map[string]domain.AccountType{
	"ACCOUNT_TYPE_TINKOFF":     domain.AccountTypeTinkoff,
	"ACCOUNT_TYPE_TINKOFF_IIS": domain.AccountTypeTinkoffIis,
	"ACCOUNT_TYPE_INVEST_BOX":  domain.AccountTypeInvestBox,
}

var accountStatuses = map[string]domain.AccountStatus{
	"ACCOUNT_STATUS_NEW":    domain.AccountStatusNew,
	"ACCOUNT_STATUS_OPEN":   domain.AccountStatusOpen,
	"ACCOUNT_STATUS_CLOSED": domain.AccountStatusClosed,
}

// Accounts lists the accounts the token has access to.
func (c *Client) Accounts(ctx context.Context) ([]domain.Account, error) {
	var resp accountsResponse
	if err := c.postJSON(ctx, "UsersService/GetAccounts", struct{}{}, &resp); err != nil {
		return nil, fmt.Errorf("fetching accounts: %w", err)
	}

	return lo.Map(resp.Accounts, func(a account, _ int) domain.Account {
		acc := domain.Account{
			ID:         a.ID,
			Name:       a.Name,
			Type:       lo.ValueOr(accountTypes, a.Type, domain.AccountTypeUnspecified),
			Status:     lo.ValueOr(accountStatuses, a.Status, domain.AccountStatusUnspecified),
			OpenedDate: a.OpenedDate,
		}
		// Open accounts carry the epoch as closing date.
		if a.ClosedDate.After(time.Unix(0, 0)) {
			closed := a.ClosedDate
			acc.ClosedDate = &closed
		}
		return acc
	}), nil
}
