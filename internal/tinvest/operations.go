package tinvest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/mtlprog/tinkreport/internal/domain"
)

const operationsPageLimit = 1000

var operationStates = map[string]domain.OperationState{
	"OPERATION_STATE_EXECUTED": domain.OperationStateDone,
	"OPERATION_STATE_CANCELED": domain.OperationStateCanceled,
}

// Operations returns the account ledger between from and to, newest first.
// The native operation type code is kept in Operation.Type.
func (c *Client) Operations(ctx context.Context, accountID string, from, to time.Time) ([]domain.Operation, error) {
	var ops []domain.Operation

	req := operationsRequest{
		AccountID: accountID,
		From:      from.UTC(),
		To:        to.UTC(),
		Limit:     operationsPageLimit,
	}
	for {
		var resp operationsResponse
		if err := c.postJSON(ctx, "OperationsService/GetOperationsByCursor", req, &resp); err != nil {
			return nil, fmt.Errorf("fetching operations for %s: %w", accountID, err)
		}

		ops = append(ops, lo.Map(resp.Items, func(it operationItem, _ int) domain.Operation {
			return toOperation(it)
		})...)

		if !resp.HasNext || resp.NextCursor == "" {
			break
		}
		req.Cursor = resp.NextCursor
	}

	sort.SliceStable(ops, func(i, j int) bool { return ops[i].Date.After(ops[j].Date) })
	return ops, nil
}

func toOperation(it operationItem) domain.Operation {
	description := it.Description
	if description == "" {
		description = it.Name
	}
	currency := it.Payment.Code()
	if currency == "" {
		currency = it.Price.Code()
	}
	return domain.Operation{
		ID:             it.ID,
		ParentID:       it.ParentOperationID,
		Type:           it.Type,
		Description:    description,
		Date:           it.Date,
		Currency:       currency,
		Payment:        it.Payment.Decimal(),
		Price:          it.Price.Decimal(),
		Quantity:       it.Quantity - it.QuantityRest,
		FIGI:           it.FIGI,
		InstrumentType: domain.ParseInstrumentType(it.InstrumentType),
		State:          lo.ValueOr(operationStates, it.State, domain.OperationStateNA),
	}
}
