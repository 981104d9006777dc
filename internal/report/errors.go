package report

import "fmt"

// ContractError is a fatal data contract violation: a position without an instrument
// or an operation that cannot be replayed. The report for the account is not produced.
type ContractError struct {
	AccountID string
	Subject   string
	Err       error
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("account %s: %s: %v", e.AccountID, e.Subject, e.Err)
}

func (e *ContractError) Unwrap() error {
	return e.Err
}
