package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Workoff is a leave record as listed by the workoffs collection.
type Workoff struct {
	ID         ID     `json:"_id,omitempty"`
	ProviderID ID     `json:"fld_service_provider_id"`
	StartDate  string `json:"fld_start_date"`
	EndDate    string `json:"fld_end_date"`
	Duration   Scalar `json:"fld_duration,omitempty"`
	Reason     string `json:"fld_reason,omitempty"`
	AddedOn    string `json:"fld_addedon,omitempty"`
	Total      Scalar `json:"fld_total_no_of_work_offs,omitempty"`
	Availed    Scalar `json:"fld_work_offs_availed,omitempty"`
	Balance    Scalar `json:"fld_work_offs_balance,omitempty"`
}

// WorkoffAllotment is the payload that grants a provider a number of
// workoffs over a date range.
type WorkoffAllotment struct {
	ProviderID ID     `json:"fld_adminid"`
	StartDate  string `json:"fld_workoffs_startdate"`
	EndDate    string `json:"fld_workoffs_enddate"`
	Total      int    `json:"fld_total_no_of_work_offs"`
	Availed    int    `json:"fld_work_offs_availed"`
	Balance    int    `json:"fld_work_offs_balance"`
	AddedOn    string `json:"fld_addedon"`
}

// Allotment form field names.
const (
	FieldWorkoffStart = "fld_workoffs_startdate"
	FieldWorkoffEnd   = "fld_workoffs_enddate"
	FieldWorkoffTotal = "fld_total_no_of_work_offs"
)

// NewWorkoffAllotment returns an empty allotment for the provider, stamped
// with addedOn.
func NewWorkoffAllotment(providerID ID, addedOn string) WorkoffAllotment {
	return WorkoffAllotment{ProviderID: providerID, AddedOn: addedOn}
}

// WithField returns a copy with one form field applied.
//
// Changing the total also resets the balance to the new total. The balance
// is not recomputed as total minus availed; the backend owns that figure.
func (a WorkoffAllotment) WithField(name, value string) (WorkoffAllotment, error) {
	value = strings.TrimSpace(value)
	switch name {
	case FieldWorkoffStart:
		a.StartDate = value
	case FieldWorkoffEnd:
		a.EndDate = value
	case FieldWorkoffTotal:
		n, err := strconv.Atoi(value)
		if err != nil {
			return a, fmt.Errorf("models: %s must be a whole number: %w", name, err)
		}
		a.Total = n
		a.Balance = BalanceOnTotalChange(n)
	default:
		return a, fmt.Errorf("models: unknown workoff field %q", name)
	}
	return a, nil
}

// BalanceOnTotalChange is the balance shown after the total is edited.
func BalanceOnTotalChange(total int) int { return total }
