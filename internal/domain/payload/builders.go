package payload

import (
	"encoding/json"
	"fmt"

	"github.com/cosmosolder/sparkbridge/internal/domain/dispatch"
)

// The builders below produce request envelopes for specific Spark services.
// They are pure data construction — the bridge core never depends on them;
// they exist so callers (gateway scenarios, operators writing request files)
// do not have to hand-assemble the request_data/request_meta shape.

// sparkRequest mirrors the execute-endpoint envelope: model inputs plus call
// metadata. RequestedOutput is a JSON-encoded array carried as a string, which
// is the form the service expects.
type sparkRequest struct {
	RequestData sparkRequestData `json:"request_data"`
	RequestMeta sparkRequestMeta `json:"request_meta"`
}

type sparkRequestData struct {
	Inputs map[string]any `json:"inputs"`
}

type sparkRequestMeta struct {
	VersionID       string  `json:"version_id,omitempty"`
	TransactionDate *string `json:"transaction_date"`
	CallPurpose     *string `json:"call_purpose"`
	SourceSystem    *string `json:"source_system"`
	CorrelationID   *string `json:"correlation_id"`
	ServiceCategory string  `json:"service_category"`
	RequestedOutput string  `json:"requested_output,omitempty"`
}

// buildEnvelope assembles and serializes one Spark request.
func buildEnvelope(inputs map[string]any, versionID string, outputs []string) (dispatch.Envelope, error) {
	requested, err := json.Marshal(outputs)
	if err != nil {
		return nil, fmt.Errorf("payload: encode requested outputs: %w", err)
	}

	envelope, err := json.Marshal(sparkRequest{
		RequestData: sparkRequestData{Inputs: inputs},
		RequestMeta: sparkRequestMeta{
			VersionID:       versionID,
			ServiceCategory: "ALL",
			RequestedOutput: string(requested),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("payload: encode envelope: %w", err)
	}
	return dispatch.Envelope(envelope), nil
}

// ─── mortgage amortization calculator ───────────────────────────────────────

// MortgageInputs parameterizes the mortgage-amort-calculator service.
type MortgageInputs struct {
	Lender          string
	OrigLoanAmt     float64
	InterestRate    float64
	LoanTermYrs     int
	PaymentsPerYear int
	LoanStartDate   string
	ExtraPrincPmt   float64
}

// DefaultMortgageInputs returns the demo loan used by the predefined scenario.
func DefaultMortgageInputs() MortgageInputs {
	return MortgageInputs{
		Lender:          "Wells Fargo",
		OrigLoanAmt:     200000,
		InterestRate:    0.05,
		LoanTermYrs:     30,
		PaymentsPerYear: 12,
		LoanStartDate:   "2025-05-28",
		ExtraPrincPmt:   100,
	}
}

const mortgageVersionID = "aeffe1e2-529b-4c2f-9755-5473a391aa83"

var mortgageOutputs = []string{
	"MonthlyPmt",
	"ScheduledNoPayments",
	"ActualNoPmts",
	"YrsSavedOffOrigLoanTerm",
	"TotEarlyPmts",
	"TotalIntPaid",
}

// MortgageAmortization builds the execute envelope for the mortgage
// amortization model.
func MortgageAmortization(in MortgageInputs) (dispatch.Envelope, error) {
	return buildEnvelope(map[string]any{
		"Lender":          in.Lender,
		"OrigLoanAmt":     in.OrigLoanAmt,
		"InterestRate":    in.InterestRate,
		"LoanTermYrs":     in.LoanTermYrs,
		"PaymentsPerYear": in.PaymentsPerYear,
		"LoanStartDate":   in.LoanStartDate,
		"ExtraPrincPmt":   in.ExtraPrincPmt,
	}, mortgageVersionID, mortgageOutputs)
}

// ─── fund manager borrowing-base deal ───────────────────────────────────────

// FundDealInputs parameterizes the fund-manager deal model (borrowing base
// and facility utilization tests).
type FundDealInputs struct {
	Borrower                    string
	CurrentAdvancesOutstanding  float64
	AdvancesRequested           float64
	AdvancesRepaid              float64
	PortfolioDataFacilityAmount float64
	EffectiveDate               string
	MeasurementDate             string
	DeterminationDate           string
}

// DefaultFundDealInputs returns the demo deal used by the predefined scenario.
func DefaultFundDealInputs() FundDealInputs {
	return FundDealInputs{
		Borrower:                    "Deal 123 Partners LLC",
		CurrentAdvancesOutstanding:  132802183.31,
		AdvancesRequested:           0,
		AdvancesRepaid:              0,
		PortfolioDataFacilityAmount: 250000000,
		EffectiveDate:               "2023-01-11",
		MeasurementDate:             "2023-09-30",
		DeterminationDate:           "2023-09-30",
	}
}

var fundDealOutputs = []string{
	"ActualAdvanceRate",
	"AvailabilityLESSAdvancesOutstanding",
	"AvailableCapital",
	"AvailabletoBorrow",
	"ExpressionBorrowingBase",
	"FacilityUtilization",
	"TestMaximumAdvanceRateTest",
	"TestMinimumCreditEnhancementTest",
	"Portfolio",
}

// FundManagerDeal builds the execute envelope for the fund-manager deal model.
func FundManagerDeal(in FundDealInputs) (dispatch.Envelope, error) {
	return buildEnvelope(map[string]any{
		"Borrower":                    in.Borrower,
		"CurrentAdvancesOutstanding":  in.CurrentAdvancesOutstanding,
		"AdvancesRequested":           in.AdvancesRequested,
		"AdvancesRepaid":              in.AdvancesRepaid,
		"PortfolioDataFacilityAmount": in.PortfolioDataFacilityAmount,
		"EffectiveDate":               in.EffectiveDate,
		"MeasurementDate":             in.MeasurementDate,
		// Field name spelled exactly as the service defines it.
		"DetminationDate": in.DeterminationDate,
	}, "", fundDealOutputs)
}
