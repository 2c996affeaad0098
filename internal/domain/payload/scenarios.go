package payload

import "github.com/cosmosolder/sparkbridge/internal/domain/dispatch"

// Scenario is a named, prebuilt request envelope for demo use. The gateway
// exposes these so a frontend can run the models without assembling payloads.
type Scenario struct {
	Name        string
	Description string
	Build       func() (dispatch.Envelope, error)
}

// Scenarios lists the predefined scenarios in stable order.
func Scenarios() []Scenario {
	return []Scenario{
		{
			Name:        "mortgage-amortization",
			Description: "30-year fixed mortgage with extra principal payments",
			Build: func() (dispatch.Envelope, error) {
				return MortgageAmortization(DefaultMortgageInputs())
			},
		},
		{
			Name:        "fund-manager-deal",
			Description: "Borrowing base and facility utilization tests for Deal 123",
			Build: func() (dispatch.Envelope, error) {
				return FundManagerDeal(DefaultFundDealInputs())
			},
		},
	}
}

// ScenarioByName looks up a predefined scenario.
func ScenarioByName(name string) (Scenario, bool) {
	for _, s := range Scenarios() {
		if s.Name == name {
			return s, true
		}
	}
	return Scenario{}, false
}
