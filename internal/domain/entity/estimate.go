package entity

// EstimatePeriod is the horizon of an earnings estimate.
type EstimatePeriod string

const (
	PeriodDaily   EstimatePeriod = "daily"
	PeriodWeekly  EstimatePeriod = "weekly"
	PeriodMonthly EstimatePeriod = "monthly"
	PeriodYearly  EstimatePeriod = "yearly"
)

// Days returns the number of days in the period, zero for an unknown period.
func (p EstimatePeriod) Days() float64 {
	switch p {
	case PeriodDaily:
		return 1
	case PeriodWeekly:
		return 7
	case PeriodMonthly:
		return 30
	case PeriodYearly:
		return 365
	default:
		return 0
	}
}

// EstimateRequest holds the inputs of the earnings estimator.
type EstimateRequest struct {
	NetworkID   string         `json:"network" form:"network" validate:"required"`
	TimeAmount  float64        `json:"timeAmount" form:"timeAmount" validate:"gt=0"`
	DailyVolume float64        `json:"dailyVolume" form:"dailyVolume" validate:"gte=0"`
	Period      EstimatePeriod `json:"period" form:"period" validate:"omitempty,oneof=daily weekly monthly yearly"`
}

// EarningsEstimate is the projected dividend income for a TIME position.
type EarningsEstimate struct {
	NetworkID      string         `json:"network"`
	Symbol         string         `json:"symbol"`
	Period         EstimatePeriod `json:"period"`
	FeeRate        float64        `json:"feeRate"`
	TotalSupply    float64        `json:"totalSupply"`
	OwnershipShare float64        `json:"ownershipShare"`
	DailyFees      float64        `json:"dailyFees"`
	PeriodEarnings string         `json:"periodEarnings"`
	ValueUSD       string         `json:"valueUsd"`
}
