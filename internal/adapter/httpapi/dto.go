package httpapi

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trungvm/goalflow-backend/internal/domain"
	"github.com/trungvm/goalflow-backend/internal/usecase/datemath"
)

// Amounts travel as strings to avoid float precision loss in transit; dates
// travel as YYYY-MM-DD calendar dates.

// goalRequest is the wire shape for creating/updating a goal
type goalRequest struct {
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	TargetAmount      decimal.Decimal `json:"targetAmount"`
	TargetReturnRate  float64         `json:"targetReturnRate"`
	StartDate         string          `json:"startDate"`
	DueDate           string          `json:"dueDate"`
	MonthlyInvestment decimal.Decimal `json:"monthlyInvestment"`
	IsAchieved        bool            `json:"isAchieved"`
}

func (req *goalRequest) toDomain() (*domain.Goal, error) {
	goal := &domain.Goal{
		Title:             req.Title,
		Description:       req.Description,
		TargetAmount:      req.TargetAmount,
		TargetReturnRate:  req.TargetReturnRate,
		MonthlyInvestment: req.MonthlyInvestment,
		IsAchieved:        req.IsAchieved,
	}

	var err error
	if goal.StartDate, err = parseOptionalDate(req.StartDate); err != nil {
		return nil, err
	}
	if goal.DueDate, err = parseOptionalDate(req.DueDate); err != nil {
		return nil, err
	}
	return goal, nil
}

// goalResponse is the wire shape of a goal
type goalResponse struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	Description       string  `json:"description"`
	TargetAmount      string  `json:"targetAmount"`
	TargetReturnRate  float64 `json:"targetReturnRate"`
	StartDate         *string `json:"startDate"`
	DueDate           *string `json:"dueDate"`
	MonthlyInvestment string  `json:"monthlyInvestment"`
	IsAchieved        bool    `json:"isAchieved"`
}

func goalToResponse(goal *domain.Goal) goalResponse {
	return goalResponse{
		ID:                goal.ID.String(),
		Title:             goal.Title,
		Description:       goal.Description,
		TargetAmount:      goal.TargetAmount.String(),
		TargetReturnRate:  goal.TargetReturnRate,
		StartDate:         formatOptionalDate(goal.StartDate),
		DueDate:           formatOptionalDate(goal.DueDate),
		MonthlyInvestment: goal.MonthlyInvestment.String(),
		IsAchieved:        goal.IsAchieved,
	}
}

// allocationRequest is the wire shape for upserting an allocation. The
// legacy fields allocationAmount/percentAllocation are still accepted and
// normalized into the canonical ones here, at the boundary; nothing past
// this point branches on which shape the client sent.
type allocationRequest struct {
	ID                  string           `json:"id"`
	GoalID              string           `json:"goalId"`
	AccountID           string           `json:"accountId"`
	InitialContribution decimal.Decimal  `json:"initialContribution"`
	AllocatedPercent    decimal.Decimal  `json:"allocatedPercent"`
	StartDate           string           `json:"startDate"`
	EndDate             string           `json:"endDate"`
	AllocationDate      string           `json:"allocationDate"`
	AllocationAmount    *decimal.Decimal `json:"allocationAmount"`  // legacy
	PercentAllocation   *decimal.Decimal `json:"percentAllocation"` // legacy
}

func (req *allocationRequest) toDomain() (*domain.GoalAllocation, error) {
	alloc := &domain.GoalAllocation{
		InitialContribution: req.InitialContribution,
		AllocatedPercent:    req.AllocatedPercent,
	}

	var err error
	if req.ID != "" {
		if alloc.ID, err = uuid.Parse(req.ID); err != nil {
			return nil, err
		}
	}
	if alloc.GoalID, err = uuid.Parse(req.GoalID); err != nil {
		return nil, err
	}
	if alloc.AccountID, err = uuid.Parse(req.AccountID); err != nil {
		return nil, err
	}

	if alloc.StartDate, err = parseOptionalDate(req.StartDate); err != nil {
		return nil, err
	}
	if alloc.EndDate, err = parseOptionalDate(req.EndDate); err != nil {
		return nil, err
	}
	if alloc.AllocationDate, err = parseOptionalDate(req.AllocationDate); err != nil {
		return nil, err
	}

	domain.NormalizeAllocationFields(alloc, req.AllocationAmount, req.PercentAllocation)
	return alloc, nil
}

// allocationResponse is the wire shape of an allocation
type allocationResponse struct {
	ID                  string  `json:"id"`
	GoalID              string  `json:"goalId"`
	AccountID           string  `json:"accountId"`
	InitialContribution string  `json:"initialContribution"`
	AllocatedPercent    string  `json:"allocatedPercent"`
	StartDate           *string `json:"startDate"`
	EndDate             *string `json:"endDate"`
	AllocationDate      *string `json:"allocationDate"`
}

func allocationToResponse(alloc *domain.GoalAllocation) allocationResponse {
	return allocationResponse{
		ID:                  alloc.ID.String(),
		GoalID:              alloc.GoalID.String(),
		AccountID:           alloc.AccountID.String(),
		InitialContribution: alloc.InitialContribution.String(),
		AllocatedPercent:    alloc.AllocatedPercent.String(),
		StartDate:           formatOptionalDate(alloc.StartDate),
		EndDate:             formatOptionalDate(alloc.EndDate),
		AllocationDate:      formatOptionalDate(alloc.AllocationDate),
	}
}

// progressResponse is the wire shape of a goal progress snapshot
type progressResponse struct {
	GoalID               string                     `json:"goalId"`
	QueryDate            string                     `json:"queryDate"`
	CurrentValue         string                     `json:"currentValue"`
	TargetAmount         string                     `json:"targetAmount"`
	Progress             float64                    `json:"progress"`
	StartValue           string                     `json:"startValue"`
	ProjectedValue       string                     `json:"projectedValue"`
	ProjectedFutureValue string                     `json:"projectedFutureValue"`
	IsOnTrack            bool                       `json:"isOnTrack"`
	Status               string                     `json:"status"`
	AllocationDetails    []allocationDetailResponse `json:"allocationDetails"`
}

// allocationDetailResponse is the wire shape of one allocation's share of a
// progress snapshot
type allocationDetailResponse struct {
	AllocationID        string `json:"allocationId"`
	AccountID           string `json:"accountId"`
	AllocatedPercent    string `json:"allocatedPercent"`
	InitialContribution string `json:"initialContribution"`
	BaselineValue       string `json:"accountValueAtBaseline"`
	CurrentValue        string `json:"accountCurrentValue"`
	AccountGrowth       string `json:"accountGrowth"`
	AllocatedGrowth     string `json:"allocatedGrowth"`
	ContributedValue    string `json:"contributedValue"`
}

func progressToResponse(p *domain.GoalProgress) progressResponse {
	details := make([]allocationDetailResponse, 0, len(p.AllocationDetails))
	for _, d := range p.AllocationDetails {
		details = append(details, allocationDetailResponse{
			AllocationID:        d.AllocationID.String(),
			AccountID:           d.AccountID.String(),
			AllocatedPercent:    d.AllocatedPercent.String(),
			InitialContribution: d.InitialContribution.String(),
			BaselineValue:       d.BaselineValue.Round(2).String(),
			CurrentValue:        d.CurrentValue.Round(2).String(),
			AccountGrowth:       d.AccountGrowth.Round(2).String(),
			AllocatedGrowth:     d.AllocatedGrowth.Round(2).String(),
			ContributedValue:    d.ContributedValue.Round(2).String(),
		})
	}

	return progressResponse{
		GoalID:               p.GoalID.String(),
		QueryDate:            datemath.Format(p.QueryDate),
		CurrentValue:         p.CurrentValue.Round(2).String(),
		TargetAmount:         p.TargetAmount.String(),
		Progress:             p.Progress,
		StartValue:           p.StartValue.Round(2).String(),
		ProjectedValue:       p.ProjectedValue.Round(2).String(),
		ProjectedFutureValue: p.ProjectedFutureValue.Round(2).String(),
		IsOnTrack:            p.IsOnTrack,
		Status:               string(p.Status),
		AllocationDetails:    details,
	}
}

// chartPointResponse is the wire shape of one chart series point
type chartPointResponse struct {
	Date      string  `json:"date"`
	DateLabel string  `json:"dateLabel"`
	Projected *string `json:"projected"`
	Actual    *string `json:"actual"`
}

func chartPointToResponse(point domain.ChartDataPoint) chartPointResponse {
	resp := chartPointResponse{
		Date:      datemath.Format(point.Date),
		DateLabel: point.DateLabel,
	}
	if point.Projected != nil {
		value := point.Projected.String()
		resp.Projected = &value
	}
	if point.Actual != nil {
		value := point.Actual.String()
		resp.Actual = &value
	}
	return resp
}

// valuationResponse is the wire shape of an account valuation
type valuationResponse struct {
	AccountID     string `json:"accountId"`
	ValuationDate string `json:"valuationDate"`
	TotalValue    string `json:"totalValue"`
	BaseCurrency  string `json:"baseCurrency"`
	FxRateToBase  string `json:"fxRateToBase"`
}

func valuationToResponse(v domain.AccountValuation) valuationResponse {
	return valuationResponse{
		AccountID:     v.AccountID.String(),
		ValuationDate: datemath.Format(datemath.DateOnly(v.ValuationDate)),
		TotalValue:    v.TotalValue.String(),
		BaseCurrency:  v.BaseCurrency,
		FxRateToBase:  v.FxRateToBase.String(),
	}
}

func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	date, err := datemath.ParseDate(value)
	if err != nil {
		return nil, err
	}
	return &date, nil
}

func formatOptionalDate(date *time.Time) *string {
	if date == nil {
		return nil
	}
	formatted := datemath.Format(datemath.DateOnly(*date))
	return &formatted
}
