package models

// Requests for the analysis and prediction HTTP endpoints. Defined in domain
// for consistency and reuse.

type TechnicalRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,min=1,max=10"`
	Range  string `query:"range" json:"range" default:"3mo" validate:"oneof=1mo 3mo 6mo 1y 2y"`
}

type SignalsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,min=1,max=10"`
	Range  string `query:"range" json:"range" default:"1y" validate:"oneof=1mo 3mo 6mo 1y 2y"`
}

type LevelsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,min=1,max=10"`
	Range  string `query:"range" json:"range" default:"3mo" validate:"oneof=1mo 3mo 6mo 1y 2y"`
	Levels int    `query:"levels" json:"levels" default:"3" validate:"gte=1,lte=10"`
}

type PredictRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,min=1,max=10"`
	Days   int    `query:"days" json:"days" default:"1" validate:"gte=1,lte=30"`
	Range  string `query:"range" json:"range" default:"6mo" validate:"oneof=1mo 3mo 6mo 1y 2y"`
}

type HistoryRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,min=1,max=10"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
	Limit  int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=1000"`
}

type AccuracyRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,min=1,max=10"`
}
