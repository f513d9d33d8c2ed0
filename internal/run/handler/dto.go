package handler

import (
	"time"

	"numcheck/internal/filter"
	"numcheck/internal/report"
	"numcheck/internal/run"
	id "numcheck/pkg/domain"
	dErrors "numcheck/pkg/domain-errors"
)

type kindConfigDTO struct {
	Enabled  bool   `json:"enabled"`
	Polarity string `json:"polarity"`
}

type configRequest struct {
	Kinds          map[string]kindConfigDTO `json:"kinds"`
	Combo          bool                     `json:"combo"`
	ComboStrategy  string                   `json:"combo_strategy"`
	RetryAfterHrs  int                      `json:"retry_after_hours"`
	SalvagePartial bool                     `json:"salvage_partial"`
}

// toConfig validates and converts the request into a domain configuration.
// Unlisted kinds stay disabled; a zero retry interval takes the default.
func (r configRequest) toConfig() (filter.OperationConfig, error) {
	cfg := filter.OperationConfig{
		Kinds:          make(map[id.CheckKind]filter.KindConfig, len(r.Kinds)),
		Combo:          r.Combo,
		RetryAfter:     filter.DefaultRetryAfter,
		SalvagePartial: r.SalvagePartial,
	}

	for raw, kc := range r.Kinds {
		kind, err := id.ParseCheckKind(raw)
		if err != nil {
			return filter.OperationConfig{}, err
		}
		polarity, err := filter.ParsePolarity(kc.Polarity)
		if err != nil {
			return filter.OperationConfig{}, dErrors.New(dErrors.CodeInvalidInput, "invalid polarity for kind "+raw)
		}
		cfg.Kinds[kind] = filter.KindConfig{Enabled: kc.Enabled, Polarity: polarity}
	}

	strategy, err := filter.ParseComboStrategy(r.ComboStrategy)
	if err != nil {
		return filter.OperationConfig{}, err
	}
	cfg.ComboStrategy = strategy

	if r.RetryAfterHrs != 0 {
		cfg.RetryAfter = time.Duration(r.RetryAfterHrs) * time.Hour
	}

	if err := cfg.Validate(); err != nil {
		return filter.OperationConfig{}, err
	}
	return cfg, nil
}

type configResponse struct {
	Kinds          map[string]kindConfigDTO `json:"kinds"`
	Combo          bool                     `json:"combo"`
	ComboStrategy  string                   `json:"combo_strategy"`
	RetryAfterHrs  int                      `json:"retry_after_hours"`
	SalvagePartial bool                     `json:"salvage_partial"`
	Description    string                   `json:"description"`
}

func configToResponse(cfg filter.OperationConfig) configResponse {
	kinds := make(map[string]kindConfigDTO, len(cfg.Kinds))
	for kind, kc := range cfg.Kinds {
		kinds[kind.String()] = kindConfigDTO{Enabled: kc.Enabled, Polarity: string(kc.Polarity)}
	}
	return configResponse{
		Kinds:          kinds,
		Combo:          cfg.Combo,
		ComboStrategy:  string(cfg.ComboStrategy),
		RetryAfterHrs:  int(cfg.RetryAfter / time.Hour),
		SalvagePartial: cfg.SalvagePartial,
		Description:    cfg.Describe(),
	}
}

type checkTextRequest struct {
	Text string `json:"text"`
}

type resultResponse struct {
	RunID     string         `json:"run_id"`
	Submitted int            `json:"submitted"`
	Truncated int            `json:"truncated,omitempty"`
	Partial   bool           `json:"partial,omitempty"`
	Total     int            `json:"total"`
	Buckets   map[string]int `json:"buckets"`
	Report    string         `json:"report"`
	StartedAt time.Time      `json:"started_at"`
	Duration  string         `json:"duration"`
}

func resultToResponse(res *run.Result) resultResponse {
	return resultResponse{
		RunID:     res.RunID,
		Submitted: res.Submitted,
		Truncated: res.Truncated,
		Partial:   res.Partial,
		Total:     res.Stats.Total,
		Buckets:   res.Stats.Buckets,
		Report:    report.Text(res),
		StartedAt: res.StartedAt,
		Duration:  res.Duration().String(),
	}
}
