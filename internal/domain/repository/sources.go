package repository

import (
	"context"

	"github.com/flowradar/flowradar/internal/domain/entity"
)

// PullRequestSource is the upstream collector boundary. The core
// never talks to a source-control host itself.
type PullRequestSource interface {
	FetchPullRequests(ctx context.Context, key entity.AnalysisKey, lookbackDays int) ([]entity.PullRequestRecord, error)
}

// EventSource supplies externally observed events for root-cause
// correlation. Absence of a source is valid.
type EventSource interface {
	FetchEvents(ctx context.Context, key entity.AnalysisKey, lookbackDays int) ([]entity.CorrelatedEvent, error)
}
