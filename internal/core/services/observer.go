package services

import (
	"github.com/custodia-labs/arrivals/internal/core/domain"
	"github.com/custodia-labs/arrivals/internal/core/ports/driving"
)

// Ensure NopObserver implements the interface.
var _ driving.CycleObserver = NopObserver{}

// NopObserver ignores every cycle event.
type NopObserver struct{}

func (NopObserver) OnStart()                             {}
func (NopObserver) OnFinish()                            {}
func (NopObserver) OnTodayUpdate(bool)                   {}
func (NopObserver) OnDatabaseUpdate([]domain.RecentItem) {}
