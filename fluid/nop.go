package fluid

import "log/slog"

func newNopLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

type nopPerf struct{}

func (nopPerf) StartTick()        {}
func (nopPerf) StartPhase(string) {}
func (nopPerf) EndTick()          {}

type nopEvents struct{}

func (nopEvents) RecordBatch(int)     {}
func (nopEvents) RecordSplat()        {}
func (nopEvents) RecordDroppedSplat() {}
func (nopEvents) RecordPointerSplat() {}
