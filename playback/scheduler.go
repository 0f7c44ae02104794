package playback

// System is one step of an engine tick.
type System interface {
	Update(e *Engine, dt float32)
}

// SystemFunc adapts a function to System.
type SystemFunc func(e *Engine, dt float32)

func (f SystemFunc) Update(e *Engine, dt float32) {
	f(e, dt)
}

type Scheduler struct {
	systems []System
}

func NewScheduler(systems ...System) *Scheduler {
	copied := append([]System(nil), systems...)
	return &Scheduler{systems: copied}
}

func (s *Scheduler) Add(system System) {
	if system == nil {
		return
	}
	s.systems = append(s.systems, system)
}

func (s *Scheduler) Update(e *Engine, dt float32) {
	for _, system := range s.systems {
		system.Update(e, dt)
	}
}

func (s *Scheduler) Systems() []System {
	systems := make([]System, 0, len(s.systems))
	return append(systems, s.systems...)
}

// RebuildSystem runs the rebuild scheduled since the previous tick.
type RebuildSystem struct{}

func (RebuildSystem) Update(e *Engine, _ float32) {
	if e.rebuildPending && !e.rebuilding {
		_ = e.rebuild()
	}
}

// ClockSystem advances the play clock while playing.
type ClockSystem struct{}

func (ClockSystem) Update(e *Engine, dt float32) {
	if e.playing {
		e.Advance(dt)
	}
}

// SequenceSystem fires scheduled transitions that are due.
type SequenceSystem struct{}

func (SequenceSystem) Update(e *Engine, _ float32) {
	if e.playing {
		e.fireScheduled()
	}
}

// SampleSystem pushes the tick's output into the sink.
type SampleSystem struct{}

func (SampleSystem) Update(e *Engine, _ float32) {
	e.Sample()
}
