package observer

import (
	"time"

	"github.com/voodooEntity/neurosplit/src/system/archivist"
	"github.com/voodooEntity/neurosplit/src/system/memory"
)

// Phase is one finished step of a compile pass.
type Phase struct {
	Name  string
	Items int
	Took  time.Duration
}

// Observer follows a compile pass. The tick function runs after every
// phase, the callback once the pass reached its end.
type Observer struct {
	memory       *memory.Memory
	callback     func(memoryInstance *memory.Memory)
	log          *archivist.Archivist
	tickFunction *func(phase Phase, memoryInstance *memory.Memory, logger *archivist.Archivist)
	phases       []Phase
	started      time.Time
	current      string
	endgame      bool
}

func New(memoryInstance *memory.Memory, cb func(memoryInstance *memory.Memory), logger *archivist.Archivist) *Observer {
	if nil == logger {
		logger = archivist.Discard()
	}
	logger.Info("Creating observer")
	return &Observer{
		memory:   memoryInstance,
		callback: cb,
		log:      logger,
	}
}

func (o *Observer) RegisterTickFunction(tickFn *func(phase Phase, memoryInstance *memory.Memory, logger *archivist.Archivist)) {
	o.tickFunction = tickFn
}

func (o *Observer) Begin(name string) {
	o.current = name
	o.started = time.Now()
	o.log.Debug(archivist.DEBUG_LEVEL_TRACE, "Observer: phase started", name)
}

// End closes the phase opened by Begin.
func (o *Observer) End(items int) {
	phase := Phase{Name: o.current, Items: items, Took: time.Since(o.started)}
	o.phases = append(o.phases, phase)
	o.current = ""
	o.log.DebugF(archivist.DEBUG_LEVEL_TRACE, "Observer: phase %s done with %d items in %s", phase.Name, phase.Items, phase.Took)
	if nil != o.tickFunction {
		(*o.tickFunction)(phase, o.memory, o.log)
	}
}

func (o *Observer) Phases() []Phase {
	return o.phases
}

func (o *Observer) ReachedEndgame() bool {
	return o.endgame
}

// Endgame hands the registry to the callback. It runs once, later calls
// are ignored until Restart.
func (o *Observer) Endgame() {
	if o.endgame {
		return
	}
	o.endgame = true
	o.log.InfoF("executing endgame after %d phases", len(o.phases))
	if nil != o.callback {
		o.callback(o.memory)
	}
}

// Restart forgets the phases of the previous pass.
func (o *Observer) Restart() {
	o.phases = nil
	o.current = ""
	o.endgame = false
}
