package llamacpp

import (
	"os"
	"sync"
)

// ProcessTable tracks in-flight runner processes keyed by request identifier
// so a process-wide shutdown can terminate them. Guarded by a mutex: requests
// run concurrently.
type ProcessTable struct {
	mu    sync.Mutex
	procs map[string]*os.Process
}

// NewProcessTable creates an empty process table.
func NewProcessTable() *ProcessTable {
	return &ProcessTable{
		procs: make(map[string]*os.Process),
	}
}

// Track registers a running process under the request identifier.
func (t *ProcessTable) Track(id string, proc *os.Process) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.procs[id] = proc
}

// Release removes a finished process from the table.
func (t *ProcessTable) Release(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.procs, id)
}

// Len returns the number of tracked processes.
func (t *ProcessTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.procs)
}

// Shutdown kills every tracked process. Called once during gateway shutdown;
// in-flight Complete calls then fail with a ProcessError.
func (t *ProcessTable) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, proc := range t.procs {
		_ = proc.Kill()
		delete(t.procs, id)
	}
}
