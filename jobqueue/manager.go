package jobqueue

import "context"

// jobNode is the manager's private bookkeeping for one job. Only the
// manager goroutine ever touches these fields, so no lock is needed — the
// same single-owner discipline coprocessor_manager.go applies with its
// mutex, here enforced by channel ownership instead.
type jobNode[K comparable, O any] struct {
	key        K
	submitted  bool // false for a stub created only because something depends on it
	input      any
	dependsOn  []K
	dependents []K
	remaining  int
	state      State
	output     O
	err        error
	depOutputs map[K]O
}

// runManager is the single goroutine that owns the job graph. It never
// blocks on handler execution: workers announce themselves as idle and the
// manager hands off ready jobs as they become available.
func (q *Queue[K, O]) runManager(ctx context.Context) {
	jobs := map[K]*jobNode[K, O]{}
	var readyQueue []K
	var completedOrder []K
	var waitingWorkers []chan dispatch[K, O]

	offer := func(key K) {
		for len(waitingWorkers) > 0 {
			w := waitingWorkers[0]
			waitingWorkers = waitingWorkers[1:]
			node := jobs[key]
			w <- dispatch[K, O]{key: key, input: node.input, dependsOn: node.depOutputs}
			node.state = Running
			return
		}
		readyQueue = append(readyQueue, key)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case w := <-q.idleWorkers:
			dispatched := false
			for len(readyQueue) > 0 {
				key := readyQueue[0]
				readyQueue = readyQueue[1:]
				node, ok := jobs[key]
				if !ok || node.state != Ready {
					continue
				}
				w <- dispatch[K, O]{key: key, input: node.input, dependsOn: node.depOutputs}
				node.state = Running
				dispatched = true
				break
			}
			if !dispatched {
				waitingWorkers = append(waitingWorkers, w)
			}

		case req := <-q.submitCh:
			req.result <- q.handleSubmit(jobs, offer, req.key, req.dependsOn, req.input)

		case req := <-q.removeCh:
			q.handleRemove(jobs, req.key)
			close(req.done)

		case comp := <-q.completeCh:
			node, ok := jobs[comp.key]
			if !ok {
				continue // removed while running; discard per spec.
			}
			node.state = Completed
			node.output = comp.output
			node.err = comp.err
			completedOrder = append(completedOrder, comp.key)
			for _, dk := range node.dependents {
				dep, ok := jobs[dk]
				if !ok {
					continue
				}
				dep.depOutputs[comp.key] = comp.output
				dep.remaining--
				if dep.remaining == 0 && dep.submitted && dep.state == Pending {
					dep.state = Ready
					offer(dk)
				}
			}

		case resp := <-q.drainCh:
			var entries []Entry[K, O]
			for _, key := range completedOrder {
				node, ok := jobs[key]
				if !ok || node.state != Completed {
					continue
				}
				entries = append(entries, Entry[K, O]{Key: key, Output: node.output, Err: node.err})
				node.state = Drained
				delete(jobs, key)
			}
			completedOrder = nil
			resp <- entries
		}
	}
}

// handleSubmit wires key's dependency edges into jobs and returns ErrCycle
// if doing so would close a cycle among already-known jobs.
func (q *Queue[K, O]) handleSubmit(jobs map[K]*jobNode[K, O], offer func(K), key K, dependsOn []K, input any) error {
	existing, known := jobs[key]
	if known && existing.submitted && existing.state != Drained {
		return nil // duplicate submit: discard the new input per spec.
	}

	for _, d := range dependsOn {
		if hasPath(jobs, d, key) {
			return ErrCycle
		}
	}

	var dependents []K
	if known && !existing.submitted {
		dependents = existing.dependents // preserve edges wired before this key was actually submitted
	}

	node := &jobNode[K, O]{
		key:        key,
		submitted:  true,
		input:      input,
		dependsOn:  dependsOn,
		dependents: dependents,
		state:      Pending,
		depOutputs: map[K]O{},
	}

	for _, d := range dependsOn {
		dep, ok := jobs[d]
		if !ok {
			dep = &jobNode[K, O]{key: d, state: Pending, depOutputs: map[K]O{}}
			jobs[d] = dep
		}
		switch dep.state {
		case Completed, Drained:
			node.depOutputs[d] = dep.output
		default:
			dep.dependents = append(dep.dependents, key)
			node.remaining++
		}
	}

	jobs[key] = node
	if node.remaining == 0 {
		node.state = Ready
		offer(key)
	}
	return nil
}

// hasPath reports whether target is reachable from start by following
// dependsOn edges already present in jobs.
func hasPath[K comparable, O any](jobs map[K]*jobNode[K, O], start, target K) bool {
	if start == target {
		return true
	}
	visited := map[K]bool{}
	var walk func(K) bool
	walk = func(k K) bool {
		if k == target {
			return true
		}
		if visited[k] {
			return false
		}
		visited[k] = true
		node, ok := jobs[k]
		if !ok {
			return false
		}
		for _, d := range node.dependsOn {
			if walk(d) {
				return true
			}
		}
		return false
	}
	return walk(start)
}

// handleRemove deletes key and transitively removes any dependency stub
// (never directly submitted) left with no remaining dependents.
func (q *Queue[K, O]) handleRemove(jobs map[K]*jobNode[K, O], key K) {
	node, ok := jobs[key]
	if !ok {
		return
	}
	delete(jobs, key)
	for _, d := range node.dependsOn {
		dep, ok := jobs[d]
		if !ok {
			continue
		}
		dep.dependents = removeKey(dep.dependents, key)
		if !dep.submitted && len(dep.dependents) == 0 {
			q.handleRemove(jobs, d)
		}
	}
}

func removeKey[K comparable](keys []K, target K) []K {
	out := keys[:0]
	for _, k := range keys {
		if k != target {
			out = append(out, k)
		}
	}
	return out
}

// runWorker pulls dispatched jobs and runs the handler, reporting the
// result back to the manager. It exits when ctx is cancelled.
func (q *Queue[K, O]) runWorker(ctx context.Context) {
	myCh := make(chan dispatch[K, O])
	for {
		select {
		case <-ctx.Done():
			return
		case q.idleWorkers <- myCh:
		}

		select {
		case <-ctx.Done():
			return
		case d := <-myCh:
			output, err := q.handler(ctx, d.key, d.dependsOn, d.input)
			select {
			case q.completeCh <- completion[K, O]{key: d.key, output: output, err: err}:
			case <-ctx.Done():
			}
		}
	}
}
