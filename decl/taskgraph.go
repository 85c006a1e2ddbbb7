package decl

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/ardnew/lrx/lang"
)

// task is the remainder of a part's argument construction, suspended on a
// delegate whose target widget was not resolved when it was reached.
type task struct {
	part  *Part
	terms []*lang.AttTerm
	next  int
	alias *Variable
	dep   string
}

// taskGraph queues tasks by the widget name they wait for. Dependency names
// are kept in insertion order so resolution is deterministic.
type taskGraph struct {
	deps  []string
	tasks map[string][]*task
}

func newTaskGraph() *taskGraph {
	return &taskGraph{tasks: make(map[string][]*task)}
}

func (g *taskGraph) add(t *task) {
	if _, ok := g.tasks[t.dep]; !ok {
		g.deps = append(g.deps, t.dep)
	}

	g.tasks[t.dep] = append(g.tasks[t.dep], t)
}

// Len returns the number of queued tasks.
func (g *taskGraph) Len() int {
	n := 0
	for _, q := range g.tasks {
		n += len(q)
	}

	return n
}

// drain runs queued tasks whose dependency has become a resolved widget,
// repeating until a full pass makes no progress. Continuations may queue
// further tasks. Anything left is unresolvable.
func (g *taskGraph) drain(b *build) error {
	for pass := 1; ; pass++ {
		progress := false

		for _, dep := range slices.Clone(g.deps) {
			w, ok := b.resolved(dep)
			if !ok {
				continue
			}

			queue := g.tasks[dep]
			delete(g.tasks, dep)
			g.deps = slices.DeleteFunc(g.deps, func(d string) bool { return d == dep })

			for _, t := range queue {
				if err := b.resume(t, w); err != nil {
					return err
				}
			}

			progress = true
		}

		b.logger.TraceContext(b.ctx, "delegate pass",
			slog.Int("pass", pass),
			slog.Int("pending_tasks", g.Len()),
			slog.Bool("progress", progress),
		)

		if !progress {
			break
		}
	}

	if len(g.tasks) == 0 {
		return nil
	}

	return g.unresolved(b)
}

func (b *build) resume(t *task, w *Part) error {
	if err := b.importDelegate(t.part, t.alias, w); err != nil {
		return err
	}

	deferred, err := b.construct(t.part, t.terms, t.next, false)
	if err != nil {
		return err
	}

	if !deferred {
		b.finalize(t.part)
	}

	return nil
}

// unresolved reports every stuck part with the name it waits for, located
// at the earliest stuck delegate.
func (g *taskGraph) unresolved(b *build) error {
	var (
		stuck []string
		first *task
	)

	for _, dep := range g.deps {
		for _, t := range g.tasks[dep] {
			stuck = append(stuck, t.part.DisplayName()+" (waiting for "+dep+")")

			if first == nil || t.alias.Range.Start < first.alias.Range.Start {
				first = t
			}
		}
	}

	slices.Sort(stuck)

	return b.errAt(lang.ErrUnresolvedDelegate, first.alias.Range.Start).
		Withf(strings.Join(stuck, ", "))
}
