// Package parallel runs the belief-tree search of internal/search across
// several goroutines instead of one, pinning each worker to a distinct
// root action rather than sharing a task queue (spec.md §4.9: "no task
// queue, no stealing, no futures"). It is a thin driver on top of
// internal/search -- every bound update, blocker check, and selection
// rule still lives there; this package only adds locking discipline
// around the parts of a trial that touch shared tree state concurrently.
package parallel

import (
	"context"
	"time"

	"github.com/mlindqvist/despot/internal/belief"
	"github.com/mlindqvist/despot/internal/history"
	"github.com/mlindqvist/despot/internal/model"
	"github.com/mlindqvist/despot/internal/search"
	"github.com/mlindqvist/despot/internal/tree"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

// quantum is the per-worker time slice spec.md §4.9 describes as "e.g.
// 250 ms or five consecutive 'returned to root' signals" -- whichever
// comes first ends one worker's share of a Run call, so a slow worker
// can't starve the others of a chance to report back.
const quantum = 250 * time.Millisecond

// maxRootReturns is the consecutive-trials-landing-back-at-root cap
// described alongside quantum: a worker whose every trial terminates at
// depth 0 (gap already closed, or every root child Done) is done for
// this slice regardless of how much of quantum is left.
const maxRootReturns = 5

// Run expands root's direct children if needed, then spawns one
// goroutine per root action (capped at numWorkers, and at the number of
// actions if numWorkers exceeds it), each repeatedly trialing and
// backing up against its own pinned root Q-node until ctx is done or
// one of workerLoop's own stop conditions (quantum, maxRootReturns, a
// Done root) ends it. It
// returns the first worker error, if any, after every worker has
// stopped (spec.md §4.9's fixed one-thread-per-root-action design,
// generalized to numWorkers instead of a hardcoded three).
//
// Run does not call search.OptimalAction -- callers read the bounds off
// root themselves once Run returns, exactly as they would after a
// sequential internal/search.Planner.Search loop.
func Run(ctx context.Context, env *search.Env, root *tree.VNode, numWorkers int) error {
	env.TreeMu.Lock()
	if root.IsLeaf() {
		search.Expand(env, root, nil)
	}
	numActions := len(root.Children)
	env.TreeMu.Unlock()

	if numActions == 0 {
		return nil
	}
	if numWorkers <= 0 || numWorkers > numActions {
		numWorkers = numActions
	}

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < numWorkers; w++ {
		assigned := model.ActionID(w)
		g.Go(func() error {
			return workerLoop(gctx, env, root, assigned)
		})
	}
	return g.Wait()
}

// workerLoop repeatedly runs parallelTrial/search.Backup against root,
// pinned to assigned at depth 0, until ctx is cancelled, quantum has
// elapsed, or the worker has returned to the root maxRootReturns times
// in a row without making progress.
func workerLoop(ctx context.Context, env *search.Env, root *tree.VNode, assigned model.ActionID) error {
	deadline := time.Now().Add(quantum)
	rootReturns := 0
	var hist history.History

	for {
		if ctx.Err() != nil {
			return nil
		}
		if time.Now().After(deadline) {
			return nil
		}

		leaf := parallelTrial(env, root, assigned, &hist)

		env.TreeMu.Lock()
		search.Backup(env, leaf)
		rootDone := root.Done
		env.TreeMu.Unlock()

		if rootDone {
			return nil
		}

		if leaf == root {
			rootReturns++
			if rootReturns >= maxRootReturns {
				return nil
			}
		} else {
			rootReturns = 0
		}
	}
}

// parallelTrial is internal/search.Trial's descent, specialized so the
// first step off root always takes the worker's assigned Q-node instead
// of internal/search.SelectBestUpperBoundNode's tree-wide argmax --
// that pinning is the entire reason a root action ever gets explored by
// more than one worker's trials. Every read or write of shared node
// topology is made under env.TreeMu; the model simulation inside
// search.BuildChildren runs unlocked, mirroring spec.md §4.9's
// unlocked-expand/locked-splice discipline, so one worker's Step calls
// never block another's tree walk.
func parallelTrial(env *search.Env, root *tree.VNode, assigned model.ActionID, hist *history.History) *tree.VNode {
	env.TreeMu.Lock()

	cur := root
	histSize := hist.Size()
	atRoot := true

	for {
		search.ExploitBlockers(env, cur)

		if search.Gap(cur) == 0 {
			break
		}

		if cur.IsLeaf() {
			snapshot := *hist
			env.TreeMu.Unlock()
			children := search.BuildChildren(env, cur, snapshot)
			env.TreeMu.Lock()
			if cur.IsLeaf() {
				cur.EnsureChildSlots(len(children))
				copy(cur.Children, children)
			} else {
				// Another worker's trial reached cur and spliced its own
				// expansion in first -- ours is redundant. Free the
				// particles it allocated rather than leaking them.
				discardChildren(env, children)
			}
			klog.V(3).Infof("parallel: worker for action %d expanded depth=%d", assigned, cur.Depth)
		}

		var qstar *tree.QNode
		if atRoot {
			qstar = cur.Child(assigned)
			atRoot = false
		} else {
			qstar = search.SelectBestUpperBoundNode(cur)
		}
		if qstar == nil {
			break
		}

		next := search.SelectBestWEUNode(env, qstar, root)
		if next == nil {
			break
		}

		cur = next
		hist.Push(qstar.Action, cur.Edge)

		if !(cur.Depth < env.Cfg.SearchDepth && search.WEU(env, cur, root) > 0) {
			break
		}
	}

	hist.Truncate(histSize)
	env.TreeMu.Unlock()
	return cur
}

// discardChildren frees every particle held by a freshly built, never
// spliced QNode slice -- the losing side of the race two workers can hit
// when both find the same leaf VNode at once.
func discardChildren(env *search.Env, children []*tree.QNode) {
	for _, q := range children {
		for _, v := range q.Children {
			belief.Free(v.Particles, env.Model.Free, env.Pool)
		}
	}
}
