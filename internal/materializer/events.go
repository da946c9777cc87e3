package materializer

import (
	"time"

	"github.com/RobbyUitbeijerse/use-tree/pkg/domain"
)

func fetchEvent(typ domain.EventType, kind domain.FetchKind, ids []string) *domain.FetchEvent {
	return &domain.FetchEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: typ},
		Kind:      kind,
		IDs:       ids,
	}
}

func (m *Materializer[T]) emitFetchStart(kind domain.FetchKind, ids []string) {
	if m.hooks.OnFetchStart == nil {
		return
	}
	m.hooks.OnFetchStart(m.ctx, fetchEvent(domain.EventFetchStart, kind, ids))
}

func (m *Materializer[T]) emitFetchCommitLocked(kind domain.FetchKind, ids []string, took time.Duration, err error) {
	if m.hooks.OnFetchCommit == nil {
		return
	}
	ev := fetchEvent(domain.EventFetchCommit, kind, ids)
	ev.Took = took
	ev.Err = err
	m.hooks.OnFetchCommit(m.ctx, ev)
}

func (m *Materializer[T]) emitStaleDrop(kind domain.FetchKind, ids []string, took time.Duration) {
	if m.hooks.OnStaleDrop == nil {
		return
	}
	ev := fetchEvent(domain.EventStaleDrop, kind, ids)
	ev.Took = took
	m.hooks.OnStaleDrop(m.ctx, ev)
}

func (m *Materializer[T]) emitSourceReset() {
	if m.hooks.OnSourceReset == nil {
		return
	}
	m.hooks.OnSourceReset(m.ctx, &domain.EventBase{Timestamp: time.Now(), Type: domain.EventSourceReset})
}

func (m *Materializer[T]) emitRecomputeLocked(nodes, reused int) {
	if m.hooks.OnRecompute == nil {
		return
	}
	m.hooks.OnRecompute(m.ctx, &domain.RecomputeEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventRecompute},
		Nodes:     nodes,
		Reused:    reused,
	})
}
