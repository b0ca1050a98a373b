package eventbus

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"charthub/internal/domain"
)

type recorder struct {
	mu     sync.Mutex
	events []DomainEvent
}

func (r *recorder) handle(e DomainEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestPublishDeliversInOrder(t *testing.T) {
	b := New()
	defer b.Close()

	rec := &recorder{}
	b.Subscribe(EventScopeChanged, rec.handle)

	b.Publish(ScopeChangedEvent{To: domain.OrgScope("a")})
	b.Publish(ScopeChangedEvent{To: domain.OrgScope("b")})
	b.Publish(SessionChangedEvent{})

	require.Eventually(t, func() bool { return rec.count() == 2 }, time.Second, 5*time.Millisecond)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, "a", rec.events[0].(ScopeChangedEvent).To.Org)
	assert.Equal(t, "b", rec.events[1].(ScopeChangedEvent).To.Org)
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	defer b.Close()

	first := &recorder{}
	second := &recorder{}
	unsubscribe := b.Subscribe(EventSessionChanged, first.handle)
	b.Subscribe(EventSessionChanged, second.handle)

	unsubscribe()
	b.Publish(SessionChangedEvent{})

	require.Eventually(t, func() bool { return second.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, first.count())
}

func TestHandlerPanicDoesNotStopDispatch(t *testing.T) {
	b := New()
	defer b.Close()

	rec := &recorder{}
	b.Subscribe(EventError, func(DomainEvent) { panic("boom") })
	b.Subscribe(EventError, rec.handle)

	b.Publish(ErrorEvent{Message: "first"})
	b.Publish(ErrorEvent{Message: "second"})

	require.Eventually(t, func() bool { return rec.count() == 2 }, time.Second, 5*time.Millisecond)
}

func TestPublishAfterCloseIsIgnored(t *testing.T) {
	b := New()
	rec := &recorder{}
	b.Subscribe(EventConfigSaved, rec.handle)
	b.Close()

	assert.NotPanics(t, func() { b.Publish(ConfigSavedEvent{}) })
	assert.NotPanics(t, b.Close)
	assert.Equal(t, 0, rec.count())
}
