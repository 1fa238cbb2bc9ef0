// File: internal/services/chatstream/reconciler_test.go
package chatstream

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-blog/go-inkwell/internal/domain"
)

type fakeDirectory struct {
	owned map[uint]bool
	err   error
}

func (d *fakeDirectory) ExistsByIDAndUserID(_ context.Context, chatID, _ uint) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	return d.owned[chatID], nil
}

type savedMessage struct {
	ChatID  uint
	Role    string
	Content string
}

type fakeStore struct {
	mu       sync.Mutex
	saved    []savedMessage
	touched  []uint
	titles   map[uint]string
	saveErr  error
	touchErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{titles: make(map[uint]string)}
}

func (s *fakeStore) SaveMessage(_ context.Context, chatID uint, role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, savedMessage{ChatID: chatID, Role: role, Content: content})
	return nil
}

func (s *fakeStore) TouchChat(_ context.Context, chatID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.touchErr != nil {
		return s.touchErr
	}
	s.touched = append(s.touched, chatID)
	return nil
}

func (s *fakeStore) UpdateChatTitle(_ context.Context, chatID uint, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.titles[chatID] = title
	return nil
}

// chunkStreamer emits its chunks in order, then returns err (nil for a
// clean stream end).
type chunkStreamer struct {
	chunks []string
	err    error
	calls  int
	gotLen int
}

func (cs *chunkStreamer) StreamChat(_ context.Context, _ string, history []VisibleMessage, onDelta func(string) error) error {
	cs.calls++
	cs.gotLen = len(history)
	for _, c := range cs.chunks {
		if err := onDelta(c); err != nil {
			return err
		}
	}
	return cs.err
}

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Warn(string, ...interface{})  {}

func newTestReconciler(t *testing.T, streamer Streamer, store Store, notices *[]Notice) *Reconciler {
	t.Helper()
	var sink func(Notice)
	if notices != nil {
		sink = func(n Notice) { *notices = append(*notices, n) }
	}
	r, err := NewReconciler(
		DefaultConfig(),
		&fakeDirectory{owned: map[uint]bool{7: true}},
		store,
		streamer,
		NewNotifier(sink),
		noopLogger{},
	)
	require.NoError(t, err)
	return r
}

func TestSendHappyPath(t *testing.T) {
	store := newFakeStore()
	streamer := &chunkStreamer{chunks: []string{"Hi", " there", "!"}}
	r := newTestReconciler(t, streamer, store, nil)

	var snapshots [][]VisibleMessage
	final, err := r.Send(context.Background(), 1, 7, "gpt-3.5-turbo", nil, "Hello", func(ms []VisibleMessage) {
		snapshots = append(snapshots, ms)
	})
	require.NoError(t, err)

	require.Len(t, final, 2)
	assert.Equal(t, domain.RoleUser, final[0].Role)
	assert.Equal(t, "Hello", final[0].Content)
	assert.Equal(t, domain.RoleAssistant, final[1].Role)
	assert.Equal(t, "Hi there!", final[1].Content)

	// Exactly two message writes, user before assistant.
	require.Len(t, store.saved, 2)
	assert.Equal(t, savedMessage{ChatID: 7, Role: domain.RoleUser, Content: "Hello"}, store.saved[0])
	assert.Equal(t, savedMessage{ChatID: 7, Role: domain.RoleAssistant, Content: "Hi there!"}, store.saved[1])
	assert.Equal(t, []uint{7}, store.touched)

	// The streamer saw the history including the optimistic user message.
	assert.Equal(t, 1, streamer.gotLen)

	// Snapshots: sending, one per chunk, settled.
	require.Len(t, snapshots, 2+len(streamer.chunks))
	require.Len(t, snapshots[0], 1)
	assert.Equal(t, "Hello", snapshots[0][0].Content)
	assert.Equal(t, "Hi", snapshots[1][1].Content)
	assert.Equal(t, "Hi there", snapshots[2][1].Content)
	assert.Equal(t, "Hi there!", snapshots[3][1].Content)
}

func TestSendChunksAppendMonotonically(t *testing.T) {
	store := newFakeStore()
	streamer := &chunkStreamer{chunks: []string{"a", "b", "c", "d"}}
	r := newTestReconciler(t, streamer, store, nil)

	var assistantStates []string
	_, err := r.Send(context.Background(), 1, 7, "m", nil, "q", func(ms []VisibleMessage) {
		if len(ms) == 2 && ms[1].Role == domain.RoleAssistant {
			assistantStates = append(assistantStates, ms[1].Content)
		}
	})
	require.NoError(t, err)

	prev := ""
	for _, s := range assistantStates {
		assert.True(t, strings.HasPrefix(s, prev), "content must grow monotonically: %q then %q", prev, s)
		prev = s
	}
	assert.Equal(t, "abcd", prev)
}

func TestSendStreamFailureDiscardsPartial(t *testing.T) {
	store := newFakeStore()
	streamer := &chunkStreamer{chunks: []string{"Par"}, err: errors.New("connection reset")}
	var notices []Notice
	r := newTestReconciler(t, streamer, store, &notices)

	history := []VisibleMessage{{ID: "m1", Role: domain.RoleUser, Content: "earlier"}}
	final, err := r.Send(context.Background(), 1, 7, "m", history, "Hello", nil)

	require.Error(t, err)
	var roundErr *RoundError
	require.ErrorAs(t, err, &roundErr)
	assert.Equal(t, ErrTypeStreaming, roundErr.Type)

	// Nothing persisted, nothing visible beyond the pre-round history.
	assert.Empty(t, store.saved)
	assert.Empty(t, store.touched)
	assert.Equal(t, history, final)

	require.Len(t, notices, 1)
	assert.NotEmpty(t, notices[0].Token)
}

func TestSendRejectsSecondRoundInFlight(t *testing.T) {
	store := newFakeStore()
	release := make(chan struct{})
	started := make(chan struct{})
	blocking := &blockingStreamer{started: started, release: release}
	r := newTestReconciler(t, blocking, store, nil)

	done := make(chan error, 1)
	go func() {
		_, err := r.Send(context.Background(), 1, 7, "m", nil, "first", nil)
		done <- err
	}()

	<-started
	assert.Equal(t, StateStreaming, r.State(7))

	_, err := r.Send(context.Background(), 1, 7, "m", nil, "second", nil)
	assert.ErrorIs(t, err, ErrRoundInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StateIdle, r.State(7))
}

type blockingStreamer struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingStreamer) StreamChat(_ context.Context, _ string, _ []VisibleMessage, onDelta func(string) error) error {
	close(b.started)
	<-b.release
	return onDelta("ok")
}

func TestSendUnauthorizedBeforeStreaming(t *testing.T) {
	store := newFakeStore()
	streamer := &chunkStreamer{chunks: []string{"never"}}
	r, err := NewReconciler(
		DefaultConfig(),
		&fakeDirectory{owned: map[uint]bool{}},
		store,
		streamer,
		NewNotifier(nil),
		noopLogger{},
	)
	require.NoError(t, err)

	_, err = r.Send(context.Background(), 1, 99, "m", nil, "Hello", nil)
	var roundErr *RoundError
	require.ErrorAs(t, err, &roundErr)
	assert.Equal(t, ErrTypeUnauthorized, roundErr.Type)

	// The precondition failed before any network call.
	assert.Zero(t, streamer.calls)
	assert.Empty(t, store.saved)
}

func TestSendRejectsEmptyMessage(t *testing.T) {
	r := newTestReconciler(t, &chunkStreamer{}, newFakeStore(), nil)
	_, err := r.Send(context.Background(), 1, 7, "m", nil, "   ", nil)
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestSendDerivesTitleOnFirstRoundOnly(t *testing.T) {
	store := newFakeStore()
	r := newTestReconciler(t, &chunkStreamer{chunks: []string{"answer"}}, store, nil)

	// First round: exactly one user message in the settled history.
	_, err := r.Send(context.Background(), 1, 7, "m", nil, "What is Go?", nil)
	require.NoError(t, err)
	assert.Equal(t, "What is Go?", store.titles[7])

	// Second round: two user messages now, title untouched.
	history := []VisibleMessage{
		{ID: "1", Role: domain.RoleUser, Content: "What is Go?"},
		{ID: "2", Role: domain.RoleAssistant, Content: "answer"},
	}
	store.titles[7] = "What is Go?"
	_, err = r.Send(context.Background(), 1, 7, "m", history, "Tell me more", nil)
	require.NoError(t, err)
	assert.Equal(t, "What is Go?", store.titles[7])
}

func TestSendTruncatesDerivedTitle(t *testing.T) {
	store := newFakeStore()
	r := newTestReconciler(t, &chunkStreamer{chunks: []string{"ok"}}, store, nil)

	long := strings.Repeat("x", 80)
	_, err := r.Send(context.Background(), 1, 7, "m", nil, long, nil)
	require.NoError(t, err)

	assert.Equal(t, strings.Repeat("x", 50)+"...", store.titles[7])
}

func TestSendPersistenceFailureDoesNotFailRound(t *testing.T) {
	store := newFakeStore()
	store.saveErr = errors.New("db down")
	store.touchErr = errors.New("db down")
	r := newTestReconciler(t, &chunkStreamer{chunks: []string{"done"}}, store, nil)

	final, err := r.Send(context.Background(), 1, 7, "m", nil, "Hello", nil)
	require.NoError(t, err)
	require.Len(t, final, 2)
	assert.Equal(t, "done", final[1].Content)
}

func TestSendOnSettledHook(t *testing.T) {
	store := newFakeStore()
	r := newTestReconciler(t, &chunkStreamer{chunks: []string{"ok"}}, store, nil)

	var refreshed []uint
	r.SetOnSettled(func(chatID uint) { refreshed = append(refreshed, chatID) })

	_, err := r.Send(context.Background(), 1, 7, "m", nil, "Hello", nil)
	require.NoError(t, err)
	assert.Equal(t, []uint{7}, refreshed)
}

func TestDeriveTitle(t *testing.T) {
	assert.Equal(t, "short", DeriveTitle("short", 50, "..."))
	assert.Equal(t, strings.Repeat("a", 50)+"...", DeriveTitle(strings.Repeat("a", 51), 50, "..."))
	// Rune-aware: multi-byte characters count once each.
	assert.Equal(t, "你好", DeriveTitle("你好", 2, "..."))
	assert.Equal(t, "你好...", DeriveTitle("你好世界", 2, "..."))
}

func TestStateStrings(t *testing.T) {
	for s, want := range map[State]string{
		StateIdle:      "idle",
		StateSending:   "sending",
		StateStreaming: "streaming",
		StateSettled:   "settled",
		StateFailed:    "failed",
	} {
		assert.Equal(t, want, s.String())
	}
}

func TestSendSnapshotsAreIndependent(t *testing.T) {
	store := newFakeStore()
	r := newTestReconciler(t, &chunkStreamer{chunks: []string{"a", "b"}}, store, nil)

	var snapshots [][]VisibleMessage
	_, err := r.Send(context.Background(), 1, 7, "m", nil, "q", func(ms []VisibleMessage) {
		snapshots = append(snapshots, ms)
	})
	require.NoError(t, err)

	// Mutating one published snapshot must not affect another.
	snapshots[1][0].Content = "tampered"
	assert.Equal(t, "q", snapshots[2][0].Content)
}
