// File: internal/services/chat/service_test.go
package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-blog/go-inkwell/internal/domain"
	chatrepo "github.com/inkwell-blog/go-inkwell/internal/repository/chat"
	"github.com/inkwell-blog/go-inkwell/internal/services/ai"
)

type fakeChatRepo struct {
	chats  map[uint]*domain.Chat
	nextID uint
	titles map[uint]string
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{chats: map[uint]*domain.Chat{}, nextID: 1, titles: map[uint]string{}}
}

func (f *fakeChatRepo) Create(_ context.Context, c *domain.Chat) (*domain.Chat, error) {
	stored := *c
	stored.ID = f.nextID
	f.nextID++
	f.chats[stored.ID] = &stored
	return &stored, nil
}

func (f *fakeChatRepo) FindByID(_ context.Context, id uint) (*domain.Chat, error) {
	if c, ok := f.chats[id]; ok {
		return c, nil
	}
	return nil, chatrepo.ErrChatNotFound
}

func (f *fakeChatRepo) FindByUserID(_ context.Context, userID uint) ([]domain.Chat, error) {
	var out []domain.Chat
	for _, c := range f.chats {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeChatRepo) Delete(_ context.Context, chatID, userID uint) error {
	c, ok := f.chats[chatID]
	if !ok {
		return chatrepo.ErrChatNotFound
	}
	if c.UserID != userID {
		return chatrepo.ErrUnauthorizedAccess
	}
	delete(f.chats, chatID)
	return nil
}

func (f *fakeChatRepo) TouchUpdatedAt(_ context.Context, chatID uint) error { return nil }

func (f *fakeChatRepo) UpdateTitle(_ context.Context, chatID, userID uint, title string) error {
	c, ok := f.chats[chatID]
	if !ok || c.UserID != userID {
		return chatrepo.ErrChatNotFound
	}
	c.Title = title
	f.titles[chatID] = title
	return nil
}

func (f *fakeChatRepo) ExistsByIDAndUserID(_ context.Context, chatID, userID uint) (bool, error) {
	c, ok := f.chats[chatID]
	return ok && c.UserID == userID, nil
}

type fakeMessageRepo struct {
	messages []domain.Message
	nextID   uint
}

func (f *fakeMessageRepo) Create(_ context.Context, m *domain.Message) (*domain.Message, error) {
	f.nextID++
	stored := *m
	stored.ID = f.nextID
	f.messages = append(f.messages, stored)
	return &stored, nil
}

func (f *fakeMessageRepo) FindByChatID(_ context.Context, chatID uint) ([]domain.Message, error) {
	var out []domain.Message
	for _, m := range f.messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) FindLastByChatID(_ context.Context, chatID uint) (*domain.Message, error) {
	var last *domain.Message
	for i := range f.messages {
		if f.messages[i].ChatID == chatID {
			last = &f.messages[i]
		}
	}
	return last, nil
}

func (f *fakeMessageRepo) CountByChatIDAndRole(_ context.Context, chatID uint, role string) (int64, error) {
	var n int64
	for _, m := range f.messages {
		if m.ChatID == chatID && m.Role == role {
			n++
		}
	}
	return n, nil
}

type fakeProvider struct {
	chunks []string
	err    error
	calls  int
}

func (f *fakeProvider) GetCompletion(context.Context, string, []ai.Message) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeProvider) StreamChat(_ context.Context, _ string, _ []ai.Message, onDelta func(string) error) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	for _, c := range f.chunks {
		if err := onDelta(c); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeProvider) HealthCheck(context.Context) error { return nil }

func (f *fakeProvider) GetStatus(context.Context) ai.ProviderStatus {
	return ai.ProviderStatus{IsHealthy: true}
}

type testLogger struct{}

func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Warn(string, ...interface{})  {}

func newTestService(t *testing.T, chats *fakeChatRepo, messages *fakeMessageRepo, provider *fakeProvider) *Service {
	t.Helper()
	svc, err := NewService(DefaultChatConfig(), chats, messages, provider, testLogger{})
	require.NoError(t, err)
	return svc
}

func TestCreateChat_Defaults(t *testing.T) {
	svc := newTestService(t, newFakeChatRepo(), &fakeMessageRepo{}, &fakeProvider{})

	created, err := svc.CreateChat(context.Background(), 1, "", "")

	require.NoError(t, err)
	assert.Equal(t, DefaultTitle, created.Title)
	assert.Equal(t, DefaultModel, created.Model)
}

func TestCreateChat_RejectsUnknownModel(t *testing.T) {
	svc := newTestService(t, newFakeChatRepo(), &fakeMessageRepo{}, &fakeProvider{})

	_, err := svc.CreateChat(context.Background(), 1, "Title", "claude-nonexistent")

	var chatErr *ChatError
	require.ErrorAs(t, err, &chatErr)
	assert.Equal(t, ErrTypeValidation, chatErr.Type)
}

func TestGetUserChats_IncludesLastMessagePreview(t *testing.T) {
	chats := newFakeChatRepo()
	messages := &fakeMessageRepo{}
	svc := newTestService(t, chats, messages, &fakeProvider{})

	created, err := svc.CreateChat(context.Background(), 1, "", "")
	require.NoError(t, err)
	_, err = messages.Create(context.Background(), &domain.Message{ChatID: created.ID, Role: domain.RoleUser, Content: "first"})
	require.NoError(t, err)
	_, err = messages.Create(context.Background(), &domain.Message{ChatID: created.ID, Role: domain.RoleAssistant, Content: "latest reply"})
	require.NoError(t, err)

	summaries, err := svc.GetUserChats(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "latest reply", summaries[0].LastMessage)
}

func TestGetChatMessages_RequiresOwnership(t *testing.T) {
	chats := newFakeChatRepo()
	svc := newTestService(t, chats, &fakeMessageRepo{}, &fakeProvider{})
	created, err := svc.CreateChat(context.Background(), 1, "", "")
	require.NoError(t, err)

	_, err = svc.GetChatMessages(context.Background(), 2, created.ID)

	var chatErr *ChatError
	require.ErrorAs(t, err, &chatErr)
	assert.Equal(t, ErrTypeUnauthorized, chatErr.Type)
}

func TestSendMessage_StreamsDeltasAndPersists(t *testing.T) {
	chats := newFakeChatRepo()
	messages := &fakeMessageRepo{}
	provider := &fakeProvider{chunks: []string{"Hello", ", world", "!"}}
	svc := newTestService(t, chats, messages, provider)
	created, err := svc.CreateChat(context.Background(), 1, "", "")
	require.NoError(t, err)

	var deltas []string
	reply, err := svc.SendMessage(context.Background(), 1, created.ID, "Hi there", func(d string) {
		deltas = append(deltas, d)
	})

	require.NoError(t, err)
	assert.Equal(t, "Hello, world!", reply)
	assert.Equal(t, []string{"Hello", ", world", "!"}, deltas)

	stored, err := messages.FindByChatID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, domain.RoleUser, stored[0].Role)
	assert.Equal(t, "Hi there", stored[0].Content)
	assert.Equal(t, domain.RoleAssistant, stored[1].Role)
	assert.Equal(t, "Hello, world!", stored[1].Content)
}

func TestSendMessage_DerivesTitleFromFirstRound(t *testing.T) {
	chats := newFakeChatRepo()
	provider := &fakeProvider{chunks: []string{"Sure."}}
	svc := newTestService(t, chats, &fakeMessageRepo{}, provider)
	created, err := svc.CreateChat(context.Background(), 1, "", "")
	require.NoError(t, err)

	_, err = svc.SendMessage(context.Background(), 1, created.ID, "How do goroutines work?", nil)

	require.NoError(t, err)
	assert.Equal(t, "How do goroutines work?", chats.titles[created.ID])
}

func TestSendMessage_ForeignChatNeverReachesProvider(t *testing.T) {
	chats := newFakeChatRepo()
	provider := &fakeProvider{chunks: []string{"nope"}}
	svc := newTestService(t, chats, &fakeMessageRepo{}, provider)
	created, err := svc.CreateChat(context.Background(), 1, "", "")
	require.NoError(t, err)

	_, err = svc.SendMessage(context.Background(), 2, created.ID, "hi", nil)

	require.Error(t, err)
	assert.Zero(t, provider.calls)
}

func TestSendMessage_StreamFailureLeavesNothingStored(t *testing.T) {
	chats := newFakeChatRepo()
	messages := &fakeMessageRepo{}
	provider := &fakeProvider{err: errors.New("upstream closed")}
	svc := newTestService(t, chats, messages, provider)
	created, err := svc.CreateChat(context.Background(), 1, "", "")
	require.NoError(t, err)

	_, err = svc.SendMessage(context.Background(), 1, created.ID, "hi", nil)

	require.Error(t, err)
	assert.Empty(t, messages.messages)
}

func TestUpdateChatTitle_Validation(t *testing.T) {
	chats := newFakeChatRepo()
	svc := newTestService(t, chats, &fakeMessageRepo{}, &fakeProvider{})
	created, err := svc.CreateChat(context.Background(), 1, "", "")
	require.NoError(t, err)

	err = svc.UpdateChatTitle(context.Background(), 1, created.ID, "  ")
	var chatErr *ChatError
	require.ErrorAs(t, err, &chatErr)
	assert.Equal(t, ErrTypeValidation, chatErr.Type)

	require.NoError(t, svc.UpdateChatTitle(context.Background(), 1, created.ID, "Renamed"))
	assert.Equal(t, "Renamed", chats.chats[created.ID].Title)
}

func TestDeleteChat_OwnerOnly(t *testing.T) {
	chats := newFakeChatRepo()
	svc := newTestService(t, chats, &fakeMessageRepo{}, &fakeProvider{})
	created, err := svc.CreateChat(context.Background(), 1, "", "")
	require.NoError(t, err)

	err = svc.DeleteChat(context.Background(), 2, created.ID)
	var chatErr *ChatError
	require.ErrorAs(t, err, &chatErr)
	assert.Equal(t, ErrTypeNotFound, chatErr.Type)

	require.NoError(t, svc.DeleteChat(context.Background(), 1, created.ID))
	assert.Empty(t, chats.chats)
}
