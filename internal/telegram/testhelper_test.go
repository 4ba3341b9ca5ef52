package telegram

import (
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ichi0g0y/spin-the-wheel/internal/scheduler"
	"github.com/ichi0g0y/spin-the-wheel/internal/types"
	"github.com/ichi0g0y/spin-the-wheel/internal/wheel"
)

const (
	groupID = int64(-1001)
	botName = "spinbot"
)

type fakeSender struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	members  map[int64]tgbotapi.ChatMember
	sendErrs map[int64]error
}

func newFakeSender() *fakeSender {
	return &fakeSender{
		members:  map[int64]tgbotapi.ChatMember{},
		sendErrs: map[int64]error{},
	}
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		if err := f.sendErrs[msg.ChatID]; err != nil {
			return tgbotapi.Message{}, err
		}
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.members[config.UserID]; ok {
		return m, nil
	}
	return tgbotapi.ChatMember{Status: "left"}, nil
}

func (f *fakeSender) setMember(user *tgbotapi.User, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members[user.ID] = tgbotapi.ChatMember{User: user, Status: status}
}

func (f *fakeSender) messagesTo(chatID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok && msg.ChatID == chatID {
			out = append(out, msg.Text)
		}
	}
	return out
}

func (f *fakeSender) sawMessage(chatID int64, text string) bool {
	for _, m := range f.messagesTo(chatID) {
		if m == text {
			return true
		}
	}
	return false
}

func (f *fakeSender) photos() []tgbotapi.PhotoConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.PhotoConfig
	for _, c := range f.sent {
		if p, ok := c.(tgbotapi.PhotoConfig); ok {
			out = append(out, p)
		}
	}
	return out
}

type botHarness struct {
	bot     *Bot
	api     *fakeSender
	manager *wheel.Manager
	sched   *scheduler.Manual
}

func newBotHarness(cfg types.Config) *botHarness {
	api := newFakeSender()
	sched := scheduler.NewManual()
	effector := NewEffector(api)
	manager := wheel.New(wheel.Options{
		Config:    cfg,
		Scheduler: sched,
		Effector:  effector,
	})
	return &botHarness{
		bot:     NewBot(api, manager, effector, botName),
		api:     api,
		manager: manager,
		sched:   sched,
	}
}

func testConfig() types.Config {
	return types.Config{
		CommandPrefix: "!",
		SendDMs:       true,
		Spin: types.SpinConfig{
			Enabled: true,
			Prizes: []types.Prize{
				{Name: "Gold", Description: "shiny", Type: types.PrizeTypeRole, RoleID: 1, Odds: 1, Message: "gold!", RoleTime: 10 * time.Second, IsSilencing: true},
			},
		},
	}
}

func user(id int64, name string) *tgbotapi.User {
	return &tgbotapi.User{ID: id, UserName: name, FirstName: name}
}

func groupMessage(from *tgbotapi.User, text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: from,
			Chat: &tgbotapi.Chat{ID: groupID, Type: "supergroup"},
			Text: text,
		},
	}
}

func privateMessage(from *tgbotapi.User, text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: from,
			Chat: &tgbotapi.Chat{ID: from.ID, Type: "private"},
			Text: text,
		},
	}
}
