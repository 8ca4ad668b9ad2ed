package admin

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"Zoom-License-Bot/internal/db"
	"Zoom-License-Bot/internal/telegram"
)

// fakeAPI records outbound calls instead of hitting Telegram.
type fakeAPI struct {
	mu sync.Mutex

	texts    []sentText
	forwards []forwarded
	copies   []copied
	answers  []answer
	edits    int

	admins     []tgbotapi.ChatMember
	adminCalls int
	nextMsgID  int
}

type sentText struct {
	chatID int64
	text   string
	opts   *telegram.SendOpts
}

type forwarded struct {
	to, from int64
	msgID    int
	threadID int
}

type copied struct {
	to, from int64
	msgID    int
}

type answer struct {
	id    string
	text  string
	alert bool
}

func (f *fakeAPI) SendText(chatID int64, text string, opts *telegram.SendOpts) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, sentText{chatID: chatID, text: text, opts: opts})
	f.nextMsgID++
	return f.nextMsgID, nil
}

func (f *fakeAPI) SendPhoto(chatID int64, fileID, caption string, opts *telegram.SendOpts) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextMsgID++
	return f.nextMsgID, nil
}

func (f *fakeAPI) SendDocument(chatID int64, path, caption string) error { return nil }

func (f *fakeAPI) EditText(chatID int64, messageID int, text string, kb *tgbotapi.InlineKeyboardMarkup) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits++
	return nil
}

func (f *fakeAPI) EditCaption(chatID int64, messageID int, caption string, kb *tgbotapi.InlineKeyboardMarkup) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits++
	return nil
}

func (f *fakeAPI) EditMedia(chatID int64, messageID int, fileID, caption string, kb *tgbotapi.InlineKeyboardMarkup) error {
	return nil
}

func (f *fakeAPI) DeleteMessage(chatID int64, messageID int) error { return nil }

func (f *fakeAPI) ForwardMessage(to, from int64, msgID, threadID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forwards = append(f.forwards, forwarded{to: to, from: from, msgID: msgID, threadID: threadID})
	return nil
}

func (f *fakeAPI) CopyMessage(to, from int64, msgID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.copies = append(f.copies, copied{to: to, from: from, msgID: msgID})
	return nil
}

func (f *fakeAPI) AnswerCallback(id, text string, alert bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, answer{id: id, text: text, alert: alert})
	return nil
}

func (f *fakeAPI) ChatAdministrators(chatID int64) ([]tgbotapi.ChatMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adminCalls++
	return f.admins, nil
}

func (f *fakeAPI) GetChat(chatID int64) (*tgbotapi.Chat, error) {
	return &tgbotapi.Chat{ID: chatID}, nil
}

func (f *fakeAPI) lastAnswer() answer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.answers) == 0 {
		return answer{}
	}
	return f.answers[len(f.answers)-1]
}

func (f *fakeAPI) textsTo(chatID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, t := range f.texts {
		if t.chatID == chatID {
			out = append(out, t.text)
		}
	}
	return out
}

// stubStore is an in-memory Store for approval tests.
type stubStore struct {
	mu       sync.Mutex
	users    map[int64]*db.User
	orders   map[uint]*db.Order
	licenses map[uint]*db.License
	settings map[string]string
}

func newStubStore() *stubStore {
	return &stubStore{
		users:    make(map[int64]*db.User),
		orders:   make(map[uint]*db.Order),
		licenses: make(map[uint]*db.License),
		settings: make(map[string]string),
	}
}

func (s *stubStore) GetUser(tgID int64) (*db.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[tgID]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *stubStore) ListUsers() ([]db.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []db.User
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (s *stubStore) UpdateSession(tgID int64, stage db.Stage, draft db.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[tgID]; ok {
		u.Stage = stage
		u.Draft = draft
	}
	return nil
}

func (s *stubStore) UpdateProfile(tgID int64, firstName, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[tgID]; ok {
		u.FirstName = firstName
		u.Username = username
	}
	return nil
}

func (s *stubStore) GetOrder(id uint) (*db.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *stubStore) TransitionOrder(id uint, from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.Status != from {
		return db.ErrAlreadyProcessed
	}
	o.Status = to
	return nil
}

func (s *stubStore) GetLicense(id uint) (*db.License, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.licenses[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (s *stubStore) TransitionLicense(id uint, from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.licenses[id]
	if !ok || l.Status != from {
		return db.ErrAlreadyProcessed
	}
	l.Status = to
	return nil
}

func (s *stubStore) CreditCoins(tgID int64, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if amount <= 0 {
		return db.ErrInvalidAmount
	}
	u, ok := s.users[tgID]
	if !ok {
		return db.ErrNotFound
	}
	u.CoinBalance += amount
	return nil
}

func (s *stubStore) DebitCoins(tgID int64, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if amount <= 0 {
		return db.ErrInvalidAmount
	}
	u, ok := s.users[tgID]
	if !ok {
		return db.ErrNotFound
	}
	if u.CoinBalance < amount {
		return db.ErrInsufficientBalance
	}
	u.CoinBalance -= amount
	return nil
}

func (s *stubStore) GetSetting(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.settings[key]
	if !ok {
		return "", db.ErrNotFound
	}
	return v, nil
}

func (s *stubStore) SetSetting(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[key] = value
	return nil
}

func (s *stubStore) balance(tgID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[tgID]; ok {
		return u.CoinBalance
	}
	return 0
}
