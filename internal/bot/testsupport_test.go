package bot

import (
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"Zoom-License-Bot/internal/db"
	"Zoom-License-Bot/internal/telegram"
)

type sentText struct {
	chatID int64
	text   string
	opts   *telegram.SendOpts
}

type sentPhoto struct {
	chatID  int64
	fileID  string
	caption string
	opts    *telegram.SendOpts
}

type answer struct {
	id    string
	text  string
	alert bool
}

// fakeAPI records outbound traffic for flow assertions.
type fakeAPI struct {
	mu sync.Mutex

	texts      []sentText
	photos     []sentPhoto
	answers    []answer
	edits      []string
	mediaEdits []string
	deleted    int
	nextMsgID  int
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
	f.photos = append(f.photos, sentPhoto{chatID: chatID, fileID: fileID, caption: caption, opts: opts})
	f.nextMsgID++
	return f.nextMsgID, nil
}

func (f *fakeAPI) SendDocument(chatID int64, path, caption string) error { return nil }

func (f *fakeAPI) EditText(chatID int64, messageID int, text string, kb *tgbotapi.InlineKeyboardMarkup) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, text)
	return nil
}

func (f *fakeAPI) EditCaption(chatID int64, messageID int, caption string, kb *tgbotapi.InlineKeyboardMarkup) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, caption)
	return nil
}

func (f *fakeAPI) EditMedia(chatID int64, messageID int, fileID, caption string, kb *tgbotapi.InlineKeyboardMarkup) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mediaEdits = append(f.mediaEdits, fileID)
	return nil
}

func (f *fakeAPI) DeleteMessage(chatID int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted++
	return nil
}

func (f *fakeAPI) ForwardMessage(to, from int64, msgID, threadID int) error { return nil }
func (f *fakeAPI) CopyMessage(to, from int64, msgID int) error             { return nil }

func (f *fakeAPI) AnswerCallback(id, text string, alert bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, answer{id: id, text: text, alert: alert})
	return nil
}

func (f *fakeAPI) ChatAdministrators(chatID int64) ([]tgbotapi.ChatMember, error) {
	return nil, nil
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

func (f *fakeAPI) lastEdit() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.edits) == 0 {
		return ""
	}
	return f.edits[len(f.edits)-1]
}

// stubStore backs one user's conversation in memory.
type stubStore struct {
	mu       sync.Mutex
	user     *db.User
	isNew    bool
	orders   []*db.Order
	licenses []*db.License
	settings map[string]string
	proofs   map[uint]int
}

func newStubStore(user *db.User) *stubStore {
	return &stubStore{
		user:     user,
		settings: make(map[string]string),
		proofs:   make(map[uint]int),
	}
}

func (s *stubStore) GetOrCreateUser(tgID int64, firstName, username string) (*db.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil || s.user.TgID != tgID {
		return nil, false, fmt.Errorf("unexpected user %d", tgID)
	}
	cp := *s.user
	wasNew := s.isNew
	s.isNew = false
	return &cp, wasNew, nil
}

func (s *stubStore) UpdateSession(tgID int64, stage db.Stage, draft db.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user != nil && s.user.TgID == tgID {
		s.user.Stage = stage
		s.user.Draft = draft
	}
	return nil
}

func (s *stubStore) CreateOrder(order *db.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order.ID = uint(len(s.orders) + 1)
	cp := *order
	s.orders = append(s.orders, &cp)
	return nil
}

func (s *stubStore) SetOrderProof(orderID uint, messageID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proofs[orderID] = messageID
	return nil
}

func (s *stubStore) CreateLicense(lic *db.License) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lic.ID = uint(len(s.licenses) + 1)
	cp := *lic
	s.licenses = append(s.licenses, &cp)
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

func (s *stubStore) currentUser() db.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.user
}
