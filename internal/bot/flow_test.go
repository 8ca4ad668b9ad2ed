package bot

import (
	"strconv"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Zoom-License-Bot/internal/db"
)

const (
	customerID = int64(42)
	ownerID    = int64(777)
	groupID    = int64(-100123)
)

func newFlowFixture(stage db.Stage, draft db.Draft, balance int64) (*Bot, *fakeAPI, *stubStore) {
	api := &fakeAPI{}
	store := newStubStore(&db.User{
		TgID:        customerID,
		FirstName:   "Aye",
		Username:    "aye",
		Stage:       stage,
		Draft:       draft,
		CoinBalance: balance,
	})
	store.settings[db.KeyGroupID] = strconv.FormatInt(groupID, 10)
	store.settings[db.KeyOrderTopicID] = "77"
	store.settings[db.KeyLicenseTopicID] = "78"
	store.settings[db.KeyPromoPhotoFileID] = "promo-file"
	return New(api, store, nil, ownerID), api, store
}

func commandUpdate(text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: customerID, FirstName: "Aye", UserName: "aye"},
		Chat:      &tgbotapi.Chat{ID: customerID, Type: "private"},
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}},
	}}
}

func textUpdate(text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 2,
		From:      &tgbotapi.User{ID: customerID, FirstName: "Aye", UserName: "aye"},
		Chat:      &tgbotapi.Chat{ID: customerID, Type: "private"},
		Text:      text,
	}}
}

func photoUpdate(fileID string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 3,
		From:      &tgbotapi.User{ID: customerID, FirstName: "Aye", UserName: "aye"},
		Chat:      &tgbotapi.Chat{ID: customerID, Type: "private"},
		Photo:     []tgbotapi.PhotoSize{{FileID: "thumb"}, {FileID: fileID}},
	}}
}

func buttonUpdate(payload string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb-" + payload,
		From: &tgbotapi.User{ID: customerID, FirstName: "Aye", UserName: "aye"},
		Data: payload,
		Message: &tgbotapi.Message{
			MessageID: 4,
			Chat:      &tgbotapi.Chat{ID: customerID, Type: "private"},
		},
	}}
}

func TestCoinPurchaseFlow(t *testing.T) {
	b, api, store := newFlowFixture(db.StageIdle, db.Draft{}, 0)

	b.HandleUpdate(commandUpdate("/start"))
	assert.Equal(t, db.StageMenuShown, store.currentUser().Stage)

	b.HandleUpdate(buttonUpdate(callbackBuyCoins))
	assert.Equal(t, db.StagePlanCatalog, store.currentUser().Stage)
	assert.Equal(t, []string{"promo-file"}, api.mediaEdits)

	b.HandleUpdate(buttonUpdate(prefixBuyCoin + "1Month"))
	u := store.currentUser()
	assert.Equal(t, db.StagePaymentMethod, u.Stage)
	assert.Equal(t, "1Month", u.Draft.Plan)
	assert.Equal(t, int64(2), u.Draft.Coins)
	assert.Equal(t, int64(17000), u.Draft.Price)

	b.HandleUpdate(buttonUpdate(prefixPayMethod + "KBZPay"))
	u = store.currentUser()
	assert.Equal(t, db.StageAwaitingProof, u.Stage)
	assert.Equal(t, "KBZPay", u.Draft.Method)
	assert.Contains(t, api.lastEdit(), "17000 Ks")

	b.HandleUpdate(photoUpdate("receipt-file"))

	require.Len(t, store.orders, 1)
	order := store.orders[0]
	assert.Equal(t, "1Month", order.PlanName)
	assert.Equal(t, int64(2), order.Coins)
	assert.Equal(t, db.OrderPending, order.Status)
	assert.NotEmpty(t, order.Reference)

	// Review card lands in the order topic with the receipt photo.
	require.Len(t, api.photos, 1)
	card := api.photos[0]
	assert.Equal(t, groupID, card.chatID)
	assert.Equal(t, "receipt-file", card.fileID)
	require.NotNil(t, card.opts)
	assert.Equal(t, 77, card.opts.ThreadID)
	assert.NotNil(t, card.opts.Keyboard)
	assert.Contains(t, card.caption, "Order (Pending)")
	assert.NotZero(t, store.proofs[order.ID])

	u = store.currentUser()
	assert.Equal(t, db.StageIdle, u.Stage)
	assert.Equal(t, db.Draft{}, u.Draft)
}

func TestBackFromReceiptKeepsPlan(t *testing.T) {
	draft := db.Draft{Plan: "1Month", Days: 28, Coins: 2, Price: 17000, Method: "KBZPay"}
	b, _, store := newFlowFixture(db.StageAwaitingProof, draft, 0)

	b.HandleUpdate(buttonUpdate(prefixBuyCoin + "1Month"))

	u := store.currentUser()
	assert.Equal(t, db.StagePaymentMethod, u.Stage)
	assert.Equal(t, "1Month", u.Draft.Plan)
	assert.Equal(t, int64(17000), u.Draft.Price)
	assert.Empty(t, u.Draft.Method)
}

func TestBackToPlansKeepsPlanFields(t *testing.T) {
	draft := db.Draft{Plan: "1Month", Days: 28, Coins: 2, Price: 17000, Method: "KBZPay"}
	b, _, store := newFlowFixture(db.StagePaymentMethod, draft, 0)

	b.HandleUpdate(buttonUpdate(callbackBackToPlans))

	u := store.currentUser()
	assert.Equal(t, db.StagePlanCatalog, u.Stage)
	assert.Equal(t, "1Month", u.Draft.Plan)
	assert.Equal(t, 28, u.Draft.Days)
	assert.Equal(t, int64(2), u.Draft.Coins)
	assert.Equal(t, int64(17000), u.Draft.Price)
	assert.Empty(t, u.Draft.Method)
}

func TestEmailValidationReprompts(t *testing.T) {
	b, api, store := newFlowFixture(db.StageAwaitingEmail, db.Draft{}, 0)

	b.HandleUpdate(textUpdate("not an email"))

	u := store.currentUser()
	assert.Equal(t, db.StageAwaitingEmail, u.Stage)
	assert.Empty(t, u.Draft.Email)
	require.NotEmpty(t, api.texts)
	assert.Contains(t, api.texts[len(api.texts)-1].text, "valid email")

	b.HandleUpdate(textUpdate("aye@example.com"))

	u = store.currentUser()
	assert.Equal(t, db.StagePlanSelect, u.Stage)
	assert.Equal(t, "aye@example.com", u.Draft.Email)
}

func TestPlanSelectRejectsInsufficientBalance(t *testing.T) {
	b, api, store := newFlowFixture(db.StagePlanSelect, db.Draft{Email: "aye@example.com"}, 1)

	b.HandleUpdate(buttonUpdate(prefixSelectLicense + "1Month"))

	u := store.currentUser()
	assert.Equal(t, db.StagePlanSelect, u.Stage)
	ans := api.lastAnswer()
	assert.True(t, ans.alert)
	assert.Contains(t, ans.text, "need 2 coins but have 1")
	assert.Empty(t, store.licenses)
}

func TestConfirmCreatesPendingLicenseWithoutDebit(t *testing.T) {
	draft := db.Draft{Email: "aye@example.com", Plan: "1Month", Days: 28, Coins: 2, Price: 17000}
	b, api, store := newFlowFixture(db.StageConfirmRedeem, draft, 5)

	b.HandleUpdate(buttonUpdate(callbackConfirmRedeem))

	require.Len(t, store.licenses, 1)
	lic := store.licenses[0]
	assert.Equal(t, db.LicensePending, lic.Status)
	assert.Equal(t, "aye@example.com", lic.Email)
	assert.Equal(t, int64(2), lic.CoinsSpent)
	assert.False(t, lic.ExpiresAt.IsZero())

	// The balance is untouched until an admin finishes the license.
	assert.Equal(t, int64(5), store.currentUser().CoinBalance)

	// Review card goes to the license topic.
	var staff []sentText
	for _, tx := range api.texts {
		if tx.chatID == groupID {
			staff = append(staff, tx)
		}
	}
	require.Len(t, staff, 1)
	assert.Contains(t, staff[0].text, "License (Pending)")
	require.NotNil(t, staff[0].opts)
	assert.Equal(t, 78, staff[0].opts.ThreadID)
	assert.NotNil(t, staff[0].opts.Keyboard)

	u := store.currentUser()
	assert.Equal(t, db.StageIdle, u.Stage)
	assert.Equal(t, db.Draft{}, u.Draft)
}

func TestStaleButtonIsIgnored(t *testing.T) {
	b, api, store := newFlowFixture(db.StageIdle, db.Draft{}, 0)

	b.HandleUpdate(buttonUpdate(prefixPayMethod + "KBZPay"))

	assert.Equal(t, db.StageIdle, store.currentUser().Stage)
	assert.Empty(t, store.orders)
	// The press is still acknowledged so the spinner clears.
	require.NotEmpty(t, api.answers)
	assert.Equal(t, "", api.lastAnswer().text)
}

func TestPromoPhotoOwnerOnly(t *testing.T) {
	b, _, store := newFlowFixture(db.StageAwaitingPhoto, db.Draft{}, 0)

	// A regular user stuck in this stage just falls back to idle.
	b.HandleUpdate(photoUpdate("sneaky-file"))
	assert.Equal(t, db.StageIdle, store.currentUser().Stage)
	assert.NotEqual(t, "sneaky-file", store.settings[db.KeyPromoPhotoFileID])
}

func TestOwnerPromoPhotoSaved(t *testing.T) {
	api := &fakeAPI{}
	store := newStubStore(&db.User{TgID: ownerID, FirstName: "Boss", Stage: db.StageAwaitingPhoto})
	b := New(api, store, nil, ownerID)

	b.HandleUpdate(tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 9,
		From:      &tgbotapi.User{ID: ownerID, FirstName: "Boss"},
		Chat:      &tgbotapi.Chat{ID: ownerID, Type: "private"},
		Photo:     []tgbotapi.PhotoSize{{FileID: "new-promo"}},
	}})

	assert.Equal(t, "new-promo", store.settings[db.KeyPromoPhotoFileID])
	assert.Equal(t, db.StageIdle, store.currentUser().Stage)
}

func TestRedeemEntryFromFollowUpButton(t *testing.T) {
	b, _, store := newFlowFixture(db.StageIdle, db.Draft{}, 2)

	b.HandleUpdate(buttonUpdate("buy_license_prompt"))

	assert.Equal(t, db.StageAwaitingEmail, store.currentUser().Stage)
}
