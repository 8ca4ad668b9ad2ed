package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"Zoom-License-Bot/internal/admin"
	"Zoom-License-Bot/internal/catalog"
)

// Customer-facing callback payloads. Like the staff payloads, these survive
// restarts inside old messages and must keep parsing.
const (
	callbackBuyCoins       = "buy_coin_prompt"
	callbackConfirmRedeem  = "confirm_license_purchase"
	callbackBackToStart    = "back_to_start"
	callbackBackToPlans    = "back_to_plans"
	callbackBackToEmail    = "back_to_email_prompt"
	callbackBackToLicPlans = "back_to_license_plan_selection"
	prefixBuyCoin          = "buy_coin:"
	prefixPayMethod        = "pay:"
	prefixSelectLicense    = "select_license:"
)

func startMenuKeyboard() *tgbotapi.InlineKeyboardMarkup {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🪙 Buy Zoom Coins", callbackBuyCoins),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎫 Buy Zoom License", admin.CallbackRedeemPrompt),
		),
	)
	return &kb
}

func planCatalogKeyboard() *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range catalog.Plans() {
		label := fmt.Sprintf("%s — %d coins (%d Ks)", p.Name, p.Coins, p.Price)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, prefixBuyCoin+p.Name),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("« Back", callbackBackToStart),
	))
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

func paymentMethodKeyboard() *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, m := range catalog.PaymentMethods() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(m.Name, prefixPayMethod+m.Name),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("« Back", callbackBackToPlans),
	))
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

// proofBackKeyboard lets the customer step back from the receipt screen to
// the method list; the payload re-enters the plan so the draft stays intact.
func proofBackKeyboard(planName string) *tgbotapi.InlineKeyboardMarkup {
	kb := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("« Back", prefixBuyCoin+planName),
	))
	return &kb
}

func licensePlanKeyboard() *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range catalog.Plans() {
		label := fmt.Sprintf("%s — %d coins", p.Name, p.Coins)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, prefixSelectLicense+p.Name),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("« Back", callbackBackToEmail),
	))
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

func confirmRedeemKeyboard() *tgbotapi.InlineKeyboardMarkup {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirm", callbackConfirmRedeem),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("« Back", callbackBackToLicPlans),
		),
	)
	return &kb
}

func orderReviewKeyboard(userID int64, orderID uint, coins int64) *tgbotapi.InlineKeyboardMarkup {
	kb := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Accept", admin.AcceptOrderCallback(userID, orderID, coins)),
		tgbotapi.NewInlineKeyboardButtonData("❌ Decline", admin.DeclineOrderCallback(userID, orderID)),
	))
	return &kb
}

func licenseReviewKeyboard(userID int64, licenseID uint) *tgbotapi.InlineKeyboardMarkup {
	kb := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Finish", admin.FinishLicenseCallback(userID, licenseID)),
		tgbotapi.NewInlineKeyboardButtonData("❌ Decline", admin.DeclineLicenseCallback(userID, licenseID)),
	))
	return &kb
}
