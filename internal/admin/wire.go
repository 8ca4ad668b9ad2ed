package admin

import (
	"fmt"
	"strconv"
	"strings"
)

// Callback payload formats for the staff-facing buttons. The colon-separated
// layout is part of the persisted wire format: buttons posted before a
// restart must still parse afterwards.
const (
	actionAcceptOrder     = "admin_accept_order"
	actionDeclineOrder    = "admin_decline_order"
	actionFinishLicense   = "admin_finish_license"
	actionDeclineLicense  = "admin_decline_license"
	actionBroadcastSend   = "broadcast_send"
	actionBroadcastCancel = "broadcast_cancel"
)

// CallbackRedeemPrompt is the user-facing "buy a license" button payload.
// Defined here because the follow-up message after an accepted order carries
// it, and the stage engine matches on the same value.
const CallbackRedeemPrompt = "buy_license_prompt"

// AcceptOrderCallback builds the payload for the order Accept button.
func AcceptOrderCallback(userID int64, orderID uint, coins int64) string {
	return fmt.Sprintf("%s:%d:%d:%d", actionAcceptOrder, userID, orderID, coins)
}

// DeclineOrderCallback builds the payload for the order Decline button.
func DeclineOrderCallback(userID int64, orderID uint) string {
	return fmt.Sprintf("%s:%d:%d", actionDeclineOrder, userID, orderID)
}

// FinishLicenseCallback builds the payload for the license Finish button.
func FinishLicenseCallback(userID int64, licenseID uint) string {
	return fmt.Sprintf("%s:%d:%d", actionFinishLicense, userID, licenseID)
}

// DeclineLicenseCallback builds the payload for the license Decline button.
func DeclineLicenseCallback(userID int64, licenseID uint) string {
	return fmt.Sprintf("%s:%d:%d", actionDeclineLicense, userID, licenseID)
}

// parseAction splits a staff callback payload into its action and the record
// id it targets (the second field, the user id, is informational only: the
// handlers re-read the record and trust its user id instead).
func parseAction(data string) (action string, recordID uint, ok bool) {
	parts := strings.Split(data, ":")
	action = parts[0]
	switch action {
	case actionBroadcastSend, actionBroadcastCancel:
		return action, 0, true
	case actionAcceptOrder, actionDeclineOrder, actionFinishLicense, actionDeclineLicense:
		if len(parts) < 3 {
			return action, 0, false
		}
		id, err := strconv.ParseUint(parts[2], 10, 32)
		if err != nil {
			return action, 0, false
		}
		return action, uint(id), true
	default:
		return action, 0, false
	}
}
