// Package catalog holds the immutable plan and payment-method tables.
package catalog

// Plan is a purchasable coin bundle that doubles as a license length.
type Plan struct {
	Name  string
	Days  int
	Coins int64
	Price int64 // kyats; what the customer transfers for the coin purchase
}

var plans = []Plan{
	{Name: "1Month", Days: 28, Coins: 2, Price: 17000},
	{Name: "3Months", Days: 84, Coins: 6, Price: 45000},
	{Name: "6Months", Days: 168, Coins: 13, Price: 81000},
	{Name: "12Months", Days: 336, Coins: 26, Price: 149000},
}

// Plans returns the catalog in display order.
func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// PlanByName looks a plan up by its button payload name.
func PlanByName(name string) (Plan, bool) {
	for _, p := range plans {
		if p.Name == name {
			return p, true
		}
	}
	return Plan{}, false
}

// PaymentMethod is one of the mobile-banking targets shown to the customer.
type PaymentMethod struct {
	Name    string
	Details string
}

var methods = []PaymentMethod{
	{Name: "WavePay", Details: "Name: Ko Ko Thar Htet\nPhNo.: 09753661355"},
	{Name: "KBZPay", Details: "Name: Ko Ko Thar Htet\nPhNo.: 09427275188"},
	{Name: "AYAPay", Details: "Name: Ko Ko Thar Htet\nPhNo.: 09427275188"},
	{Name: "UABPay", Details: "Name: Ko Ko Thar Htet\nPhNo.: 09753661355"},
}

// PaymentMethods returns the methods in display order.
func PaymentMethods() []PaymentMethod {
	out := make([]PaymentMethod, len(methods))
	copy(out, methods)
	return out
}

// MethodByName looks a payment method up by its button payload name.
func MethodByName(name string) (PaymentMethod, bool) {
	for _, m := range methods {
		if m.Name == name {
			return m, true
		}
	}
	return PaymentMethod{}, false
}
