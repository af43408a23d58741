package mailer

import (
	"fmt"
	"strings"
)

// VerificationMessage carries the six-digit registration code.
func VerificationMessage(to, code string, validFor int) Message {
	return Message{
		To:      to,
		Subject: "Your E-Shop verification code",
		Text: fmt.Sprintf("Your registration verification code is: %s\nIt is valid for %d minutes.",
			code, validFor),
	}
}

type OrderLine struct {
	Name     string
	Quantity int
	Price    string
}

// OrderConfirmationMessage summarizes a placed order.
func OrderConfirmationMessage(to, name, orderID, total string, lines []OrderLine) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", name)
	b.WriteString("Thank you for shopping at E-Shop!\n")
	fmt.Fprintf(&b, "Order number: %s\n", orderID)
	for _, l := range lines {
		fmt.Fprintf(&b, "  %d x %s @ %s\n", l.Quantity, l.Name, l.Price)
	}
	fmt.Fprintf(&b, "Order total: %s\n\n", total)
	b.WriteString("We will ship your order as soon as possible.\n\nE-Shop Team\n")

	return Message{
		To:      to,
		Subject: "Order confirmation - E-Shop",
		Text:    b.String(),
	}
}
