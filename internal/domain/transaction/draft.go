// Package transaction defines the draft transaction record exchanged with
// the external scoring API and the structural invariants it must satisfy.
package transaction

import (
	"errors"
	"math"
)

var (
	ErrEmptyTransactionID = errors.New("transaction id must not be empty")
	ErrNonPositiveAmount  = errors.New("amount must be greater than zero")
	ErrSameAccounts       = errors.New("sender and receiver accounts must differ")
	ErrMissingAccount     = errors.New("sender and receiver accounts are required")
)

// TimestampLayout is the wire format for draft timestamps: second precision,
// space-separated date and time, no zone suffix.
const TimestampLayout = "2006-01-02 15:04:05"

// Currency defines the supported transaction currencies
type Currency string

const (
	CurrencyINR Currency = "INR"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

// Currencies returns the fixed set of supported currencies
func Currencies() []Currency {
	return []Currency{CurrencyINR, CurrencyUSD, CurrencyEUR, CurrencyGBP}
}

// Type defines possible transaction operations
type Type string

const (
	TypeTransfer Type = "TRANSFER"
	TypeWithdraw Type = "WITHDRAW"
	TypeDeposit  Type = "DEPOSIT"
	TypePayment  Type = "PAYMENT"
)

// Types returns the fixed set of transaction types
func Types() []Type {
	return []Type{TypeTransfer, TypeWithdraw, TypeDeposit, TypePayment}
}

// Channel defines the origination channel of a transaction
type Channel string

const (
	ChannelMobile     Channel = "MOBILE"
	ChannelATM        Channel = "ATM"
	ChannelCard       Channel = "CARD"
	ChannelNetbanking Channel = "NETBANKING"
)

// Channels returns the fixed set of origination channels
func Channels() []Channel {
	return []Channel{ChannelMobile, ChannelATM, ChannelCard, ChannelNetbanking}
}

// Draft is a transaction record prior to server-side status and fraud
// assignment. The scoring service owns those fields; a draft never carries
// them. Field names follow the external API's JSON contract.
type Draft struct {
	TransactionID   string   `json:"transactionId"`
	Timestamp       string   `json:"timestamp"`
	Amount          float64  `json:"amount"`
	Currency        Currency `json:"currency"`
	SenderAccount   string   `json:"senderAccount"`
	ReceiverAccount string   `json:"receiverAccount"`
	TransactionType Type     `json:"transactionType"`
	Channel         Channel  `json:"channel"`
	IPAddress       string   `json:"ipAddress,omitempty"`
	Location        string   `json:"location,omitempty"`
}

// Validate checks the structural invariants every draft must satisfy before
// it can be submitted
func (d *Draft) Validate() error {
	if d.TransactionID == "" {
		return ErrEmptyTransactionID
	}
	if d.Amount <= 0 {
		return ErrNonPositiveAmount
	}
	if d.SenderAccount == "" || d.ReceiverAccount == "" {
		return ErrMissingAccount
	}
	if d.SenderAccount == d.ReceiverAccount {
		return ErrSameAccounts
	}
	return nil
}

// RoundAmount truncates an amount to two decimal places, the precision the
// external API expects
func RoundAmount(amount float64) float64 {
	return math.Round(amount*100) / 100
}
