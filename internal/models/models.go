// Package models defines the database schema for the custody audit
// trail. All three tables are append-only observational records; the
// in-memory components remain the source of truth while serving.
package models

import "time"

// ConsumedAuthorization mirrors the manager's consumed-digest set so a
// redeemed authorization stays permanently invalid across restarts.
// Rows are only ever deleted when the enclosing withdrawal rolled back,
// in which case the consumption never happened.
type ConsumedAuthorization struct {
	ID        uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Digest    string `json:"digest" gorm:"uniqueIndex;not null;size:66"`
	Vault     string `json:"vault" gorm:"not null;size:42"`
	Recipient string `json:"recipient" gorm:"not null;size:42;index"`
	Amount    string `json:"amount" gorm:"not null"` // decimal string, smallest unit
	Nonce     string `json:"nonce" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
}

// DepositRecord is one accepted deposit.
type DepositRecord struct {
	ID     uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	From   string `json:"from" gorm:"column:from_address;not null;size:42;index"`
	Amount string `json:"amount" gorm:"not null"`
	TxRef  string `json:"tx_ref" gorm:"size:128"` // caller-supplied reference, informational

	CreatedAt time.Time `json:"created_at"`
}

// WithdrawalRecord is one settled withdrawal. The digest links it to
// the authorization that permitted it.
type WithdrawalRecord struct {
	ID        uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Recipient string `json:"recipient" gorm:"not null;size:42;index"`
	Amount    string `json:"amount" gorm:"not null"`
	Nonce     string `json:"nonce" gorm:"not null"`
	Digest    string `json:"digest" gorm:"uniqueIndex;not null;size:66"`

	CreatedAt time.Time `json:"created_at"`
}
