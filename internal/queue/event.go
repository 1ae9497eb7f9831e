// Package queue defines message payloads exchanged over the message broker.
package queue

// TagsConfirmedEvent is published when a pending batch is successfully
// confirmed against an on-chain payment. It contains enough information for
// downstream consumers to log, notify, or trigger analytics without querying
// the primary database.
type TagsConfirmedEvent struct {
    UserID      uint64   `json:"user_id"`
    TagNames    []string `json:"tag_names"`
    AmountWei   string   `json:"amount_wei"`
    TxHash      string   `json:"tx_hash"`
    EventID     string   `json:"event_id"`
    ConfirmedAt string   `json:"confirmed_at"`
}
