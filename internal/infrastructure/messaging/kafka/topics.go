// Package kafka publishes billing lifecycle events for downstream consumers
// such as the accounting export.
package kafka

// TopicInvoiceFinalized carries one event per finalized invoice.
const TopicInvoiceFinalized = "billing.invoice.finalized"
