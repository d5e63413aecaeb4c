package domain

import "strings"

// Purchase order statuses. Only POStatusDelivered affects the cost ledger.
const (
	POStatusDraft = iota
	POStatusPending
	POStatusInTransit
	POStatusDelivered
)

// Return statuses. Only ReturnStatusAccepted affects the cost ledger.
const (
	ReturnStatusPending = iota
	ReturnStatusProcessing
	ReturnStatusAccepted
	ReturnStatusRejected
)

var poStatusLabels = map[int]string{
	POStatusDraft:     "Draft",
	POStatusPending:   "Pending",
	POStatusInTransit: "InTransit",
	POStatusDelivered: "Delivered",
}

var poStatusCodes = map[string]int{
	"draft":      POStatusDraft,
	"pending":    POStatusPending,
	"in_transit": POStatusInTransit,
	"intransit":  POStatusInTransit,
	"delivered":  POStatusDelivered,
}

var returnStatusLabels = map[int]string{
	ReturnStatusPending:    "Pending",
	ReturnStatusProcessing: "Processing",
	ReturnStatusAccepted:   "Accepted",
	ReturnStatusRejected:   "Rejected",
}

var returnStatusCodes = map[string]int{
	"pending":    ReturnStatusPending,
	"processing": ReturnStatusProcessing,
	"accepted":   ReturnStatusAccepted,
	"rejected":   ReturnStatusRejected,
}

// POStatusLabel returns a human-readable label for a PO status code.
func POStatusLabel(status int) string {
	if label, ok := poStatusLabels[status]; ok {
		return label
	}

	return "Draft"
}

// ParsePOStatus returns the status code for a given label (case-insensitive).
func ParsePOStatus(label string) (int, bool) {
	code, ok := poStatusCodes[strings.ToLower(strings.TrimSpace(label))]

	return code, ok
}

// ReturnStatusLabel returns a human-readable label for a return status code.
func ReturnStatusLabel(status int) string {
	if label, ok := returnStatusLabels[status]; ok {
		return label
	}

	return "Pending"
}

// ParseReturnStatus returns the status code for a given label (case-insensitive).
func ParseReturnStatus(label string) (int, bool) {
	code, ok := returnStatusCodes[strings.ToLower(strings.TrimSpace(label))]

	return code, ok
}
