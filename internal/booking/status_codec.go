package booking

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "tradeflow/internal/errors"
)

// Status pairs a persisted booking code with its display label.
type Status struct {
	Code  int
	Label string
}

const (
	StatusPending   = 1
	StatusConfirmed = 2
	StatusInTransit = 3
	StatusDelivered = 4
	StatusCancelled = 5
)

var statuses = []Status{
	{StatusPending, "Pending"},
	{StatusConfirmed, "Confirmed"},
	{StatusInTransit, "In Transit"},
	{StatusDelivered, "Delivered"},
	{StatusCancelled, "Cancelled"},
}

var (
	labelByCode = make(map[int]string, len(statuses))
	codeByLabel = make(map[string]int, len(statuses))
)

func init() {
	for _, s := range statuses {
		labelByCode[s.Code] = s.Label
		codeByLabel[s.Label] = s.Code
	}
}

// labels lists the known labels in code order.
func labels() []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = s.Label
	}
	return out
}

// ToCode converts a label to its code. Integers pass through unchanged and
// anything unrecognized falls back to Pending.
func ToCode(value any) int {
	switch v := value.(type) {
	case int:
		return v
	case int8:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint:
		return int(v)
	case uint8:
		return int(v)
	case uint16:
		return int(v)
	case uint32:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		if v == float64(int(v)) {
			return int(v)
		}
	case string:
		if code, ok := codeByLabel[v]; ok {
			return code
		}
	}
	return StatusPending
}

// ToLabel converts a code to its label; unknown codes read as Pending.
func ToLabel(code int) string {
	if label, ok := labelByCode[code]; ok {
		return label
	}
	return labelByCode[StatusPending]
}

func ParseLabel(label string) (Status, error) {
	code, ok := codeByLabel[label]
	if !ok {
		return Status{}, apperrors.NewValidationError(
			fmt.Sprintf("unknown booking status %q", label),
			apperrors.ValidationDetail{Field: "status", Message: "status must be one of " + quotedLabels()},
		)
	}
	return Status{Code: code, Label: label}, nil
}

func ParseCode(code int) (Status, error) {
	label, ok := labelByCode[code]
	if !ok {
		return Status{}, apperrors.NewValidationError(
			fmt.Sprintf("unknown booking status code %d", code),
			apperrors.ValidationDetail{Field: "status", Message: "status code must be between 1 and " + strconv.Itoa(len(statuses))},
		)
	}
	return Status{Code: code, Label: label}, nil
}

func quotedLabels() string {
	quoted := labels()
	for i, label := range quoted {
		quoted[i] = strconv.Quote(label)
	}
	return strings.Join(quoted, ", ")
}
