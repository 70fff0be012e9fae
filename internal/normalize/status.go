package normalize

import (
	"fmt"
	"strings"

	"github.com/yourusername/roi-ledger/internal/models"
)

var statusSynonyms = map[string]models.BetStatus{
	"won":       models.BetStatusWon,
	"win":       models.BetStatusWon,
	"w":         models.BetStatusWon,
	"hit":       models.BetStatusWon,
	"cash":      models.BetStatusWon,
	"success":   models.BetStatusWon,
	"lost":      models.BetStatusLost,
	"loss":      models.BetStatusLost,
	"l":         models.BetStatusLost,
	"lose":      models.BetStatusLost,
	"push":      models.BetStatusPush,
	"tie":       models.BetStatusPush,
	"p":         models.BetStatusPush,
	"t":         models.BetStatusPush,
	"void":      models.BetStatusVoid,
	"cancelled": models.BetStatusVoid,
	"canceled":  models.BetStatusVoid,
	"no action": models.BetStatusVoid,
	"no-action": models.BetStatusVoid,
	"na":        models.BetStatusVoid,
}

// NormalizeBetStatus maps a result string onto a terminal bet status.
// Unrecognised input is no value; it is never defaulted.
func NormalizeBetStatus(input interface{}) (models.BetStatus, bool) {
	var raw string
	switch v := input.(type) {
	case nil:
		return "", false
	case string:
		raw = v
	case *string:
		if v == nil {
			return "", false
		}
		raw = *v
	case models.BetStatus:
		raw = string(v)
	default:
		raw = fmt.Sprint(v)
	}

	status, ok := statusSynonyms[strings.ToLower(strings.TrimSpace(raw))]
	return status, ok
}
