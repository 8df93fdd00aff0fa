package orders

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	orderNumberPrefix     = "YQ-"
	orderNumberSuffixSize = 9
)

// NewOrderNumber builds an order number of the form YQ-<unix millis>-<suffix>.
// The suffix is random, but uniqueness is only guaranteed by the unique
// index on orders.order_number.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:orderNumberSuffixSize]
	return orderNumberPrefix + strconv.FormatInt(now.UnixMilli(), 10) + "-" + suffix
}
