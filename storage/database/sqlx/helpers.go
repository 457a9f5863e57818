package sqlxrepos

import (
	"strconv"
	"strings"

	"github.com/trezcool/malezi/core"
)

func itoa(n int) string {
	return strconv.Itoa(n)
}

func orderingClause(ordering []core.DBOrdering) string {
	if len(ordering) == 0 {
		return ""
	}
	orderList := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		orderList = append(orderList, ord.String())
	}
	return " ORDER BY " + strings.Join(orderList, ", ")
}

func joinConds(conds []string) string {
	return strings.Join(conds, " AND ")
}

// argBuilder numbers positional query arguments.
type argBuilder struct {
	args []interface{}
}

func (b *argBuilder) add(v interface{}) string {
	b.args = append(b.args, v)
	return "$" + itoa(len(b.args))
}
